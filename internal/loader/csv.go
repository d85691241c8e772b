package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

const utf8BOM = "\ufeff"

// ParseCSV reads a header row plus records into a RawTable.
// Short rows are allowed; missing trailing cells read as NULL.
func ParseCSV(name string, r io.Reader) (*contracts.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		// 헤더도 없는 빈 파일 → 빈 테이블 (검증 단계에서 EmptyInputError)
		return &contracts.RawTable{Name: name, Columns: []string{}, Rows: [][]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := make([][]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		rows = append(rows, record)
	}

	return &contracts.RawTable{Name: name, Columns: header, Rows: rows}, nil
}

// tableFetcher produces one named raw table
type tableFetcher func(ctx context.Context, table string) (*contracts.RawTable, error)

// loadAll fetches the three tables concurrently; the first error cancels the rest
func loadAll(ctx context.Context, fetch tableFetcher) (*contracts.Dataset, error) {
	ds := &contracts.Dataset{}
	targets := []struct {
		name string
		dst  **contracts.RawTable
	}{
		{contracts.TableCustomers, &ds.Customers},
		{contracts.TableOrders, &ds.Orders},
		{contracts.TablePayments, &ds.Payments},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			table, err := fetch(gctx, t.name)
			if err != nil {
				return err
			}
			*t.dst = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

// CSVLoader reads the three raw tables from local files
type CSVLoader struct {
	paths  map[string]string
	logger *logger.Logger
}

// NewCSVLoader creates a loader over the given file paths
func NewCSVLoader(customersPath, ordersPath, paymentsPath string, log *logger.Logger) *CSVLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &CSVLoader{
		paths: map[string]string{
			contracts.TableCustomers: customersPath,
			contracts.TableOrders:    ordersPath,
			contracts.TablePayments:  paymentsPath,
		},
		logger: log,
	}
}

// Name returns the source kind
func (l *CSVLoader) Name() string {
	return "csv"
}

// Load reads all three files
func (l *CSVLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	return loadAll(ctx, l.readFile)
}

func (l *CSVLoader) readFile(ctx context.Context, table string) (*contracts.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.paths[table]
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	raw, err := ParseCSV(table, f)
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(map[string]interface{}{
		"table": table,
		"path":  path,
		"rows":  raw.Len(),
	}).Debug("Loaded CSV table")

	return raw, nil
}
