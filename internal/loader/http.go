package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// Fetcher returns the body of a successful GET (see httputil.Client)
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultFileNames are the CSV names under the remote base URL
var DefaultFileNames = map[string]string{
	contracts.TableCustomers: "olist_customers_dataset.csv",
	contracts.TableOrders:    "olist_orders_dataset.csv",
	contracts.TablePayments:  "olist_order_payments_dataset.csv",
}

// HTTPLoader downloads the three raw tables as CSV from a base URL
type HTTPLoader struct {
	client  Fetcher
	baseURL string
	logger  *logger.Logger
}

// NewHTTPLoader creates a loader for baseURL
func NewHTTPLoader(client Fetcher, baseURL string, log *logger.Logger) *HTTPLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPLoader{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

// Name returns the source kind
func (l *HTTPLoader) Name() string {
	return "http"
}

// URL returns where a raw table is fetched from
func (l *HTTPLoader) URL(table string) string {
	return l.baseURL + "/" + DefaultFileNames[table]
}

// Load downloads and parses the three files
func (l *HTTPLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	return loadAll(ctx, l.fetchTable)
}

func (l *HTTPLoader) fetchTable(ctx context.Context, table string) (*contracts.RawTable, error) {
	url := l.URL(table)
	body, err := l.client.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}

	raw, err := ParseCSV(table, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(map[string]interface{}{
		"table": table,
		"url":   url,
		"rows":  raw.Len(),
		"bytes": len(body),
	}).Debug("Loaded remote CSV table")

	return raw, nil
}
