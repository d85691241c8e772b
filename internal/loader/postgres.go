package loader

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// TableReader runs a query and returns header plus text cells (see database.DB)
type TableReader interface {
	ReadTable(ctx context.Context, query string, args ...interface{}) ([]string, [][]string, error)
}

// DefaultPostgresTables maps raw tables to their SQL table names
var DefaultPostgresTables = map[string]string{
	contracts.TableCustomers: "olist_customers",
	contracts.TableOrders:    "olist_orders",
	contracts.TablePayments:  "olist_order_payments",
}

// PostgresLoader reads the three raw tables from PostgreSQL
type PostgresLoader struct {
	db     TableReader
	tables map[string]string
	logger *logger.Logger
}

// NewPostgresLoader creates a loader over db. Nil tables uses DefaultPostgresTables.
func NewPostgresLoader(db TableReader, tables map[string]string, log *logger.Logger) *PostgresLoader {
	if tables == nil {
		tables = DefaultPostgresTables
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PostgresLoader{db: db, tables: tables, logger: log}
}

// Name returns the source kind
func (l *PostgresLoader) Name() string {
	return "postgres"
}

// Load selects every row of the three tables
func (l *PostgresLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	return loadAll(ctx, l.readTable)
}

// Query returns the SELECT used for a raw table
func (l *PostgresLoader) Query(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", pgx.Identifier{l.tables[table]}.Sanitize())
}

func (l *PostgresLoader) readTable(ctx context.Context, table string) (*contracts.RawTable, error) {
	columns, rows, err := l.db.ReadTable(ctx, l.Query(table))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	l.logger.WithFields(map[string]interface{}{
		"table":     table,
		"sql_table": l.tables[table],
		"rows":      len(rows),
	}).Debug("Loaded Postgres table")

	return &contracts.RawTable{Name: table, Columns: columns, Rows: rows}, nil
}
