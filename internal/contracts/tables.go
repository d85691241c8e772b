package contracts

import "strings"

// Table names used in errors and logs
const (
	TableCustomers = "customers"
	TableOrders    = "orders"
	TablePayments  = "payments"
)

// Column names of the raw input tables
const (
	ColCustomerID       = "customer_id"
	ColCustomerUniqueID = "customer_unique_id"
	ColOrderID          = "order_id"
	ColOrderStatus      = "order_status"
	ColPurchaseTime     = "order_purchase_timestamp"
	ColPaymentValue     = "payment_value"
)

// RequiredColumns returns the columns each raw table must carry
func RequiredColumns(table string) []string {
	switch table {
	case TableCustomers:
		return []string{ColCustomerID, ColCustomerUniqueID}
	case TableOrders:
		return []string{ColOrderID, ColCustomerID, ColOrderStatus, ColPurchaseTime}
	case TablePayments:
		return []string{ColOrderID, ColPaymentValue}
	default:
		return nil
	}
}

// RawTable is a header-aware string table as produced by a loader.
// An empty cell (after trimming) is treated as NULL.
type RawTable struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1
func (t *RawTable) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

// MissingColumns lists required columns absent from the header
func (t *RawTable) MissingColumns(required []string) []string {
	missing := make([]string, 0)
	for _, col := range required {
		if t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

// Cell returns the trimmed value at (row, col) and whether it is non-NULL
func (t *RawTable) Cell(row []string, col int) (string, bool) {
	if col < 0 || col >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[col])
	return v, v != ""
}

// Dataset bundles the three raw tables consumed by the pipeline
type Dataset struct {
	Customers *RawTable
	Orders    *RawTable
	Payments  *RawTable
}
