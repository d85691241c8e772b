package s0_data

import (
	"github.com/wonny/churnlens/backend/internal/contracts"
)

// CleanStats counts what a cleaner removed, by reason.
// A row is counted under the first reason that removed it.
type CleanStats struct {
	Input             int `json:"input"`
	DroppedNull       int `json:"dropped_null"`
	DroppedDuplicate  int `json:"dropped_duplicate"`
	DroppedStatus     int `json:"dropped_status"`
	DroppedNonNumeric int `json:"dropped_non_numeric"`
	DroppedNegative   int `json:"dropped_negative"`
	Output            int `json:"output"`
}

// ParseOrders converts the raw orders table into typed records.
// The table must already have passed ValidateSchema.
func ParseOrders(table *contracts.RawTable) []contracts.Order {
	idCol := table.ColumnIndex(contracts.ColOrderID)
	custCol := table.ColumnIndex(contracts.ColCustomerID)
	statusCol := table.ColumnIndex(contracts.ColOrderStatus)
	tsCol := table.ColumnIndex(contracts.ColPurchaseTime)

	orders := make([]contracts.Order, 0, table.Len())
	for _, row := range table.Rows {
		var o contracts.Order
		o.OrderID, o.HasOrderID = table.Cell(row, idCol)
		o.CustomerID, o.HasCustomerID = table.Cell(row, custCol)
		o.Status, _ = table.Cell(row, statusCol)

		if raw, ok := table.Cell(row, tsCol); ok {
			o.PurchasedAt, o.HasTimestamp = ParseTimestamp(raw)
		}

		orders = append(orders, o)
	}

	return orders
}

// CleanOrders drops rows with a NULL key field, keeps the first occurrence of
// each order_id (input order), then keeps only accepted statuses.
// The input slice is not modified.
func CleanOrders(orders []contracts.Order, validStatus []string) ([]contracts.Order, CleanStats) {
	stats := CleanStats{Input: len(orders)}

	accepted := make(map[string]struct{}, len(validStatus))
	for _, s := range validStatus {
		accepted[s] = struct{}{}
	}

	seen := make(map[string]struct{}, len(orders))
	cleaned := make([]contracts.Order, 0, len(orders))

	for _, o := range orders {
		// 1. NULL 키
		if !o.HasOrderID || !o.HasCustomerID || !o.HasTimestamp {
			stats.DroppedNull++
			continue
		}

		// 2. 중복 order_id (첫 번째만 유지)
		if _, dup := seen[o.OrderID]; dup {
			stats.DroppedDuplicate++
			continue
		}
		seen[o.OrderID] = struct{}{}

		// 3. 상태 필터
		if _, ok := accepted[o.Status]; !ok {
			stats.DroppedStatus++
			continue
		}

		cleaned = append(cleaned, o)
	}

	stats.Output = len(cleaned)
	return cleaned, stats
}
