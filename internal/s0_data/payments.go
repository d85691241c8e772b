package s0_data

import (
	"math"
	"strconv"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// ParsePayments converts the raw payments table into typed records.
// payment_value is coerced to a number; failures are kept as non-numeric rows
// so CleanPayments can count them.
func ParsePayments(table *contracts.RawTable) []contracts.Payment {
	idCol := table.ColumnIndex(contracts.ColOrderID)
	valueCol := table.ColumnIndex(contracts.ColPaymentValue)

	payments := make([]contracts.Payment, 0, table.Len())
	for _, row := range table.Rows {
		var p contracts.Payment
		p.OrderID, p.HasOrderID = table.Cell(row, idCol)
		p.RawValue, p.HasValue = table.Cell(row, valueCol)

		if p.HasValue {
			p.Value, p.Numeric = coerceNumeric(p.RawValue)
		}

		payments = append(payments, p)
	}

	return payments
}

// coerceNumeric parses a payment amount; NaN and ±Inf count as non-numeric
func coerceNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CleanPayments drops NULL rows, rows that failed numeric coercion and
// negative amounts. Coercion failures are skipped, never returned as errors.
func CleanPayments(payments []contracts.Payment) ([]contracts.Payment, CleanStats) {
	stats := CleanStats{Input: len(payments)}
	cleaned := make([]contracts.Payment, 0, len(payments))

	for _, p := range payments {
		switch {
		case !p.HasOrderID || !p.HasValue:
			stats.DroppedNull++
		case !p.Numeric:
			stats.DroppedNonNumeric++
		case p.Value < 0:
			stats.DroppedNegative++
		default:
			cleaned = append(cleaned, p)
		}
	}

	stats.Output = len(cleaned)
	return cleaned, stats
}

// AggregatePaymentsByOrder sums payment values per order_id.
// Output is ordered by first appearance of each order_id.
func AggregatePaymentsByOrder(payments []contracts.Payment) []contracts.OrderPayment {
	index := make(map[string]int, len(payments))
	totals := make([]contracts.OrderPayment, 0, len(payments))

	for _, p := range payments {
		if i, ok := index[p.OrderID]; ok {
			totals[i].Value += p.Value
			continue
		}
		index[p.OrderID] = len(totals)
		totals = append(totals, contracts.OrderPayment{OrderID: p.OrderID, Value: p.Value})
	}

	return totals
}
