package s1_join

import (
	"time"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// BuildCustomerMap drops mappings with a NULL side and keeps the first
// customer_unique_id seen for each customer_id
func BuildCustomerMap(mappings []contracts.CustomerMapping) map[string]string {
	customerMap := make(map[string]string, len(mappings))
	for _, m := range mappings {
		if m.CustomerID == "" || m.CustomerUniqueID == "" {
			continue
		}
		if _, exists := customerMap[m.CustomerID]; exists {
			continue
		}
		customerMap[m.CustomerID] = m.CustomerUniqueID
	}
	return customerMap
}

// Join inner-joins cleaned orders to the customer map on customer_id and
// left-joins order payment totals on order_id (missing totals become 0).
// Orders without a mapping cannot be attributed to a customer and are dropped.
// ⭐ SSOT: S1 조인 로직은 여기서만
func Join(
	orders []contracts.Order,
	customerMap map[string]string,
	payments []contracts.OrderPayment,
) []contracts.JoinedOrder {
	totals := make(map[string]float64, len(payments))
	for _, p := range payments {
		totals[p.OrderID] += p.Value
	}

	joined := make([]contracts.JoinedOrder, 0, len(orders))
	for _, o := range orders {
		uniqueID, ok := customerMap[o.CustomerID]
		if !ok {
			continue
		}

		joined = append(joined, contracts.JoinedOrder{
			OrderID:          o.OrderID,
			CustomerID:       o.CustomerID,
			CustomerUniqueID: uniqueID,
			Status:           o.Status,
			PurchasedAt:      o.PurchasedAt,
			PaymentValue:     totals[o.OrderID], // 결제 없음 → 0
		})
	}

	return joined
}

// AsOfDate returns the latest purchase timestamp of the joined orders.
// It fails when nothing survived cleaning and joining.
func AsOfDate(joined []contracts.JoinedOrder) (time.Time, error) {
	if len(joined) == 0 {
		return time.Time{}, &contracts.EmptyInputError{
			Table:  contracts.TableOrders,
			Stage:  contracts.StageJoin,
			Reason: "no valid order_purchase_timestamp after filtering",
		}
	}

	asOf := joined[0].PurchasedAt
	for _, o := range joined[1:] {
		if o.PurchasedAt.After(asOf) {
			asOf = o.PurchasedAt
		}
	}
	return asOf, nil
}
