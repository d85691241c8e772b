package s2_features

import (
	"time"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

const day = 24 * time.Hour

// ComputeCustomerFeatures aggregates joined orders per customer_unique_id.
// Customers appear in order of their first order in the joined table.
// ⭐ SSOT: S2 고객별 RFM 원시 지표
func ComputeCustomerFeatures(joined []contracts.JoinedOrder, asOf time.Time) []contracts.CustomerFeature {
	index := make(map[string]int)
	features := make([]contracts.CustomerFeature, 0)

	for _, o := range joined {
		i, ok := index[o.CustomerUniqueID]
		if !ok {
			index[o.CustomerUniqueID] = len(features)
			features = append(features, contracts.CustomerFeature{
				CustomerUniqueID: o.CustomerUniqueID,
				Frequency:        1,
				Monetary:         o.PaymentValue,
				FirstPurchase:    o.PurchasedAt,
				LastPurchase:     o.PurchasedAt,
			})
			continue
		}

		f := &features[i]
		f.Frequency++
		f.Monetary += o.PaymentValue
		if o.PurchasedAt.Before(f.FirstPurchase) {
			f.FirstPurchase = o.PurchasedAt
		}
		if o.PurchasedAt.After(f.LastPurchase) {
			f.LastPurchase = o.PurchasedAt
		}
	}

	for i := range features {
		f := &features[i]
		f.RecencyDays = wholeDays(asOf.Sub(f.LastPurchase))
		f.TenureDays = wholeDays(asOf.Sub(f.FirstPurchase))
		f.AvgTicket = f.Monetary / float64(f.Frequency) // frequency >= 1
	}

	return features
}

// wholeDays truncates a duration toward zero in days
func wholeDays(d time.Duration) int {
	return int(d / day)
}
