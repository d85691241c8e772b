package s2_features

import (
	"github.com/wonny/churnlens/backend/internal/contracts"
)

// DefaultChurnThresholdDays is the inactivity threshold used when none is configured
const DefaultChurnThresholdDays = 270

// IsChurned reports whether a customer with the given recency counts as churned
func IsChurned(recencyDays, thresholdDays int) bool {
	return recencyDays >= thresholdDays
}

// AddChurnLabel returns a copy of features with churn = 1 iff recency_days >= thresholdDays
func AddChurnLabel(features []contracts.CustomerFeature, thresholdDays int) []contracts.CustomerFeature {
	labeled := make([]contracts.CustomerFeature, len(features))
	copy(labeled, features)

	for i := range labeled {
		labeled[i].Churn = 0
		if IsChurned(labeled[i].RecencyDays, thresholdDays) {
			labeled[i].Churn = 1
		}
	}

	return labeled
}
