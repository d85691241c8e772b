package s4_risk

import (
	"math"
	"sort"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// Recency cut points in days, evaluated top-down
const (
	VeryHighRiskDays = 450
	ChurnDays        = 270
	HighRiskDays     = 180
	MediumRiskDays   = 90
)

// PriorityQuantile is the population quantile that marks a high-value customer
const PriorityQuantile = 0.80

// Thresholds are the population-level values shared by every classification in a run
type Thresholds struct {
	MonetaryQ80  float64 `json:"monetary_q80"`
	FrequencyQ80 float64 `json:"frequency_q80"`
}

// Quantile returns the p-quantile of values using linear interpolation
// between closest ranks (position p*(n-1) in the sorted sample).
// Returns NaN for an empty sample.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ComputeThresholds derives monetary_q80 and frequency_q80 over all customers
func ComputeThresholds(features []contracts.CustomerFeature) Thresholds {
	monetary := make([]float64, len(features))
	frequency := make([]float64, len(features))
	for i, f := range features {
		monetary[i] = f.Monetary
		frequency[i] = float64(f.Frequency)
	}

	return Thresholds{
		MonetaryQ80:  Quantile(monetary, PriorityQuantile),
		FrequencyQ80: Quantile(frequency, PriorityQuantile),
	}
}

// Classify applies the risk cascade to one customer. First matching rule wins.
// ⭐ SSOT: 리스크 세그먼트 판정은 이 함수만 사용
func Classify(recencyDays, frequency int, monetary float64, th Thresholds) contracts.RiskSegment {
	valuable := monetary >= th.MonetaryQ80 || float64(frequency) >= th.FrequencyQ80

	switch {
	case recencyDays >= VeryHighRiskDays:
		return contracts.RiskVeryHigh
	case recencyDays >= ChurnDays:
		if valuable {
			return contracts.RiskChurnPrioritized
		}
		return contracts.RiskChurn
	case recencyDays >= HighRiskDays:
		if valuable {
			return contracts.RiskHighPrioritized
		}
		return contracts.RiskHigh
	case recencyDays >= MediumRiskDays:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}

// ComputeRiskSegments returns a copy of features with risk_segment assigned,
// along with the thresholds used.
func ComputeRiskSegments(features []contracts.CustomerFeature) ([]contracts.CustomerFeature, Thresholds) {
	th := ComputeThresholds(features)

	segmented := make([]contracts.CustomerFeature, len(features))
	copy(segmented, features)

	for i := range segmented {
		f := &segmented[i]
		f.RiskSegment = Classify(f.RecencyDays, f.Frequency, f.Monetary, th)
	}

	return segmented, th
}
