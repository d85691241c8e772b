package contracts

import "time"

// RiskSegment is one of the seven rule-based retention segments
type RiskSegment string

const (
	RiskVeryHigh         RiskSegment = "Very high risk"
	RiskChurnPrioritized RiskSegment = "Churn (prioritized)"
	RiskChurn            RiskSegment = "Churn"
	RiskHighPrioritized  RiskSegment = "High risk (prioritized)"
	RiskHigh             RiskSegment = "High risk"
	RiskMedium           RiskSegment = "Medium risk"
	RiskLow              RiskSegment = "Low risk"
)

// AllRiskSegments returns the segments in cascade (severity) order
func AllRiskSegments() []RiskSegment {
	return []RiskSegment{
		RiskVeryHigh,
		RiskChurnPrioritized,
		RiskChurn,
		RiskHighPrioritized,
		RiskHigh,
		RiskMedium,
		RiskLow,
	}
}

// IsValid reports whether s is one of the seven defined segments
func (s RiskSegment) IsValid() bool {
	for _, seg := range AllRiskSegments() {
		if seg == s {
			return true
		}
	}
	return false
}

// CustomerFeature is the pipeline output row, one per customer_unique_id
type CustomerFeature struct {
	CustomerUniqueID string      `json:"customer_unique_id"`
	Frequency        int         `json:"frequency"`
	Monetary         float64     `json:"monetary"`
	FirstPurchase    time.Time   `json:"first_purchase"`
	LastPurchase     time.Time   `json:"last_purchase"`
	RecencyDays      int         `json:"recency_days"`
	TenureDays       int         `json:"tenure_days"`
	AvgTicket        float64     `json:"avg_ticket"`
	Churn            int         `json:"churn"`
	RScore           int         `json:"R_score"`
	FScore           int         `json:"F_score"`
	MScore           int         `json:"M_score"`
	RFMScore         int         `json:"RFM_score"`
	RFMSegment       string      `json:"RFM_segment"`
	RiskSegment      RiskSegment `json:"risk_segment"`
}

// FeatureTable is the immutable result of one pipeline run
// ⭐ SSOT: 파이프라인 최종 산출물 (run 단위 스냅샷)
type FeatureTable struct {
	AsOfDate time.Time         `json:"as_of_date"`
	Rows     []CustomerFeature `json:"rows"`
}

// Len returns the number of customers
func (t *FeatureTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a deep copy so callers can never alias a published snapshot
func (t *FeatureTable) Clone() *FeatureTable {
	if t == nil {
		return nil
	}
	rows := make([]CustomerFeature, len(t.Rows))
	copy(rows, t.Rows)
	return &FeatureTable{AsOfDate: t.AsOfDate, Rows: rows}
}
