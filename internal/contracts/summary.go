package contracts

// KPIs is the headline summary of one feature table
type KPIs struct {
	AsOfDate         string  `json:"as_of_date"`
	TotalCustomers   int     `json:"total_customers"`
	ChurnRate        float64 `json:"churn_rate"`
	TotalRevenue     float64 `json:"total_revenue"`
	ChurnedCustomers int     `json:"churned_customers"`
	ActiveCustomers  int     `json:"active_customers"`
}

// RiskSegmentSummary is one row of the by-risk-segment rollup
type RiskSegmentSummary struct {
	RiskSegment RiskSegment `json:"risk_segment"`
	Count       int         `json:"count"`
	ChurnRate   float64     `json:"churn_rate"`
	MonetarySum float64     `json:"monetary_sum"`
}

// RFMScoreSummary is one row of the by-RFM-score rollup
type RFMScoreSummary struct {
	RFMScore  int     `json:"RFM_score"`
	Count     int     `json:"count"`
	ChurnRate float64 `json:"churn_rate"`
}

// TopRiskCustomer is the fixed projection used by the top-risk list
type TopRiskCustomer struct {
	CustomerUniqueID string      `json:"customer_unique_id"`
	Churn            int         `json:"churn"`
	RiskSegment      RiskSegment `json:"risk_segment"`
	RecencyDays      int         `json:"recency_days"`
	Frequency        int         `json:"frequency"`
	Monetary         float64     `json:"monetary"`
	AvgTicket        float64     `json:"avg_ticket"`
	RScore           int         `json:"R_score"`
	FScore           int         `json:"F_score"`
	MScore           int         `json:"M_score"`
	RFMScore         int         `json:"RFM_score"`
}

// Histogram holds equal-width bin labels ("lo-hi") and their counts
type Histogram struct {
	Bins   []string `json:"bins"`
	Counts []int    `json:"counts"`
}
