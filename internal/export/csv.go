package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// TimestampLayout is how purchase timestamps are written
const TimestampLayout = "2006-01-02 15:04:05"

// FeatureColumns is the header of the full feature table export
var FeatureColumns = []string{
	"customer_unique_id", "frequency", "monetary", "first_purchase", "last_purchase",
	"recency_days", "tenure_days", "avg_ticket", "churn",
	"R_score", "F_score", "M_score", "RFM_score", "RFM_segment", "risk_segment",
}

// TopRiskColumns is the header of the top-risk export
var TopRiskColumns = []string{
	"customer_unique_id", "churn", "risk_segment", "recency_days", "frequency",
	"monetary", "avg_ticket", "R_score", "F_score", "M_score", "RFM_score",
}

// WriteFeatures writes the feature table as CSV with a header row.
// Output is byte-identical for identical tables.
func WriteFeatures(w io.Writer, rows []contracts.CustomerFeature) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureColumns); err != nil {
		return err
	}

	for _, f := range rows {
		record := []string{
			f.CustomerUniqueID,
			itoa(f.Frequency),
			ftoa(f.Monetary),
			formatTime(f.FirstPurchase),
			formatTime(f.LastPurchase),
			itoa(f.RecencyDays),
			itoa(f.TenureDays),
			ftoa(f.AvgTicket),
			itoa(f.Churn),
			itoa(f.RScore),
			itoa(f.FScore),
			itoa(f.MScore),
			itoa(f.RFMScore),
			f.RFMSegment,
			string(f.RiskSegment),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTopRisk writes the top-risk projection as CSV with a header row
func WriteTopRisk(w io.Writer, rows []contracts.TopRiskCustomer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TopRiskColumns); err != nil {
		return err
	}

	for _, c := range rows {
		record := []string{
			c.CustomerUniqueID,
			itoa(c.Churn),
			string(c.RiskSegment),
			itoa(c.RecencyDays),
			itoa(c.Frequency),
			ftoa(c.Monetary),
			ftoa(c.AvgTicket),
			itoa(c.RScore),
			itoa(c.FScore),
			itoa(c.MScore),
			itoa(c.RFMScore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// ftoa uses the shortest representation that round-trips
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
