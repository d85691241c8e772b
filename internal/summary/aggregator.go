package summary

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// DefaultTopRiskSize is the number of customers in the top-risk list when unset
const DefaultTopRiskSize = 50

// DefaultHistogramBins is the recency histogram resolution when unset
const DefaultHistogramBins = 20

// AsOfLayout formats as_of_date in KPIs
const AsOfLayout = "2006-01-02"

// KPIs computes the headline numbers of a feature table
func KPIs(table *contracts.FeatureTable) contracts.KPIs {
	kpis := contracts.KPIs{
		AsOfDate:       table.AsOfDate.Format(AsOfLayout),
		TotalCustomers: table.Len(),
	}

	revenue := 0.0
	for _, f := range table.Rows {
		kpis.ChurnedCustomers += f.Churn
		revenue += f.Monetary
	}
	kpis.ActiveCustomers = kpis.TotalCustomers - kpis.ChurnedCustomers
	kpis.TotalRevenue = round2(revenue)
	if kpis.TotalCustomers > 0 {
		kpis.ChurnRate = churnRate(kpis.ChurnedCustomers, kpis.TotalCustomers)
	}

	return kpis
}

// ByRiskSegment groups customers by risk_segment in cascade order.
// Segments with no customers are omitted.
func ByRiskSegment(rows []contracts.CustomerFeature) []contracts.RiskSegmentSummary {
	type acc struct {
		count, churned int
		monetary       float64
	}
	groups := make(map[contracts.RiskSegment]*acc)
	for _, f := range rows {
		g, ok := groups[f.RiskSegment]
		if !ok {
			g = &acc{}
			groups[f.RiskSegment] = g
		}
		g.count++
		g.churned += f.Churn
		g.monetary += f.Monetary
	}

	result := make([]contracts.RiskSegmentSummary, 0, len(groups))
	for _, seg := range contracts.AllRiskSegments() {
		g, ok := groups[seg]
		if !ok {
			continue
		}
		result = append(result, contracts.RiskSegmentSummary{
			RiskSegment: seg,
			Count:       g.count,
			ChurnRate:   churnRate(g.churned, g.count),
			MonetarySum: round2(g.monetary),
		})
	}
	return result
}

// ByRFMScore groups customers by RFM_score, ascending
func ByRFMScore(rows []contracts.CustomerFeature) []contracts.RFMScoreSummary {
	counts := make(map[int]int)
	churned := make(map[int]int)
	for _, f := range rows {
		counts[f.RFMScore]++
		churned[f.RFMScore] += f.Churn
	}

	scores := make([]int, 0, len(counts))
	for s := range counts {
		scores = append(scores, s)
	}
	sort.Ints(scores)

	result := make([]contracts.RFMScoreSummary, 0, len(scores))
	for _, s := range scores {
		result = append(result, contracts.RFMScoreSummary{
			RFMScore:  s,
			Count:     counts[s],
			ChurnRate: churnRate(churned[s], counts[s]),
		})
	}
	return result
}

// TopRisk returns the n highest-risk customers ordered by churn, recency_days
// and monetary, all descending. Ties keep feature table order.
// n <= 0 yields an empty list; callers pick DefaultTopRiskSize themselves.
func TopRisk(rows []contracts.CustomerFeature, n int) []contracts.TopRiskCustomer {
	if n <= 0 {
		return []contracts.TopRiskCustomer{}
	}

	sorted := make([]contracts.CustomerFeature, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Churn != b.Churn {
			return a.Churn > b.Churn
		}
		if a.RecencyDays != b.RecencyDays {
			return a.RecencyDays > b.RecencyDays
		}
		return a.Monetary > b.Monetary
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	result := make([]contracts.TopRiskCustomer, 0, len(sorted))
	for _, f := range sorted {
		result = append(result, contracts.TopRiskCustomer{
			CustomerUniqueID: f.CustomerUniqueID,
			Churn:            f.Churn,
			RiskSegment:      f.RiskSegment,
			RecencyDays:      f.RecencyDays,
			Frequency:        f.Frequency,
			Monetary:         f.Monetary,
			AvgTicket:        f.AvgTicket,
			RScore:           f.RScore,
			FScore:           f.FScore,
			MScore:           f.MScore,
			RFMScore:         f.RFMScore,
		})
	}
	return result
}

// RecencyHistogram splits recency_days into equal-width, right-inclusive bins
// spanning [min, max]. The lowest edge is nudged down by 0.1% of the range
// so the minimum falls inside the first bin. Empty bins are kept, so the
// result always has exactly bins entries.
// When every value is equal the range is widened by 0.1% of the value
// (0.001 at zero) on both sides.
func RecencyHistogram(rows []contracts.CustomerFeature, bins int) (contracts.Histogram, error) {
	if bins <= 0 {
		return contracts.Histogram{}, fmt.Errorf("histogram bins must be > 0, got %d", bins)
	}
	if len(rows) == 0 {
		return contracts.Histogram{Bins: []string{}, Counts: []int{}}, nil
	}

	lo, hi := float64(rows[0].RecencyDays), float64(rows[0].RecencyDays)
	for _, f := range rows[1:] {
		v := float64(f.RecencyDays)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	degenerate := lo == hi
	if degenerate {
		adj := 0.001
		if lo != 0 {
			adj = math.Abs(lo) * 0.001
		}
		lo, hi = lo-adj, hi+adj
	}

	span := hi - lo
	width := span / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	if !degenerate {
		edges[0] = lo - span*0.001
	}

	counts := make([]int, bins)
	upper := edges[1:]
	for _, f := range rows {
		idx := sort.SearchFloat64s(upper, float64(f.RecencyDays)) // first edge >= v
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	labels := make([]string, bins)
	for i := 0; i < bins; i++ {
		labels[i] = binLabel(edges[i], edges[i+1])
	}

	return contracts.Histogram{Bins: labels, Counts: counts}, nil
}

func binLabel(left, right float64) string {
	return fmt.Sprintf("%d-%d", int(left), int(right))
}

// churnRate is the churned share as a percentage rounded to 2 decimals
func churnRate(churned, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(churned) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Report bundles every summary view of one feature table
type Report struct {
	KPIs          contracts.KPIs                 `json:"kpis"`
	ByRiskSegment []contracts.RiskSegmentSummary `json:"risk_summary"`
	ByRFMScore    []contracts.RFMScoreSummary    `json:"churn_by_rfm"`
	TopRisk       []contracts.TopRiskCustomer    `json:"top_risk"`
	Recency       contracts.Histogram            `json:"recency_hist"`
}

// Build computes all summary views with the given list size and bin count
func Build(table *contracts.FeatureTable, topN, bins int) (*Report, error) {
	hist, err := RecencyHistogram(table.Rows, bins)
	if err != nil {
		return nil, err
	}

	return &Report{
		KPIs:          KPIs(table),
		ByRiskSegment: ByRiskSegment(table.Rows),
		ByRFMScore:    ByRFMScore(table.Rows),
		TopRisk:       TopRisk(table.Rows, topN),
		Recency:       hist,
	}, nil
}
