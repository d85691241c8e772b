package s3_scoring

import (
	"fmt"
	"sort"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

// Quintiles is the number of ordinal score levels per metric
const Quintiles = 5

// neutralScore is assigned when the population is too small to rank (n == 1)
const neutralScore = 3

// StableRank returns rank 1..n for every value, ascending by value.
// Ties are broken by input position so no two entries share a rank.
func StableRank(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]int, len(values))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// QuantileBin maps rank r (1..n) into one of q contiguous equal-count groups.
// Group edges sit at 1 + k*(n-1)/q; the first group includes the minimum rank.
// Integer arithmetic keeps the assignment exact.
func QuantileBin(rank, n, q int) int {
	if n <= 1 {
		return (q + 1) / 2
	}

	num := (rank - 1) * q
	den := n - 1
	bin := (num + den - 1) / den // ceil
	if bin < 1 {
		bin = 1
	}
	if bin > q {
		bin = q
	}
	return bin
}

// QuantileBins ranks values stably and assigns each a group in 1..q
func QuantileBins(values []float64, q int) []int {
	ranks := StableRank(values)
	bins := make([]int, len(values))
	for i, r := range ranks {
		bins[i] = QuantileBin(r, len(values), q)
	}
	return bins
}

// ComputeRFMScores returns a copy of features with R/F/M scores, RFM_score and RFM_segment.
// R is inverted: the most recent quintile scores 5.
// ⭐ SSOT: RFM_score = R + F + M (3..15), RFM_segment "R-F-M"
func ComputeRFMScores(features []contracts.CustomerFeature) []contracts.CustomerFeature {
	scored := make([]contracts.CustomerFeature, len(features))
	copy(scored, features)

	n := len(scored)
	if n == 0 {
		return scored
	}

	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, f := range scored {
		recency[i] = float64(f.RecencyDays)
		frequency[i] = float64(f.Frequency)
		monetary[i] = f.Monetary
	}

	rBins := QuantileBins(recency, Quintiles)
	fBins := QuantileBins(frequency, Quintiles)
	mBins := QuantileBins(monetary, Quintiles)

	for i := range scored {
		r, f, m := Quintiles+1-rBins[i], fBins[i], mBins[i]
		if n == 1 {
			r, f, m = neutralScore, neutralScore, neutralScore
		}

		scored[i].RScore = r
		scored[i].FScore = f
		scored[i].MScore = m
		scored[i].RFMScore = r + f + m
		scored[i].RFMSegment = Segment(r, f, m)
	}

	return scored
}

// Segment formats the canonical dash-joined score key, e.g. "5-3-4"
func Segment(r, f, m int) string {
	return fmt.Sprintf("%d-%d-%d", r, f, m)
}
