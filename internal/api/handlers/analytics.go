package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/churnlens/backend/internal/cache"
	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipelineconfig"
	"github.com/wonny/churnlens/backend/internal/summary"
	"github.com/wonny/churnlens/backend/pkg/logger"
	"github.com/wonny/churnlens/backend/pkg/redis"
)

// MaxHistogramBins bounds ?bins= on the recency histogram
const MaxHistogramBins = 500

// AnalyticsHandler serves summary views of the current feature snapshot
// ⭐ SSOT: 분석 API 핸들러는 여기서만
type AnalyticsHandler struct {
	features *cache.FeatureCache
	shared   *redis.Cache
	ttl      time.Duration
	params   pipelineconfig.Params
	logger   *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
// shared may be backed by a disabled Redis client, in which case views are computed per request.
func NewAnalyticsHandler(features *cache.FeatureCache, shared *redis.Cache, ttl time.Duration, params pipelineconfig.Params, log *logger.Logger) *AnalyticsHandler {
	if shared == nil {
		shared = redis.NewCache(redis.Disabled(), "churnlens")
	}
	return &AnalyticsHandler{
		features: features,
		shared:   shared,
		ttl:      ttl,
		params:   params,
		logger:   log,
	}
}

// RefreshResponse describes a freshly computed snapshot
type RefreshResponse struct {
	RunID      string                     `json:"run_id"`
	AsOfDate   string                     `json:"as_of_date"`
	ParamsHash string                     `json:"params_hash"`
	Customers  int                        `json:"customers"`
	ComputedAt time.Time                  `json:"computed_at"`
	Stages     []contracts.PipelineResult `json:"stages"`
}

// snapshot returns the current feature snapshot, writing the error response on failure
func (h *AnalyticsHandler) snapshot(w http.ResponseWriter, r *http.Request) (*cache.Snapshot, bool) {
	snap, err := h.features.GetOrCompute(r.Context(), false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get feature snapshot")
		respondError(w, statusForError(err), err.Error())
		return nil, false
	}
	return snap, true
}

// view serves one summary view through the shared cache, keyed by run
func (h *AnalyticsHandler) view(ctx context.Context, key string, dest interface{}, compute func() (interface{}, error)) error {
	return h.shared.GetOrSet(ctx, key, dest, h.ttl, compute)
}

// GetSummary returns headline KPIs
// GET /api/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var kpis contracts.KPIs
	err := h.view(r.Context(), redis.SummaryKey(snap.RunID, "kpis"), &kpis, func() (interface{}, error) {
		return snap.Report.KPIs, nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	respondJSON(w, http.StatusOK, kpis)
}

// GetChurnByRFM returns churn rate per RFM score
// GET /api/churn_by_rfm
func (h *AnalyticsHandler) GetChurnByRFM(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var rows []contracts.RFMScoreSummary
	err := h.view(r.Context(), redis.SummaryKey(snap.RunID, "churn_by_rfm"), &rows, func() (interface{}, error) {
		return snap.Report.ByRFMScore, nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build churn by RFM")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetRiskSummary returns the by-risk-segment rollup
// GET /api/risk_summary
func (h *AnalyticsHandler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var rows []contracts.RiskSegmentSummary
	err := h.view(r.Context(), redis.SummaryKey(snap.RunID, "risk_summary"), &rows, func() (interface{}, error) {
		return snap.Report.ByRiskSegment, nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build risk summary")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetRecencyHistogram returns the recency distribution
// GET /api/recency_hist?bins=20
func (h *AnalyticsHandler) GetRecencyHistogram(w http.ResponseWriter, r *http.Request) {
	bins, err := queryPositiveInt(r, "bins", h.params.HistogramBins)
	if err != nil || bins > MaxHistogramBins {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("bins must be an integer in [1, %d]", MaxHistogramBins))
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var hist contracts.Histogram
	key := redis.SummaryKey(snap.RunID, "recency_hist", fmt.Sprintf("bins=%d", bins))
	err = h.view(r.Context(), key, &hist, func() (interface{}, error) {
		if bins == h.params.HistogramBins {
			return snap.Report.Recency, nil
		}
		return summary.RecencyHistogram(snap.Table.Rows, bins)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build recency histogram")
		return
	}

	respondJSON(w, http.StatusOK, hist)
}

// GetTopRisk returns the highest-risk customers
// GET /api/top_risk?n=50
func (h *AnalyticsHandler) GetTopRisk(w http.ResponseWriter, r *http.Request) {
	n, err := queryPositiveInt(r, "n", h.params.TopRiskSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var rows []contracts.TopRiskCustomer
	key := redis.SummaryKey(snap.RunID, "top_risk", fmt.Sprintf("n=%d", n))
	err = h.view(r.Context(), key, &rows, func() (interface{}, error) {
		if n == h.params.TopRiskSize {
			return snap.Report.TopRisk, nil
		}
		return summary.TopRisk(snap.Table.Rows, n), nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build top risk list")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// Refresh invalidates the feature cache and recomputes it
// POST /api/refresh
func (h *AnalyticsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.features.GetOrCompute(r.Context(), true)
	if err != nil {
		h.logger.WithError(err).Error("Refresh failed")
		respondError(w, statusForError(err), err.Error())
		return
	}

	h.logger.WithField("run_id", snap.RunID).Info("Feature snapshot refreshed")

	respondJSON(w, http.StatusOK, RefreshResponse{
		RunID:      snap.RunID,
		AsOfDate:   snap.AsOfDate.Format(summary.AsOfLayout),
		ParamsHash: snap.ParamsHash,
		Customers:  snap.Table.Len(),
		ComputedAt: snap.ComputedAt,
		Stages:     snap.Stages,
	})
}
