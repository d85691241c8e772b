package handlers

import (
	"bytes"
	"net/http"

	"github.com/wonny/churnlens/backend/internal/cache"
	"github.com/wonny/churnlens/backend/internal/export"
	"github.com/wonny/churnlens/backend/internal/summary"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// ExportHandler streams CSV downloads of the current snapshot
type ExportHandler struct {
	features    *cache.FeatureCache
	topRiskSize int
	logger      *logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(features *cache.FeatureCache, topRiskSize int, log *logger.Logger) *ExportHandler {
	return &ExportHandler{features: features, topRiskSize: topRiskSize, logger: log}
}

// Customers exports the full feature table
// GET /export/customers.csv
func (h *ExportHandler) Customers(w http.ResponseWriter, r *http.Request) {
	snap, err := h.features.GetOrCompute(r.Context(), false)
	if err != nil {
		h.logger.WithError(err).Error("Export failed")
		respondError(w, statusForError(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteFeatures(&buf, snap.Table.Rows); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export customers")
		return
	}
	writeCSV(w, "customers.csv", buf.Bytes())
}

// TopRisk exports the top-risk list
// GET /export/top_risk.csv
func (h *ExportHandler) TopRisk(w http.ResponseWriter, r *http.Request) {
	snap, err := h.features.GetOrCompute(r.Context(), false)
	if err != nil {
		h.logger.WithError(err).Error("Export failed")
		respondError(w, statusForError(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTopRisk(&buf, summary.TopRisk(snap.Table.Rows, h.topRiskSize)); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export top risk")
		return
	}
	writeCSV(w, "top_risk.csv", buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
