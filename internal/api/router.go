package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/churnlens/backend/internal/api/handlers"
	"github.com/wonny/churnlens/backend/pkg/logger"
	"github.com/wonny/churnlens/backend/pkg/redis"
)

// Handlers bundles everything the router serves
type Handlers struct {
	Analytics *handlers.AnalyticsHandler
	Export    *handlers.ExportHandler
	Limiter   Limiter // nil disables rate limiting
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Analytics
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", h.Analytics.GetSummary).Methods("GET")
	api.HandleFunc("/churn_by_rfm", h.Analytics.GetChurnByRFM).Methods("GET")
	api.HandleFunc("/recency_hist", h.Analytics.GetRecencyHistogram).Methods("GET")
	api.HandleFunc("/risk_summary", h.Analytics.GetRiskSummary).Methods("GET")
	api.HandleFunc("/top_risk", h.Analytics.GetTopRisk).Methods("GET")
	api.Handle("/refresh",
		rateLimitMiddleware(h.Limiter, redis.RefreshRateLimit, log)(http.HandlerFunc(h.Analytics.Refresh)),
	).Methods("POST")

	// CSV export (전체 테이블 직렬화 → 레이트 리밋)
	exp := r.PathPrefix("/export").Subrouter()
	exp.Use(rateLimitMiddleware(h.Limiter, redis.ExportRateLimit, log))
	exp.HandleFunc("/customers.csv", h.Export.Customers).Methods("GET")
	exp.HandleFunc("/top_risk.csv", h.Export.TopRisk).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "churnlens-api",
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
