package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/churnlens/backend/internal/api"
	"github.com/wonny/churnlens/backend/internal/api/handlers"
	"github.com/wonny/churnlens/backend/internal/scheduler"
	"github.com/wonny/churnlens/backend/internal/scheduler/jobs"
	"github.com/wonny/churnlens/backend/pkg/redis"
)

// shutdownGrace bounds graceful shutdown of the HTTP server
const shutdownGrace = 30 * time.Second

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

첫 요청 시 파이프라인을 실행하고 결과 스냅샷을 캐시합니다.
POST /api/refresh 또는 스케줄러가 스냅샷을 재계산합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /api/summary            - KPI
  GET  /api/churn_by_rfm       - RFM 점수별 이탈률
  GET  /api/recency_hist       - Recency 히스토그램 (?bins=)
  GET  /api/risk_summary       - 리스크 세그먼트 요약
  GET  /api/top_risk           - 이탈 위험 상위 고객 (?n=)
  POST /api/refresh            - 스냅샷 재계산
  GET  /export/customers.csv   - 피처 테이블 CSV
  GET  /export/top_risk.csv    - 상위 위험 고객 CSV

Example:
  go run ./cmd/churnlens api
  go run ./cmd/churnlens api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
	warmup        bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "run the refresh job in-process")
	apiCmd.Flags().BoolVar(&warmup, "warmup", true, "compute the first snapshot before serving")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== ChurnLens API Server ===")

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	features := a.newFeatureCache()

	if warmup {
		if _, err := features.GetOrCompute(ctx, false); err != nil {
			// 서버는 계속 기동, 첫 요청에서 재시도
			a.log.WithError(err).Warn("Warmup failed")
		}
	}

	if withScheduler {
		sched := scheduler.New(a.cfg.Scheduler, a.log)
		if err := sched.AddJob(jobs.NewRefreshJob(features, a.cfg.Scheduler.RefreshSchedule, a.log)); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	router := api.NewRouter(api.Handlers{
		Analytics: handlers.NewAnalyticsHandler(features, a.summaries(), a.cfg.Cache.SummaryTTL, a.params, a.log),
		Export:    handlers.NewExportHandler(features, a.params.TopRiskSize, a.log),
		Limiter:   api.NewLimiter(redis.NewRateLimiter(a.redis, summaryCachePrefix)),
	}, a.log)

	server := api.New(a.cfg, a.log, router)

	fmt.Fprintf(out, "\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := server.Run(ctx, shutdownGrace); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
