package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/churnlens/backend/internal/cache"
	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/loader"
	"github.com/wonny/churnlens/backend/internal/pipeline"
	"github.com/wonny/churnlens/backend/internal/pipelineconfig"
	"github.com/wonny/churnlens/backend/pkg/config"
	"github.com/wonny/churnlens/backend/pkg/database"
	"github.com/wonny/churnlens/backend/pkg/httputil"
	"github.com/wonny/churnlens/backend/pkg/logger"
	"github.com/wonny/churnlens/backend/pkg/redis"
)

// summaryCachePrefix namespaces every shared summary key in Redis
const summaryCachePrefix = "churnlens"

// app wires config → logger → loader → pipeline for every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	params pipelineconfig.Params
	source contracts.Loader
	orch   *pipeline.Orchestrator
	redis  *redis.Client
	db     *database.DB // nil unless source=postgres

	closers []func()
}

// bootstrap loads configuration and builds the shared dependencies
func bootstrap(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg)

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log, orch: pipeline.NewOrchestrator(log)}

	// 3. Analysis parameters (YAML > env)
	a.params, err = pipelineconfig.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve analysis params: %w", err)
	}

	// 4. Redis (optional, shared summaries + rate limits)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without shared cache")
		a.redis = redis.Disabled()
	}
	a.closers = append(a.closers, func() { _ = a.redis.Close() })

	// 5. Raw table source
	if err := a.buildSource(ctx); err != nil {
		a.close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"source":          a.source.Name(),
		"churn_threshold": a.params.ChurnThresholdDays,
		"valid_status":    strings.Join(a.params.ValidStatus, ","),
		"redis":           a.redis.Enabled(),
	}).Info("Application initialized")

	return a, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if analysisConfig != "" {
		cfg.Analysis.ConfigPath = analysisConfig
	}
	if dataSource != "" {
		cfg.Data.Source = strings.ToLower(dataSource)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

func (a *app) buildSource(ctx context.Context) error {
	switch a.cfg.Data.Source {
	case config.SourceCSV:
		a.source = loader.NewCSVLoader(a.cfg.Data.CustomersPath, a.cfg.Data.OrdersPath, a.cfg.Data.PaymentsPath, a.log)

	case config.SourcePostgres:
		if a.cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		a.source = loader.NewPostgresLoader(db, loader.DefaultPostgresTables, a.log)

	case config.SourceHTTP:
		if a.cfg.Data.BaseURL == "" {
			return fmt.Errorf("DATA_BASE_URL is required for the http source")
		}
		limiter := redis.NewRateLimiter(a.redis, summaryCachePrefix)
		client := httputil.New(a.log).WithRateLimiter(limiter, redis.SourceRateLimit)
		a.source = loader.NewHTTPLoader(client, a.cfg.Data.BaseURL, a.log)

	default:
		return fmt.Errorf("unknown data source %q (csv|postgres|http)", a.cfg.Data.Source)
	}
	return nil
}

// compute loads the raw tables and runs S0 → S5 once
func (a *app) compute(ctx context.Context) (*pipeline.RunResult, error) {
	ds, err := a.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s tables: %w", a.source.Name(), err)
	}
	return a.orch.Run(ctx, ds, a.params)
}

// summaries returns the shared (Redis) summary cache; no-op when Redis is off
func (a *app) summaries() *redis.Cache {
	return redis.NewCache(a.redis, summaryCachePrefix)
}

// newFeatureCache builds the snapshot cache. Publishing a snapshot drops
// every shared summary so no reader mixes two runs.
func (a *app) newFeatureCache() *cache.FeatureCache {
	features := cache.NewFeatureCache(a.compute, a.cfg.Cache.Enabled, a.log)

	shared := a.summaries()
	features.OnPublish(func(ctx context.Context, snap *cache.Snapshot) {
		removed, err := shared.DeleteByPattern(ctx, redis.SummaryPattern())
		if err != nil {
			a.log.WithError(err).Warn("Failed to drop shared summaries")
			return
		}
		if removed > 0 {
			a.log.WithFields(map[string]interface{}{
				"run_id":  snap.RunID,
				"removed": removed,
			}).Debug("Dropped stale shared summaries")
		}
	})
	return features
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
