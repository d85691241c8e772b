package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipeline"
	"github.com/wonny/churnlens/backend/internal/s4_risk"
	"github.com/wonny/churnlens/backend/internal/summary"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// Snapshot is one published pipeline result. Callers must treat it as read-only.
type Snapshot struct {
	RunID      string                     `json:"run_id"`
	AsOfDate   time.Time                  `json:"as_of_date"`
	ParamsHash string                     `json:"params_hash"`
	ComputedAt time.Time                  `json:"computed_at"`
	Generation uint64                     `json:"generation"`
	Thresholds s4_risk.Thresholds         `json:"thresholds"`
	Stages     []contracts.PipelineResult `json:"stages"`
	Table      *contracts.FeatureTable    `json:"-"`
	Report     *summary.Report            `json:"-"`
}

// ComputeFunc loads raw tables and runs the pipeline
type ComputeFunc func(ctx context.Context) (*pipeline.RunResult, error)

// PublishFunc is notified after a snapshot is published (e.g. to drop shared caches)
type PublishFunc func(ctx context.Context, snap *Snapshot)

// FeatureCache holds at most one feature snapshot.
// Concurrent misses share a single computation; Invalidate makes any
// computation already in flight unable to publish its result.
// ⭐ SSOT: 피처 테이블 캐싱은 이 구조체에서만
type FeatureCache struct {
	compute ComputeFunc
	enabled bool
	logger  *logger.Logger

	group singleflight.Group

	mu         sync.RWMutex
	current    *Snapshot
	generation uint64

	onPublish []PublishFunc
}

// NewFeatureCache creates a cache around compute.
// With enabled=false every call recomputes and nothing is retained.
func NewFeatureCache(compute ComputeFunc, enabled bool, log *logger.Logger) *FeatureCache {
	if log == nil {
		log = logger.Nop()
	}
	return &FeatureCache{
		compute: compute,
		enabled: enabled,
		logger:  log,
	}
}

// OnPublish registers a hook run after each publish
func (c *FeatureCache) OnPublish(fn PublishFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPublish = append(c.onPublish, fn)
}

// Enabled reports whether snapshots are retained
func (c *FeatureCache) Enabled() bool {
	return c.enabled
}

// Peek returns the current snapshot without computing, or nil
func (c *FeatureCache) Peek() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Invalidate drops the current snapshot. A computation in flight keeps
// serving its own waiters but is not published.
func (c *FeatureCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.WithField("generation", gen).Info("Feature cache invalidated")
}

// GetOrCompute returns the cached snapshot, computing it on a miss.
// force=true invalidates first, so the result is always freshly computed.
func (c *FeatureCache) GetOrCompute(ctx context.Context, force bool) (*Snapshot, error) {
	if force {
		c.Invalidate()
	}

	c.mu.RLock()
	snap, gen := c.current, c.generation
	c.mu.RUnlock()

	if c.enabled && snap != nil {
		return snap, nil
	}

	// 같은 세대의 동시 요청은 하나의 계산을 공유
	key := fmt.Sprintf("features:%d", gen)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.run(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *FeatureCache) run(ctx context.Context, gen uint64) (*Snapshot, error) {
	result, err := c.compute(ctx)
	if err != nil {
		c.logger.WithError(err).Error("Feature computation failed")
		return nil, err
	}

	snap := &Snapshot{
		RunID:      result.RunID,
		AsOfDate:   result.Table.AsOfDate,
		ParamsHash: result.ParamsHash,
		ComputedAt: result.ComputedAt,
		Generation: gen,
		Thresholds: result.Thresholds,
		Stages:     result.Stages,
		Table:      result.Table,
		Report:     result.Report,
	}

	if !c.enabled {
		return snap, nil
	}

	c.mu.Lock()
	published := c.generation == gen
	if published {
		c.current = snap
	}
	hooks := append([]PublishFunc(nil), c.onPublish...)
	c.mu.Unlock()

	if !published {
		c.logger.WithField("run_id", snap.RunID).Warn("Discarding result computed before invalidation")
		return snap, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"run_id":     snap.RunID,
		"customers":  snap.Table.Len(),
		"generation": gen,
	}).Info("Feature snapshot published")

	for _, fn := range hooks {
		fn(ctx, snap)
	}
	return snap, nil
}
