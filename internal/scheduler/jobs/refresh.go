package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/churnlens/backend/internal/cache"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// DefaultRefreshSchedule rebuilds the snapshot daily at 03:00 (with seconds)
const DefaultRefreshSchedule = "0 0 3 * * *"

// Refresher rebuilds the feature snapshot
type Refresher interface {
	GetOrCompute(ctx context.Context, force bool) (*cache.Snapshot, error)
}

// RefreshJob recomputes the feature snapshot on a schedule
// ⭐ SSOT: 피처 스냅샷 재계산 스케줄은 이 Job에서만
type RefreshJob struct {
	features Refresher
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job. An empty schedule uses DefaultRefreshSchedule.
func NewRefreshJob(features Refresher, schedule string, log *logger.Logger) *RefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshJob{
		features: features,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "feature_refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run forces a recompute and publishes the new snapshot
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled feature refresh")

	snap, err := j.features.GetOrCompute(ctx, true)
	if err != nil {
		return fmt.Errorf("refresh features: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    snap.RunID,
		"customers": snap.Table.Len(),
	}).Info("Scheduled feature refresh completed")

	return nil
}
