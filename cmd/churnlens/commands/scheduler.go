package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/churnlens/backend/internal/cache"
	"github.com/wonny/churnlens/backend/internal/export"
	"github.com/wonny/churnlens/backend/internal/scheduler"
	"github.com/wonny/churnlens/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `피처 스냅샷 재계산 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작 (REFRESH_SCHEDULE)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/churnlens scheduler start --export-dir ./out
  go run ./cmd/churnlens scheduler list
  go run ./cmd/churnlens scheduler run feature_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- feature_refresh: REFRESH_SCHEDULE (기본 매일 03:00)

--export-dir 지정 시 새 스냅샷마다 customers.csv 를 갱신합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerExportDir string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().StringVar(&schedulerExportDir, "export-dir", "", "rewrite customers.csv here after each refresh")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== ChurnLens Scheduler ===")

	a, sched, features, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	if schedulerExportDir != "" {
		if err := os.MkdirAll(schedulerExportDir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
		path := filepath.Join(schedulerExportDir, "customers.csv")
		features.OnPublish(func(_ context.Context, snap *cache.Snapshot) {
			err := writeFile(path, func(f *os.File) error {
				return export.WriteFeatures(f, snap.Table.Rows)
			})
			if err != nil {
				a.log.WithError(err).Error("Scheduled export failed")
				return
			}
			a.log.WithField("path", path).Info("Scheduled export written")
		})
	}

	sched.Start()

	PrintSuccess(out, "Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Fprintf(out, "  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, _, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Registered jobs:")
	for jobName, stat := range sched.GetJobStats() {
		fmt.Fprintf(out, "  - %s [%s]\n", jobName, stat.Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	a, sched, _, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(out, fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(out, fmt.Sprintf("%s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, *cache.FeatureCache, error) {
	a, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	features := a.newFeatureCache()

	sched := scheduler.New(a.cfg.Scheduler, a.log)
	if err := sched.AddJob(jobs.NewRefreshJob(features, a.cfg.Scheduler.RefreshSchedule, a.log)); err != nil {
		a.close()
		return nil, nil, nil, err
	}

	return a, sched, features, nil
}
