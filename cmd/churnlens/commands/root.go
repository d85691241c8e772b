package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisConfig string
	dataSource     string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "churnlens",
	Short: "ChurnLens - 고객 이탈 / RFM 분석 파이프라인",
	Long: `ChurnLens Unified CLI

주문/결제/고객 원천 테이블에서 고객별 RFM 피처, 이탈 라벨,
리스크 세그먼트와 요약 지표를 계산합니다.
S0(정제) → S1(조인) → S2(피처) → S3(스코어) → S4(리스크) → S5(요약)

Usage:
  go run ./cmd/churnlens [command]

Examples:
  go run ./cmd/churnlens run
  go run ./cmd/churnlens export --out ./out
  go run ./cmd/churnlens api --with-scheduler
  go run ./cmd/churnlens check-source --source postgres`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisConfig, "analysis-config", "", "analysis parameter YAML (overrides ANALYSIS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dataSource, "source", "", "raw table source: csv|postgres|http (overrides DATA_SOURCE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
