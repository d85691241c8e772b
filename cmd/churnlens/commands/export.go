package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/churnlens/backend/internal/export"
	"github.com/wonny/churnlens/backend/internal/summary"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "피처 테이블 CSV 내보내기",
	Long: `파이프라인을 실행하고 결과를 CSV로 저장합니다.

생성 파일:
  customers.csv  - 고객별 전체 피처 테이블
  top_risk.csv   - 이탈 위험 상위 고객

Example:
  go run ./cmd/churnlens export --out ./out --top 100`,
	RunE: runExport,
}

var (
	exportDir string
	exportTop int
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "out", "out", "output directory")
	exportCmd.Flags().IntVar(&exportTop, "top", 0, "top risk rows (default TOP_RISK_SIZE)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.compute(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	top := exportTop
	if top <= 0 {
		top = a.params.TopRiskSize
	}

	customersPath := filepath.Join(exportDir, "customers.csv")
	if err := writeFile(customersPath, func(f *os.File) error {
		return export.WriteFeatures(f, result.Table.Rows)
	}); err != nil {
		return err
	}

	topRiskPath := filepath.Join(exportDir, "top_risk.csv")
	if err := writeFile(topRiskPath, func(f *os.File) error {
		return export.WriteTopRisk(f, summary.TopRisk(result.Table.Rows, top))
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("%s (%d rows)", customersPath, result.Table.Len()))
	PrintSuccess(out, fmt.Sprintf("%s (top %d)", topRiskPath, top))
	return nil
}

// writeFile creates path and closes it, keeping the first error
func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
