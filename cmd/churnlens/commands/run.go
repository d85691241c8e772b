package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/summary"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "파이프라인 1회 실행",
	Long: `원천 테이블을 로드하고 S0 → S5 파이프라인을 한 번 실행합니다.

출력:
- 스테이지별 입력/출력 건수와 소요 시간
- KPI (고객 수, 이탈률, 매출)
- 리스크 세그먼트 요약

Example:
  go run ./cmd/churnlens run
  go run ./cmd/churnlens run --json > report.json`,
	RunE: runPipeline,
}

var (
	runJSON bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full report as JSON")
}

func runPipeline(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID      string                     `json:"run_id"`
			ParamsHash string                     `json:"params_hash"`
			Stages     []contracts.PipelineResult `json:"stages"`
			Report     *summary.Report            `json:"report"`
		}{result.RunID, result.ParamsHash, result.Stages, result.Report})
	}

	PrintRunHeader(out, RunMetadata{
		Title:      "ChurnLens Pipeline Run",
		RunID:      result.RunID,
		Source:     a.source.Name(),
		AsOfDate:   result.Report.KPIs.AsOfDate,
		ParamsHash: result.ParamsHash,
	})
	PrintStages(out, result.Stages)
	fmt.Fprintln(out)
	PrintKPIs(out, result.Report.KPIs)
	fmt.Fprintln(out)
	PrintRiskSummary(out, result.Report.ByRiskSegment)
	PrintRunCompletion(out, result)

	if result.Table.Len() == 1 {
		PrintWarning(os.Stderr, "single customer: every RFM dimension is the neutral score 3")
	}
	return nil
}
