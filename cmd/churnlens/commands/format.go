package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipeline"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// RunMetadata holds run header fields
type RunMetadata struct {
	Title      string
	RunID      string
	Source     string
	AsOfDate   string
	ParamsHash string
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(w io.Writer, meta RunMetadata) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", meta.Title)
	fmt.Fprintln(w, singleRule)
	fmt.Fprintf(w, "  Run ID    : %s\n", meta.RunID)
	fmt.Fprintf(w, "  Source    : %s\n", meta.Source)
	fmt.Fprintf(w, "  As of     : %s\n", meta.AsOfDate)

	// Optional params hash
	if meta.ParamsHash != "" {
		fmt.Fprintf(w, "  Params    : %s\n", shortHash(meta.ParamsHash))
	}

	fmt.Fprintln(w, singleRule)
}

// PrintStages prints one line per executed stage
func PrintStages(w io.Writer, stages []contracts.PipelineResult) {
	widths := []int{4, 34, 8, 8, 8}
	PrintTableHeader(w, []string{"", "Stage", "In", "Out", "ms"}, widths)
	for _, s := range stages {
		PrintTableRow(w, []string{
			s.Stage.ShortName(),
			s.Stage.Description(),
			strconv.Itoa(s.InputCount),
			strconv.Itoa(s.OutputCount),
			strconv.FormatInt(s.Duration, 10),
		}, widths)
	}
}

// PrintKPIs prints the headline KPIs
func PrintKPIs(w io.Writer, kpis contracts.KPIs) {
	PrintKeyValue(w, "Customers", strconv.Itoa(kpis.TotalCustomers), 10)
	PrintKeyValue(w, "Churned", strconv.Itoa(kpis.ChurnedCustomers), 10)
	PrintKeyValue(w, "Active", strconv.Itoa(kpis.ActiveCustomers), 10)
	PrintKeyValue(w, "Churn rate", fmt.Sprintf("%.2f%%", kpis.ChurnRate), 10)
	PrintKeyValue(w, "Revenue", fmt.Sprintf("%.2f", kpis.TotalRevenue), 10)
}

// PrintRiskSummary prints the by-segment rollup in cascade order
func PrintRiskSummary(w io.Writer, rows []contracts.RiskSegmentSummary) {
	widths := []int{24, 8, 10, 14}
	PrintTableHeader(w, []string{"Segment", "Count", "Churn %", "Monetary"}, widths)
	for _, r := range rows {
		PrintTableRow(w, []string{
			string(r.RiskSegment),
			strconv.Itoa(r.Count),
			fmt.Sprintf("%.2f", r.ChurnRate),
			fmt.Sprintf("%.2f", r.MonetarySum),
		}, widths)
	}
}

// PrintRunCompletion prints the run completion line
func PrintRunCompletion(w io.Writer, result *pipeline.RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✅ %s completed in %.2fs (%d stages)\n",
		result.RunID, result.Duration.Seconds(), len(result.CompletedStages))
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleRule)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
