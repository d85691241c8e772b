package pipelineconfig

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (실행 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(p *Params) error {
	if p.ChurnThresholdDays <= 0 {
		return ValidationError{"churn_threshold_days", "must be > 0"}
	}

	if len(p.ValidStatus) == 0 {
		return ValidationError{"valid_status", "at least one status required"}
	}
	seen := make(map[string]bool, len(p.ValidStatus))
	for _, s := range p.ValidStatus {
		if strings.TrimSpace(s) == "" {
			return ValidationError{"valid_status", "blank status"}
		}
		// order_status 셀은 trim 후 비교되므로 공백 포함 값은 절대 매칭되지 않음
		if strings.TrimSpace(s) != s {
			return ValidationError{"valid_status", fmt.Sprintf("status %q has surrounding whitespace", s)}
		}
		if seen[s] {
			return ValidationError{"valid_status", fmt.Sprintf("duplicate status %q", s)}
		}
		seen[s] = true
	}

	if p.HistogramBins <= 0 {
		return ValidationError{"histogram_bins", "must be > 0"}
	}
	if p.TopRiskSize <= 0 {
		return ValidationError{"top_risk_size", "must be > 0"}
	}

	return nil
}
