package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Clean  Join  Features  Scoring  Risk  Summary

// Stage represents a pipeline stage
type Stage string

const (
	// StageClean S0: 원천 테이블 검증 및 정제
	// 책임: 스키마 검증, 주문/결제 정제, 결제 합산
	// 위치: internal/s0_data/
	StageClean Stage = "S0_CLEAN"

	// StageJoin S1: 주문 + 고객 매핑 + 결제 조인
	// 위치: internal/s1_join/
	StageJoin Stage = "S1_JOIN"

	// StageFeatures S2: 고객별 RFM 원시 지표 + churn 라벨
	// 위치: internal/s2_features/
	StageFeatures Stage = "S2_FEATURES"

	// StageScoring S3: 분위수 기반 R/F/M 점수
	// 위치: internal/s3_scoring/
	StageScoring Stage = "S3_SCORING"

	// StageRisk S4: 규칙 기반 리스크 세그먼트
	// 위치: internal/s4_risk/
	StageRisk Stage = "S4_RISK"

	// StageSummary S5: 요약 뷰 (on demand)
	// 위치: internal/summary/
	StageSummary Stage = "S5_SUMMARY"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageClean:
		return "S0"
	case StageJoin:
		return "S1"
	case StageFeatures:
		return "S2"
	case StageScoring:
		return "S3"
	case StageRisk:
		return "S4"
	case StageSummary:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageClean:
		return "Validate and clean raw tables"
	case StageJoin:
		return "Join orders, customers and payments"
	case StageFeatures:
		return "Per-customer RFM metrics and churn label"
	case StageScoring:
		return "Quintile R/F/M scores"
	case StageRisk:
		return "Rule-based risk segments"
	case StageSummary:
		return "Summary views"
	default:
		return "Unknown stage"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageClean,
		StageJoin,
		StageFeatures,
		StageScoring,
		StageRisk,
		StageSummary,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
