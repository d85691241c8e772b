package pipelineconfig

import (
	"github.com/wonny/churnlens/backend/pkg/config"
)

// Params is the full parameter set of one pipeline run
// ⭐ SSOT: 파이프라인 파라미터는 이 구조체로만 전달
type Params struct {
	ChurnThresholdDays int      `yaml:"churn_threshold_days" json:"churn_threshold_days"`
	ValidStatus        []string `yaml:"valid_status" json:"valid_status"`
	HistogramBins      int      `yaml:"histogram_bins" json:"histogram_bins"`
	TopRiskSize        int      `yaml:"top_risk_size" json:"top_risk_size"`
}

// Default returns the built-in parameters
func Default() Params {
	return Params{
		ChurnThresholdDays: 270,
		ValidStatus:        []string{"delivered"},
		HistogramBins:      20,
		TopRiskSize:        50,
	}
}

// FromConfig builds Params from the environment-backed application config
func FromConfig(cfg *config.Config) Params {
	status := make([]string, len(cfg.Analysis.ValidStatus))
	copy(status, cfg.Analysis.ValidStatus)

	return Params{
		ChurnThresholdDays: cfg.Analysis.ChurnThresholdDays,
		ValidStatus:        status,
		HistogramBins:      cfg.Analysis.HistogramBins,
		TopRiskSize:        cfg.Analysis.TopRiskSize,
	}
}

// Resolve returns the YAML parameters when a config file is set,
// otherwise the environment values.
func Resolve(cfg *config.Config) (Params, error) {
	if cfg.Analysis.ConfigPath == "" {
		p := FromConfig(cfg)
		return p, Validate(&p)
	}

	p, _, err := Load(cfg.Analysis.ConfigPath)
	if err != nil {
		return Params{}, err
	}
	return *p, nil
}
