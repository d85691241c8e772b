package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipelineconfig"
	"github.com/wonny/churnlens/backend/internal/s0_data"
	"github.com/wonny/churnlens/backend/internal/s1_join"
	"github.com/wonny/churnlens/backend/internal/s2_features"
	"github.com/wonny/churnlens/backend/internal/s3_scoring"
	"github.com/wonny/churnlens/backend/internal/s4_risk"
	"github.com/wonny/churnlens/backend/internal/summary"
	"github.com/wonny/churnlens/backend/pkg/logger"
)

// Orchestrator coordinates the S0 → S5 pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	logger *logger.Logger
	now    func() time.Time
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string                     `json:"run_id"`
	Params          pipelineconfig.Params      `json:"params"`
	ParamsHash      string                     `json:"params_hash"`
	Success         bool                       `json:"success"`
	Error           error                      `json:"-"`
	CompletedStages []string                   `json:"completed_stages"`
	Stages          []contracts.PipelineResult `json:"stages"`
	Table           *contracts.FeatureTable    `json:"-"`
	Thresholds      s4_risk.Thresholds         `json:"thresholds"`
	Report          *summary.Report            `json:"-"`
	ComputedAt      time.Time                  `json:"computed_at"`
	Duration        time.Duration              `json:"duration"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{logger: log, now: time.Now}
}

// Run executes the complete pipeline over one raw dataset.
// The feature table depends only on ds and params.
func (o *Orchestrator) Run(ctx context.Context, ds *contracts.Dataset, params pipelineconfig.Params) (*RunResult, error) {
	startTime := o.now()

	result := &RunResult{
		RunID:           GenerateRunID(startTime),
		Params:          params,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
		Stages:          make([]contracts.PipelineResult, 0, len(contracts.AllStages())),
	}

	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
		result.Duration = o.now().Sub(startTime)
		o.logger.WithStage(stage.String()).WithError(err).Error("Pipeline run failed")
		return result, result.Error
	}

	if err := pipelineconfig.Validate(&params); err != nil {
		return fail(contracts.StageClean, err)
	}
	hash, err := pipelineconfig.Hash(params)
	if err != nil {
		return fail(contracts.StageClean, err)
	}
	result.ParamsHash = hash

	o.logger.WithFields(map[string]interface{}{
		"run_id":               result.RunID,
		"params_hash":          hash,
		"churn_threshold_days": params.ChurnThresholdDays,
		"valid_status":         params.ValidStatus,
	}).Info("Starting pipeline run")

	// S0: Clean
	cleaned, err := o.runS0(ctx, result, ds, params)
	if err != nil {
		return fail(contracts.StageClean, err)
	}

	// S1: Join
	joined, asOf, err := o.runS1(ctx, result, ds, cleaned)
	if err != nil {
		return fail(contracts.StageJoin, err)
	}

	// S2: Features + churn
	features, err := o.runS2(ctx, result, joined, asOf, params)
	if err != nil {
		return fail(contracts.StageFeatures, err)
	}

	// S3: Scoring
	scored, err := o.runS3(ctx, result, features)
	if err != nil {
		return fail(contracts.StageScoring, err)
	}

	// S4: Risk
	segmented, err := o.runS4(ctx, result, scored)
	if err != nil {
		return fail(contracts.StageRisk, err)
	}
	result.Table = &contracts.FeatureTable{AsOfDate: asOf, Rows: segmented}

	// S5: Summary
	report, err := o.runS5(ctx, result, params)
	if err != nil {
		return fail(contracts.StageSummary, err)
	}
	result.Report = report

	// Mark success
	result.Success = true
	result.ComputedAt = o.now()
	result.Duration = result.ComputedAt.Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"as_of":     asOf.Format(summary.AsOfLayout),
		"customers": result.Table.Len(),
		"duration":  result.Duration.Seconds(),
		"stages":    len(result.CompletedStages),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

type cleanedTables struct {
	orders   []contracts.Order
	payments []contracts.OrderPayment
}

// record appends a stage result and logs it
func (o *Orchestrator) record(result *RunResult, stage contracts.Stage, started time.Time, in, out int, meta map[string]interface{}) {
	pr := contracts.PipelineResult{
		Stage:       stage,
		Success:     true,
		InputCount:  in,
		OutputCount: out,
		Duration:    o.now().Sub(started).Milliseconds(),
		Metadata:    meta,
	}
	result.Stages = append(result.Stages, pr)
	result.CompletedStages = append(result.CompletedStages, stage.ShortName()+":"+stage.Description())

	fields := map[string]interface{}{
		"input":       in,
		"output":      out,
		"duration_ms": pr.Duration,
	}
	for k, v := range meta {
		fields[k] = v
	}
	o.logger.WithStage(stage.String()).WithFields(fields).Debug("Stage completed")
}

// runS0 executes S0: schema validation and cleaning
func (o *Orchestrator) runS0(ctx context.Context, result *RunResult, ds *contracts.Dataset, params pipelineconfig.Params) (*cleanedTables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()

	if err := s0_data.ValidateDatasets(ds); err != nil {
		return nil, err
	}

	orders, orderStats := s0_data.CleanOrders(s0_data.ParseOrders(ds.Orders), params.ValidStatus)
	payments, paymentStats := s0_data.CleanPayments(s0_data.ParsePayments(ds.Payments))
	totals := s0_data.AggregatePaymentsByOrder(payments)

	o.record(result, contracts.StageClean, started,
		ds.Orders.Len()+ds.Payments.Len(), len(orders)+len(totals),
		map[string]interface{}{
			"orders":   orderStats,
			"payments": paymentStats,
		})

	return &cleanedTables{orders: orders, payments: totals}, nil
}

// runS1 executes S1: join and as-of date
func (o *Orchestrator) runS1(ctx context.Context, result *RunResult, ds *contracts.Dataset, cleaned *cleanedTables) ([]contracts.JoinedOrder, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}
	started := o.now()

	customerMap := s1_join.BuildCustomerMap(s0_data.ParseCustomers(ds.Customers))
	joined := s1_join.Join(cleaned.orders, customerMap, cleaned.payments)

	asOf, err := s1_join.AsOfDate(joined)
	if err != nil {
		return nil, time.Time{}, err
	}

	o.record(result, contracts.StageJoin, started, len(cleaned.orders), len(joined),
		map[string]interface{}{
			"as_of":     asOf.Format(time.RFC3339),
			"customers": len(customerMap),
		})

	return joined, asOf, nil
}

// runS2 executes S2: per-customer features and churn label
func (o *Orchestrator) runS2(ctx context.Context, result *RunResult, joined []contracts.JoinedOrder, asOf time.Time, params pipelineconfig.Params) ([]contracts.CustomerFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()

	features := s2_features.ComputeCustomerFeatures(joined, asOf)
	features = s2_features.AddChurnLabel(features, params.ChurnThresholdDays)

	churned := 0
	for _, f := range features {
		churned += f.Churn
	}

	o.record(result, contracts.StageFeatures, started, len(joined), len(features),
		map[string]interface{}{"churned": churned})

	return features, nil
}

// runS3 executes S3: quintile scoring
func (o *Orchestrator) runS3(ctx context.Context, result *RunResult, features []contracts.CustomerFeature) ([]contracts.CustomerFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()

	scored := s3_scoring.ComputeRFMScores(features)

	o.record(result, contracts.StageScoring, started, len(features), len(scored), nil)
	return scored, nil
}

// runS4 executes S4: risk segmentation
func (o *Orchestrator) runS4(ctx context.Context, result *RunResult, scored []contracts.CustomerFeature) ([]contracts.CustomerFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()

	segmented, th := s4_risk.ComputeRiskSegments(scored)
	result.Thresholds = th

	o.record(result, contracts.StageRisk, started, len(scored), len(segmented),
		map[string]interface{}{
			"monetary_q80":  th.MonetaryQ80,
			"frequency_q80": th.FrequencyQ80,
		})

	return segmented, nil
}

// runS5 executes S5: summary views
func (o *Orchestrator) runS5(ctx context.Context, result *RunResult, params pipelineconfig.Params) (*summary.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()

	report, err := summary.Build(result.Table, params.TopRiskSize, params.HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("summary build: %w", err)
	}

	o.record(result, contracts.StageSummary, started, result.Table.Len(), len(report.ByRiskSegment), nil)
	return report, nil
}

// GenerateRunID generates a run ID from the start time
func GenerateRunID(t time.Time) string {
	return fmt.Sprintf("run_%s", t.Format("20060102_150405.000"))
}
