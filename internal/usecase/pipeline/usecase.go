// Package pipeline drives the whole analysis workflow as an explicit state
// machine: navigate to the estimation tool, submit the address, extract the
// yield, compute profitability, fan out to the sinks. The spine is strictly
// sequential because every step depends on the browser state left by the
// previous one; publishing is the only concurrent stage.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"solarcalc/internal/application/port/input"
	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
	"solarcalc/internal/usecase/roi"
)

const (
	defaultRetryBound    = 3
	defaultRetryBackoff  = 2 * time.Second
	defaultActionTimeout = 20 * time.Second
	defaultRunTimeout    = 5 * time.Minute
)

// DefaultToolURL is the PVGIS photovoltaic estimation tool, the one target
// flow this pipeline supports.
const DefaultToolURL = "https://re.jrc.ec.europa.eu/pvg_tools/en/"

// FieldExtractor parses a raw page snapshot into typed metrics.
type FieldExtractor interface {
	Extract(raw string) entity.ExtractedMetrics
}

type Config struct {
	ToolURL       string
	AddressField  string // selector of the tool's address input
	ResultsTarget string // read target for the results snapshot
	RetryBound    int    // total attempts per retryable step
	RetryBackoff  time.Duration
	ActionTimeout time.Duration
	RunTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		ToolURL:       DefaultToolURL,
		AddressField:  `input[name="address"]`,
		ResultsTarget: "body",
		RetryBound:    defaultRetryBound,
		RetryBackoff:  defaultRetryBackoff,
		ActionTimeout: defaultActionTimeout,
		RunTimeout:    defaultRunTimeout,
	}
}

var _ input.PipelineRunner = (*UseCase)(nil)

type UseCase struct {
	gateway     output.GatewayPort
	extractor   FieldExtractor
	sinks       []output.SinkPort
	store       output.ReportStore
	logger      output.LoggerPort
	assumptions entity.EconomicAssumptions
	cfg         Config

	// The browser session is a single exclusive resource: one in-flight run.
	running atomic.Bool
}

func New(
	gateway output.GatewayPort,
	extractor FieldExtractor,
	sinks []output.SinkPort,
	store output.ReportStore,
	logger output.LoggerPort,
	assumptions entity.EconomicAssumptions,
	cfg Config,
) *UseCase {
	def := DefaultConfig()
	if cfg.ToolURL == "" {
		cfg.ToolURL = def.ToolURL
	}
	if cfg.AddressField == "" {
		cfg.AddressField = def.AddressField
	}
	if cfg.ResultsTarget == "" {
		cfg.ResultsTarget = def.ResultsTarget
	}
	if cfg.RetryBound <= 0 {
		cfg.RetryBound = def.RetryBound
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = def.ActionTimeout
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = def.RunTimeout
	}

	return &UseCase{
		gateway:     gateway,
		extractor:   extractor,
		sinks:       sinks,
		store:       store,
		logger:      logger,
		assumptions: assumptions,
		cfg:         cfg,
	}
}

// runContext carries mutable run-scoped values between transitions. The
// report inside is owned by this use case until sealed.
type runContext struct {
	report *entity.RunReport
	cause  string
}

// Run executes the workflow for one location. A second call while a run is
// in flight is rejected with ErrRunInProgress; the session is never shared.
func (uc *UseCase) Run(ctx context.Context, loc entity.Location) (*entity.RunReport, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if !uc.running.CompareAndSwap(false, true) {
		return nil, entity.ErrRunInProgress
	}
	defer uc.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.RunTimeout)
	defer cancel()

	report := entity.NewRunReport(loc, uc.assumptions)
	run := &runContext{report: report}
	uc.logger.Info("Run started", "id", report.ID, "address", loc.Query())

	state := entity.RunStateNavigating
	for {
		// Cancellation is cooperative: checked between steps, never cutting
		// an in-flight remote action short.
		if err := ctx.Err(); err != nil {
			report.Seal(entity.RunStateFailed, ctxCause(err))
			break
		}

		report.SetState(state)
		uc.logger.Debug("Entering state", "id", report.ID, "state", state)

		next := uc.transition(ctx, state, run)
		// The ceiling applies to every state: a deadline or cancellation
		// that fired during the step overrides its conclusion.
		if err := ctx.Err(); err != nil {
			if next != entity.RunStateFailed || errors.Is(err, context.DeadlineExceeded) {
				run.cause = ctxCause(err)
			}
			next = entity.RunStateFailed
		}
		if next.Terminal() {
			report.Seal(next, run.cause)
			break
		}
		state = next
	}

	uc.persistFinal(report)
	uc.logger.Info("Run finished", "id", report.ID, "state", report.State, "cause", report.Cause)
	return report, nil
}

// persistFinal stores the sealed report so the run's record carries its
// terminal state. Runs on its own deadline: the run context may already be
// expired when sealing was forced by the ceiling.
func (uc *UseCase) persistFinal(report *entity.RunReport) {
	if uc.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.store.Save(ctx, report.Snapshot()); err != nil {
		uc.logger.Warn("Final report persist failed", "id", report.ID, "error", err)
	}
}

// transition is the single transition function of the state machine.
func (uc *UseCase) transition(ctx context.Context, state entity.RunState, run *runContext) entity.RunState {
	switch state {
	case entity.RunStateNavigating:
		return uc.navigateStep(ctx, run)
	case entity.RunStateSubmitting:
		return uc.submitStep(ctx, run)
	case entity.RunStateExtracting:
		return uc.extractStep(ctx, run)
	case entity.RunStateComputing:
		return uc.computeStep(run)
	case entity.RunStatePublishing:
		return uc.publishStep(ctx, run)
	default:
		run.cause = "unexpected state: " + string(state)
		return entity.RunStateFailed
	}
}

func (uc *UseCase) navigateStep(ctx context.Context, run *runContext) entity.RunState {
	_, ok := uc.performStep(ctx, run, entity.StepNavigate, entity.ActionRequest{
		Kind:   entity.ActionNavigate,
		Target: uc.cfg.ToolURL,
	})
	if !ok {
		return entity.RunStateFailed
	}
	return entity.RunStateSubmitting
}

func (uc *UseCase) submitStep(ctx context.Context, run *runContext) entity.RunState {
	_, ok := uc.performStep(ctx, run, entity.StepSubmit, entity.ActionRequest{
		Kind:    entity.ActionSubmit,
		Target:  uc.cfg.AddressField,
		Payload: run.report.Location.Query(),
	})
	if !ok {
		return entity.RunStateFailed
	}
	return entity.RunStateExtracting
}

// extractStep wraps the read action plus the parse. A failed read is fatal;
// a read that parses to invalid metrics only degrades the run.
func (uc *UseCase) extractStep(ctx context.Context, run *runContext) entity.RunState {
	start := time.Now()
	res, attempts := uc.performWithRetry(ctx, entity.ActionRequest{
		Kind:   entity.ActionRead,
		Target: uc.cfg.ResultsTarget,
	})

	outcome := entity.StepOutcome{Step: entity.StepExtract, Attempts: attempts}
	if res.Status != entity.ActionSuccess {
		outcome.Status = entity.StepFailure
		outcome.Error = resultError(res)
		outcome.DurationMS = time.Since(start).Milliseconds()
		run.report.AppendStep(outcome)
		run.cause = entity.StepExtract + ": " + outcome.Error
		return entity.RunStateFailed
	}

	metrics := uc.extractor.Extract(res.Payload)
	run.report.Metrics = metrics
	outcome.DurationMS = time.Since(start).Milliseconds()
	if metrics.Valid {
		outcome.Status = entity.StepSuccess
		uc.logger.Info("Metrics extracted", "id", run.report.ID, "annual_yield_kwh", metrics.AnnualYieldKWh)
	} else {
		outcome.Status = entity.StepFailure
		outcome.Error = metrics.Reason
		uc.logger.Warn("Extraction degraded", "id", run.report.ID, "reason", metrics.Reason)
	}
	run.report.AppendStep(outcome)
	return entity.RunStateComputing
}

// computeStep is never retried: the calculator is pure and deterministic.
// Computation errors are recorded and the run proceeds to publishing with
// the financial fields unavailable.
func (uc *UseCase) computeStep(run *runContext) entity.RunState {
	start := time.Now()
	profitability, cerr := roi.Compute(run.report.Metrics, uc.assumptions)
	if profitability != nil {
		run.report.Profitability = profitability
	}

	outcome := entity.StepOutcome{
		Step:       entity.StepCompute,
		Attempts:   1,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if cerr != nil {
		outcome.Status = entity.StepFailure
		outcome.Error = cerr.Error()
		uc.logger.Warn("Computation degraded", "id", run.report.ID, "kind", cerr.Kind, "message", cerr.Message)
	} else {
		outcome.Status = entity.StepSuccess
		uc.logger.Info("Profitability computed",
			"id", run.report.ID,
			"annual_savings", profitability.AnnualSavings,
			"payback_years", profitability.PaybackYears)
	}
	run.report.AppendStep(outcome)
	return entity.RunStatePublishing
}

// performStep runs one gateway action with retry and records its outcome.
func (uc *UseCase) performStep(ctx context.Context, run *runContext, step string, req entity.ActionRequest) (string, bool) {
	start := time.Now()
	res, attempts := uc.performWithRetry(ctx, req)

	outcome := entity.StepOutcome{
		Step:       step,
		Attempts:   attempts,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if res.Status == entity.ActionSuccess {
		outcome.Status = entity.StepSuccess
		run.report.AppendStep(outcome)
		return res.Payload, true
	}

	outcome.Status = entity.StepFailure
	outcome.Error = resultError(res)
	run.report.AppendStep(outcome)
	run.cause = step + ": " + outcome.Error
	uc.logger.Error("Step failed", "id", run.report.ID, "step", step, "attempts", attempts, "error", outcome.Error)
	return "", false
}

// performWithRetry retries transient outcomes up to the configured bound
// with linear backoff. Non-retryable failures return immediately.
func (uc *UseCase) performWithRetry(ctx context.Context, req entity.ActionRequest) (entity.ActionResult, int) {
	var res entity.ActionResult
	for attempt := 1; attempt <= uc.cfg.RetryBound; attempt++ {
		res = uc.gateway.Perform(ctx, req, uc.cfg.ActionTimeout)
		if res.Status == entity.ActionSuccess || !res.Retryable() {
			return res, attempt
		}
		uc.logger.Warn("Action failed, will retry",
			"kind", req.Kind, "target", req.Target, "attempt", attempt, "error", res.Err)
		if attempt == uc.cfg.RetryBound {
			break
		}
		select {
		case <-ctx.Done():
			return res, attempt
		case <-time.After(uc.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return res, uc.cfg.RetryBound
}

func resultError(res entity.ActionResult) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	return string(res.Status)
}

func ctxCause(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.CauseRunTimeout
	}
	return entity.CauseCancelled
}
