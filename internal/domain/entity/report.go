package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunState string

const (
	RunStateIdle               RunState = "idle"
	RunStateNavigating         RunState = "navigating"
	RunStateSubmitting         RunState = "submitting"
	RunStateExtracting         RunState = "extracting"
	RunStateComputing          RunState = "computing"
	RunStatePublishing         RunState = "publishing"
	RunStateCompleted          RunState = "completed"
	RunStatePartiallyCompleted RunState = "partially_completed"
	RunStateFailed             RunState = "failed"
)

// Terminal reports whether no further transition may happen from s.
func (s RunState) Terminal() bool {
	switch s {
	case RunStateCompleted, RunStatePartiallyCompleted, RunStateFailed:
		return true
	}
	return false
}

type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepFailure StepStatus = "failure"
)

// Canonical step names appearing in the run report's step log. Sink steps
// are named "publish:<sink name>".
const (
	StepNavigate = "navigate"
	StepSubmit   = "submit"
	StepExtract  = "extract"
	StepCompute  = "compute"
)

// StepOutcome records one step boundary: what ran, how often, how it ended.
type StepOutcome struct {
	Step       string     `json:"step"`
	Status     StepStatus `json:"status"`
	Attempts   int        `json:"attempts"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// RunReport is the append-only record of one workflow execution. It is
// exclusively owned and mutated by the orchestrator during a run and sealed
// read-only when the run reaches a terminal state. Sinks only ever see a
// snapshot copy.
type RunReport struct {
	ID            string               `json:"id"`
	Location      Location             `json:"location"`
	Assumptions   EconomicAssumptions  `json:"assumptions"`
	Metrics       ExtractedMetrics     `json:"metrics"`
	Profitability *ProfitabilityReport `json:"profitability,omitempty"`
	Steps         []StepOutcome        `json:"steps"`
	State         RunState             `json:"state"`
	Cause         string               `json:"cause,omitempty"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at,omitempty"`
	Sealed        bool                 `json:"sealed"`
}

func NewRunReport(loc Location, assumptions EconomicAssumptions) *RunReport {
	return &RunReport{
		ID:          uuid.NewString(),
		Location:    loc,
		Assumptions: assumptions,
		Metrics:     InvalidMetrics("not_extracted"),
		State:       RunStateIdle,
		StartedAt:   time.Now().UTC(),
	}
}

// AppendStep records one step outcome. Ignored after sealing.
func (r *RunReport) AppendStep(outcome StepOutcome) {
	if r.Sealed {
		return
	}
	r.Steps = append(r.Steps, outcome)
}

// SetState moves the report to a non-terminal state. Ignored after sealing.
func (r *RunReport) SetState(state RunState) {
	if r.Sealed {
		return
	}
	r.State = state
}

// Seal fixes the terminal state and makes the report read-only. Sealing
// twice keeps the first terminal state.
func (r *RunReport) Seal(state RunState, cause string) {
	if r.Sealed {
		return
	}
	r.State = state
	r.Cause = cause
	r.FinishedAt = time.Now().UTC()
	r.Sealed = true
}

// Snapshot returns a value copy safe to hand to sinks. The step log is
// copied so concurrent appends during publishing cannot alias.
func (r *RunReport) Snapshot() RunReport {
	copied := *r
	copied.Steps = make([]StepOutcome, len(r.Steps))
	copy(copied.Steps, r.Steps)
	if r.Profitability != nil {
		p := *r.Profitability
		copied.Profitability = &p
	}
	return copied
}

// FailingSinks lists the sink names recorded as failed during publishing.
func (r *RunReport) FailingSinks() []string {
	var names []string
	for _, s := range r.Steps {
		if s.Status == StepFailure && len(s.Step) > 8 && s.Step[:8] == "publish:" {
			names = append(names, s.Step[8:])
		}
	}
	return names
}
