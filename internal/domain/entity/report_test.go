package entity

import (
	"testing"
)

func TestSealIsFinal(t *testing.T) {
	r := NewRunReport(NewLocation("Rome, Italy"), DefaultAssumptions())

	r.SetState(RunStateNavigating)
	r.AppendStep(StepOutcome{Step: StepNavigate, Status: StepSuccess, Attempts: 1})
	r.Seal(RunStateFailed, "navigate: boom")

	if !r.Sealed {
		t.Fatal("report not sealed")
	}
	if r.FinishedAt.IsZero() {
		t.Error("finished_at not set on seal")
	}

	// Mutations after sealing are silently ignored.
	r.Seal(RunStateCompleted, "")
	r.SetState(RunStatePublishing)
	r.AppendStep(StepOutcome{Step: StepSubmit})

	if r.State != RunStateFailed {
		t.Errorf("state = %s, want the first terminal state to stick", r.State)
	}
	if r.Cause != "navigate: boom" {
		t.Errorf("cause = %q, want the first cause to stick", r.Cause)
	}
	if len(r.Steps) != 1 {
		t.Errorf("steps = %d, want appends after seal dropped", len(r.Steps))
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	r := NewRunReport(NewLocation("Rome, Italy"), DefaultAssumptions())
	r.AppendStep(StepOutcome{Step: StepNavigate, Status: StepSuccess})
	r.Profitability = &ProfitabilityReport{AnnualSavings: 918}

	snap := r.Snapshot()

	r.AppendStep(StepOutcome{Step: StepSubmit, Status: StepSuccess})
	r.Profitability.AnnualSavings = 0

	if len(snap.Steps) != 1 {
		t.Errorf("snapshot steps = %d, want 1", len(snap.Steps))
	}
	if snap.Profitability.AnnualSavings != 918 {
		t.Errorf("snapshot profitability mutated through the original")
	}
}

func TestFailingSinks(t *testing.T) {
	r := NewRunReport(NewLocation("Rome, Italy"), DefaultAssumptions())
	r.AppendStep(StepOutcome{Step: StepExtract, Status: StepFailure, Error: "no_numeric_match"})
	r.AppendStep(StepOutcome{Step: "publish:dashboard", Status: StepSuccess})
	r.AppendStep(StepOutcome{Step: "publish:social", Status: StepFailure, Error: "webhook returned 500"})

	failing := r.FailingSinks()
	if len(failing) != 1 || failing[0] != "social" {
		t.Errorf("FailingSinks() = %v, want [social]", failing)
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := []RunState{RunStateCompleted, RunStatePartiallyCompleted, RunStateFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	for _, s := range []RunState{RunStateIdle, RunStateNavigating, RunStateSubmitting, RunStateExtracting, RunStateComputing, RunStatePublishing} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
