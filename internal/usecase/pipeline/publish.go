package pipeline

import (
	"context"
	"fmt"
	"time"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

type sinkResult struct {
	name     string
	duration time.Duration
	err      error
}

// publishStep fans out to all configured sinks in parallel. Each sink is
// isolated: a failure or panic in one never reaches its siblings or the
// core report. The run completes fully only if every sink succeeds. The
// run-timeout ceiling keeps applying here: when the deadline fires
// mid-publish, stragglers are recorded as failed and the run fails.
func (uc *UseCase) publishStep(ctx context.Context, run *runContext) entity.RunState {
	if len(uc.sinks) == 0 {
		return entity.RunStateCompleted
	}

	snapshot := run.report.Snapshot()
	results := make(chan sinkResult, len(uc.sinks))
	for _, sink := range uc.sinks {
		go func(s output.SinkPort) {
			start := time.Now()
			err := publishSafely(ctx, s, snapshot)
			results <- sinkResult{name: s.Name(), duration: time.Since(start), err: err}
		}(sink)
	}

	reported := make(map[string]bool, len(uc.sinks))
	allOK := true
	for range uc.sinks {
		var r sinkResult
		select {
		case r = <-results:
		case <-ctx.Done():
			// Sinks that ignore their context are abandoned to the buffered
			// channel; they only ever held a snapshot, so the sealed report
			// stays consistent.
			cause := ctxCause(ctx.Err())
			for _, s := range uc.sinks {
				if reported[s.Name()] {
					continue
				}
				run.report.AppendStep(entity.StepOutcome{
					Step:     "publish:" + s.Name(),
					Status:   entity.StepFailure,
					Attempts: 1,
					Error:    cause,
				})
				uc.logger.Warn("Sink abandoned at run deadline", "id", run.report.ID, "sink", s.Name())
			}
			run.cause = cause
			return entity.RunStateFailed
		}

		reported[r.name] = true
		outcome := entity.StepOutcome{
			Step:       "publish:" + r.name,
			Attempts:   1,
			DurationMS: r.duration.Milliseconds(),
		}
		if r.err != nil {
			allOK = false
			outcome.Status = entity.StepFailure
			outcome.Error = r.err.Error()
			uc.logger.Warn("Sink failed", "id", run.report.ID, "sink", r.name, "error", r.err)
		} else {
			outcome.Status = entity.StepSuccess
			uc.logger.Info("Sink published", "id", run.report.ID, "sink", r.name)
		}
		run.report.AppendStep(outcome)
	}

	if allOK {
		return entity.RunStateCompleted
	}
	run.cause = "one or more sinks failed"
	return entity.RunStatePartiallyCompleted
}

func publishSafely(ctx context.Context, sink output.SinkPort, snapshot entity.RunReport) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sink panicked: %v", p)
		}
	}()
	return sink.Publish(ctx, snapshot)
}
