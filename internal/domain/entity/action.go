package entity

import (
	"errors"
	"time"
)

type ActionKind string

const (
	ActionNavigate   ActionKind = "navigate"
	ActionInput      ActionKind = "input"
	ActionSubmit     ActionKind = "submit"
	ActionRead       ActionKind = "read"
	ActionScreenshot ActionKind = "screenshot"
)

type ActionStatus string

const (
	ActionSuccess ActionStatus = "success"
	ActionFailure ActionStatus = "failure"
	ActionTimeout ActionStatus = "timeout"
)

// ActionRequest is one primitive sent to the browser-automation gateway.
// Target is a URL for navigate, a selector or field name otherwise.
type ActionRequest struct {
	Kind    ActionKind `json:"kind"`
	Target  string     `json:"target"`
	Payload string     `json:"payload,omitempty"`
}

func (r ActionRequest) Validate(timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidTimeout
	}
	switch r.Kind {
	case ActionNavigate, ActionInput, ActionSubmit:
		if r.Target == "" {
			return ErrEmptyTarget
		}
	case ActionRead, ActionScreenshot:
	default:
		return ErrUnknownAction
	}
	return nil
}

// ActionResult reports the outcome of one gateway action. The gateway never
// retries; classification of Err drives the orchestrator's retry policy.
type ActionResult struct {
	Status  ActionStatus
	Payload string
	Err     error
}

// Retryable reports whether the orchestrator may retry the action unchanged.
func (r ActionResult) Retryable() bool {
	if r.Status == ActionTimeout {
		return true
	}
	return r.Status == ActionFailure && errors.Is(r.Err, ErrTransientGateway)
}

func SuccessResult(payload string) ActionResult {
	return ActionResult{Status: ActionSuccess, Payload: payload}
}

func FailureResult(err error) ActionResult {
	return ActionResult{Status: ActionFailure, Err: err}
}

func TimeoutResult(err error) ActionResult {
	return ActionResult{Status: ActionTimeout, Err: err}
}
