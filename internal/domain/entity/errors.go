package entity

import "errors"

// Gateway error classes. Transient errors are expected to self-resolve on
// retry; the rest indicate a structural mismatch that retrying unchanged
// will not fix.
var (
	ErrTransientGateway = errors.New("transient gateway error")
	ErrGatewayRejected  = errors.New("gateway rejected action")
	ErrTargetNotFound   = errors.New("target not found")

	ErrInvalidTimeout = errors.New("timeout must be positive")
	ErrEmptyTarget    = errors.New("target must not be empty")
	ErrUnknownAction  = errors.New("unknown action kind")

	ErrEmptyLocation = errors.New("location must not be empty")

	// ErrRunInProgress is returned when a second run is requested while the
	// single browser session is still owned by an in-flight run.
	ErrRunInProgress = errors.New("run in progress")
)

// Extraction failure reasons carried on an invalid ExtractedMetrics.
const (
	ReasonNoNumericMatch = "no_numeric_match"
	ReasonOutOfRange     = "out_of_range"
)

// Terminal causes recorded on a failed RunReport.
const (
	CauseRunTimeout = "run_timeout"
	CauseCancelled  = "cancelled"
)

type ComputationErrorKind string

const (
	ComputationInvalidInput   ComputationErrorKind = "InvalidInput"
	ComputationDivisionByZero ComputationErrorKind = "DivisionByZero"
)

// ComputationError is recorded on the run report, never fatal: the run
// proceeds to publishing with the financial fields marked unavailable.
type ComputationError struct {
	Kind    ComputationErrorKind
	Message string
}

func (e *ComputationError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
