package output

import (
	"context"

	"solarcalc/internal/domain/entity"
)

// SinkPort is one best-effort publisher of a finished run. Sinks receive a
// read-only snapshot and must tolerate missing financial fields. A sink
// failure never aborts the run or affects sibling sinks.
type SinkPort interface {
	Name() string
	Publish(ctx context.Context, report entity.RunReport) error
}
