package input

import (
	"context"

	"solarcalc/internal/domain/entity"
)

// PipelineRunner executes the full analysis workflow for one location and
// returns the sealed run report. The returned error covers pre-run
// conditions only (invalid location, run already in progress); step
// failures are expressed through the report's terminal state.
type PipelineRunner interface {
	Run(ctx context.Context, loc entity.Location) (*entity.RunReport, error)
}
