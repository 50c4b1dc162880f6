package output

import (
	"context"

	"solarcalc/internal/domain/entity"
)

// ReportStore persists sealed run reports and serves them back to the
// dashboard and the history command.
type ReportStore interface {
	Save(ctx context.Context, report entity.RunReport) error
	List(ctx context.Context) ([]entity.RunReport, error)
	Get(ctx context.Context, id string) (*entity.RunReport, error)
}
