package sink

import (
	"context"
	"fmt"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

var _ output.SinkPort = (*Dashboard)(nil)

// Dashboard hands the sealed report to the visualization frontend by
// persisting it where the dashboard server reads from.
type Dashboard struct {
	store  output.ReportStore
	logger output.LoggerPort
}

func NewDashboard(store output.ReportStore, logger output.LoggerPort) *Dashboard {
	return &Dashboard{store: store, logger: logger}
}

func (d *Dashboard) Name() string { return "dashboard" }

func (d *Dashboard) Publish(ctx context.Context, report entity.RunReport) error {
	if err := d.store.Save(ctx, report); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	d.logger.Debug("Report handed to dashboard", "id", report.ID)
	return nil
}
