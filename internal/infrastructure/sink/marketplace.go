package sink

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
	"solarcalc/internal/usecase/roi"
)

var _ output.SinkPort = (*Marketplace)(nil)

// Marketplace hands the user over to a storefront by navigating the browser
// session to a search for a panel kit sized to the analyzed system. Runs
// after the spine, while the session is still owned by the run.
type Marketplace struct {
	gateway output.GatewayPort
	baseURL string
	timeout time.Duration
	logger  output.LoggerPort
}

func NewMarketplace(gateway output.GatewayPort, baseURL string, timeout time.Duration, logger output.LoggerPort) *Marketplace {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Marketplace{gateway: gateway, baseURL: baseURL, timeout: timeout, logger: logger}
}

func (m *Marketplace) Name() string { return "marketplace" }

func (m *Marketplace) Publish(ctx context.Context, report entity.RunReport) error {
	peakKW := report.Metrics.PeakPowerKW
	if peakKW <= 0 {
		peakKW = roi.DefaultSystemSizeKW
	}
	query := fmt.Sprintf("solar panel kit %.0f kW", peakKW)

	target := fmt.Sprintf("%s/s?k=%s", m.baseURL, url.QueryEscape(query))
	res := m.gateway.Perform(ctx, entity.ActionRequest{
		Kind:   entity.ActionNavigate,
		Target: target,
	}, m.timeout)

	if res.Status != entity.ActionSuccess {
		if res.Err != nil {
			return fmt.Errorf("open storefront: %w", res.Err)
		}
		return fmt.Errorf("open storefront: %s", res.Status)
	}
	m.logger.Debug("Storefront opened", "query", query)
	return nil
}
