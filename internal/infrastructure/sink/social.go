package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

var _ output.SinkPort = (*Social)(nil)

// Social posts a short run summary to a webhook. When a composer is
// configured the post text is generated from the report; otherwise a
// template summary is used. Delivery is best effort, one attempt.
type Social struct {
	webhookURL string
	composer   *Composer
	client     *http.Client
	logger     output.LoggerPort
}

func NewSocial(webhookURL string, composer *Composer, logger output.LoggerPort) *Social {
	return &Social{
		webhookURL: webhookURL,
		composer:   composer,
		client:     &http.Client{},
		logger:     logger,
	}
}

func (s *Social) Name() string { return "social" }

func (s *Social) Publish(ctx context.Context, report entity.RunReport) error {
	text := ShortSummary(report)
	if s.composer != nil {
		if composed, err := s.composer.Compose(ctx, report); err == nil {
			text = composed
		} else {
			s.logger.Warn("Post composer failed, using template", "error", err)
		}
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
