// Package remote implements the gateway port against a hosted
// browser-automation backend exposing a JSON action API. The backend is a
// black box: the adapter forwards one primitive per call and maps the
// response onto the action result taxonomy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

var _ output.GatewayPort = (*Adapter)(nil)

type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  output.LoggerPort
}

type Config struct {
	BaseURL string
	APIKey  string
}

func New(cfg Config, logger output.LoggerPort) *Adapter {
	return &Adapter{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{},
		logger:  logger,
	}
}

type actionEnvelope struct {
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Payload   string `json:"payload,omitempty"`
	TimeoutMS int64  `json:"timeout_ms"`
}

type actionResponse struct {
	Status  string `json:"status"`
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *Adapter) Perform(ctx context.Context, req entity.ActionRequest, timeout time.Duration) entity.ActionResult {
	if err := req.Validate(timeout); err != nil {
		return entity.FailureResult(fmt.Errorf("%w: %v", entity.ErrGatewayRejected, err))
	}

	body, err := json.Marshal(actionEnvelope{
		Action:    string(req.Kind),
		Target:    req.Target,
		Payload:   req.Payload,
		TimeoutMS: timeout.Milliseconds(),
	})
	if err != nil {
		return entity.FailureResult(fmt.Errorf("encode action: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/actions", bytes.NewReader(body))
	if err != nil {
		return entity.FailureResult(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	a.logger.Debug("Forwarding action", "kind", req.Kind, "target", req.Target)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return entity.TimeoutResult(err)
		}
		// Network errors against the remote agent are worth retrying.
		return entity.FailureResult(fmt.Errorf("%w: %v", entity.ErrTransientGateway, err))
	}
	// Drain before closing so the connection goes back to the pool even on
	// the early-return status paths.
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return entity.TimeoutResult(fmt.Errorf("remote agent timed out: %s", resp.Status))
	case resp.StatusCode >= 500:
		return entity.FailureResult(fmt.Errorf("%w: %s", entity.ErrTransientGateway, resp.Status))
	case resp.StatusCode >= 400:
		return entity.FailureResult(fmt.Errorf("%w: %s", entity.ErrGatewayRejected, resp.Status))
	}

	var ar actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return entity.FailureResult(fmt.Errorf("decode response: %w", err))
	}

	switch entity.ActionStatus(ar.Status) {
	case entity.ActionSuccess:
		return entity.SuccessResult(ar.Payload)
	case entity.ActionTimeout:
		return entity.TimeoutResult(errors.New(remoteError(ar)))
	default:
		if ar.Error == "target not found" {
			return entity.FailureResult(fmt.Errorf("%w: %s", entity.ErrTargetNotFound, req.Target))
		}
		return entity.FailureResult(errors.New(remoteError(ar)))
	}
}

func remoteError(ar actionResponse) string {
	if ar.Error != "" {
		return ar.Error
	}
	return "remote agent reported " + ar.Status
}

// Close is a no-op: the session is owned by the hosted backend.
func (a *Adapter) Close() {}
