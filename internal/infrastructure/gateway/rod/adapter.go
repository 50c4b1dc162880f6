// Package rod implements the gateway port on a locally launched Chromium
// instance. It reports action outcomes only; retry policy stays in the
// orchestrator.
package rod

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

var _ output.GatewayPort = (*Adapter)(nil)

type Adapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	cfg      Config
	logger   output.LoggerPort
}

type Config struct {
	Headless   bool
	SlowMotion time.Duration
	NoSandbox  bool

	// Button texts of the estimation tool's two-stage form: geocode the
	// address, then render the simulation outputs.
	SearchButton  string
	ConfirmButton string
}

func DefaultConfig() Config {
	return Config{
		Headless:      true,
		SlowMotion:    500 * time.Millisecond,
		NoSandbox:     true,
		SearchButton:  "Go!",
		ConfirmButton: "Visualize results",
	}
}

func New(ctx context.Context, cfg Config, logger output.LoggerPort) (*Adapter, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-web-security").
		Set("disable-setuid-sandbox")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion).
		MustConnect()

	page := browser.MustPage("about:blank")

	return &Adapter{
		browser:  browser,
		launcher: l,
		page:     page,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (a *Adapter) Perform(ctx context.Context, req entity.ActionRequest, timeout time.Duration) entity.ActionResult {
	if err := req.Validate(timeout); err != nil {
		return entity.FailureResult(fmt.Errorf("%w: %v", entity.ErrGatewayRejected, err))
	}

	page := a.page.Context(ctx).Timeout(timeout)
	a.logger.Debug("Performing action", "kind", req.Kind, "target", req.Target)

	var payload string
	var err error
	switch req.Kind {
	case entity.ActionNavigate:
		err = a.navigate(page, req.Target)
	case entity.ActionInput:
		err = a.fill(page, req.Target, req.Payload)
	case entity.ActionSubmit:
		err = a.submit(page, req.Target, req.Payload)
	case entity.ActionRead:
		payload, err = a.read(page, req.Target)
	case entity.ActionScreenshot:
		payload, err = a.screenshot(page)
	}

	if err != nil {
		if isTimeout(err) {
			return entity.TimeoutResult(err)
		}
		return entity.FailureResult(err)
	}
	return entity.SuccessResult(payload)
}

func (a *Adapter) navigate(page *rod.Page, url string) error {
	if err := page.Navigate(url); err != nil {
		// Navigation failures are usually network hiccups worth retrying.
		return fmt.Errorf("%w: navigate %s: %v", entity.ErrTransientGateway, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: wait load: %v", entity.ErrTransientGateway, err)
	}
	_ = page.WaitIdle(5 * time.Second)
	return nil
}

func (a *Adapter) fill(page *rod.Page, selector, text string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrTargetNotFound, selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

// submit fills the address field and walks the tool's two-stage form:
// geocode, wait for the map to settle, then request the simulation outputs.
func (a *Adapter) submit(page *rod.Page, selector, value string) error {
	if err := a.fill(page, selector, value); err != nil {
		return err
	}

	if a.cfg.SearchButton != "" {
		if err := a.clickByText(page, a.cfg.SearchButton); err != nil {
			return err
		}
		_ = page.WaitIdle(5 * time.Second)
	}
	if a.cfg.ConfirmButton != "" {
		if err := a.clickByText(page, a.cfg.ConfirmButton); err != nil {
			return err
		}
		if err := page.WaitLoad(); err != nil {
			return fmt.Errorf("%w: wait results: %v", entity.ErrTransientGateway, err)
		}
		_ = page.WaitIdle(5 * time.Second)
	}
	return nil
}

func (a *Adapter) clickByText(page *rod.Page, text string) error {
	el, err := page.ElementR(`button, input[type="submit"], a`, text)
	if err != nil {
		return fmt.Errorf("%w: button %q: %v", entity.ErrTargetNotFound, text, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q failed: %w", text, err)
	}
	return nil
}

// read returns the target element's HTML snapshot; the extractor owns all
// interpretation of it.
func (a *Adapter) read(page *rod.Page, selector string) (string, error) {
	if selector == "" {
		selector = "body"
	}
	el, err := page.Element(selector)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entity.ErrTargetNotFound, selector, err)
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (a *Adapter) screenshot(page *rod.Page) (string, error) {
	imgBytes, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return "", fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("jpeg encode failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (a *Adapter) Close() {
	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher.Cleanup()
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "timeout")
}
