// Package di wires infrastructure adapters and use cases into a
// ready-to-run application graph.
package di

import (
	"context"
	"fmt"

	"solarcalc/internal/application/port/input"
	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
	"solarcalc/internal/infrastructure/gateway/remote"
	rodgw "solarcalc/internal/infrastructure/gateway/rod"
	"solarcalc/internal/infrastructure/logger"
	"solarcalc/internal/infrastructure/sink"
	"solarcalc/internal/infrastructure/storage"
	"solarcalc/internal/usecase/extract"
	"solarcalc/internal/usecase/pipeline"
)

type Container struct {
	Logger   output.LoggerPort
	Gateway  output.GatewayPort
	Store    output.ReportStore
	Sinks    []output.SinkPort
	Pipeline input.PipelineRunner
}

type Config struct {
	LogEnv   string
	LogLevel string

	GatewayBackend  string // "rod" (default) or "remote"
	BrowserHeadless bool
	RemoteBaseURL   string
	RemoteAPIKey    string

	ReportsDir     string
	PostgresDSN    string
	MigrationsPath string

	SocialWebhookURL string
	OpenAIAPIKey     string
	OpenAIModel      string
	MarketplaceURL   string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
	MailTo   []string

	Assumptions entity.EconomicAssumptions
	Pipeline    pipeline.Config
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.New(cfg.LogEnv, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	gateway, err := newGateway(ctx, cfg, log)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	store, err := newStore(cfg)
	if err != nil {
		gateway.Close()
		_ = log.Close()
		return nil, err
	}

	sinks := newSinks(cfg, gateway, store, log)

	uc := pipeline.New(gateway, extract.New(), sinks, store, log, cfg.Assumptions, cfg.Pipeline)

	return &Container{
		Logger:   log,
		Gateway:  gateway,
		Store:    store,
		Sinks:    sinks,
		Pipeline: uc,
	}, nil
}

func newGateway(ctx context.Context, cfg Config, log output.LoggerPort) (output.GatewayPort, error) {
	switch cfg.GatewayBackend {
	case "remote":
		if cfg.RemoteBaseURL == "" {
			return nil, fmt.Errorf("remote gateway requires a base URL")
		}
		return remote.New(remote.Config{
			BaseURL: cfg.RemoteBaseURL,
			APIKey:  cfg.RemoteAPIKey,
		}, log.With("component", "gateway")), nil
	case "", "rod":
		rodCfg := rodgw.DefaultConfig()
		rodCfg.Headless = cfg.BrowserHeadless
		gw, err := rodgw.New(ctx, rodCfg, log.With("component", "gateway"))
		if err != nil {
			return nil, fmt.Errorf("failed to create browser gateway: %w", err)
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown gateway backend %q", cfg.GatewayBackend)
	}
}

func newStore(cfg Config) (output.ReportStore, error) {
	if cfg.PostgresDSN != "" {
		if cfg.MigrationsPath != "" {
			if err := storage.RunMigrations(cfg.MigrationsPath, cfg.PostgresDSN); err != nil {
				return nil, err
			}
		}
		return storage.NewPostgresStore(cfg.PostgresDSN)
	}
	return storage.NewFileStore(cfg.ReportsDir)
}

func newSinks(cfg Config, gateway output.GatewayPort, store output.ReportStore, log output.LoggerPort) []output.SinkPort {
	sinks := []output.SinkPort{
		sink.NewDashboard(store, log.With("sink", "dashboard")),
	}

	if cfg.SocialWebhookURL != "" {
		var composer *sink.Composer
		if cfg.OpenAIAPIKey != "" {
			composer = sink.NewComposer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
		sinks = append(sinks, sink.NewSocial(cfg.SocialWebhookURL, composer, log.With("sink", "social")))
	}

	if cfg.MarketplaceURL != "" {
		sinks = append(sinks, sink.NewMarketplace(gateway, cfg.MarketplaceURL, cfg.Pipeline.ActionTimeout, log.With("sink", "marketplace")))
	}

	if cfg.SMTPHost != "" && len(cfg.MailTo) > 0 {
		sinks = append(sinks, sink.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.MailTo))
	}

	return sinks
}

func (c *Container) Close() {
	if c.Gateway != nil {
		c.Gateway.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
