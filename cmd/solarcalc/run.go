package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"solarcalc/internal/application/port/input"
	"solarcalc/internal/application/port/output"
	"solarcalc/internal/di"
	"solarcalc/internal/domain/entity"
	"solarcalc/internal/infrastructure/env"
	"solarcalc/internal/usecase/pipeline"
)

type runFlags struct {
	backend       string
	headless      bool
	toolURL       string
	retries       int
	actionTimeout time.Duration
	runTimeout    time.Duration
	pause         time.Duration

	price     float64
	panelCost float64
	lifetime  float64
}

func newRunCmd(exitCode *int) *cobra.Command {
	flags := runFlags{}

	cmd := &cobra.Command{
		Use:   "run <address> [address...]",
		Short: "Analyze solar profitability for one or more addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runAnalysis(cmd.Context(), flags, args)
			*exitCode = code
			return err
		},
	}

	cmd.Flags().StringVar(&flags.backend, "backend", "", "gateway backend: rod or remote (default rod)")
	cmd.Flags().BoolVar(&flags.headless, "headless", true, "run the browser headless")
	cmd.Flags().StringVar(&flags.toolURL, "tool-url", "", "estimation tool URL override")
	cmd.Flags().IntVar(&flags.retries, "retries", 0, "total attempts per retryable step")
	cmd.Flags().DurationVar(&flags.actionTimeout, "action-timeout", 0, "per-action timeout")
	cmd.Flags().DurationVar(&flags.runTimeout, "run-timeout", 0, "whole-run timeout")
	cmd.Flags().DurationVar(&flags.pause, "pause", 5*time.Second, "pause between addresses in batch mode")

	def := entity.DefaultAssumptions()
	cmd.Flags().Float64Var(&flags.price, "price", def.ElectricityPricePerKWh, "electricity price per kWh")
	cmd.Flags().Float64Var(&flags.panelCost, "panel-cost", def.PanelCostPerKW, "installed cost per kW of capacity")
	cmd.Flags().Float64Var(&flags.lifetime, "lifetime", def.ExpectedLifetimeYears, "expected system lifetime in years")

	return cmd
}

func runAnalysis(parent context.Context, flags runFlags, addresses []string) (int, error) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, buildConfig(flags))
	if err != nil {
		return 2, fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close()

	return runBatch(ctx, container.Pipeline, container.Logger, flags.pause, addresses)
}

// runBatch analyzes the addresses sequentially, pausing between runs, and
// returns the worst terminal state as an exit code.
func runBatch(ctx context.Context, runner input.PipelineRunner, log output.LoggerPort, pause time.Duration, addresses []string) (int, error) {
	exitCode := 0
	for i, address := range addresses {
		if i > 0 {
			log.Info("Pausing before next address", "pause", pause)
			select {
			case <-ctx.Done():
				return 2, ctx.Err()
			case <-time.After(pause):
			}
		}

		report, err := runner.Run(ctx, entity.NewLocation(address))
		if err != nil {
			return 2, fmt.Errorf("run for %q: %w", address, err)
		}

		if err := printReport(report); err != nil {
			return 2, err
		}
		if code := stateExitCode(report.State); code > exitCode {
			exitCode = code
		}
	}
	return exitCode, nil
}

func buildConfig(flags runFlags) di.Config {
	envService := env.NewService()

	return di.Config{
		LogEnv:   envService.GetDefault("APP_ENV", "dev"),
		LogLevel: envService.GetDefault("LOG_LEVEL", "info"),

		GatewayBackend:  firstNonEmpty(flags.backend, envService.Get("GATEWAY_BACKEND")),
		BrowserHeadless: flags.headless,
		RemoteBaseURL:   envService.Get("GATEWAY_BASE_URL"),
		RemoteAPIKey:    envService.Get("GATEWAY_API_KEY"),

		ReportsDir:     envService.GetDefault("REPORTS_DIR", "solar_reports"),
		PostgresDSN:    envService.Get("POSTGRES_DSN"),
		MigrationsPath: envService.GetDefault("MIGRATIONS_PATH", "file://migrations"),

		SocialWebhookURL: envService.Get("SOCIAL_WEBHOOK_URL"),
		OpenAIAPIKey:     envService.Get("OPENAI_API_KEY"),
		OpenAIModel:      envService.Get("OPENAI_MODEL"),
		MarketplaceURL:   envService.Get("MARKETPLACE_URL"),

		SMTPHost: envService.Get("SMTP_HOST"),
		SMTPPort: envService.GetDefault("SMTP_PORT", "587"),
		SMTPUser: envService.Get("SMTP_USER"),
		SMTPPass: envService.Get("SMTP_PASS"),
		MailFrom: envService.Get("MAIL_FROM"),
		MailTo:   splitList(envService.Get("MAIL_TO")),

		Assumptions: entity.EconomicAssumptions{
			ElectricityPricePerKWh: flags.price,
			PanelCostPerKW:         flags.panelCost,
			ExpectedLifetimeYears:  flags.lifetime,
		},
		Pipeline: pipeline.Config{
			ToolURL:       flags.toolURL,
			RetryBound:    flags.retries,
			ActionTimeout: flags.actionTimeout,
			RunTimeout:    flags.runTimeout,
		},
	}
}

func printReport(report *entity.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func stateExitCode(state entity.RunState) int {
	switch state {
	case entity.RunStateCompleted:
		return 0
	case entity.RunStatePartiallyCompleted:
		return 1
	default:
		return 2
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
