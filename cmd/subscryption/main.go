package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dorakingx/subscryption/adapter/cli"
	cliAdmin "github.com/dorakingx/subscryption/adapter/cli/admin"
	cliPlan "github.com/dorakingx/subscryption/adapter/cli/plan"
	cliSubscription "github.com/dorakingx/subscryption/adapter/cli/subscription"
	"github.com/dorakingx/subscryption/internal/app"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/pkg/config"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			// In development, allow CLI to run without database
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		// Create CLI app with handlers
		cliApp = cli.NewApp(
			container.CreatePlanHandler,
			container.UpdatePlanStatusHandler,
			container.SubscribeHandler,
			container.CancelHandler,
			container.CollectPaymentHandler,
			container.SetPausedHandler,
			container.AuthorizePullerHandler,
			container.TransferOwnershipHandler,
			container.GetPlanHandler,
			container.GetPlanCountHandler,
			container.ListPlansHandler,
			container.GetSubscriptionHandler,
			container.IsSubscribedHandler,
		)
		cliApp.SetCurrentAccount(sharedDomain.NewIdentity(cfg.Account))
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(cliPlan.Cmd)
	cli.AddCommand(cliSubscription.Cmd)
	cli.AddCommand(cliAdmin.Cmd)

	// Execute CLI
	cli.Execute()
}
