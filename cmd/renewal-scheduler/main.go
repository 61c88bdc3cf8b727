package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	renewalscheduler "github.com/magabrotheeeer/subscription-tracker/internal/app/renewal-scheduler"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting renewal-scheduler",
		slog.String("env", cfg.Env),
		slog.Int("lead_days", cfg.LeadDays),
		slog.Duration("interval", cfg.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := renewalscheduler.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("scheduler stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("renewal-scheduler stopped gracefully")
}
