package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/review-aggregator/internal/app/sender"
	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting confirmation mail sender",
		slog.String("env", cfg.Env),
		slog.String("queue", rabbitmq.ConfirmationQueue),
		slog.String("smtp_host", cfg.SMTP.SMTPHost),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sender app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("sender app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("sender app stopped gracefully")
}
