// Package main Review Aggregator API
//
// @title           Review Aggregator API
// @version         1.0
// @description     API для отзывов на произведения: регистрация по коду подтверждения, произведения, отзывы, комментарии и рейтинг.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/review-aggregator/docs"
	"github.com/magabrotheeeer/review-aggregator/internal/app/reviewaggregator"
	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting review-aggregator", slog.String("env", cfg.Env))
	logger.Debug("loaded config", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reviewaggregator.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("review-aggregator stopped gracefully")
}
