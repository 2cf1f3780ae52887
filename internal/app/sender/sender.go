// Package sender воркер, который читает очередь кодов подтверждения и отправляет письма.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/review-aggregator/internal/services/sender"
)

// workers сколько писем отправляется одновременно.
const workers = 4

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumeMessages(ctx, a.logger, a.ch, rabbitmq.ConfirmationQueue, workers,
		a.senderService.SendConfirmation)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.ConfirmationQueue), sl.Err(err))
		return err
	}

	select {
	case <-ctx.Done():
		a.logger.Info("Sender service shutting down gracefully")
	case <-done:
		a.logger.Warn("delivery channel closed by broker")
	}
	<-done

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
