// Package sender отправляет письма с кодами подтверждения, полученные из очереди.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/smtp"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// ErrInvalidMessage сообщение из очереди не удалось разобрать.
var ErrInvalidMessage = errors.New("invalid confirmation message")

// Transport открывает SMTP-сессию. From адрес отправителя.
type Transport interface {
	Connect() (smtp.Client, error)
	From() string
}

// Service формирует и отправляет письма.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр Service.
func NewSenderService(log *slog.Logger, transport Transport) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendConfirmation отправляет письмо с кодом подтверждения. Код не логируется.
func (s *Service) SendConfirmation(ctx context.Context, body []byte) error {
	const op = "sender.SendConfirmation"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var message models.ConfirmationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidMessage, err)
	}
	if message.Email == "" || message.Code == "" {
		return fmt.Errorf("%s: %w: empty email or code", op, ErrInvalidMessage)
	}

	subject := "Код подтверждения для получения токена"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\r\n\r\nВаш код подтверждения: %s\r\n\r\n"+
		"Используйте его вместе с именем пользователя, чтобы получить токен доступа.",
		message.Username, message.Code)

	if err := s.sendEmail([]string{message.Email}, subject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("confirmation email sent", slog.String("username", message.Username))
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}
	return nil
}
