// Package notification доставляет коды подтверждения пользователю через брокер:
// API публикует сообщение, воркер-отправитель отправляет письмо.
package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// Publisher публикует письма с кодом подтверждения в обменник уведомлений.
// Сообщения транзиентные: брокер не записывает код на диск.
type Publisher struct {
	mu sync.Mutex
	ch rabbitmq.Channel
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// SendConfirmation публикует код для пользователя username на адрес email.
func (p *Publisher) SendConfirmation(ctx context.Context, email, username, code string) error {
	const op = "notification.SendConfirmation"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := models.ConfirmationMessage{Email: email, Username: username, Code: code}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.NotificationsExchange, rabbitmq.ConfirmationRoutingKey,
		amqp.Transient, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
