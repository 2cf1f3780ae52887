package rabbitmq

const (
	// NotificationsExchange direct-обменник для писем пользователям.
	NotificationsExchange = "notifications"
	// ConfirmationRoutingKey ключ маршрутизации писем с кодом подтверждения.
	ConfirmationRoutingKey = "confirmation"
	// ConfirmationQueue очередь воркера-отправителя.
	ConfirmationQueue = "notification.confirmation"

	prefetchCount = 10
)

// QueueConfig очередь и ключ, которым она привязана к NotificationsExchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues очереди, которые слушает воркер-отправитель.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ConfirmationQueue, RoutingKey: ConfirmationRoutingKey},
	}
}
