package domain

import "time"

// PaymentGateway описывает взаимодействие с внешним платёжным провайдером.
// Все вызовы синхронные; ошибки классифицируются через ErrGateway* sentinel-ы.
type PaymentGateway interface {
	// CreateSession создаёт checkout-сессию по готовому запросу.
	CreateSession(req CheckoutRequest) (CheckoutSession, error)
	// GetSession возвращает текущее состояние сессии по её идентификатору.
	GetSession(sessionID string) (CheckoutSession, error)
	// CreateRefund инициирует возврат средств по payment intent.
	CreateRefund(paymentIntentID, reason string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
