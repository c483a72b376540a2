package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// EventEnvelope — формат сообщения в topic событий заказа. Payload несёт
// сериализованный OrderEvent. Тот же конверт восстанавливает
// cmd/dlq-reprocess при повторной публикации из DLQ.
type EventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEventEnvelope оборачивает outbox-сообщение в конверт публикации
// со штампом текущего времени.
func NewEventEnvelope(msg domain.OutboxMessage) EventEnvelope {
	return EventEnvelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

// PartitionKey возвращает ключ партиционирования: события одного заказа
// должны попадать в одну партицию, чтобы сохранить порядок.
func (e EventEnvelope) PartitionKey() string {
	if e.AggregateID != "" {
		return e.AggregateID
	}
	return e.ID
}

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	envelope := NewEventEnvelope(event)
	return p.producer.PublishEvent(p.topic, envelope.PartitionKey(), envelope)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
