package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProductCreated  OutboxEventType = "product.created"
	ProductUpdated  OutboxEventType = "product.updated"
	ProductDeleted  OutboxEventType = "product.deleted"
	CategoryCreated OutboxEventType = "category.created"
)

// OutboxEvent — событие изменения каталога, записанное в одной транзакции с самим изменением.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	EntityID    string
	Payload     json.RawMessage
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventType OutboxEventType, entityID string, payload json.RawMessage, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		EntityID:  entityID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: now,
	}
}
