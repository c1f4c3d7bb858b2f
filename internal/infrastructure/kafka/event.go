package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const eventTypeHeader = "event_type"

// CatalogEvent — событие изменения каталога, прочитанное из топика.
type CatalogEvent struct {
	EventID   string
	EventType usecase.OutboxEventType
	EntityID  string
	CreatedAt time.Time
	Payload   json.RawMessage
}

// EncodeEvent сериализует событие outbox в protobuf Struct.
func EncodeEvent(event *usecase.OutboxEvent) ([]byte, error) {
	var payload any
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	msg, err := structpb.NewStruct(map[string]any{
		"event_id":    event.EventID,
		"event_type":  string(event.EventType),
		"entity_id":   event.EntityID,
		"occurred_at": event.CreatedAt.UTC().Format(time.RFC3339Nano),
		"payload":     payload,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return proto.Marshal(msg)
}

// DecodeEvent разбирает сообщение, записанное EncodeEvent.
func DecodeEvent(data []byte) (*CatalogEvent, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	fields := msg.GetFields()
	eventType := fields["event_type"].GetStringValue()
	if eventType == "" {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("event_type is missing"))
	}

	event := &CatalogEvent{
		EventID:   fields["event_id"].GetStringValue(),
		EventType: usecase.OutboxEventType(eventType),
		EntityID:  fields["entity_id"].GetStringValue(),
	}

	if ts := fields["occurred_at"].GetStringValue(); ts != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		event.CreatedAt = createdAt
	}

	if payload, ok := fields["payload"]; ok {
		raw, err := json.Marshal(payload.AsInterface())
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		event.Payload = raw
	}

	return event, nil
}
