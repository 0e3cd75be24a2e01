package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// TopicRecordEvents — топик событий изменения записей каталога.
const TopicRecordEvents = "costumeshop.record.events"

// EventType определяет тип события: "<коллекция>.<действие>", например "shops.created".
type EventType string

// RecordEvent — сообщение об изменении записи.
type RecordEvent struct {
	EventType  EventType      `json:"event_type"`
	Collection string         `json:"collection"`
	Action     string         `json:"action"`
	RecordID   string         `json:"record_id"`
	Record     map[string]any `json:"record,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewRecordEvent переводит доменное событие в сообщение.
func NewRecordEvent(change domain.ChangeEvent) RecordEvent {
	ts := change.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return RecordEvent{
		EventType:  EventType(change.Collection + "." + string(change.Action)),
		Collection: change.Collection,
		Action:     string(change.Action),
		RecordID:   change.RecordID,
		Record:     change.Record,
		Timestamp:  ts,
	}
}

// Key — ключ партиционирования: события одной записи попадают в одну партицию.
func (e RecordEvent) Key() string {
	return e.Collection + "/" + e.RecordID
}

// ParseRecordEvent разбирает RecordEvent из сообщения.
func ParseRecordEvent(message *sarama.ConsumerMessage) (*RecordEvent, error) {
	var event RecordEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record event: %w", err)
	}
	return &event, nil
}
