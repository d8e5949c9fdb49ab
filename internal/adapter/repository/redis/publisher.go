package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// EventMessage is the JSON document published for every outbox event.
type EventMessage struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// EventPublisher publishes outbox events to a Redis pub/sub channel.
type EventPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewEventPublisher creates a publisher for channel.
func NewEventPublisher(client redis.UniversalClient, channel string) *EventPublisher {
	return &EventPublisher{client: client, channel: channel}
}

// Publish sends the event. Having no subscribers is not an error.
func (p *EventPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(EventMessage{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*EventPublisher)(nil)
