package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventSaleCreated        = "sale.created"
	EventSaleStatusChanged  = "sale.status_changed"
)

// -- Pub/Sub Related --
type Event struct {
	EventType   string      `json:"event_type"`
	EntityID    string      `json:"entity_id"`
	Reference   string      `json:"reference,omitempty"`
	FromStatus  string      `json:"from_status,omitempty"`
	Status      string      `json:"status"`
	TotalAmount string      `json:"total_amount"`
	Timestamp   time.Time   `json:"timestamp"`
	Data        interface{} `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher sends each event to stockbook:events:<type> and to
// stockbook:events:all.
type RedisPublisher struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{redis: client, prefix: "stockbook:events"}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("%s:%s", p.prefix, event.EventType)
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.redis.Publish(ctx, p.prefix+":all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (s *Service) publish(ctx context.Context, event Event) {
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Warning: %s event for %s not published: %v", event.EventType, event.EntityID, err)
	}
}
