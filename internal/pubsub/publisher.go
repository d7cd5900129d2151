package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skillpath/internal/config"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("failed to create Pub/Sub client: GCP_PROJECT_ID is empty")
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// Event types emitted by the API.
const (
	EventNodeToggled      = "progress.node_toggled"
	EventRoadmapGenerated = "roadmap.generated"
	EventCareerSimulated  = "career.simulated"
)

type Event struct {
	Type       string         `json:"type"`
	UserID     string         `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// EventEmitter publishes domain events to a single topic. A nil publisher or
// an empty topic turns Emit into a no-op, so local setups need no Pub/Sub.
type EventEmitter struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

func NewEventEmitter(publisher Publisher, topic string, logger zerolog.Logger) *EventEmitter {
	return &EventEmitter{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("service", "EventEmitter").Logger(),
	}
}

// Emit publishes the event. Failures are logged and never reach the caller:
// events are informational and must not fail the request that produced them.
func (e *EventEmitter) Emit(ctx context.Context, ev Event) {
	if e == nil || e.publisher == nil || e.topic == "" {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		e.logger.Error().Err(err).Str("type", ev.Type).Msg("Failed to encode event")
		return
	}
	if _, err := e.publisher.Publish(ctx, e.topic, payload); err != nil {
		e.logger.Warn().Err(err).Str("type", ev.Type).Msg("Failed to publish event")
	}
}
