// Command setup-pubsub-local prepares the Pub/Sub emulator for development:
// the domain events topic, its dead-letter topic and a pull subscription on each.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"skillpath/internal/config"
	"skillpath/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	retention   = 7 * 24 * time.Hour
	ackDeadline = 60 * time.Second
	maxAttempts = 5
)

func main() {
	reset := flag.Bool("reset", false, "delete every topic and subscription on the emulator first")
	flag.Parse()

	logger := logger.New()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	if cfg.GCPProjectID == "" || cfg.PubSubEventsTopic == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID and PUBSUB_EVENTS_TOPIC must be set")
	}
	if cfg.PubSubEmulatorHost == "" {
		logger.Fatal().Msg("PUBSUB_EMULATOR_HOST must be set; this command only targets the emulator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID,
		option.WithEndpoint(cfg.PubSubEmulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer client.Close()

	if *reset {
		if err := resetEmulator(ctx, client, logger); err != nil {
			logger.Fatal().Err(err).Msg("Failed to reset emulator")
		}
	}
	if err := ensureEventResources(ctx, client, cfg.PubSubEventsTopic, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up Pub/Sub resources")
	}
	logger.Info().Str("topic", cfg.PubSubEventsTopic).Msg("Pub/Sub setup for local environment complete")
}

func resetEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) error {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		logger.Info().Str("subscription", sub.ID()).Msg("Deleting subscription")
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("subscription", sub.ID()).Msg("Failed to delete subscription")
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		logger.Info().Str("topic", topic.ID()).Msg("Deleting topic")
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("topic", topic.ID()).Msg("Failed to delete topic")
		}
	}
	return nil
}

// ensureEventResources creates <topic>, <topic>-dlq and a pull subscription on
// each. Failed deliveries on the main subscription move to the dead-letter topic.
func ensureEventResources(ctx context.Context, client *pubsub.Client, topicID string, logger zerolog.Logger) error {
	dlq, err := ensureTopic(ctx, client, topicID+"-dlq", logger)
	if err != nil {
		return err
	}
	main, err := ensureTopic(ctx, client, topicID, logger)
	if err != nil {
		return err
	}

	if err := ensureSubscription(ctx, client, topicID+"-sub", pubsub.SubscriptionConfig{
		Topic:       main,
		AckDeadline: ackDeadline,
		RetryPolicy: &pubsub.RetryPolicy{MinimumBackoff: 10 * time.Second, MaximumBackoff: 600 * time.Second},
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlq.String(),
			MaxDeliveryAttempts: maxAttempts,
		},
	}, logger); err != nil {
		return err
	}
	return ensureSubscription(ctx, client, topicID+"-dlq-sub", pubsub.SubscriptionConfig{
		Topic:       dlq,
		AckDeadline: ackDeadline,
	}, logger)
}

func ensureTopic(ctx context.Context, client *pubsub.Client, id string, logger zerolog.Logger) (*pubsub.Topic, error) {
	topic := client.Topic(id)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info().Str("topic", id).Msg("Topic already exists")
		return topic, nil
	}
	logger.Info().Str("topic", id).Dur("retention", retention).Msg("Creating topic")
	return client.CreateTopicWithConfig(ctx, id, &pubsub.TopicConfig{RetentionDuration: retention})
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, id string, cfg pubsub.SubscriptionConfig, logger zerolog.Logger) error {
	sub := client.Subscription(id)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		logger.Info().Str("subscription", id).Msg("Subscription already exists")
		return nil
	}
	logger.Info().Str("subscription", id).Str("topic", cfg.Topic.ID()).Msg("Creating subscription")
	_, err = client.CreateSubscription(ctx, id, cfg)
	return err
}
