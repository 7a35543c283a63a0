package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"omegavideos/internal/logging"
	"omegavideos/internal/metrics"
)

// Publisher adds events to a stream.
type Publisher interface {
	// Publish returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event NotificationEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event NotificationEvent) (string, error) {
	log := logging.Component("Publisher")
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		metrics.StreamEventsTotal.WithLabelValues(stream, "publish_error").Inc()
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		metrics.StreamEventsTotal.WithLabelValues(stream, "publish_error").Inc()
		log.Warn().Err(err).Str("stream", stream).Str("type", event.Type).Msg("Publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	metrics.StreamEventsTotal.WithLabelValues(stream, "published").Inc()
	log.Debug().
		Str("stream", stream).
		Str("type", event.Type).
		Str("msg_id", messageID).
		Int("intents", len(event.Intents)).
		Dur("duration", time.Since(startTime)).
		Msg("Publish OK")

	return messageID, nil
}
