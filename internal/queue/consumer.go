package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"omegavideos/internal/logging"
	"omegavideos/internal/metrics"
)

// Message is one parsed stream entry.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event NotificationEvent
}

// Consumer reads events as a member of a consumer group.
type Consumer interface {
	// EnsureGroup creates the stream and the group when missing.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read returns messages never delivered to any consumer of the group,
	// blocking up to block when none are available.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending returns messages delivered to this consumer but not acked.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
}

// NewConsumer creates a new Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client) Consumer {
	return &RedisConsumer{client: client}
}

// EnsureGroup runs XGROUP CREATE ... MKSTREAM starting at "0" so a new
// group also sees events published before it existed.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	log := logging.Component("Consumer")

	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			log.Debug().Str("stream", stream).Str("group", group).Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}

	log.Info().Str("stream", stream).Str("group", group).Msg("Consumer group created")
	return nil
}

func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, ">", count, block)
}

func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, "0", count, 0)
}

func (c *RedisConsumer) read(ctx context.Context, stream, group, consumer, start string, count int64, block time.Duration) ([]Message, error) {
	args := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, start},
		Count:    count,
		Block:    block,
	}
	// go-redis sends BLOCK 0 (forever) for a zero duration; pending reads
	// must not block at all.
	if start != ">" {
		args.Block = -1
	}

	streams, err := c.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	log := logging.Component("Consumer")
	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseNotificationEvent(msg.Values)
			if err != nil {
				// Malformed entries are acked so they do not come back as pending.
				log.Warn().Err(err).Str("msg_id", msg.ID).Msg("Dropping malformed stream entry")
				metrics.StreamEventsTotal.WithLabelValues(stream, "malformed").Inc()
				_ = c.Ack(ctx, stream, group, msg.ID)
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages, nil
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}
