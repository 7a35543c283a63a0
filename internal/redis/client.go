// Package redis holds the shared Redis client used by the stream fan-out
// and the trending cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"omegavideos/internal/logging"
)

const pingTimeout = 5 * time.Second

// Client wraps the Redis client. One instance is shared by the publisher
// and every worker so they reuse the connection pool.
type Client struct {
	*redis.Client
}

// NewClient parses redisURL (redis://[:password@]host:port[/db]) and
// verifies the server answers before returning.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}

	log := logging.Component("Redis")
	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis")
	return c, nil
}

// Ping fails fast when Redis is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
