package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// publisher is the subset of *redis.Client used by RedisSink.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisSink publishes events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  publisher
	channel string
}

// NewRedisSink creates a sink backed by a new Redis client.
func NewRedisSink(addr, password string, db int, channel string) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSink{client: client, channel: channel}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Send implements Sink.
func (s *RedisSink) Send(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", s.channel, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
