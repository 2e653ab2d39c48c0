package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mtlprog/taskflow/internal/domain"
)

// Redis publishes notifications to a pub/sub channel and lets websocket
// handlers subscribe to it.
type Redis struct {
	client  redis.UniversalClient
	channel string
}

// NewRedis connects to the Redis server at url (redis://...) and verifies it responds.
func NewRedis(ctx context.Context, url, channel string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr, "channel", channel)

	return NewRedisClient(client, channel), nil
}

// NewRedisClient wraps an already connected client. Close closes it.
func NewRedisClient(client redis.UniversalClient, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Notify publishes n. Failures are logged and dropped.
func (r *Redis) Notify(ctx context.Context, n domain.Notification) {
	payload, err := Encode(n)
	if err != nil {
		slog.Error("failed to encode notification", "error", err)
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		slog.Error("failed to publish notification",
			"channel", r.channel,
			"kind", n.Kind,
			"error", err,
		)
	}
}

// Subscribe returns a stream of raw event payloads and a cleanup func.
// The stream closes when ctx is done or the subscription ends.
func (r *Redis) Subscribe(ctx context.Context) (<-chan []byte, func(), error) {
	sub := r.client.Subscribe(ctx, r.channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	out := make(chan []byte, 64)
	messages := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}
