package ingest

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cuemby/linkproxy/internal/apperr"
)

// MessageSource is the subset of a pub/sub subscription the loop needs.
// RedisSource is the only implementation in this module.
type MessageSource interface {
	ReceiveMessage(ctx context.Context) ([]byte, error)
	Reconnect(ctx context.Context) error
	Close() error
}

// RedisSource subscribes to a single Redis Pub/Sub channel, grounded on
// the "cache" channel the original service publishes document
// invalidations to.
type RedisSource struct {
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
}

func NewRedisSource(client *redis.Client, channel string) *RedisSource {
	return &RedisSource{client: client, channel: channel}
}

func (r *RedisSource) Reconnect(ctx context.Context) error {
	if r.pubsub != nil {
		_ = r.pubsub.Close()
	}
	r.pubsub = r.client.Subscribe(ctx, r.channel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		return apperr.Wrap(apperr.KindBackendUnavailable, "subscribe to "+r.channel, err)
	}
	return nil
}

func (r *RedisSource) ReceiveMessage(ctx context.Context) ([]byte, error) {
	if r.pubsub == nil {
		if err := r.Reconnect(ctx); err != nil {
			return nil, err
		}
	}
	msg, err := r.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return nil, classifyRedisError(err)
	}
	return []byte(msg.Payload), nil
}

func (r *RedisSource) Close() error {
	if r.pubsub == nil {
		return nil
	}
	return r.pubsub.Close()
}

// classifyRedisError maps a redis client error to a droppable or fatal
// apperr.Kind so the loop knows whether to reconnect (spec.md §4.6:
// "timeout, refused, cluster, I/O" are droppable).
func classifyRedisError(err error) error {
	if err == nil {
		return nil
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return apperr.Wrap(apperr.KindTimeout, "redis receive timed out", err)
	}
	return apperr.Wrap(apperr.KindBackendUnavailable, fmt.Sprintf("redis receive failed: %v", err), err)
}
