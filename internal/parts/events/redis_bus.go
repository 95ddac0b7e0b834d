package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus publishes events on a Redis channel. Every process runs a
// forwarder that feeds received events into its local Hub, so events reach
// SSE clients connected to any instance.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBus(rdb *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = "partslib:events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{rdb: rdb, channel: channel, logger: logger.With(zap.String("component", "redis_bus"))}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes and calls onEvent for every message until ctx is done.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					b.logger.Warn("bad event payload", zap.Error(err))
					continue
				}
				onEvent(e)
			}
		}
	}()
	return nil
}
