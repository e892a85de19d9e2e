package events

import (
	"context"
	"encoding/json"
	"fmt"

	"propmedia/pkg/logger"
	"propmedia/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const RedisChannel = "posts:events"

// RedisBridge carries post change events between front-end instances over
// redis pub/sub.
type RedisBridge struct {
	rdb    *redis.Client
	origin string
	log    *logger.Logger
}

func NewRedisBridge(rdb *redis.Client, origin string, log *logger.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, origin: origin, log: log}
}

func (r *RedisBridge) Name() string {
	return "redis"
}

func (r *RedisBridge) Forward(ctx context.Context, e Event) error {
	if r.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.rdb.Publish(ctx, RedisChannel, payload).Err()
}

// Start subscribes to the shared channel and republishes events from other
// instances on bus until ctx is done.
func (r *RedisBridge) Start(ctx context.Context, bus *Bus) error {
	if r.rdb == nil {
		return nil
	}

	sub := r.rdb.Subscribe(ctx, RedisChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", RedisChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("[EVENTS] redis subscriber panicked: %v", rec)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.handle(bus, msg.Payload)
			}
		}
	}()

	r.log.Info("[EVENTS] subscribed to %s", RedisChannel)
	return nil
}

func (r *RedisBridge) handle(bus *Bus, payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.log.Warn("[EVENTS] dropping malformed event: %v", err)
		return
	}
	if e.Origin == r.origin || !e.Kind.Valid() {
		return
	}
	metrics.RecordPostEvent(string(e.Kind), "redis")
	bus.Publish(e)
}
