package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBus is a Bus backed by Redis pub/sub, for running several server
// instances against one database: a mutation committed on any instance
// reaches the push subscribers of all of them.
type RedisBus struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to Redis at addr and publishes on the named channel.
func NewRedisBus(addr, channel string) (*RedisBus, error) {
	if channel == "" {
		channel = "eventorganizer:mutations"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{rdb: rdb, channel: channel}, nil
}

// Publish sends the notification as JSON on the pub/sub channel.
func (b *RedisBus) Publish(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the pub/sub channel and hands every decoded
// notification to onMsg until ctx is canceled.
func (b *RedisBus) StartForwarder(ctx context.Context, onMsg func(n Notification)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures the subscription actually started
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
				var n Notification
				if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
					slog.Warn("bad notification payload on redis channel", "error", err)
					continue
				}
				onMsg(n)
			}
		}
	}()

	return nil
}

// Close closes the Redis client.
func (b *RedisBus) Close() error {
	return b.rdb.Close()
}
