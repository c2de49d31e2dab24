// Package redis provides the append-only settlement event log on Redis
// Streams. The core only ever appends; consumers (indexers, UIs) read the
// stream out-of-band.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/event"
	"github.com/redis/go-redis/v9"
)

const defaultStreamKey = "bulkpay:events"

// Stream appends settlement events to a Redis Stream via XADD. Entry IDs are
// server-assigned, so the log is ordered by arrival.
type Stream struct {
	client *redis.Client
	key    string
}

var _ event.Publisher = (*Stream)(nil)

func NewStream(url, key string) (*Stream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if key == "" {
		key = defaultStreamKey
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Stream{client: client, key: key}, nil
}

func (s *Stream) Publish(ctx context.Context, env event.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]any{
			"id":    env.ID.String(),
			"kind":  string(env.Kind),
			"event": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.key, err)
	}
	return nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}
