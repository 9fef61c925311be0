package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Telemetry records import/share events as redis counters. It is strictly
// best-effort: failures are logged and swallowed, they must never affect
// the operation that triggered them.
type Telemetry struct {
	client *redis.Client
}

func NewTelemetry(r *RedisClient) *Telemetry {
	return &Telemetry{client: r.Client}
}

func (t *Telemetry) RecordShare(ctx context.Context, deckID string) {
	t.incr(ctx, "deckforge:shares", deckID)
}

func (t *Telemetry) RecordImport(ctx context.Context, deckID string) {
	t.incr(ctx, "deckforge:imports", deckID)
}

func (t *Telemetry) incr(ctx context.Context, counter, deckID string) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	pipe := t.client.Pipeline()
	pipe.Incr(ctx, counter)
	pipe.Incr(ctx, counter+":"+deckID)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("counter", counter).Msg("Telemetry write failed")
	}
}
