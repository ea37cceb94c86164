package counter

import (
	"context"
	"strconv"
	"time"
)

// Store is an ordered, timestamp-indexed event log keyed by counter key.
// Implementations must make AddEvent visible to a following CountInRange on
// the same key, and should return once ctx is done. The engine stops waiting
// at its store timeout either way.
type Store interface {
	// CountInRange counts events with from <= at <= to.
	CountInRange(ctx context.Context, key string, from, to time.Time) (int64, error)
	AddEvent(ctx context.Context, key string, at time.Time) error
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error
}

// Pruner is implemented by stores that can drop events older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, key string, before time.Time) error
}

func Key(token, metric string, threshold int) string {
	return token + ":" + metric + ":" + strconv.Itoa(threshold)
}
