package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStoreUnavailable wraps every backend failure, including an open breaker.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// KeyInfo describes a counter key for diagnostics.
type KeyInfo struct {
	Key    string
	Events int64
	// TTL is negative when the key has no expiry or does not exist.
	TTL time.Duration
}

func unavailable(operation, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, operation, key, err)
}

// Inspector is implemented by stores that can describe their keys.
type Inspector interface {
	Inspect(ctx context.Context, key string) (KeyInfo, error)
}
