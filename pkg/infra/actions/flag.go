package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/NeuralTrust/banhammer/pkg/infra/cache"
)

const (
	BlockLocalType  = "block_local"
	RecordLocalType = "record_local"

	BlockedSuffix  = ":blocked"
	RecordedSuffix = ":recorded"
)

// flagFactory builds actions that set "<token><suffix>" for the action
// duration, in redis when available and in process otherwise.
type flagFactory struct {
	typ    string
	suffix string
	cache  cache.Client
	memory *cache.TTLMap
}

func NewBlockLocalFactory(c cache.Client, memory *cache.TTLMap) Factory {
	return &flagFactory{typ: BlockLocalType, suffix: BlockedSuffix, cache: c, memory: memory}
}

func NewRecordLocalFactory(c cache.Client, memory *cache.TTLMap) Factory {
	return &flagFactory{typ: RecordLocalType, suffix: RecordedSuffix, cache: c, memory: memory}
}

func (f *flagFactory) Type() string {
	return f.typ
}

func (f *flagFactory) ValidateConfig(map[string]interface{}) error {
	if f.cache == nil && f.memory == nil {
		return errors.New("neither redis nor an in-memory map is configured")
	}
	return nil
}

func (f *flagFactory) WithSettings(name string, _ map[string]interface{}) (action.Action, error) {
	return &flagAction{name: name, suffix: f.suffix, cache: f.cache, memory: f.memory}, nil
}

type flagAction struct {
	name   string
	suffix string
	cache  cache.Client
	memory *cache.TTLMap
}

func (a *flagAction) Name() string {
	return a.name
}

// NeedsDuration makes ladders reject a flag action without an expiry.
func (a *flagAction) NeedsDuration() bool {
	return true
}

func (a *flagAction) Execute(
	ctx context.Context,
	token string,
	duration time.Duration,
	_ string,
	_ time.Duration,
	_ int64,
) error {
	if duration <= 0 {
		return fmt.Errorf("%s needs a positive action duration, got %s", a.name, duration)
	}
	key := token + a.suffix
	if a.cache == nil {
		a.memory.SetWithTTL(key, true, duration)
		return nil
	}
	if err := a.cache.Set(ctx, key, "1", duration); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Blocker reads the flag written by block_local.
type Blocker interface {
	IsBlocked(ctx context.Context, token string) (bool, error)
	// Remaining returns the time left on a block, zero when not blocked.
	Remaining(ctx context.Context, token string) (time.Duration, error)
}

type blocker struct {
	cache  cache.Client
	memory *cache.TTLMap
}

func NewBlocker(c cache.Client, memory *cache.TTLMap) Blocker {
	return &blocker{cache: c, memory: memory}
}

func (b *blocker) IsBlocked(ctx context.Context, token string) (bool, error) {
	key := token + BlockedSuffix
	if b.cache == nil {
		if b.memory == nil {
			return false, nil
		}
		_, ok := b.memory.Get(key)
		return ok, nil
	}
	_, err := b.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return true, nil
}

func (b *blocker) Remaining(ctx context.Context, token string) (time.Duration, error) {
	key := token + BlockedSuffix
	if b.cache == nil {
		if b.memory == nil {
			return 0, nil
		}
		left, _ := b.memory.Remaining(key)
		return left, nil
	}
	ttl, err := b.cache.TTL(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read ttl of %s: %w", key, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
