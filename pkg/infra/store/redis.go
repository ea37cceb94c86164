package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/counter"
	"github.com/NeuralTrust/banhammer/pkg/infra/breaker"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	_ counter.Store  = (*RedisStore)(nil)
	_ counter.Pruner = (*RedisStore)(nil)
)

// RedisStore keeps one sorted set per counter key. Scores are unix seconds
// with microsecond precision and members are unique per event.
type RedisStore struct {
	redis        *redis.Client
	breaker      breaker.CircuitBreaker
	uuidProvider func() uuid.UUID
}

type RedisStoreOpts struct {
	Breaker      breaker.CircuitBreaker
	UuidProvider func() uuid.UUID
}

func NewRedisStore(redisClient *redis.Client, opts *RedisStoreOpts) *RedisStore {
	s := &RedisStore{
		redis:        redisClient,
		uuidProvider: uuid.New,
	}
	if opts != nil && opts.UuidProvider != nil {
		s.uuidProvider = opts.UuidProvider
	}
	if opts != nil && opts.Breaker != nil {
		s.breaker = opts.Breaker
	} else {
		s.breaker = breaker.New("counter-store", breaker.DefaultTimeout, breaker.DefaultMaxFailures)
	}
	return s
}

func scoreOf(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// Score formats a timestamp as a sorted set range bound.
func Score(t time.Time) string {
	return strconv.FormatFloat(scoreOf(t), 'f', 6, 64)
}

func (s *RedisStore) CountInRange(ctx context.Context, key string, from, to time.Time) (int64, error) {
	var count int64
	err := s.breaker.Execute(func() error {
		var err error
		count, err = s.redis.ZCount(ctx, key, Score(from), Score(to)).Result()
		return err
	})
	if err != nil {
		return 0, unavailable("zcount", key, err)
	}
	return count, nil
}

func (s *RedisStore) AddEvent(ctx context.Context, key string, at time.Time) error {
	member := fmt.Sprintf("%d:%s", at.UnixNano(), s.uuidProvider().String())
	err := s.breaker.Execute(func() error {
		return s.redis.ZAdd(ctx, key, &redis.Z{Score: scoreOf(at), Member: member}).Err()
	})
	if err != nil {
		return unavailable("zadd", key, err)
	}
	return nil
}

func (s *RedisStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	err := s.breaker.Execute(func() error {
		return s.redis.Expire(ctx, key, ttl).Err()
	})
	if err != nil {
		return unavailable("expire", key, err)
	}
	return nil
}

// Prune removes events strictly older than before.
func (s *RedisStore) Prune(ctx context.Context, key string, before time.Time) error {
	err := s.breaker.Execute(func() error {
		return s.redis.ZRemRangeByScore(ctx, key, "0", "("+Score(before)).Err()
	})
	if err != nil {
		return unavailable("zremrangebyscore", key, err)
	}
	return nil
}

func (s *RedisStore) Inspect(ctx context.Context, key string) (KeyInfo, error) {
	info := KeyInfo{Key: key}
	err := s.breaker.Execute(func() error {
		events, err := s.redis.ZCard(ctx, key).Result()
		if err != nil {
			return err
		}
		ttl, err := s.redis.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		info.Events = events
		info.TTL = ttl
		return nil
	})
	if err != nil {
		return KeyInfo{}, unavailable("inspect", key, err)
	}
	return info, nil
}
