package classdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

const redisPrefix = "class:"

// RedisStore keeps one string key per player.
type RedisStore struct {
	rdb *redis.Client
}

// OpenRedis connects and pings.
func OpenRedis(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (r *RedisStore) load(ctx context.Context, who string) (agent.Class, error) {
	name, err := r.rdb.Get(ctx, redisPrefix+who).Result()
	if errors.Is(err, redis.Nil) {
		return agent.ClassUnknown, ErrNotFound
	}
	if err != nil {
		return agent.ClassUnknown, fmt.Errorf("redis get %s: %w", who, err)
	}
	return parseClass(who, name)
}

func (r *RedisStore) GetClass(ctx context.Context, who string) (agent.Class, bool, error) {
	return found(r.load(ctx, who))
}

func (r *RedisStore) SetClass(ctx context.Context, who string, class agent.Class) error {
	if err := r.rdb.Set(ctx, redisPrefix+who, class.String(), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", who, err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.rdb.Close() }
