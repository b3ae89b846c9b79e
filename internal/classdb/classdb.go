// Package classdb remembers which class each player was last seen using.
//
// Every store satisfies engine.ClassStore. A missing player is not an
// error at that interface: GetClass reports ok=false. The lower level
// load methods return ErrNotFound instead.
package classdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/seurimas/topper-public-sub002/engine"
	"github.com/seurimas/topper-public-sub002/engine/agent"
	"github.com/seurimas/topper-public-sub002/internal/config"
)

// ErrNotFound means the store has no class for the player.
var ErrNotFound = errors.New("class not found")

// Store is an engine.ClassStore that owns a connection.
type Store interface {
	engine.ClassStore
	Close() error
}

// Open builds the store the config names, wrapped in an LRU cache when
// CacheSize is positive.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Store
	if backend == "" {
		backend = config.BackendMemory
	}
	switch backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		opts := &redis.Options{Addr: cfg.RedisAddr}
		if cfg.StoreDSN != "" {
			if opts, err = redis.ParseURL(cfg.StoreDSN); err != nil {
				return nil, fmt.Errorf("redis url: %w", err)
			}
		}
		s, err = OpenRedis(ctx, opts)
	case config.BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.StoreDSN)
	case config.BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("unknown class store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 && backend != config.BackendMemory {
		c, err := NewCached(s, cfg.CacheSize)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		return c, nil
	}
	return s, nil
}

func parseClass(who, name string) (agent.Class, error) {
	c, ok := agent.ClassFromName(name)
	if !ok {
		return agent.ClassUnknown, fmt.Errorf("stored class %q for %s is not a class", name, who)
	}
	return c, nil
}

// found turns a load result into the engine's (class, ok, err) form.
func found(c agent.Class, err error) (agent.Class, bool, error) {
	if errors.Is(err, ErrNotFound) {
		return agent.ClassUnknown, false, nil
	}
	if err != nil {
		return agent.ClassUnknown, false, err
	}
	return c, true, nil
}
