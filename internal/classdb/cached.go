package classdb

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// Cached reads through and writes through an LRU in front of another
// store. Misses are not cached: a class seen by another session shows up
// on the next lookup.
type Cached struct {
	next  Store
	cache *lru.Cache[string, agent.Class]
}

func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[string, agent.Class](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) GetClass(ctx context.Context, who string) (agent.Class, bool, error) {
	if class, ok := c.cache.Get(who); ok {
		return class, true, nil
	}
	class, ok, err := c.next.GetClass(ctx, who)
	if err != nil || !ok {
		return class, ok, err
	}
	c.cache.Add(who, class)
	return class, true, nil
}

func (c *Cached) SetClass(ctx context.Context, who string, class agent.Class) error {
	if err := c.next.SetClass(ctx, who, class); err != nil {
		c.cache.Remove(who)
		return err
	}
	c.cache.Add(who, class)
	return nil
}

// Len reports how many players are cached.
func (c *Cached) Len() int { return c.cache.Len() }

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.next.Close()
}
