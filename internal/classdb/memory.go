package classdb

import (
	"context"
	"sync"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// MemoryStore keeps classes for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	classes map[string]agent.Class
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{classes: make(map[string]agent.Class)}
}

func (m *MemoryStore) GetClass(_ context.Context, who string) (agent.Class, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[who]
	return c, ok, nil
}

func (m *MemoryStore) SetClass(_ context.Context, who string, class agent.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[who] = class
	return nil
}

func (m *MemoryStore) Close() error { return nil }
