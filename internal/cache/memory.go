package cache

import (
	"context"
	"sync"
	"time"

	"advent-calendar/internal/door"
)

type memoryEntry struct {
	instance Instance
	expires  time.Time
}

// Memory is a process-local cache with lazy expiry on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     clock
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, instanceID string, ownerPageID int64, doors door.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[instanceID] = memoryEntry{
		instance: Instance{ID: instanceID, OwnerPageID: ownerPageID, Doors: cloneDoors(doors)},
		expires:  m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, instanceID string) (Instance, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[instanceID]
	m.mu.RUnlock()
	if !ok {
		return Instance{}, false, nil
	}
	if !m.now().Before(entry.expires) {
		m.mu.Lock()
		if current, ok := m.entries[instanceID]; ok && !m.now().Before(current.expires) {
			delete(m.entries, instanceID)
		}
		m.mu.Unlock()
		return Instance{}, false, nil
	}
	inst := entry.instance
	inst.Doors = cloneDoors(inst.Doors)
	return inst, true, nil
}

func (m *Memory) Prune(ctx context.Context) (int64, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}
