// Package cache keeps sanitized calendar instances between page render and
// door reveal. Entries expire silently after a fixed TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"advent-calendar/internal/config"
	"advent-calendar/internal/door"
	"advent-calendar/internal/storage"
)

// Instance is one rendered calendar occurrence.
type Instance struct {
	ID          string    `json:"instanceId"`
	OwnerPageID int64     `json:"ownerPageId"`
	Doors       door.List `json:"doors"`
}

// Cache maps instance ids to instances. It performs no authorization.
type Cache interface {
	// Put stores or overwrites the instance.
	Put(ctx context.Context, instanceID string, ownerPageID int64, doors door.List) error
	// Get returns false for missing and expired entries alike.
	Get(ctx context.Context, instanceID string) (Instance, bool, error)
	// Prune removes expired entries and returns how many were dropped.
	Prune(ctx context.Context) (int64, error)
}

// New builds the cache backend named by cfg.CacheStore.
func New(cfg *config.Config, provider storage.Provider) (Cache, error) {
	ttl := cfg.CacheTTLDuration()
	switch cfg.CacheStore {
	case "", "memory":
		return NewMemory(ttl), nil
	case "sql":
		if provider == nil {
			return nil, fmt.Errorf("sql cache requires a storage provider")
		}
		return NewSQL(provider, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.CacheStore)
	}
}

func cloneDoors(doors door.List) door.List {
	out := make(door.List, len(doors))
	copy(out, doors)
	return out
}

type clock func() time.Time
