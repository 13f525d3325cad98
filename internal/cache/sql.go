package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advent-calendar/internal/door"
	"advent-calendar/internal/storage"
)

// SQL persists instances through a storage provider, so reveals survive a
// process restart and work across replicas sharing a database.
type SQL struct {
	storage storage.Provider
	ttl     time.Duration
	now     clock
}

func NewSQL(provider storage.Provider, ttl time.Duration) *SQL {
	return &SQL{storage: provider, ttl: ttl, now: time.Now}
}

func (s *SQL) Put(ctx context.Context, instanceID string, ownerPageID int64, doors door.List) error {
	encoded, err := json.Marshal(doors)
	if err != nil {
		return fmt.Errorf("encode doors: %w", err)
	}
	now := s.now()
	return s.storage.PutInstance(ctx, storage.CalendarInstance{
		InstanceID:  instanceID,
		OwnerPageID: ownerPageID,
		Doors:       string(encoded),
		ExpiresAt:   now.Add(s.ttl),
		UpdatedAt:   now,
	})
}

func (s *SQL) Get(ctx context.Context, instanceID string) (Instance, bool, error) {
	row, err := s.storage.GetInstance(ctx, instanceID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return Instance{}, false, nil
	}
	if err != nil {
		return Instance{}, false, err
	}
	var doors door.List
	if err := json.Unmarshal([]byte(row.Doors), &doors); err != nil {
		return Instance{}, false, fmt.Errorf("decode doors for %s: %w", instanceID, err)
	}
	return Instance{ID: row.InstanceID, OwnerPageID: row.OwnerPageID, Doors: doors}, true, nil
}

func (s *SQL) Prune(ctx context.Context) (int64, error) {
	return s.storage.ExpireInstances(ctx, s.now())
}
