package cache

import (
	"context"
	"testing"
	"time"

	"advent-calendar/internal/config"
	"advent-calendar/internal/door"
	"advent-calendar/internal/storage"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T, now *time.Time) map[string]Cache {
	t.Helper()
	clk := func() time.Time { return *now }

	mem := NewMemory(time.Hour)
	mem.now = clk

	provider := storage.NewProvider(&config.Storage{SQLite: &config.SQLLiteStorage{Path: ":memory:"}})
	require.NotNil(t, provider)
	t.Cleanup(func() { provider.Close() })
	sql := NewSQL(provider, time.Hour)
	sql.now = clk

	return map[string]Cache{"memory": mem, "sql": sql}
}

func TestCache_PutGetExpire(t *testing.T) {
	now := time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
	for name, c := range backends(t, &now) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := now

			_, ok, err := c.Get(ctx, "missing")
			require.NoError(t, err)
			require.False(t, ok)

			doors := door.Sanitize([]door.Raw{{"day": 3, "title": "Three"}})
			require.NoError(t, c.Put(ctx, "inst", 42, doors))

			got, ok, err := c.Get(ctx, "inst")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "inst", got.ID)
			require.Equal(t, int64(42), got.OwnerPageID)
			require.Equal(t, doors, got.Doors)

			// Overwrite with updated data.
			updated := door.Sanitize([]door.Raw{{"day": 3, "title": "Drei"}})
			require.NoError(t, c.Put(ctx, "inst", 42, updated))
			got, _, err = c.Get(ctx, "inst")
			require.NoError(t, err)
			require.Equal(t, "Drei", got.Doors[2].Title)

			now = start.Add(2 * time.Hour)
			_, ok, err = c.Get(ctx, "inst")
			require.NoError(t, err)
			require.False(t, ok, "entries expire silently")

			now = start
		})
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	require.NoError(t, c.Put(ctx, "inst", 1, door.Sanitize(nil)))

	got, _, _ := c.Get(ctx, "inst")
	got.Doors[0].Title = "mutated"

	again, _, _ := c.Get(ctx, "inst")
	require.Equal(t, "Door 1", again.Doors[0].Title)
}

func TestCache_Prune(t *testing.T) {
	now := time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
	for name, c := range backends(t, &now) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := now
			require.NoError(t, c.Put(ctx, "a", 1, door.Sanitize(nil)))
			now = start.Add(2 * time.Hour)
			removed, err := c.Prune(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(1), removed)
			now = start
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New(&config.Config{CacheStore: "memory", CacheTTL: 60}, nil)
	require.NoError(t, err)
	require.IsType(t, &Memory{}, c)

	_, err = New(&config.Config{CacheStore: "sql", CacheTTL: 60}, nil)
	require.Error(t, err)

	_, err = New(&config.Config{CacheStore: "redis", CacheTTL: 60}, nil)
	require.Error(t, err)
}
