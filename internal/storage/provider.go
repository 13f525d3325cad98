package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"advent-calendar/internal/config"
)

var ErrNotFound = errors.New("record not found")

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// Calendar instance cache
	PutInstance(ctx context.Context, instance CalendarInstance) error
	// GetInstance returns ErrNotFound for missing or expired rows.
	GetInstance(ctx context.Context, instanceID string, now time.Time) (*CalendarInstance, error)
	ExpireInstances(ctx context.Context, now time.Time) (int64, error)

	// Nonce-related methods
	CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error
	ExistsNonce(ctx context.Context, nonce string, now time.Time) (bool, error)
	ConsumeNonce(ctx context.Context, nonce string, now time.Time) (bool, error)
	ExpireNonces(ctx context.Context, now time.Time) (int64, error)
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider, err := NewSQLiteProvider(config)
		if err != nil {
			slog.Error("Failed to open sqlite storage", "error", err)
			return nil
		}
		if err := provider.runMigrations(context.Background(), "sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			provider.Close()
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
