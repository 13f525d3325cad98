package nonce

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"advent-calendar/internal/config"
	"advent-calendar/internal/storage"
)

// Number of random bytes. 16 → 128‑bit
const NONCE_SIZE = 16

type NonceStoreType string

// Supported nonce stores.
const (
	Memory NonceStoreType = "memory"
	SQL    NonceStoreType = "sql"
)

type NonceMissingError struct {
	Nonce string
}

// Error implements the error interface.
func (e *NonceMissingError) Error() string {
	return fmt.Sprintf("nonce not found: %s", e.Nonce)
}

type NonceExpiredError struct {
	Nonce  string
	Expiry time.Time
}

// Error implements the error interface.
func (e *NonceExpiredError) Error() string {
	return fmt.Sprintf("nonce expired: %s (expiry: %s)", e.Nonce, e.Expiry)
}

type NonceStoreInterface interface {
	// stores a nonce with a TTL.
	Put(ctx context.Context, nonce string, ttl time.Duration) error
	// verifies and deletes the nonce.
	// Returns true if the nonce existed (valid request), false otherwise.
	Consume(ctx context.Context, nonce string) (bool, error)

	// Exists reports whether the nonce is known and unexpired, without consuming it.
	Exists(ctx context.Context, nonce string) bool

	ExpireNonces(ctx context.Context) (int64, error)

	Close()
}

// Generate returns a random URL-safe nonce value.
func Generate() (string, error) {
	b := make([]byte, NONCE_SIZE)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a nonce, stores it in store, and returns it.
func New(ctx context.Context, store NonceStoreInterface, ttl time.Duration) (string, error) {
	nonce, err := Generate()
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, nonce, ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce, nil
}

// NewStore builds the appropriate Store implementation based on cfg.
func NewStore(cfg *config.Config, storageProvider storage.Provider) (NonceStoreInterface, error) {
	switch NonceStoreType(cfg.NonceStore) {
	case Memory:
		return NewMemoryStore(), nil
	case SQL:
		if storageProvider == nil {
			return nil, fmt.Errorf("sql nonce store requires a storage provider")
		}
		return NewSQLNonceStore(storageProvider), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.NonceStore)
	}
}

// InitNonceStore builds the configured store and starts its janitor.
func InitNonceStore(cfg *config.Config, storageProvider storage.Provider) (NonceStoreInterface, error) {
	store, err := NewStore(cfg, storageProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nonce store: %w", err)
	}

	interval := janitorInterval(cfg.NonceTTLDuration())
	switch s := store.(type) {
	case *SQLNonceStore:
		go s.janitor(interval)
	case *MemoryStore:
		go s.janitor(interval)
	}

	slog.Info("Initialized nonce store", "type", cfg.NonceStore, "janitor_interval", interval)
	return store, nil
}

// Expired tokens are swept a few times per token lifetime, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}
