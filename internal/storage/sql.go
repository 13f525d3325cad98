package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"advent-calendar/internal/config"

	"github.com/jmoiron/sqlx"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, err
	}

	return &SQLProvider{
		db:     db,
		config: config,
		logger: slog.With("component", "storage", "driver", driverName),
	}, nil
}

func (p *SQLProvider) runMigrations(ctx context.Context, driver string) error {
	return NewMigrationRunner(p.db, driver).Migrate(ctx, -1)
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := p.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	return version, err
}

func (p *SQLProvider) PutInstance(ctx context.Context, instance CalendarInstance) error {
	instance.ExpiresAt = sqlTime(instance.ExpiresAt)
	instance.UpdatedAt = sqlTime(instance.UpdatedAt)
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO calendar_instances (instance_id, owner_page_id, doors, expires_at, updated_at)
		VALUES (:instance_id, :owner_page_id, :doors, :expires_at, :updated_at)
		ON CONFLICT (instance_id) DO UPDATE SET
			owner_page_id = excluded.owner_page_id,
			doors         = excluded.doors,
			expires_at    = excluded.expires_at,
			updated_at    = excluded.updated_at`, instance)
	return err
}

func (p *SQLProvider) GetInstance(ctx context.Context, instanceID string, now time.Time) (*CalendarInstance, error) {
	var instance CalendarInstance
	err := p.db.GetContext(ctx, &instance, `
		SELECT instance_id, owner_page_id, doors, expires_at, updated_at
		FROM calendar_instances
		WHERE instance_id = ? AND expires_at > ?`, instanceID, sqlTime(now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (p *SQLProvider) ExpireInstances(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM calendar_instances WHERE expires_at <= ?`, sqlTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *SQLProvider) CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO nonces (nonce, expires_at) VALUES (?, ?)`, nonce, sqlTime(expiresAt))
	return err
}

func (p *SQLProvider) ExistsNonce(ctx context.Context, nonce string, now time.Time) (bool, error) {
	var count int
	err := p.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, sqlTime(now))
	return count > 0, err
}

func (p *SQLProvider) ConsumeNonce(ctx context.Context, nonce string, now time.Time) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, sqlTime(now))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (p *SQLProvider) ExpireNonces(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM nonces WHERE expires_at <= ?`, sqlTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// sqlTime normalizes timestamps so the driver's text encoding compares
// lexicographically in time order.
func sqlTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
