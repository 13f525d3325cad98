package storage

import (
	"os"
	"path/filepath"

	"advent-calendar/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (*SQLiteProvider, error) {
	path := config.SQLite.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	sqlProvider, err := NewSQLProvider(config, "sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway, and every :memory: connection is a
	// separate database.
	sqlProvider.db.SetMaxOpenConns(1)
	return &SQLiteProvider{SQLProvider: *sqlProvider}, nil
}
