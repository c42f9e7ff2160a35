package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	quota int64
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	o := buildOptions(opts)
	return &SQLiteStore{db: db, quota: o.quota}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetItem retrieves the value stored under key.
func (s *SQLiteStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get item %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
// It returns ErrQuotaExceeded if the total size of all values would exceed the quota.
func (s *SQLiteStore) SetItem(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var others int64
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM kv_items WHERE key <> ?
		`, key).Scan(&others)
		if err != nil {
			return fmt.Errorf("failed to measure storage usage: %w", err)
		}
		if others+int64(len(value)) > s.quota {
			return fmt.Errorf("failed to set item %q: %w", key, ErrQuotaExceeded)
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv_items (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now, now)
	if err != nil {
		return fmt.Errorf("failed to set item %q: %w", key, err)
	}

	return tx.Commit()
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (s *SQLiteStore) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove item %q: %w", key, err)
	}
	return nil
}
