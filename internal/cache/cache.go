// Package cache mirrors the last known report snapshot to local disk.
// It is a degraded-mode fallback only: written after every successful
// remote interaction, read exclusively when the live subscription fails.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/safespot-sync/internal/domain"
)

// snapshotKey matches the storage key the browser build used, so a
// migration can carry old payloads over unchanged.
const snapshotKey = "safeSpotReports"

// Cache persists one report snapshot in a local sqlite file.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache file and ensures its schema.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS snapshot (
		key      TEXT PRIMARY KEY,
		payload  TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Save overwrites the stored snapshot. Best-effort by contract: the
// caller logs the returned error and moves on, it is never fatal.
func (c *Cache) Save(reports []domain.Report) error {
	payload, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	const upsert = `INSERT INTO snapshot (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	if _, err := c.db.Exec(upsert, snapshotKey, string(payload), domain.NowMillis()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the last saved snapshot, or an empty list if none exists.
func (c *Cache) Load() ([]domain.Report, error) {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM snapshot WHERE key = ?`, snapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var reports []domain.Report
	if err := json.Unmarshal([]byte(payload), &reports); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return reports, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
