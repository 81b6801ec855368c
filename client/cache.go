package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tntchem/devhub/store"
)

// ErrCacheMiss is returned when the cache has no entry for a key.
var ErrCacheMiss = errors.New("cache miss")

const compoundsCacheKey = "compounds"

// Cache is a small SQLite-backed key/value store holding the last successful
// compound fetch, so a fresh session can render the previous result while the
// first load is in flight.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (and if needed initializes) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error { return c.db.Close() }

// PutCompounds overwrites the cached compound list.
func (c *Cache) PutCompounds(ctx context.Context, compounds []*store.Compound) error {
	data, err := json.Marshal(compounds)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		compoundsCacheKey, data, time.Now().UTC())
	return err
}

// Compounds returns the cached compound list, or ErrCacheMiss when nothing
// has been cached yet.
func (c *Cache) Compounds(ctx context.Context) ([]*store.Compound, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, compoundsCacheKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var compounds []*store.Compound
	if err := json.Unmarshal(data, &compounds); err != nil {
		return nil, err
	}
	return compounds, nil
}
