// Package cache persists extracted record sets per (source kind, query key)
// with a last-updated stamp. It is the only place scrape results live, never
// in process-wide buffers, so concurrent requests for different keywords
// cannot interfere and results survive restarts.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ixink/uiu-student-bot/internal/record"
)

// DefaultQueryKey scopes entries for lookups without a query term.
const DefaultQueryKey = "default"

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS source_cache (
			kind         TEXT NOT NULL,
			query_key    TEXT NOT NULL DEFAULT 'default',
			records      TEXT NOT NULL,
			last_updated INTEGER NOT NULL,
			PRIMARY KEY (kind, query_key)
		);
		CREATE INDEX IF NOT EXISTS idx_source_cache_updated ON source_cache(last_updated);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// NormalizeKey maps a raw query term to a cache key. Empty terms share the
// default entry.
func NormalizeKey(queryKey string) string {
	k := strings.ToLower(strings.TrimSpace(queryKey))
	if k == "" {
		return DefaultQueryKey
	}
	return k
}

// Put replaces the entry for (kind, queryKey) atomically, stamping
// last_updated with the current time.
func (c *Cache) Put(kind record.SourceKind, queryKey string, records []record.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding records for %s: %w", kind, err)
	}
	_, err = c.writeDB.Exec(`
		INSERT INTO source_cache (kind, query_key, records, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, query_key) DO UPDATE SET
			records = excluded.records,
			last_updated = excluded.last_updated
	`, string(kind), NormalizeKey(queryKey), string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry %s/%s: %w", kind, NormalizeKey(queryKey), err)
	}
	return nil
}

// Get returns the entry for (kind, queryKey) and whether one exists.
// Staleness is the caller's judgment, via Entry.IsStale.
func (c *Cache) Get(kind record.SourceKind, queryKey string) (Entry, bool, error) {
	var (
		payload string
		updated int64
	)
	key := NormalizeKey(queryKey)
	err := c.readDB.QueryRow(`
		SELECT records, last_updated FROM source_cache
		WHERE kind = ? AND query_key = ?
	`, string(kind), key).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry %s/%s: %w", kind, key, err)
	}

	var records []record.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		// A corrupt payload is treated as a miss; the next Put repairs it.
		return Entry{}, false, fmt.Errorf("decoding cache entry %s/%s: %w", kind, key, err)
	}
	return Entry{
		Kind:        kind,
		QueryKey:    key,
		Records:     records,
		LastUpdated: time.Unix(updated, 0),
	}, true, nil
}

// Prune deletes entries older than the retention window and reports how many
// were removed.
func (c *Cache) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := c.writeDB.Exec(`DELETE FROM source_cache WHERE last_updated < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the entry count and on-disk size of the cache database.
func (c *Cache) Stats(dbPath string) (int64, int64, error) {
	var count int64
	if err := c.readDB.QueryRow(`SELECT COUNT(*) FROM source_cache`).Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting entries: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("reading db size: %w", err)
	}
	return count, info.Size(), nil
}
