// Package gamecache persists the Steam catalog snapshot and per-title
// enrichment payloads between runs so a full pipeline run does not
// re-download a six-figure app list or re-query APIs for known titles.
package gamecache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current cache schema version. Bump when the schema
// changes; users clear the cache file after a mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache file was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// Store is the SQLite-backed lookup cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: cache has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveCatalog replaces the cached catalog snapshot with the supplied
// normalized-key to app-id pairs.
func (s *Store) SaveCatalog(ctx context.Context, pairs map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO catalog_entries (name_key, app_id, cached_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, appID := range pairs {
		if _, err := stmt.ExecContext(ctx, key, appID, now); err != nil {
			return fmt.Errorf("insert catalog entry %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

// LoadCatalog returns the cached catalog snapshot. An empty map means no
// snapshot has been saved yet.
func (s *Store) LoadCatalog(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name_key, app_id FROM catalog_entries")
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]int64)
	for rows.Next() {
		var key string
		var appID int64
		if err := rows.Scan(&key, &appID); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		pairs[key] = appID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return pairs, nil
}

// CatalogCount returns the number of cached catalog entries.
func (s *Store) CatalogCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM catalog_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return count, nil
}

// ClearCatalog removes the cached catalog snapshot, forcing a re-download
// on the next run.
func (s *Store) ClearCatalog(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

// SaveEnrichment caches the enrichment payload for a dedup key.
func (s *Store) SaveEnrichment(ctx context.Context, key string, enrichment *aggregate.Enrichment) error {
	payload, err := json.Marshal(enrichment)
	if err != nil {
		return fmt.Errorf("marshal enrichment: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrichment_entries (title_key, payload, cached_at) VALUES (?, ?, ?)
         ON CONFLICT(title_key) DO UPDATE SET payload=excluded.payload, cached_at=excluded.cached_at`,
		key, string(payload), now)
	if err != nil {
		return fmt.Errorf("insert enrichment %q: %w", key, err)
	}
	return nil
}

// LoadEnrichment returns the cached enrichment payload for a key, if any.
func (s *Store) LoadEnrichment(ctx context.Context, key string) (*aggregate.Enrichment, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM enrichment_entries WHERE title_key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query enrichment %q: %w", key, err)
	}

	var enrichment aggregate.Enrichment
	if err := json.Unmarshal([]byte(payload), &enrichment); err != nil {
		return nil, false, fmt.Errorf("unmarshal enrichment %q: %w", key, err)
	}
	return &enrichment, true, nil
}
