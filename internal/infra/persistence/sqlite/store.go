// Package sqlite provides a SQLite-backed record store that mirrors the
// in-memory semantics and snapshots committed state after every successful
// mutation.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"simonbin/internal/core"
	"simonbin/pkg/domain"
)

// Compile-time contract assertion.
var _ core.RecordStore = (*Store)(nil)

const recordsBucket = "records"

// Store persists the record collection to a single SQLite table as a JSON
// snapshot. Reads are served entirely from the embedded in-memory store.
type Store struct {
	*core.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the snapshot database at path and hydrates the
// in-memory store from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "simonbin.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: core.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, recordsBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("decode records: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(s.ExportState())
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		recordsBucket, payload,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", recordsBucket, err)
	}
	return nil
}

// Upsert applies the in-memory mutation, then snapshots to SQLite.
func (s *Store) Upsert(rec domain.IndustryRecord, visitImages []string) (core.UpsertOutcome, error) {
	out, err := s.Store.Upsert(rec, visitImages)
	if err != nil {
		return out, err
	}
	return out, s.persist()
}

// Delete applies the in-memory mutation, then snapshots to SQLite.
func (s *Store) Delete(id string) (domain.IndustryRecord, bool, error) {
	removed, ok, err := s.Store.Delete(id)
	if err != nil || !ok {
		return removed, ok, err
	}
	return removed, ok, s.persist()
}

// BulkDeleteWhere applies the in-memory mutation, then snapshots to SQLite.
func (s *Store) BulkDeleteWhere(pred func(domain.IndustryRecord) bool) (int, error) {
	count, err := s.Store.BulkDeleteWhere(pred)
	if err != nil {
		return count, err
	}
	return count, s.persist()
}

// DeleteCoachingEntry applies the in-memory mutation, then snapshots to SQLite.
func (s *Store) DeleteCoachingEntry(recordID, entryID string) (domain.CoachingRecord, bool, error) {
	removed, ok, err := s.Store.DeleteCoachingEntry(recordID, entryID)
	if err != nil || !ok {
		return removed, ok, err
	}
	return removed, ok, s.persist()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
