// Package postgres provides a Postgres-backed record store mirroring the
// in-memory semantics with a snapshot table, for deployments that want the
// collection to survive process restarts on a shared server.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"simonbin/internal/core"
	"simonbin/pkg/domain"
)

// Compile-time contract assertion.
var _ core.RecordStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/simonbin?sslmode=disable"
	recordsBucket = "records"
)

// Store persists the record collection to Postgres while serving reads from
// the embedded in-memory store.
type Store struct {
	*core.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to the local default), ensures the snapshot table exists, and hydrates the
// in-memory store from any existing snapshot.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: core.NewStore(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, recordsBucket).Scan(&payload)
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
		`INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		recordsBucket, payload,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", recordsBucket, err)
	}
	return nil
}

// Upsert applies the in-memory mutation, then snapshots to Postgres.
func (s *Store) Upsert(rec domain.IndustryRecord, visitImages []string) (core.UpsertOutcome, error) {
	out, err := s.Store.Upsert(rec, visitImages)
	if err != nil {
		return out, err
	}
	return out, s.persist()
}

// Delete applies the in-memory mutation, then snapshots to Postgres.
func (s *Store) Delete(id string) (domain.IndustryRecord, bool, error) {
	removed, ok, err := s.Store.Delete(id)
	if err != nil || !ok {
		return removed, ok, err
	}
	return removed, ok, s.persist()
}

// BulkDeleteWhere applies the in-memory mutation, then snapshots to Postgres.
func (s *Store) BulkDeleteWhere(pred func(domain.IndustryRecord) bool) (int, error) {
	count, err := s.Store.BulkDeleteWhere(pred)
	if err != nil {
		return count, err
	}
	return count, s.persist()
}

// DeleteCoachingEntry applies the in-memory mutation, then snapshots to Postgres.
func (s *Store) DeleteCoachingEntry(recordID, entryID string) (domain.CoachingRecord, bool, error) {
	removed, ok, err := s.Store.DeleteCoachingEntry(recordID, entryID)
	if err != nil || !ok {
		return removed, ok, err
	}
	return removed, ok, s.persist()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
