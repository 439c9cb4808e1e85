package core

import (
	"simonbin/pkg/domain"
)

// StorageDriver identifies a concrete record store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // process-lifetime only (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite snapshot file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL snapshot table
)

// RecordStore is the mutation and read surface the service drives. The
// in-memory Store implements it directly; persistence adapters wrap it and
// snapshot committed state after each successful mutation, preserving the
// Snapshot shape exactly.
type RecordStore interface {
	Upsert(rec domain.IndustryRecord, visitImages []string) (UpsertOutcome, error)
	Delete(id string) (domain.IndustryRecord, bool, error)
	BulkDeleteWhere(pred func(domain.IndustryRecord) bool) (int, error)
	DeleteCoachingEntry(recordID, entryID string) (domain.CoachingRecord, bool, error)
	Get(id string) (domain.IndustryRecord, bool)
	List() []domain.IndustryRecord
	Len() int
	ExportState() domain.Snapshot
	ImportState(domain.Snapshot)
}

var _ RecordStore = (*Store)(nil)
