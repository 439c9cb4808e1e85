package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"simonbin/pkg/domain"
)

// Store holds the authoritative ordered collection of industry records.
// Insertion order is part of the contract: a newly created record sits at
// index 0 and an upsert of an existing id replaces it in place. Every
// mutation is a single atomic in-memory transformation guarded by the mutex;
// reads hand out deep clones so no caller can alias committed state.
type Store struct {
	mu      sync.RWMutex
	records []domain.IndustryRecord
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// NewRecordID generates an identifier for a record created by a caller that
// does not supply one.
func NewRecordID() string { return newID() }

// UpsertOutcome reports what an upsert did, including the entry the ledger
// appended when the visit gating passed.
type UpsertOutcome struct {
	Record        domain.IndustryRecord
	Created       bool
	AppendedEntry *domain.CoachingRecord
}

// Upsert replaces the record with the same id wholesale, or prepends the
// record when the id is new. On the update path it applies the coaching
// ledger gating: a supplied visit date together with a non-placeholder note
// appends exactly one history entry at the front, snapshotting the scratch
// fields and the provided image keys. Callers are responsible for field
// well-formedness beyond id presence.
func (s *Store) Upsert(rec domain.IndustryRecord, visitImages []string) (UpsertOutcome, error) {
	if rec.ID == "" {
		return UpsertOutcome{}, fmt.Errorf("record id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(rec.ID)
	if idx < 0 {
		committed := rec.Clone()
		s.records = append([]domain.IndustryRecord{committed}, s.records...)
		return UpsertOutcome{Record: committed.Clone(), Created: true}, nil
	}

	var appended *domain.CoachingRecord
	if entry, ok := buildVisitEntry(rec, visitImages); ok {
		rec.CoachingHistory = append([]domain.CoachingRecord{entry}, rec.CoachingHistory...)
		appended = &entry
	}
	committed := rec.Clone()
	s.records[idx] = committed
	out := UpsertOutcome{Record: committed.Clone()}
	if appended != nil {
		cp := appended.Clone()
		out.AppendedEntry = &cp
	}
	return out, nil
}

// Delete removes the record with the given id. The removed record is
// returned so the caller can name it in a user notification; an absent id is
// a no-op, not an error. The error return is reserved for persistence
// adapters wrapping this store.
func (s *Store) Delete(id string) (domain.IndustryRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.IndustryRecord{}, false, nil
	}
	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return removed, true, nil
}

// BulkDeleteWhere removes every record the predicate matches and returns the
// count removed. An empty match set leaves the store untouched.
func (s *Store) BulkDeleteWhere(pred func(domain.IndustryRecord) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, rec := range s.records {
		if pred(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed, nil
}

// Inactive is the bulk-cleanup predicate: any condition other than the
// literal Active counts as revoked/inactive.
func Inactive(rec domain.IndustryRecord) bool {
	return !rec.Active()
}

// Get retrieves a record by id from committed state.
func (s *Store) Get(id string) (domain.IndustryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.IndustryRecord{}, false
	}
	return s.records[idx].Clone(), true
}

// List returns a deep copy of the full collection in storage order.
func (s *Store) List() []domain.IndustryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.IndustryRecord, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ExportState snapshots committed state for a persistence adapter.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Records: s.records}.Clone()
}

// ImportState replaces committed state with the snapshot, preserving its
// order. Used by persistence adapters during hydration.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snapshot.Clone().Records
}

// indexOf requires at least a read lock. Linear scan: the store serves one
// operator session over tens to low hundreds of records.
func (s *Store) indexOf(id string) int {
	for i, rec := range s.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
