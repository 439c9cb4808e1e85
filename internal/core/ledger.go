package core

import "simonbin/pkg/domain"

// visitGateOpen reports whether an update carrying these scratch fields
// appends a ledger entry: a visit date must be supplied and the note must
// not be the placeholder literal.
func visitGateOpen(rec domain.IndustryRecord) bool {
	return rec.CurrentVisitDate != "" && rec.CurrentNote != domain.NotePlaceholder
}

// buildVisitEntry applies the coaching ledger gating to an incoming record
// update. The entry is built only when a visit date is supplied and the note
// is not the placeholder literal; otherwise the rest of the record update
// proceeds without touching the history.
func buildVisitEntry(rec domain.IndustryRecord, images []string) (domain.CoachingRecord, bool) {
	if !visitGateOpen(rec) {
		return domain.CoachingRecord{}, false
	}
	entry := domain.CoachingRecord{
		ID:        newID(),
		VisitDate: rec.CurrentVisitDate,
		Note:      rec.CurrentNote,
		Issue:     rec.CurrentIssue,
		Condition: rec.CurrentCondition,
	}
	if len(images) > 0 {
		entry.Images = append([]string(nil), images...)
	}
	return entry, true
}

// DeleteCoachingEntry removes the single history entry with the given id
// from the record's ledger, leaving every other field of the parent
// untouched. The removed entry is returned for caller notification; a
// missing record or entry is a no-op.
func (s *Store) DeleteCoachingEntry(recordID, entryID string) (domain.CoachingRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(recordID)
	if idx < 0 {
		return domain.CoachingRecord{}, false, nil
	}
	history := s.records[idx].CoachingHistory
	for i, entry := range history {
		if entry.ID == entryID {
			s.records[idx].CoachingHistory = append(history[:i], history[i+1:]...)
			return entry, true, nil
		}
	}
	return domain.CoachingRecord{}, false, nil
}
