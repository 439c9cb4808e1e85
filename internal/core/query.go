package core

import (
	"sort"
	"strings"
	"time"

	"simonbin/pkg/domain"
)

// RecordFilter selects records for the monitoring list. Zero fields match
// everything; all set criteria must hold (predicate conjunction).
type RecordFilter struct {
	// Search is matched case-insensitively as a substring against business
	// name, owner name, and RPBBI user id; any of the three suffices.
	Search  string
	Regency domain.Regency
	Scale   domain.Scale
}

// FilterRecords applies the filter over a snapshot without imposing a sort
// beyond storage order.
func FilterRecords(records []domain.IndustryRecord, f RecordFilter) []domain.IndustryRecord {
	term := strings.ToLower(f.Search)
	out := make([]domain.IndustryRecord, 0, len(records))
	for _, rec := range records {
		if term != "" &&
			!strings.Contains(strings.ToLower(rec.BusinessName), term) &&
			!strings.Contains(strings.ToLower(rec.OwnerName), term) &&
			!strings.Contains(strings.ToLower(rec.RPBBIUserID), term) {
			continue
		}
		if f.Regency != "" && rec.Regency != f.Regency {
			continue
		}
		if f.Scale != "" && rec.Equipment.Scale != f.Scale {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// HistoryEntry pairs one coaching visit with its parent record for the
// chronological view.
type HistoryEntry struct {
	Record domain.IndustryRecord
	Entry  domain.CoachingRecord

	visitTime time.Time
	dated     bool
}

// VisitTime returns the parsed visit instant and whether the entry's date
// string was parseable.
func (e HistoryEntry) VisitTime() (time.Time, bool) {
	return e.visitTime, e.dated
}

var visitDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// parseVisitDate interprets a visit date in local calendar semantics. String
// comparison is never used; unparseable dates are flagged so ordering and
// range filters can treat them deterministically.
func parseVisitDate(value string) (time.Time, bool) {
	for _, layout := range visitDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FlattenHistory flattens every record's coaching ledger into one sequence
// ordered most-recent-first. The sort is stable: ties and undated entries
// keep their original relative order, with undated entries sorting last. A
// record with an empty ledger contributes nothing.
func FlattenHistory(records []domain.IndustryRecord) []HistoryEntry {
	var entries []HistoryEntry
	for _, rec := range records {
		for _, visit := range rec.CoachingHistory {
			t, ok := parseVisitDate(visit.VisitDate)
			entries = append(entries, HistoryEntry{
				Record:    rec,
				Entry:     visit,
				visitTime: t,
				dated:     ok,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.dated && b.dated:
			return a.visitTime.After(b.visitTime)
		case a.dated:
			return true
		default:
			return false
		}
	})
	return entries
}

// HistoryFilter selects entries from the chronological view. Zero fields
// match everything; all set criteria must hold.
type HistoryFilter struct {
	// Search is matched case-insensitively against the parent business name,
	// the entry note, and the parent regency.
	Search string
	// Start and End bound the visit date inclusively, truncated to 00:00:00
	// and 23:59:59.999 local time. Format 2006-01-02; empty means unbounded.
	Start string
	End   string
	// Compliance criteria are evaluated against the parent record's current
	// state, not the snapshot stored in the entry.
	TechnicalStaff          domain.ComplianceStatus
	RawMaterialAccessRights domain.ComplianceStatus
}

// FilterHistory applies the filter to an already ordered chronological view.
// Entries whose date cannot be parsed are excluded whenever a date bound is
// set and retained otherwise.
func FilterHistory(entries []HistoryEntry, f HistoryFilter) []HistoryEntry {
	term := strings.ToLower(f.Search)

	var start, end time.Time
	var hasStart, hasEnd bool
	if f.Start != "" {
		if t, err := time.ParseInLocation("2006-01-02", f.Start, time.Local); err == nil {
			start = t
			hasStart = true
		}
	}
	if f.End != "" {
		if t, err := time.ParseInLocation("2006-01-02", f.End, time.Local); err == nil {
			end = t.Add(24*time.Hour - time.Millisecond)
			hasEnd = true
		}
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Record.BusinessName), term) &&
			!strings.Contains(strings.ToLower(e.Entry.Note), term) &&
			!strings.Contains(strings.ToLower(string(e.Record.Regency)), term) {
			continue
		}
		if hasStart || hasEnd {
			if !e.dated {
				continue
			}
			if hasStart && e.visitTime.Before(start) {
				continue
			}
			if hasEnd && e.visitTime.After(end) {
				continue
			}
		}
		if f.TechnicalStaff != "" && e.Record.Compliance.TechnicalStaff != f.TechnicalStaff {
			continue
		}
		if f.RawMaterialAccessRights != "" && e.Record.Compliance.RawMaterialAccessRights != f.RawMaterialAccessRights {
			continue
		}
		out = append(out, e)
	}
	return out
}
