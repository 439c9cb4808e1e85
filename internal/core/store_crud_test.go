package core

import (
	"testing"

	"simonbin/pkg/domain"
)

func sampleRecord(id, name string) domain.IndustryRecord {
	return domain.IndustryRecord{
		ID:               id,
		BusinessName:     name,
		OwnerName:        "Budi",
		RPBBIUserID:      "rpbbi-" + id,
		Regency:          domain.RegencyPacitan,
		CurrentCondition: domain.ConditionActive,
		Equipment:        domain.Equipment{Scale: domain.ScaleSmall},
		Compliance: domain.Compliance{
			TechnicalStaff:          domain.StatusNotDone,
			RawMaterialAccessRights: domain.StatusNotDone,
			HarvestPlanDoc:          domain.StatusNotDone,
			TransportDoc:            domain.StatusNotDone,
		},
	}
}

func mustUpsert(t *testing.T, store *Store, rec domain.IndustryRecord) {
	t.Helper()
	if _, err := store.Upsert(rec, nil); err != nil {
		t.Fatalf("upsert %s: %v", rec.ID, err)
	}
}

func TestStoreUpsertCreatePrepends(t *testing.T) {
	store := NewStore()

	first, err := store.Upsert(sampleRecord("a", "UD Jati Makmur"), nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected created outcome")
	}
	second, err := store.Upsert(sampleRecord("b", "CV Rimba Sari"), nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !second.Created {
		t.Fatalf("expected created outcome")
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("expected newest-first order, got %s, %s", list[0].ID, list[1].ID)
	}
}

func TestStoreUpsertRequiresID(t *testing.T) {
	store := NewStore()
	if _, err := store.Upsert(domain.IndustryRecord{}, nil); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestStoreUpsertReplaceKeepsCountAndPosition(t *testing.T) {
	store := NewStore()
	mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))
	mustUpsert(t, store, sampleRecord("b", "CV Rimba Sari"))

	update := sampleRecord("a", "UD Jati Makmur Baru")
	outcome, err := store.Upsert(update, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome.Created {
		t.Fatalf("expected update outcome, got created")
	}
	if store.Len() != 2 {
		t.Fatalf("expected count unchanged at 2, got %d", store.Len())
	}
	list := store.List()
	if list[1].ID != "a" || list[1].BusinessName != "UD Jati Makmur Baru" {
		t.Fatalf("expected record a replaced in place, got %+v", list[1])
	}
}

func TestStoreUpsertGatingAppendsEntry(t *testing.T) {
	store := NewStore()
	mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))

	update := sampleRecord("a", "UD Jati Makmur")
	update.CurrentVisitDate = "2024-03-01"
	update.CurrentNote = "Pembinaan dokumen angkut"
	update.CurrentIssue = "Dokumen belum lengkap"

	outcome, err := store.Upsert(update, []string{"visits/a/img-0"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome.AppendedEntry == nil {
		t.Fatalf("expected appended ledger entry")
	}
	entry := outcome.Record.CoachingHistory[0]
	if entry.VisitDate != "2024-03-01" || entry.Note != "Pembinaan dokumen angkut" {
		t.Fatalf("entry does not snapshot scratch fields: %+v", entry)
	}
	if entry.Issue != "Dokumen belum lengkap" || entry.Condition != domain.ConditionActive {
		t.Fatalf("entry does not snapshot issue/condition: %+v", entry)
	}
	if len(entry.Images) != 1 || entry.Images[0] != "visits/a/img-0" {
		t.Fatalf("entry does not carry image keys: %+v", entry.Images)
	}
	if entry.ID == "" {
		t.Fatalf("entry needs a generated id")
	}
}

func TestStoreUpsertGatingCases(t *testing.T) {
	cases := []struct {
		name      string
		visitDate string
		note      string
		appended  bool
	}{
		{"date and note", "2024-03-01", "catatan", true},
		{"empty note passes", "2024-03-01", "", true},
		{"placeholder note blocked", "2024-03-01", domain.NotePlaceholder, false},
		{"missing date blocked", "", "catatan", false},
		{"both blocked", "", domain.NotePlaceholder, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))

			update := sampleRecord("a", "UD Jati Makmur")
			update.CurrentVisitDate = tc.visitDate
			update.CurrentNote = tc.note
			outcome, err := store.Upsert(update, nil)
			if err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if got := outcome.AppendedEntry != nil; got != tc.appended {
				t.Fatalf("appended=%v, want %v", got, tc.appended)
			}
			if got := len(outcome.Record.CoachingHistory); (got == 1) != tc.appended {
				t.Fatalf("history length %d, appended expectation %v", got, tc.appended)
			}
		})
	}
}

func TestStoreUpsertCreateNeverAppends(t *testing.T) {
	store := NewStore()
	rec := sampleRecord("a", "UD Jati Makmur")
	rec.CurrentVisitDate = "2024-03-01"
	rec.CurrentNote = "catatan awal"

	outcome, err := store.Upsert(rec, nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !outcome.Created {
		t.Fatalf("expected created outcome")
	}
	if outcome.AppendedEntry != nil || len(outcome.Record.CoachingHistory) != 0 {
		t.Fatalf("create path must not touch the ledger: %+v", outcome)
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))

	removed, ok, err := store.Delete("a")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if removed.BusinessName != "UD Jati Makmur" {
		t.Fatalf("expected pre-mutation record, got %+v", removed)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store")
	}

	if _, ok, err := store.Delete("missing"); err != nil || ok {
		t.Fatalf("expected no-op for missing id, ok=%v err=%v", ok, err)
	}
}

func TestStoreBulkDeleteInactive(t *testing.T) {
	store := NewStore()
	active := sampleRecord("a", "UD Jati Makmur")
	revoked := sampleRecord("b", "CV Rimba Sari")
	revoked.CurrentCondition = "Izin dicabut"
	mustUpsert(t, store, active)
	mustUpsert(t, store, revoked)

	removed, err := store.BulkDeleteWhere(Inactive)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := store.Get("b"); ok {
		t.Fatalf("inactive record should be gone")
	}
	if _, ok := store.Get("a"); !ok {
		t.Fatalf("active record should survive")
	}

	// All remaining records active: cleanup removes nothing.
	removed, err = store.BulkDeleteWhere(Inactive)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if removed != 0 || store.Len() != 1 {
		t.Fatalf("expected untouched store, removed=%d len=%d", removed, store.Len())
	}
}

func TestStoreDeleteCoachingEntry(t *testing.T) {
	store := NewStore()
	mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))

	update := sampleRecord("a", "UD Jati Makmur")
	update.CurrentVisitDate = "2024-03-01"
	update.CurrentNote = "catatan"
	outcome, err := store.Upsert(update, nil)
	if err != nil || outcome.AppendedEntry == nil {
		t.Fatalf("seed entry: %+v err=%v", outcome, err)
	}
	entryID := outcome.AppendedEntry.ID

	removed, ok, err := store.DeleteCoachingEntry("a", entryID)
	if err != nil || !ok {
		t.Fatalf("delete entry: ok=%v err=%v", ok, err)
	}
	if removed.ID != entryID {
		t.Fatalf("removed wrong entry: %+v", removed)
	}
	rec, _ := store.Get("a")
	if len(rec.CoachingHistory) != 0 {
		t.Fatalf("ledger should be empty, got %d entries", len(rec.CoachingHistory))
	}
	if rec.BusinessName != "UD Jati Makmur" {
		t.Fatalf("parent record mutated: %+v", rec)
	}

	if _, ok, _ := store.DeleteCoachingEntry("a", "missing"); ok {
		t.Fatalf("expected no-op for missing entry")
	}
	if _, ok, _ := store.DeleteCoachingEntry("missing", entryID); ok {
		t.Fatalf("expected no-op for missing record")
	}
}

func TestStoreListReturnsClones(t *testing.T) {
	store := NewStore()
	rec := sampleRecord("a", "UD Jati Makmur")
	rec.CoachingHistory = []domain.CoachingRecord{{ID: "e1", Note: "asli"}}
	mustUpsert(t, store, rec)

	list := store.List()
	list[0].BusinessName = "mutated"
	list[0].CoachingHistory[0].Note = "mutated"

	again, _ := store.Get("a")
	if again.BusinessName != "UD Jati Makmur" || again.CoachingHistory[0].Note != "asli" {
		t.Fatalf("committed state aliased by a read: %+v", again)
	}
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	store := NewStore()
	mustUpsert(t, store, sampleRecord("a", "UD Jati Makmur"))
	mustUpsert(t, store, sampleRecord("b", "CV Rimba Sari"))

	snap := store.ExportState()
	if len(snap.Records) != 2 {
		t.Fatalf("expected 2 snapshot records, got %d", len(snap.Records))
	}

	restored := NewStore()
	restored.ImportState(snap)
	list := restored.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("snapshot must preserve order, got %+v", list)
	}
}
