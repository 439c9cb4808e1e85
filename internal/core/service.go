package core

import (
	"context"
	"fmt"
	"time"

	"simonbin/pkg/domain"
)

// ImageStore persists coaching photo payloads. The blob layer implements it;
// the service stays unaware of the backing driver.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// VisitImage is one photo payload attached to a coaching visit.
type VisitImage struct {
	Data        []byte
	ContentType string
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithMetricsRecorder wires an operation metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer wires an operation tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// WithImageStore wires the blob layer for visit photo attachments.
func WithImageStore(store ImageStore) ServiceOption {
	return func(s *Service) { s.images = store }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.nowFn = now }
}

// Service exposes the operator-session operations over the record store: the
// mutations, the derived views, the aggregate report, and the CSV export.
// Its lifetime is scoped to one session; it holds no state of its own beyond
// collaborator handles.
type Service struct {
	store   RecordStore
	images  ImageStore
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// NewService constructs a service over the supplied store.
func NewService(store RecordStore, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying record store.
func (s *Service) Store() RecordStore { return s.store }

func (s *Service) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	err := fn(ctx)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}
	return err
}

// SaveRecord upserts a record. When the ledger gating passes on the update
// path, the supplied photos are stored through the blob layer first and the
// appended history entry references them by key; photos uploaded for an
// update that ends up appending nothing are removed again so no orphaned
// blobs remain.
func (s *Service) SaveRecord(ctx context.Context, rec domain.IndustryRecord, images []VisitImage) (UpsertOutcome, error) {
	var outcome UpsertOutcome
	err := s.run(ctx, "save_record", func(ctx context.Context) error {
		if rec.ID == "" {
			rec.ID = NewRecordID()
		}

		var keys []string
		if s.images != nil && len(images) > 0 && visitGateOpen(rec) {
			if _, exists := s.store.Get(rec.ID); exists {
				for i, img := range images {
					key := fmt.Sprintf("visits/%s/%s-%d", rec.ID, newID(), i)
					if err := s.images.Put(ctx, key, img.Data, img.ContentType); err != nil {
						s.discardImages(ctx, keys)
						return fmt.Errorf("store visit image: %w", err)
					}
					keys = append(keys, key)
				}
			}
		}

		var err error
		outcome, err = s.store.Upsert(rec, keys)
		if err != nil || outcome.AppendedEntry == nil {
			s.discardImages(ctx, keys)
		}
		return err
	})
	return outcome, err
}

// DeleteRecord removes a record and, implicitly, its entire coaching history
// including stored photo blobs. The removed record is returned so the caller
// can name it in a notification; an absent id is a no-op.
func (s *Service) DeleteRecord(ctx context.Context, id string) (domain.IndustryRecord, bool, error) {
	var (
		removed domain.IndustryRecord
		ok      bool
	)
	err := s.run(ctx, "delete_record", func(ctx context.Context) error {
		var err error
		removed, ok, err = s.store.Delete(id)
		if err == nil && ok {
			s.discardHistoryImages(ctx, removed.CoachingHistory)
		}
		return err
	})
	return removed, ok, err
}

// CleanupInactive removes every record whose condition is not the literal
// Active and returns the count removed.
func (s *Service) CleanupInactive(ctx context.Context) (int, error) {
	var count int
	err := s.run(ctx, "cleanup_inactive", func(ctx context.Context) error {
		// Collect doomed histories before the mutation; the bulk delete only
		// reports a count.
		var doomed []domain.CoachingRecord
		for _, rec := range s.store.List() {
			if Inactive(rec) {
				doomed = append(doomed, rec.CoachingHistory...)
			}
		}
		var err error
		count, err = s.store.BulkDeleteWhere(Inactive)
		if err == nil {
			s.discardHistoryImages(ctx, doomed)
		}
		return err
	})
	return count, err
}

// DeleteCoachingEntry removes one ledger entry and its photo blobs, leaving
// the parent record otherwise untouched.
func (s *Service) DeleteCoachingEntry(ctx context.Context, recordID, entryID string) (domain.CoachingRecord, bool, error) {
	var (
		removed domain.CoachingRecord
		ok      bool
	)
	err := s.run(ctx, "delete_coaching_entry", func(ctx context.Context) error {
		var err error
		removed, ok, err = s.store.DeleteCoachingEntry(recordID, entryID)
		if err == nil && ok {
			s.discardImages(ctx, removed.Images)
		}
		return err
	})
	return removed, ok, err
}

// Record retrieves a single record by id.
func (s *Service) Record(ctx context.Context, id string) (domain.IndustryRecord, bool) {
	var (
		rec domain.IndustryRecord
		ok  bool
	)
	_ = s.run(ctx, "get_record", func(context.Context) error {
		rec, ok = s.store.Get(id)
		return nil
	})
	return rec, ok
}

// ListRecords returns the monitoring list: the filtered snapshot in storage
// order.
func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) []domain.IndustryRecord {
	var out []domain.IndustryRecord
	_ = s.run(ctx, "list_records", func(context.Context) error {
		out = FilterRecords(s.store.List(), filter)
		return nil
	})
	return out
}

// History returns the filtered chronological coaching view.
func (s *Service) History(ctx context.Context, filter HistoryFilter) []HistoryEntry {
	var out []HistoryEntry
	_ = s.run(ctx, "history", func(context.Context) error {
		out = FilterHistory(FlattenHistory(s.store.List()), filter)
		return nil
	})
	return out
}

// ExportResult is a rendered CSV export ready for download.
type ExportResult struct {
	Filename string
	CSV      string
	Entries  int
}

// ExportHistory renders the filtered chronological view as CSV. An empty
// view yields ErrNothingToExport, never a zero-byte file.
func (s *Service) ExportHistory(ctx context.Context, filter HistoryFilter) (ExportResult, error) {
	var result ExportResult
	err := s.run(ctx, "export_history", func(ctx context.Context) error {
		entries := s.History(ctx, filter)
		csv, err := ExportCSV(entries)
		if err != nil {
			return err
		}
		result = ExportResult{
			Filename: ExportFilename(s.nowFn()),
			CSV:      csv,
			Entries:  len(entries),
		}
		return nil
	})
	return result, err
}

// Summary computes the aggregate report over the current snapshot.
func (s *Service) Summary(ctx context.Context) Summary {
	var out Summary
	_ = s.run(ctx, "summary", func(context.Context) error {
		out = Summarize(s.store.List())
		return nil
	})
	return out
}

func (s *Service) discardImages(ctx context.Context, keys []string) {
	if s.images == nil {
		return
	}
	for _, key := range keys {
		// Best effort; a leaked blob never blocks the mutation result.
		_ = s.images.Delete(ctx, key)
	}
}

func (s *Service) discardHistoryImages(ctx context.Context, entries []domain.CoachingRecord) {
	for _, entry := range entries {
		s.discardImages(ctx, entry.Images)
	}
}
