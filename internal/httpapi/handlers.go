package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"simonbin/internal/core"
	"simonbin/pkg/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "username": req.Username})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter := core.RecordFilter{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("regency"); v != "" {
		regency, err := domain.ParseRegency(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Regency = regency
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := domain.ParseScale(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Scale = scale
	}
	writeJSON(w, http.StatusOK, s.svc.ListRecords(r.Context(), filter))
}

type visitImagePayload struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

type saveRecordRequest struct {
	Record domain.IndustryRecord `json:"record"`
	Images []visitImagePayload   `json:"images,omitempty"`
}

type saveRecordResponse struct {
	Record        domain.IndustryRecord  `json:"record"`
	Created       bool                   `json:"created"`
	AppendedEntry *domain.CoachingRecord `json:"appended_entry,omitempty"`
}

func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	var req saveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := domain.ParseRegency(string(req.Record.Regency)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := domain.ParseScale(string(req.Record.Equipment.Scale)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	images := make([]core.VisitImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, core.VisitImage{Data: img.Data, ContentType: img.ContentType})
	}
	outcome, err := s.svc.SaveRecord(r.Context(), req.Record, images)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saveRecordResponse{
		Record:        outcome.Record,
		Created:       outcome.Created,
		AppendedEntry: outcome.AppendedEntry,
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.svc.Record(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	removed, ok, err := s.svc.DeleteRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.CleanupInactive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleDeleteCoachingEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := s.svc.DeleteCoachingEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "coaching entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func historyFilterFromQuery(r *http.Request) (core.HistoryFilter, error) {
	q := r.URL.Query()
	filter := core.HistoryFilter{
		Search: q.Get("search"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}
	if v := q.Get("technical_staff"); v != "" {
		status, err := domain.ParseComplianceStatus(v)
		if err != nil {
			return core.HistoryFilter{}, err
		}
		filter.TechnicalStaff = status
	}
	if v := q.Get("raw_material_access_rights"); v != "" {
		status, err := domain.ParseComplianceStatus(v)
		if err != nil {
			return core.HistoryFilter{}, err
		}
		filter.RawMaterialAccessRights = status
	}
	return filter, nil
}

type historyEntryPayload struct {
	RecordID     string                `json:"record_id"`
	BusinessName string                `json:"business_name"`
	Regency      domain.Regency        `json:"regency"`
	Entry        domain.CoachingRecord `json:"entry"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries := s.svc.History(r.Context(), filter)
	out := make([]historyEntryPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryPayload{
			RecordID:     e.Record.ID,
			BusinessName: e.Record.BusinessName,
			Regency:      e.Record.Regency,
			Entry:        e.Entry,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.ExportHistory(r.Context(), filter)
	if errors.Is(err, core.ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.CSV)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary(r.Context()))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		writeError(w, http.StatusNotFound, "image storage not configured")
		return
	}
	key := chi.URLParam(r, "*")
	info, body, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer body.Close()
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (s *Server) handleRecordAdvice(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advisory not configured")
		return
	}
	rec, ok := s.svc.Record(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": s.advisor.RecordAdvice(r.Context(), rec)})
}

func (s *Server) handleFleetAdvice(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advisory not configured")
		return
	}
	records := s.svc.ListRecords(r.Context(), core.RecordFilter{})
	writeJSON(w, http.StatusOK, map[string]string{"advice": s.advisor.FleetAdvice(r.Context(), records)})
}
