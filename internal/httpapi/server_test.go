package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"simonbin/internal/blob"
	"simonbin/internal/core"
	"simonbin/pkg/domain"
)

type stubAdvisor struct {
	record string
	fleet  string
}

func (s stubAdvisor) RecordAdvice(context.Context, domain.IndustryRecord) string { return s.record }
func (s stubAdvisor) FleetAdvice(context.Context, []domain.IndustryRecord) string {
	return s.fleet
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, string) {
	t.Helper()
	blobs := blob.NewMemory()
	svc := core.NewService(core.NewStore(), core.WithImageStore(blob.NewImages(blobs)))
	auth := NewTokenAuth("cdk_pacitan", "pacitan2024")
	opts = append([]Option{WithBlobStore(blobs)}, opts...)
	srv := httptest.NewServer(NewServer(svc, auth, nil, opts...).Router())
	t.Cleanup(srv.Close)

	token, err := auth.Login("cdk_pacitan", "pacitan2024")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return srv, token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func industryPayload(id, name string) domain.IndustryRecord {
	return domain.IndustryRecord{
		ID:               id,
		BusinessName:     name,
		Regency:          domain.RegencyPacitan,
		CurrentCondition: domain.ConditionActive,
		Equipment:        domain.Equipment{Scale: domain.ScaleSmall},
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", loginRequest{Username: "cdk_pacitan", Password: "pacitan2024"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["token"] == "" {
		t.Fatalf("expected token in response")
	}
	if body["username"] != "cdk_pacitan" {
		t.Fatalf("username = %q", body["username"])
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", loginRequest{Username: "cdk_pacitan", Password: "salah"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/industries", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/industries", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus token status = %d", resp.StatusCode)
	}
}

func TestSaveListAndFilter(t *testing.T) {
	srv, token := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token,
		saveRecordRequest{Record: industryPayload("a", "UD Jati Makmur")})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[saveRecordResponse](t, resp)
	if !created.Created || created.Record.ID != "a" {
		t.Fatalf("create response wrong: %+v", created)
	}

	second := industryPayload("b", "CV Rimba Sari")
	second.Regency = domain.RegencyPonorogo
	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{Record: second}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/industries", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decode[[]domain.IndustryRecord](t, resp)
	if len(list) != 2 || list[0].ID != "b" {
		t.Fatalf("list wrong: %+v", list)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/industries?regency=Ponorogo", token, nil)
	filtered := decode[[]domain.IndustryRecord](t, resp)
	if len(filtered) != 1 || filtered[0].ID != "b" {
		t.Fatalf("filter wrong: %+v", filtered)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/industries?regency=Bandung", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown regency status = %d", resp.StatusCode)
	}
}

func TestSaveValidation(t *testing.T) {
	srv, token := newTestServer(t)

	bad := industryPayload("a", "UD Jati Makmur")
	bad.Regency = "Bandung"
	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{Record: bad}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad regency status = %d", resp.StatusCode)
	}

	bad = industryPayload("a", "UD Jati Makmur")
	bad.Equipment.Scale = "Giant"
	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{Record: bad}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad scale status = %d", resp.StatusCode)
	}
}

func TestCoachingFlow(t *testing.T) {
	srv, token := newTestServer(t)

	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token,
		saveRecordRequest{Record: industryPayload("a", "UD Jati Makmur")}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	update := industryPayload("a", "UD Jati Makmur")
	update.CurrentVisitDate = "2024-03-01"
	update.CurrentNote = "Pembinaan rutin"
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{
		Record: update,
		Images: []visitImagePayload{{Data: []byte("photo"), ContentType: "image/jpeg"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decode[saveRecordResponse](t, resp)
	if updated.AppendedEntry == nil || len(updated.AppendedEntry.Images) != 1 {
		t.Fatalf("expected appended entry with image: %+v", updated)
	}
	entryID := updated.AppendedEntry.ID
	imageKey := updated.AppendedEntry.Images[0]

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/coaching", token, nil)
	entries := decode[[]historyEntryPayload](t, resp)
	if len(entries) != 1 || entries[0].Entry.ID != entryID || entries[0].BusinessName != "UD Jati Makmur" {
		t.Fatalf("history wrong: %+v", entries)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/images/"+imageKey, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("image content type = %q", ct)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/industries/a/coaching/%s", srv.URL, entryID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("entry delete status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/industries/a/coaching/%s", srv.URL, entryID), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat entry delete status = %d", resp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, token := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/coaching/export", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("empty export status = %d", resp.StatusCode)
	}

	rec := industryPayload("a", "UD Jati Makmur")
	rec.CoachingHistory = []domain.CoachingRecord{{ID: "e1", VisitDate: "2024-03-01", Note: "catatan"}}
	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{Record: rec}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/coaching/export", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "rekap-pembinaan-") {
		t.Fatalf("content disposition = %q", cd)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(body.String(), "Tanggal,Industri,Kabupaten,") {
		t.Fatalf("csv body = %q", body.String())
	}
}

func TestDeleteAndCleanup(t *testing.T) {
	srv, token := newTestServer(t)

	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token,
		saveRecordRequest{Record: industryPayload("a", "UD Jati Makmur")}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}
	revoked := industryPayload("b", "CV Rimba Sari")
	revoked.CurrentCondition = "Izin dicabut"
	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token, saveRecordRequest{Record: revoked}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/industries/cleanup", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cleanup status = %d", resp.StatusCode)
	}
	if removed := decode[map[string]int](t, resp); removed["removed"] != 1 {
		t.Fatalf("cleanup removed = %+v", removed)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/industries/a", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/industries/a", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/summary", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d", resp.StatusCode)
	}
	summary := decode[core.Summary](t, resp)
	if summary.Total != 0 {
		t.Fatalf("summary total = %d, want 0", summary.Total)
	}
}

func TestAdviceEndpoints(t *testing.T) {
	srv, token := newTestServer(t, WithAdvisor(stubAdvisor{record: "saran", fleet: "analisis"}))

	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/industries", token,
		saveRecordRequest{Record: industryPayload("a", "UD Jati Makmur")}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/industries/a/advice", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advice status = %d", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["advice"] != "saran" {
		t.Fatalf("advice = %+v", body)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/industries/missing/advice", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing record advice status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/advice/fleet", token, nil)
	if body := decode[map[string]string](t, resp); body["advice"] != "analisis" {
		t.Fatalf("fleet advice = %+v", body)
	}
}

func TestAdviceUnavailableWithoutAdvisor(t *testing.T) {
	srv, token := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/advice/fleet", token, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
