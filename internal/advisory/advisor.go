// Package advisory produces Gemini-backed coaching recommendations for
// facility records. Failures never propagate to callers; the advisor
// degrades to fixed Indonesian notice strings so the surrounding workflow
// keeps working without an API key or network access.
package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"simonbin/pkg/domain"
)

// Fixed operator-facing strings. These match the notices the coaching staff
// already know, so they stay in Indonesian.
const (
	recordFallback  = "Gagal mendapatkan saran AI."
	fleetFallback   = "Gagal memuat analisis strategis AI."
	recordEmptyText = "Tidak ada rekomendasi saat ini."
	fleetEmptyText  = "Belum ada analisis strategis tersedia."
	defaultModel    = "gemini-3-flash-preview"
	fleetSummaryCap = 30
	recordTempValue = 0.7
	fleetTempValue  = 0.5
)

// GenerateFunc produces model text for a prompt at a sampling temperature.
type GenerateFunc func(ctx context.Context, prompt string, temperature float32) (string, error)

// Advisor renders prompts from records and asks a generation backend for
// coaching guidance.
type Advisor struct {
	generate GenerateFunc
	logger   *slog.Logger
}

// New creates an Advisor talking to the Gemini API with the given key. The
// model defaults to gemini-3-flash-preview when empty.
func New(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Advisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("advisory: api key required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("advisory: create client: %w", err)
	}
	gen := func(ctx context.Context, prompt string, temperature float32) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](temperature)})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return NewWithGenerator(gen, logger), nil
}

// NewWithGenerator creates an Advisor over an arbitrary generation function.
// Used by tests and by deployments that front Gemini with a proxy.
func NewWithGenerator(generate GenerateFunc, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{generate: generate, logger: logger}
}

// RecordAdvice returns short coaching steps for a single facility.
func (a *Advisor) RecordAdvice(ctx context.Context, rec domain.IndustryRecord) string {
	text, err := a.generate(ctx, recordPrompt(rec), recordTempValue)
	if err != nil {
		a.logger.Warn("record advice generation failed", "record_id", rec.ID, "error", err)
		return recordFallback
	}
	if strings.TrimSpace(text) == "" {
		return recordEmptyText
	}
	return text
}

// FleetAdvice returns a strategic compliance analysis across all records.
func (a *Advisor) FleetAdvice(ctx context.Context, records []domain.IndustryRecord) string {
	prompt, err := fleetPrompt(records)
	if err != nil {
		a.logger.Warn("fleet advice prompt build failed", "error", err)
		return fleetFallback
	}
	text, err := a.generate(ctx, prompt, fleetTempValue)
	if err != nil {
		a.logger.Warn("fleet advice generation failed", "records", len(records), "error", err)
		return fleetFallback
	}
	if strings.TrimSpace(text) == "" {
		return fleetEmptyText
	}
	return text
}

func recordPrompt(rec domain.IndustryRecord) string {
	return fmt.Sprintf(`Industri: %s
Kabupaten: %s
Skala: %s
Kondisi: %s
Kendala: %s
Status Kepatuhan:
- Tenaga Teknis: %s
- Hak Akses RPBBI: %s
- RKOPHH: %s
- Dokumen Angkut: %s

Berdasarkan data di atas, berikan 3 langkah pembinaan singkat (pembinaan industri hasil hutan) yang harus dilakukan oleh CDK (Cabang Dinas Kehutanan).`,
		rec.BusinessName, rec.Regency, rec.Equipment.Scale, rec.CurrentCondition, rec.CurrentIssue,
		rec.Compliance.TechnicalStaff, rec.Compliance.RawMaterialAccessRights,
		rec.Compliance.HarvestPlanDoc, rec.Compliance.TransportDoc)
}

type fleetSummaryEntry struct {
	Name       string            `json:"nama"`
	Regency    domain.Regency    `json:"kab"`
	Compliance domain.Compliance `json:"compliance"`
	Condition  string            `json:"kondisi"`
}

// fleetPrompt summarizes at most fleetSummaryCap records inline and names
// only the count of the remainder so the prompt stays bounded.
func fleetPrompt(records []domain.IndustryRecord) (string, error) {
	capped := records
	if len(capped) > fleetSummaryCap {
		capped = capped[:fleetSummaryCap]
	}
	summary := make([]fleetSummaryEntry, 0, len(capped))
	for _, rec := range capped {
		summary = append(summary, fleetSummaryEntry{
			Name:       rec.BusinessName,
			Regency:    rec.Regency,
			Compliance: rec.Compliance,
			Condition:  rec.CurrentCondition,
		})
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Analisis data industri hasil hutan kayu berikut:
%s ... (dan %d industri lainnya)

Berdasarkan data tersebut, berikan analisis ringkas:
1. Identifikasi masalah kepatuhan utama (Ganis, RPBBI, atau RKOPHH).
2. Berikan 3 rekomendasi aksi strategis untuk CDK Wilayah Pacitan & Ponorogo bulan ini.
3. Sebutkan 2-3 nama perusahaan spesifik yang harus segera dikunjungi berdasarkan status "Belum" mereka.

Tulis dalam bahasa Indonesia yang profesional dan lugas.`, encoded, len(records)-len(capped)), nil
}
