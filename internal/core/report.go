package core

import (
	"math"

	"simonbin/pkg/domain"
)

// RegencyCompliance is the per-regency harvest-plan compliance figure shown
// on the dashboard.
type RegencyCompliance struct {
	Regency              domain.Regency `json:"regency"`
	Total                int            `json:"total"`
	HarvestPlanCompliant int            `json:"harvest_plan_compliant"`
	// Percent is round(100 * compliant / total), 0 for an empty regency.
	Percent int `json:"percent"`
}

// Summary aggregates the full record snapshot for presentation. All figures
// are pure functions of the snapshot and are recomputed on every call.
type Summary struct {
	Total                 int                    `json:"total"`
	ByRegency             map[domain.Regency]int `json:"by_regency"`
	RPBBICompliant        int                    `json:"rpbbi_compliant"`
	ByScale               map[domain.Scale]int   `json:"by_scale"`
	HarvestPlanByRegency  []RegencyCompliance    `json:"harvest_plan_by_regency"`
	MissingTechnicalStaff int                    `json:"missing_technical_staff"`
}

// Summarize computes the aggregate report over a record snapshot.
func Summarize(records []domain.IndustryRecord) Summary {
	s := Summary{
		Total:     len(records),
		ByRegency: make(map[domain.Regency]int, 2),
		ByScale:   make(map[domain.Scale]int, 3),
	}
	for _, regency := range domain.Regencies() {
		s.ByRegency[regency] = 0
	}
	for _, scale := range domain.Scales() {
		s.ByScale[scale] = 0
	}

	harvestCompliant := make(map[domain.Regency]int, 2)
	for _, rec := range records {
		s.ByRegency[rec.Regency]++
		s.ByScale[rec.Equipment.Scale]++
		if rec.Compliance.RawMaterialAccessRights == domain.StatusDone {
			s.RPBBICompliant++
		}
		if rec.Compliance.HarvestPlanDoc == domain.StatusDone {
			harvestCompliant[rec.Regency]++
		}
		if rec.Compliance.TechnicalStaff == domain.StatusNotDone {
			s.MissingTechnicalStaff++
		}
	}

	for _, regency := range domain.Regencies() {
		total := s.ByRegency[regency]
		compliant := harvestCompliant[regency]
		percent := 0
		if total > 0 {
			percent = int(math.Round(100 * float64(compliant) / float64(total)))
		}
		s.HarvestPlanByRegency = append(s.HarvestPlanByRegency, RegencyCompliance{
			Regency:              regency,
			Total:                total,
			HarvestPlanCompliant: compliant,
			Percent:              percent,
		})
	}
	return s
}
