// Package domain defines the persistent entities and closed value
// vocabularies of the industry record and coaching history engine.
package domain

import "fmt"

// Regency identifies one of the two administrative regions covered by the
// regional forestry office.
type Regency string

// Supported regencies. Records carry exactly one of these.
const (
	RegencyPacitan  Regency = "Pacitan"
	RegencyPonorogo Regency = "Ponorogo"
)

// Regencies lists the supported regencies in reporting order.
func Regencies() []Regency {
	return []Regency{RegencyPacitan, RegencyPonorogo}
}

// ParseRegency validates an externally supplied regency value.
func ParseRegency(value string) (Regency, error) {
	switch Regency(value) {
	case RegencyPacitan, RegencyPonorogo:
		return Regency(value), nil
	}
	return "", fmt.Errorf("unknown regency %q", value)
}

// Scale buckets a facility by size for aggregate reporting.
type Scale string

// Facility scale buckets.
const (
	ScaleSmall  Scale = "Small"
	ScaleMedium Scale = "Medium"
	ScaleLarge  Scale = "Large"
)

// Scales lists the scale buckets in reporting order.
func Scales() []Scale {
	return []Scale{ScaleSmall, ScaleMedium, ScaleLarge}
}

// ParseScale validates an externally supplied scale value.
func ParseScale(value string) (Scale, error) {
	switch Scale(value) {
	case ScaleSmall, ScaleMedium, ScaleLarge:
		return Scale(value), nil
	}
	return "", fmt.Errorf("unknown scale %q", value)
}

// ComplianceStatus is the state of one compliance obligation.
type ComplianceStatus string

// Compliance states. There is no third value; an unset obligation is NotDone.
const (
	StatusDone    ComplianceStatus = "Done"
	StatusNotDone ComplianceStatus = "NotDone"
)

// ParseComplianceStatus validates an externally supplied compliance value.
func ParseComplianceStatus(value string) (ComplianceStatus, error) {
	switch ComplianceStatus(value) {
	case StatusDone, StatusNotDone:
		return ComplianceStatus(value), nil
	}
	return "", fmt.Errorf("unknown compliance status %q", value)
}

// ConditionActive is the distinguished CurrentCondition value. Every other
// condition string is treated as revoked/inactive by filters and cleanup.
const ConditionActive = "Active"

// NotePlaceholder is the literal a blank coaching note field carries. A
// record update whose note equals the placeholder appends no history entry.
const NotePlaceholder = "-"

// Coordinates is an optional facility location.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// PermitInfo groups the licensing identifiers of a facility.
type PermitInfo struct {
	PermitNumber               string `json:"permit_number"`
	PermitDate                 string `json:"permit_date"`
	BusinessRegistrationNumber string `json:"business_registration_number"`
}

// Equipment describes the processing machinery of a facility.
type Equipment struct {
	Capacity          float64 `json:"capacity"`
	Scale             Scale   `json:"scale"`
	MachineType       string  `json:"machine_type"`
	UnitCount         int     `json:"unit_count"`
	CapitalInvestment float64 `json:"capital_investment"`
}

// Compliance carries the four independent compliance obligations tracked per
// facility: GANIS technical staff, RPBBI raw-material access rights, the
// RKOPHH harvest plan document, and transport documentation.
type Compliance struct {
	TechnicalStaff          ComplianceStatus `json:"technical_staff"`
	RawMaterialAccessRights ComplianceStatus `json:"raw_material_access_rights"`
	HarvestPlanDoc          ComplianceStatus `json:"harvest_plan_doc"`
	TransportDoc            ComplianceStatus `json:"transport_doc"`
}

// CoachingRecord is one coaching visit. Its ID is unique only within the
// parent record's history. Images hold blob-store keys of attached photos.
type CoachingRecord struct {
	ID        string   `json:"id"`
	VisitDate string   `json:"visit_date"`
	Note      string   `json:"note"`
	Issue     string   `json:"issue"`
	Condition string   `json:"condition"`
	Images    []string `json:"images,omitempty"`
}

// Clone returns a deep copy of the coaching record.
func (c CoachingRecord) Clone() CoachingRecord {
	cp := c
	if c.Images != nil {
		cp.Images = append([]string(nil), c.Images...)
	}
	return cp
}

// IndustryRecord is one wood-processing facility overseen by the office.
//
// CurrentVisitDate, CurrentNote and CurrentIssue are scratch fields holding
// the most recent coaching interaction; the store reads them when deciding
// whether an update also appends a history entry.
type IndustryRecord struct {
	ID                 string           `json:"id"`
	BusinessName       string           `json:"business_name"`
	OwnerName          string           `json:"owner_name"`
	BusinessEntityType string           `json:"business_entity_type"`
	PermitType         string           `json:"permit_type"`
	RPBBIUserID        string           `json:"rpbbi_user_id"`
	Regency            Regency          `json:"regency"`
	District           string           `json:"district"`
	FactoryAddress     string           `json:"factory_address"`
	Coordinates        *Coordinates     `json:"coordinates,omitempty"`
	Permit             PermitInfo       `json:"permit"`
	Equipment          Equipment        `json:"equipment"`
	RawMaterialSource  string           `json:"raw_material_source"`
	Compliance         Compliance       `json:"compliance"`
	CurrentCondition   string           `json:"current_condition"`
	CurrentIssue       string           `json:"current_issue"`
	CurrentNote        string           `json:"current_note"`
	CurrentVisitDate   string           `json:"current_visit_date"`
	CoachingHistory    []CoachingRecord `json:"coaching_history"`
}

// Active reports whether the facility's current condition is the
// distinguished Active value.
func (r IndustryRecord) Active() bool {
	return r.CurrentCondition == ConditionActive
}

// Clone returns a deep copy of the record, including its coaching history.
func (r IndustryRecord) Clone() IndustryRecord {
	cp := r
	if r.Coordinates != nil {
		coords := *r.Coordinates
		cp.Coordinates = &coords
	}
	if r.CoachingHistory != nil {
		cp.CoachingHistory = make([]CoachingRecord, len(r.CoachingHistory))
		for i, entry := range r.CoachingHistory {
			cp.CoachingHistory[i] = entry.Clone()
		}
	}
	return cp
}

// Snapshot is the persistence shape of the record collection. Order is
// authoritative: index 0 is the newest insertion.
type Snapshot struct {
	Records []IndustryRecord `json:"records"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Records != nil {
		out.Records = make([]IndustryRecord, len(s.Records))
		for i, rec := range s.Records {
			out.Records[i] = rec.Clone()
		}
	}
	return out
}
