package models

import (
	"strings"
	"time"

	"github.com/pchp/asthma-etl/asthma/codebook"
)

// Diagnosis is one diagnosis field of a claim line with its paired ICD
// version. A zero ICDVersion means the version is null.
type Diagnosis struct {
	Column     string
	Code       string
	Present    bool
	ICDVersion int
	// Primary marks the header primary diagnosis field.
	Primary bool
}

// VisitType is the resolved setting of a visit. Higher values win during
// priority resolution.
type VisitType int

const (
	VisitNone VisitType = iota
	VisitOutpatient
	VisitED
	VisitInpatient
)

func (v VisitType) String() string {
	switch v {
	case VisitInpatient:
		return "inpt"
	case VisitED:
		return "ED"
	case VisitOutpatient:
		return "outpt"
	default:
		return "none"
	}
}

// ClaimRecord is one claim line or header row.
type ClaimRecord struct {
	ClaimID   string
	MemberID  string
	FirstName string
	LastName  string

	Diagnoses []Diagnosis

	RevenueCode    int
	HasRevenueCode bool
	// PlaceOfService is the normalized code; 0 means missing.
	PlaceOfService int

	DateOfService       time.Time
	TotalPaid           float64
	AttendingProviderID string

	PrimaryAsthma   bool
	SecondaryAsthma bool
	Comorbidities   map[codebook.Condition]bool

	VisitID   string
	VisitType VisitType
}

// Name is the member's display name used for identity grouping.
func (c ClaimRecord) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CloneClaims copies records so a stage can return new values without
// touching its input. Diagnoses and comorbidity maps are copied too.
func CloneClaims(records []ClaimRecord) []ClaimRecord {
	out := make([]ClaimRecord, len(records))
	for i, r := range records {
		r.Diagnoses = append([]Diagnosis(nil), r.Diagnoses...)
		if r.Comorbidities != nil {
			m := make(map[codebook.Condition]bool, len(r.Comorbidities))
			for k, v := range r.Comorbidities {
				m[k] = v
			}
			r.Comorbidities = m
		}
		out[i] = r
	}
	return out
}

// MultipleIDAudit lists a raw member id that shared a claim with another id,
// along with the resolved name, for manual review.
type MultipleIDAudit struct {
	MemberID string
	Name     string
}
