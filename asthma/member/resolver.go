package member

import (
	"sort"
	"strings"

	"github.com/pchp/asthma-etl/asthma/codes"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
)

// Mode selects what happens to alphanumeric member ids.
type Mode int

const (
	// Strict drops records with alphanumeric ids.
	Strict Mode = iota
	// Permissive reports alphanumeric ids and keeps them. Numeric ids lose
	// their leading zeros in both modes.
	Permissive
)

func (m Mode) String() string {
	if m == Permissive {
		return "permissive"
	}
	return "strict"
}

// Report describes what identity resolution found and changed.
type Report struct {
	TotalMembers int
	TotalRecords int

	AlphanumericIDs     []string
	AlphanumericRecords int
	DroppedRecords      int

	// MultipleIDs lists every id on a claim that carried more than one id.
	MultipleIDs []models.MultipleIDAudit
	// Mapping is the proposed raw id -> canonical id consolidation.
	Mapping  map[string]string
	Remapped bool
	// Skipped is set when the mapping was abandoned. It is not fatal.
	Skipped *asthmaErrors.RemapSkippedError
}

type Resolver struct {
	mode   Mode
	logger logrus.FieldLogger
}

func NewResolver(mode Mode, logger logrus.FieldLogger) *Resolver {
	return &Resolver{mode: mode, logger: logger}
}

// Resolve returns copies of records with canonical member ids.
func (r *Resolver) Resolve(records []models.ClaimRecord) ([]models.ClaimRecord, Report) {
	out := models.CloneClaims(records)
	for i := range out {
		out[i].MemberID = strings.TrimSpace(out[i].MemberID)
	}

	report := Report{TotalMembers: len(distinctIDs(out)), TotalRecords: len(out)}
	out = r.handleAlphanumeric(out, &report)

	audit, affected := multipleIDs(out)
	if len(audit) == 0 {
		return out, report
	}
	report.MultipleIDs = audit
	r.logger.WithFields(logrus.Fields{
		"members": affected,
		"records": countRecordsFor(out, audit),
	}).Warn("There are multiple Medicaid IDs for some members")

	report.Mapping = consolidate(audit)
	remapped := applyMapping(out, report.Mapping)
	before, after := len(distinctIDs(out)), len(distinctIDs(remapped))
	if after >= before {
		report.Skipped = &asthmaErrors.RemapSkippedError{Before: before, After: after}
		r.logger.WithField("mapping", len(report.Mapping)).Warn(report.Skipped.Error())
		return out, report
	}

	report.Remapped = true
	r.logger.WithFields(logrus.Fields{
		"before": before,
		"after":  after,
	}).Info("Multiple Medicaid IDs reduced to one unique ID")
	return remapped, report
}

func (r *Resolver) handleAlphanumeric(records []models.ClaimRecord, report *Report) []models.ClaimRecord {
	alpha := make(map[string]struct{})
	for _, rec := range records {
		if !codes.IsNumericID(rec.MemberID) {
			if _, ok := alpha[rec.MemberID]; !ok {
				report.AlphanumericIDs = append(report.AlphanumericIDs, rec.MemberID)
			}
			alpha[rec.MemberID] = struct{}{}
			report.AlphanumericRecords++
		}
	}

	if len(alpha) > 0 {
		r.logger.WithFields(logrus.Fields{
			"alphanumeric_members": len(alpha),
			"members":              report.TotalMembers,
			"alphanumeric_records": report.AlphanumericRecords,
			"records":              report.TotalRecords,
			"mode":                 r.mode.String(),
		}).Warn("Members have alphanumeric Medicaid IDs")
	}

	kept := records[:0]
	for _, rec := range records {
		if _, ok := alpha[rec.MemberID]; ok && r.mode == Strict {
			report.DroppedRecords++
			continue
		}
		rec.MemberID = codes.CanonicalID(rec.MemberID)
		kept = append(kept, rec)
	}
	return kept
}

// multipleIDs finds ids that never survive a per-claim dedup that keeps the
// smallest id of each claim. Every id on a claim touched by such an id is
// audited, in order of first appearance, with the first name seen for it.
func multipleIDs(records []models.ClaimRecord) ([]models.MultipleIDAudit, int) {
	keptByClaim := make(map[string]string)
	for _, rec := range records {
		if cur, ok := keptByClaim[rec.ClaimID]; !ok || codes.CompareIDs(rec.MemberID, cur) < 0 {
			keptByClaim[rec.ClaimID] = rec.MemberID
		}
	}
	kept := make(map[string]struct{}, len(keptByClaim))
	for _, id := range keptByClaim {
		kept[id] = struct{}{}
	}

	diff := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := kept[rec.MemberID]; !ok {
			diff[rec.MemberID] = struct{}{}
		}
	}
	if len(diff) == 0 {
		return nil, 0
	}

	claims := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := diff[rec.MemberID]; ok {
			claims[rec.ClaimID] = struct{}{}
		}
	}

	names := make(map[string]string)
	for _, rec := range records {
		if _, ok := names[rec.MemberID]; !ok {
			names[rec.MemberID] = rec.Name()
		}
	}

	var audit []models.MultipleIDAudit
	seen := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := claims[rec.ClaimID]; !ok {
			continue
		}
		if _, ok := seen[rec.MemberID]; ok {
			continue
		}
		seen[rec.MemberID] = struct{}{}
		audit = append(audit, models.MultipleIDAudit{MemberID: rec.MemberID, Name: names[rec.MemberID]})
	}
	return audit, len(diff)
}

// consolidate groups audited ids by name and maps every id of a group to the
// group's largest id.
func consolidate(audit []models.MultipleIDAudit) map[string]string {
	byName := make(map[string][]string)
	for _, a := range audit {
		byName[a.Name] = append(byName[a.Name], a.MemberID)
	}

	mapping := make(map[string]string)
	for _, ids := range byName {
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return codes.CompareIDs(ids[i], ids[j]) > 0 })
		for _, id := range ids[1:] {
			mapping[id] = ids[0]
		}
	}
	return mapping
}

func applyMapping(records []models.ClaimRecord, mapping map[string]string) []models.ClaimRecord {
	out := models.CloneClaims(records)
	for i := range out {
		if canonical, ok := mapping[out[i].MemberID]; ok {
			out[i].MemberID = canonical
		}
	}
	return out
}

func distinctIDs(records []models.ClaimRecord) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, rec := range records {
		ids[rec.MemberID] = struct{}{}
	}
	return ids
}

func countRecordsFor(records []models.ClaimRecord, audit []models.MultipleIDAudit) int {
	ids := make(map[string]struct{}, len(audit))
	for _, a := range audit {
		ids[a.MemberID] = struct{}{}
	}
	n := 0
	for _, rec := range records {
		if _, ok := ids[rec.MemberID]; ok {
			n++
		}
	}
	return n
}
