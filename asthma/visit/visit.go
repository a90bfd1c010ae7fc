package visit

import (
	"sort"
	"time"

	"github.com/pchp/asthma-etl/asthma/codebook"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
)

const idSeparator = "-"

// ID identifies the visit of a member on a day.
func ID(memberID string, dateOfService time.Time) string {
	return memberID + idSeparator + dateOfService.Format("20060102")
}

// Candidates is the raw, pre-priority classification of a single claim.
type Candidates struct {
	Inpatient  bool
	ED         bool
	Outpatient bool
}

// Sets holds the visit ids resolved to each type.
type Sets struct {
	Inpatient  map[string]struct{}
	ED         map[string]struct{}
	Outpatient map[string]struct{}
}

type Classifier struct {
	tables codebook.CodeTables
	logger logrus.FieldLogger
}

func NewClassifier(tables codebook.CodeTables, logger logrus.FieldLogger) *Classifier {
	return &Classifier{tables: tables, logger: logger}
}

func (c *Classifier) Candidates(record models.ClaimRecord) Candidates {
	return Candidates{
		Inpatient:  c.matches(record, c.tables.InpatientRevenue, c.tables.InpatientPOS),
		ED:         c.matches(record, c.tables.EDRevenue, c.tables.EDPOS),
		Outpatient: c.matches(record, c.tables.OutpatientRevenue, c.tables.OutpatientPOS),
	}
}

func (c *Classifier) matches(record models.ClaimRecord, revenue, pos map[int]struct{}) bool {
	if record.HasRevenueCode {
		if _, ok := revenue[record.RevenueCode]; ok {
			return true
		}
	}
	if record.PlaceOfService == 0 {
		return false
	}
	_, ok := pos[record.PlaceOfService]
	return ok
}

// ClassifyVisitType resolves the type of one visit from all of its claims,
// with priority inpatient > ED > outpatient.
func (c *Classifier) ClassifyVisitType(visitClaims []models.ClaimRecord) models.VisitType {
	best := models.VisitNone
	for _, r := range visitClaims {
		cand := c.Candidates(r)
		switch {
		case cand.Inpatient:
			return models.VisitInpatient
		case cand.ED && best < models.VisitED:
			best = models.VisitED
		case cand.Outpatient && best < models.VisitOutpatient:
			best = models.VisitOutpatient
		}
	}
	return best
}

// Classify assigns VisitID and VisitType to copies of records. Inpatient
// visits are marked first, then ED visits that are not inpatient, then
// outpatient visits that are neither. The three sets are checked for overlap
// afterwards and any overlap is returned as a VisitTypeOverlapError.
func (c *Classifier) Classify(records []models.ClaimRecord) ([]models.ClaimRecord, Sets, error) {
	out := models.CloneClaims(records)

	inpt := make(map[string]struct{})
	ed := make(map[string]struct{})
	outpt := make(map[string]struct{})
	for i := range out {
		out[i].VisitID = ID(out[i].MemberID, out[i].DateOfService)
		cand := c.Candidates(out[i])
		if cand.Inpatient {
			inpt[out[i].VisitID] = struct{}{}
		}
		if cand.ED {
			ed[out[i].VisitID] = struct{}{}
		}
		if cand.Outpatient {
			outpt[out[i].VisitID] = struct{}{}
		}
	}
	ed = difference(ed, inpt)
	outpt = difference(difference(outpt, ed), inpt)
	sets := Sets{Inpatient: inpt, ED: ed, Outpatient: outpt}

	if err := CheckDisjoint(sets); err != nil {
		return nil, Sets{}, err
	}

	for i := range out {
		id := out[i].VisitID
		switch {
		case contains(inpt, id):
			out[i].VisitType = models.VisitInpatient
		case contains(ed, id):
			out[i].VisitType = models.VisitED
		case contains(outpt, id):
			out[i].VisitType = models.VisitOutpatient
		default:
			out[i].VisitType = models.VisitNone
		}
	}

	c.logger.WithFields(logrus.Fields{
		"inpt_visits":  len(inpt),
		"ED_visits":    len(ed),
		"outpt_visits": len(outpt),
	}).Info("Identified visit types")
	return out, sets, nil
}

// CheckDisjoint verifies no visit id was resolved to more than one type.
func CheckDisjoint(sets Sets) error {
	pairs := []struct {
		first, second string
		a, b          map[string]struct{}
	}{
		{models.VisitInpatient.String(), models.VisitED.String(), sets.Inpatient, sets.ED},
		{models.VisitInpatient.String(), models.VisitOutpatient.String(), sets.Inpatient, sets.Outpatient},
		{models.VisitED.String(), models.VisitOutpatient.String(), sets.ED, sets.Outpatient},
	}
	for _, p := range pairs {
		var shared []string
		for id := range p.a {
			if contains(p.b, id) {
				shared = append(shared, id)
			}
		}
		if len(shared) > 0 {
			sort.Strings(shared)
			return &asthmaErrors.VisitTypeOverlapError{First: p.first, Second: p.second, VisitIDs: shared}
		}
	}
	return nil
}

func difference(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for k := range a {
		if !contains(b, k) {
			out[k] = struct{}{}
		}
	}
	return out
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
