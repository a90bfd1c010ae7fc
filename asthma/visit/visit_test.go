package visit

import (
	"errors"
	"testing"
	"time"

	"github.com/pchp/asthma-etl/asthma/codebook"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func newClassifier() *Classifier {
	logger, _ := test.NewNullLogger()
	return NewClassifier(codebook.Default(), logger)
}

func claim(member string, dos time.Time, revenue int, pos int) models.ClaimRecord {
	return models.ClaimRecord{MemberID: member, DateOfService: dos, RevenueCode: revenue, HasRevenueCode: revenue != 0, PlaceOfService: pos}
}

func TestID(t *testing.T) {
	assert.Equal(t, "101-20240305", ID("101", day))
}

func TestCandidates(t *testing.T) {
	c := newClassifier()
	tests := []struct {
		name string
		rec  models.ClaimRecord
		want Candidates
	}{
		{"inpatient revenue", claim("1", day, 120, 0), Candidates{Inpatient: true}},
		{"ED revenue", claim("1", day, 450, 0), Candidates{ED: true}},
		{"outpatient revenue", claim("1", day, 510, 0), Candidates{Outpatient: true}},
		{"ED POS", claim("1", day, 0, 23), Candidates{ED: true}},
		{"POS in all three sets", claim("1", day, 0, 25), Candidates{Inpatient: true, ED: true, Outpatient: true}},
		{"revenue and POS disagree", claim("1", day, 450, 11), Candidates{ED: true, Outpatient: true}},
		{"missing POS", claim("1", day, 0, 0), Candidates{}},
		{"unknown codes", claim("1", day, 300, 81), Candidates{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Candidates(tt.rec))
		})
	}
}

func TestClassifyVisitType(t *testing.T) {
	c := newClassifier()
	assert.Equal(t, models.VisitInpatient, c.ClassifyVisitType([]models.ClaimRecord{claim("1", day, 450, 0), claim("1", day, 120, 0)}))
	assert.Equal(t, models.VisitED, c.ClassifyVisitType([]models.ClaimRecord{claim("1", day, 510, 0), claim("1", day, 0, 23)}))
	assert.Equal(t, models.VisitOutpatient, c.ClassifyVisitType([]models.ClaimRecord{claim("1", day, 0, 11)}))
	assert.Equal(t, models.VisitNone, c.ClassifyVisitType([]models.ClaimRecord{claim("1", day, 0, 0)}))
}

func TestClassify(t *testing.T) {
	c := newClassifier()
	next := day.AddDate(0, 0, 1)
	records := []models.ClaimRecord{
		// visit 1: inpatient and ED candidates
		claim("1", day, 450, 0),
		claim("1", day, 120, 0),
		claim("1", day, 0, 0),
		// visit 2: ED and outpatient
		claim("1", next, 0, 23),
		claim("1", next, 0, 11),
		// visit 3: outpatient only
		claim("2", day, 0, 11),
		// visit 4: nothing
		claim("3", day, 0, 0),
	}

	out, sets, err := c.Classify(records)
	require.NoError(t, err)

	want := []models.VisitType{
		models.VisitInpatient, models.VisitInpatient, models.VisitInpatient,
		models.VisitED, models.VisitED,
		models.VisitOutpatient,
		models.VisitNone,
	}
	for i, w := range want {
		assert.Equal(t, w, out[i].VisitType, "record %d", i)
	}
	assert.Equal(t, "1-20240305", out[0].VisitID)
	assert.Equal(t, "1-20240306", out[3].VisitID)
	assert.Empty(t, records[0].VisitID, "input is not mutated")

	assert.Len(t, sets.Inpatient, 1)
	assert.Len(t, sets.ED, 1)
	assert.Len(t, sets.Outpatient, 1)
	assert.NoError(t, CheckDisjoint(sets))
}

func TestClassifyDisjointForAnyInput(t *testing.T) {
	c := newClassifier()
	var records []models.ClaimRecord
	revenues := []int{0, 120, 450, 510, 300}
	positions := []int{0, 11, 21, 23, 25, 41, 99}
	for i, rev := range revenues {
		for j, pos := range positions {
			records = append(records, claim(string(rune('A'+(i+j)%3)), day.AddDate(0, 0, j%2), rev, pos))
		}
	}

	_, sets, err := c.Classify(records)
	require.NoError(t, err)
	for id := range sets.Inpatient {
		assert.NotContains(t, sets.ED, id)
		assert.NotContains(t, sets.Outpatient, id)
	}
	for id := range sets.ED {
		assert.NotContains(t, sets.Outpatient, id)
	}
}

func TestCheckDisjoint(t *testing.T) {
	sets := Sets{
		Inpatient:  map[string]struct{}{"a": {}},
		ED:         map[string]struct{}{"b": {}},
		Outpatient: map[string]struct{}{"b": {}, "c": {}},
	}
	err := CheckDisjoint(sets)
	var overlap *asthmaErrors.VisitTypeOverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "ED", overlap.First)
	assert.Equal(t, "outpt", overlap.Second)
	assert.Equal(t, []string{"b"}, overlap.VisitIDs)
}
