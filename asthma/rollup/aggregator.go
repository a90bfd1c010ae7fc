package rollup

import (
	"fmt"
	"sort"
	"time"

	"github.com/pchp/asthma-etl/asthma/codebook"
	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
)

// visitMetric names the output columns of one visit type.
type visitMetric struct {
	prefix    string
	visitType models.VisitType
	// extra windows, in months, reporting counts only
	extra []int
	// windows reporting unique episode counts
	unique []int
}

var visitMetrics = []visitMetric{
	{prefix: "inpt", visitType: models.VisitInpatient, unique: []int{12, 3}},
	{prefix: "ED", visitType: models.VisitED},
	{prefix: "outpt", visitType: models.VisitOutpatient, extra: []int{24}},
}

// Aggregator rolls classified claims up to one row per member.
type Aggregator struct {
	logger logrus.FieldLogger
}

func NewAggregator(logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Result is the member table plus the reference date its windows end on.
type Result struct {
	Members *models.MemberTable
	Period  time.Time
}

// Aggregate computes trailing window visit metrics and comorbidity flags.
// Every member in records gets a row; counts and amounts default to zero and
// last-visit dates stay null.
func (a *Aggregator) Aggregate(records []models.ClaimRecord) Result {
	events := toEvents(records)
	ref := period(events)

	table := models.NewMemberTable(distinctMembers(records))
	var zeroFill []string
	for _, m := range visitMetrics {
		cols := m.columns()
		table.AddColumns(cols...)
		for _, c := range cols {
			if c.Kind != models.KindDate {
				zeroFill = append(zeroFill, c.Name)
			}
		}
		a.fill(table, events, ref, m)
	}

	for _, c := range codebook.Conditions {
		table.AddColumns(models.Column{Name: string(c), Kind: models.KindInt})
		zeroFill = append(zeroFill, string(c))
	}
	for member, conditions := range MemberComorbidities(records) {
		for c := range conditions {
			table.Set(member, string(c), int64(1))
		}
	}

	table.FillZero(zeroFill...)
	a.logger.WithFields(logrus.Fields{
		"members":        table.Len(),
		"events":         len(events),
		"period":         ref.Format("2006-01-02"),
		"dropped_repeat": len(records) - len(events),
	}).Info("Aggregated member level visits")
	return Result{Members: table, Period: ref}
}

func (m visitMetric) columns() []models.Column {
	p := m.prefix
	cols := []models.Column{
		{Name: p + "_n12", Kind: models.KindInt},
		{Name: p + "_d", Kind: models.KindDate},
		{Name: p + "_pd_12", Kind: models.KindFloat},
		{Name: p + "_as_n12", Kind: models.KindInt},
		{Name: p + "_as_d", Kind: models.KindDate},
		{Name: p + "_as_pd_12", Kind: models.KindFloat},
	}
	for _, w := range []int{6, 3} {
		cols = append(cols,
			models.Column{Name: fmt.Sprintf("%s_n%d", p, w), Kind: models.KindInt},
			models.Column{Name: fmt.Sprintf("%s_as_n%d", p, w), Kind: models.KindInt})
	}
	for _, w := range m.unique {
		cols = append(cols, models.Column{Name: fmt.Sprintf("%s_u_n%d", p, w), Kind: models.KindInt})
	}
	for _, w := range m.unique {
		cols = append(cols, models.Column{Name: fmt.Sprintf("%s_as_u_n%d", p, w), Kind: models.KindInt})
	}
	for _, w := range m.extra {
		cols = append(cols,
			models.Column{Name: fmt.Sprintf("%s_n%d", p, w), Kind: models.KindInt},
			models.Column{Name: fmt.Sprintf("%s_as_n%d", p, w), Kind: models.KindInt})
	}
	return cols
}

func (a *Aggregator) fill(table *models.MemberTable, events []event, ref time.Time, m visitMetric) {
	for _, asthma := range []bool{false, true} {
		p := m.prefix
		if asthma {
			p += "_as"
		}

		year := summarize(eventDays(events, m.visitType, NewWindow(ref, 12), asthma))
		for member, s := range year {
			table.Set(member, p+"_n12", s.count)
			table.Set(member, p+"_d", s.last)
			table.Set(member, p+"_pd_12", s.paid)
		}

		windows := append([]int{6, 3}, m.extra...)
		for _, w := range windows {
			for member, s := range summarize(eventDays(events, m.visitType, NewWindow(ref, w), asthma)) {
				table.Set(member, fmt.Sprintf("%s_n%d", p, w), s.count)
			}
		}

		for _, w := range m.unique {
			days := uniqueEpisodes(eventDays(events, m.visitType, NewWindow(ref, w), asthma))
			for member, s := range summarize(days) {
				table.Set(member, fmt.Sprintf("%s_u_n%d", p, w), s.count)
			}
		}
	}
}

// MemberComorbidities ORs each member's comorbidity flags over all records.
func MemberComorbidities(records []models.ClaimRecord) map[string]map[codebook.Condition]struct{} {
	out := make(map[string]map[codebook.Condition]struct{})
	for _, r := range records {
		for c, ok := range r.Comorbidities {
			if !ok {
				continue
			}
			if out[r.MemberID] == nil {
				out[r.MemberID] = make(map[codebook.Condition]struct{})
			}
			out[r.MemberID][c] = struct{}{}
		}
	}
	return out
}

func distinctMembers(records []models.ClaimRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.MemberID]; ok {
			continue
		}
		seen[r.MemberID] = struct{}{}
		out = append(out, r.MemberID)
	}
	sort.Slice(out, func(i, j int) bool { return codes.LessID(out[i], out[j]) })
	return out
}
