package pharmacy

import (
	"math"
	"sort"
	"time"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/models"
)

// Output columns of the adherence scores.
const (
	NumControllerOld        = "num_controller_old"
	NumRelieverOld          = "num_reliever_old"
	AMROld                  = "AMR_old"
	NumControllerCount      = "num_controller_count"
	NumRelieverNew          = "num_reliever_new"
	AMRCount                = "AMR_count"
	NumControllerDaysSupply = "num_controller_days_supply"
	AMRDaysSupply           = "AMR_days_supply"
)

// daysPerFill converts days of supply to fill equivalents.
const daysPerFill = 30

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

func ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// memberOrder returns the member ids of a per member map in id order.
func memberOrder[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return codes.LessID(out[i], out[j]) })
	return out
}

// ScoreOld counts, per member, the fill dates with at least one controller
// and the fill dates with at least one reliever, over all fills.
func ScoreOld(fills []models.DrugFill) *models.MemberTable {
	type key struct {
		member string
		day    time.Time
	}
	type flags struct{ controller, reliever bool }

	days := make(map[key]*flags)
	for _, f := range fills {
		k := key{f.MemberID, f.ClaimStartDate}
		d, ok := days[k]
		if !ok {
			d = &flags{}
			days[k] = d
		}
		d.controller = d.controller || f.Controller
		d.reliever = d.reliever || f.Reliever
	}

	type counts struct{ controller, reliever int64 }
	members := make(map[string]*counts)
	for k, d := range days {
		c, ok := members[k.member]
		if !ok {
			c = &counts{}
			members[k.member] = c
		}
		if d.controller {
			c.controller++
		}
		if d.reliever {
			c.reliever++
		}
	}

	var scored []string
	for _, m := range memberOrder(members) {
		if c := members[m]; c.controller+c.reliever > 0 {
			scored = append(scored, m)
		}
	}

	table := models.NewMemberTable(scored,
		models.Column{Name: NumControllerOld, Kind: models.KindInt},
		models.Column{Name: NumRelieverOld, Kind: models.KindInt},
		models.Column{Name: AMROld, Kind: models.KindFloat},
	)
	for _, m := range scored {
		c := members[m]
		amr, _ := ratio(float64(c.controller), float64(c.controller+c.reliever))
		table.Set(m, NumControllerOld, c.controller)
		table.Set(m, NumRelieverOld, c.reliever)
		table.Set(m, AMROld, round(amr, 1))
	}
	return table
}

type controllerTotals struct {
	rows       int64
	relievers  int64
	daysSupply float64
}

// controllerRows sums, per member, over fills flagged as controllers.
func controllerRows(fills []models.DrugFill) map[string]*controllerTotals {
	out := make(map[string]*controllerTotals)
	for _, f := range fills {
		if !f.Controller {
			continue
		}
		t, ok := out[f.MemberID]
		if !ok {
			t = &controllerTotals{}
			out[f.MemberID] = t
		}
		t.rows++
		t.daysSupply += f.DaysSupply
		if f.Reliever {
			t.relievers++
		}
	}
	return out
}

// ScoreCount is controller fills over controller fills plus relievers,
// counted over controller rows only.
func ScoreCount(fills []models.DrugFill) *models.MemberTable {
	totals := controllerRows(fills)
	members := memberOrder(totals)
	table := models.NewMemberTable(members,
		models.Column{Name: NumControllerCount, Kind: models.KindInt},
		models.Column{Name: NumRelieverNew, Kind: models.KindInt},
		models.Column{Name: AMRCount, Kind: models.KindFloat},
	)
	for _, m := range members {
		t := totals[m]
		amr, _ := ratio(float64(t.rows), float64(t.rows+t.relievers))
		table.Set(m, NumControllerCount, t.rows)
		table.Set(m, NumRelieverNew, t.relievers)
		table.Set(m, AMRCount, round(amr, 1))
	}
	return table
}

// ScoreDaysSupply converts controller days of supply to fills and divides by
// that plus the reliever count of controller rows. Members whose controller
// days of supply total zero have no score.
func ScoreDaysSupply(fills []models.DrugFill) *models.MemberTable {
	totals := controllerRows(fills)
	var members []string
	for _, m := range memberOrder(totals) {
		t := totals[m]
		if t.daysSupply/daysPerFill+float64(t.relievers) != 0 {
			members = append(members, m)
		}
	}

	table := models.NewMemberTable(members,
		models.Column{Name: NumControllerDaysSupply, Kind: models.KindFloat},
		models.Column{Name: AMRDaysSupply, Kind: models.KindFloat},
	)
	for _, m := range members {
		t := totals[m]
		supply := t.daysSupply / daysPerFill
		amr, _ := ratio(supply, supply+float64(t.relievers))
		table.Set(m, NumControllerDaysSupply, round(supply, 2))
		table.Set(m, AMRDaysSupply, round(amr, 1))
	}
	return table
}

// Scores outer joins the three adherence scores.
func Scores(fills []models.DrugFill) *models.MemberTable {
	table := ScoreOld(fills).Join(ScoreCount(fills), true).Join(ScoreDaysSupply(fills), true)
	table.SortMembers(codes.LessID)
	return table
}
