package rollup

import (
	"sort"
	"time"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/models"
)

// SubtractMonths steps back whole calendar months, clamping the day to the
// end of the target month (Mar 31 minus one month is Feb 28 or 29).
func SubtractMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Window is the closed interval [period - Months, period].
type Window struct {
	From time.Time
	To   time.Time
}

func NewWindow(period time.Time, months int) Window {
	return Window{From: SubtractMonths(period, months), To: period}
}

func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.From) && !day.After(w.To)
}

// event is the de-duplicated slice of a claim record that aggregation uses.
type event struct {
	member    string
	day       time.Time
	visitType models.VisitType
	visitID   string
	paid      float64
	claimID   string
	primary   bool
	secondary bool
	provider  string
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// toEvents drops records that repeat the same member, visit, amount, claim,
// asthma flags and provider.
func toEvents(records []models.ClaimRecord) []event {
	seen := make(map[event]struct{}, len(records))
	out := make([]event, 0, len(records))
	for _, r := range records {
		e := event{
			member:    r.MemberID,
			day:       truncateDay(r.DateOfService),
			visitType: r.VisitType,
			visitID:   r.VisitID,
			paid:      r.TotalPaid,
			claimID:   r.ClaimID,
			primary:   r.PrimaryAsthma,
			secondary: r.SecondaryAsthma,
			provider:  r.AttendingProviderID,
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// period is the latest date of service.
func period(events []event) time.Time {
	var max time.Time
	for _, e := range events {
		if e.day.After(max) {
			max = e.day
		}
	}
	return max
}

// memberDay is one member-day on which the member had an event of the type
// being aggregated.
type memberDay struct {
	member string
	day    time.Time
	paid   float64
}

type dayKey struct {
	member string
	day    time.Time
}

// eventDays groups in-window events by member and day. A day counts once no
// matter how many claims fall on it; its amount is the sum over the claims of
// that type. With asthmaOnly, only secondary asthma claims count. The result
// is ordered by member, then day.
func eventDays(events []event, vt models.VisitType, w Window, asthmaOnly bool) []memberDay {
	days := make(map[dayKey]*memberDay)
	for _, e := range events {
		if !w.Contains(e.day) || e.visitType != vt {
			continue
		}
		if asthmaOnly && !e.secondary {
			continue
		}
		k := dayKey{e.member, e.day}
		md, ok := days[k]
		if !ok {
			md = &memberDay{member: e.member, day: e.day}
			days[k] = md
		}
		md.paid += e.paid
	}

	out := make([]memberDay, 0, len(days))
	for _, md := range days {
		out = append(out, *md)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := codes.CompareIDs(out[i].member, out[j].member); c != 0 {
			return c < 0
		}
		return out[i].day.Before(out[j].day)
	})
	return out
}

// uniqueEpisodes drops a member-day when the row right before it is the same
// member one calendar day earlier. Each row is compared with its predecessor
// in the list, whether or not that predecessor was kept, so a run of
// consecutive days collapses to its first day.
func uniqueEpisodes(days []memberDay) []memberDay {
	out := make([]memberDay, 0, len(days))
	for i, d := range days {
		if i > 0 {
			prev := days[i-1]
			if prev.member == d.member && d.day.Sub(prev.day) == 24*time.Hour {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

type summary struct {
	count int64
	last  time.Time
	paid  float64
}

func summarize(days []memberDay) map[string]*summary {
	out := make(map[string]*summary)
	for _, d := range days {
		s, ok := out[d.member]
		if !ok {
			s = &summary{}
			out[d.member] = s
		}
		s.count++
		s.paid += d.paid
		if d.day.After(s.last) {
			s.last = d.day
		}
	}
	return out
}
