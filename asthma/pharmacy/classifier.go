package pharmacy

import (
	"context"
	"strings"

	"github.com/pchp/asthma-etl/asthma/codebook"
	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/fuzzy"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultCutoff only accepts names equal to a reference item once tokens are
// sorted.
const DefaultCutoff = 100

// Classifier flags pharmacy fills as controllers or relievers.
type Classifier struct {
	tables  codebook.CodeTables
	matcher fuzzy.Matcher
	cutoff  int
	workers int
	logger  logrus.FieldLogger
}

func NewClassifier(tables codebook.CodeTables, matcher fuzzy.Matcher, cutoff, workers int, logger logrus.FieldLogger) *Classifier {
	if matcher == nil {
		matcher = fuzzy.TokenSortMatcher{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Classifier{tables: tables, matcher: matcher, cutoff: cutoff, workers: workers, logger: logger}
}

// Normalize returns copies of fills with trimmed, upper cased product names
// and claim statuses and canonical member ids.
func Normalize(fills []models.DrugFill) []models.DrugFill {
	out := models.CloneFills(fills)
	for i := range out {
		out[i].MemberID = codes.CanonicalID(out[i].MemberID)
		out[i].GenericProductName = codes.NormalizeText(out[i].GenericProductName)
		out[i].ClaimStatus = codes.NormalizeText(out[i].ClaimStatus)
	}
	return out
}

// MatchControllers matches every distinct non-empty product name against the
// controller list. Names are split into one batch per worker; the result maps
// each matched name to its reference item.
func (c *Classifier) MatchControllers(ctx context.Context, fills []models.DrugFill) (map[string]string, error) {
	var names []string
	seen := make(map[string]struct{})
	for _, f := range fills {
		if f.GenericProductName == "" {
			continue
		}
		if _, ok := seen[f.GenericProductName]; ok {
			continue
		}
		seen[f.GenericProductName] = struct{}{}
		names = append(names, f.GenericProductName)
	}

	results := make([]string, len(names))
	matched := make([]bool, len(names))
	size := (len(names) + c.workers - 1) / c.workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for start := 0; start < len(names); start += size {
		start, end := start, start+size
		if end > len(names) {
			end = len(names)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i], matched[i] = c.matcher.Match(names[i], c.tables.Controllers, c.cutoff)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for i, name := range names {
		if matched[i] {
			out[name] = results[i]
		}
	}
	return out, nil
}

// IsReliever reports whether a normalized product name is a short acting
// beta agonist.
func (c *Classifier) IsReliever(name string) bool {
	for _, fragment := range c.tables.RelieverFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// Classify normalizes fills and sets Controller and Reliever. Both require a
// PAID claim.
func (c *Classifier) Classify(ctx context.Context, fills []models.DrugFill) ([]models.DrugFill, error) {
	out := Normalize(fills)
	matches, err := c.MatchControllers(ctx, out)
	if err != nil {
		return nil, err
	}

	var controllers, relievers int
	for i := range out {
		paid := out[i].ClaimStatus == constants.PaidStatus
		_, matched := matches[out[i].GenericProductName]
		out[i].Controller = paid && matched
		out[i].Reliever = paid && c.IsReliever(out[i].GenericProductName)
		if out[i].Controller {
			controllers++
		}
		if out[i].Reliever {
			relievers++
		}
	}
	c.logger.WithFields(logrus.Fields{
		"fills":         len(out),
		"matched_names": len(matches),
		"controllers":   controllers,
		"relievers":     relievers,
	}).Info("Identified controllers and relievers")
	return out, nil
}
