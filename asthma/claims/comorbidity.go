package claims

import (
	"github.com/pchp/asthma-etl/asthma/codebook"
	"github.com/pchp/asthma-etl/asthma/models"
)

func matchesRule(rule codebook.ComorbidityRule, d models.Diagnosis) bool {
	if !d.Present {
		return false
	}
	if _, ok := rule.ICD10[d.Code]; ok {
		return true
	}
	return d.ICDVersion == 9 && d.Code >= rule.ICD9Min && d.Code <= rule.ICD9Max
}

func (c *Classifier) rule(condition codebook.Condition) (codebook.ComorbidityRule, bool) {
	for _, r := range c.tables.Comorbidities {
		if r.Condition == condition {
			return r, true
		}
	}
	return codebook.ComorbidityRule{}, false
}

// ClassifyComorbidity reports whether any normalized diagnosis on record
// matches condition.
func (c *Classifier) ClassifyComorbidity(record models.ClaimRecord, condition codebook.Condition) bool {
	rule, ok := c.rule(condition)
	if !ok {
		return false
	}
	for _, d := range record.Diagnoses {
		if matchesRule(rule, d) {
			return true
		}
	}
	return false
}

// ExtractComorbidities returns copies of normalized records with the
// Comorbidities map filled for every configured condition.
func (c *Classifier) ExtractComorbidities(records []models.ClaimRecord) []models.ClaimRecord {
	out := models.CloneClaims(records)
	counts := make(map[codebook.Condition]int)
	for i := range out {
		flags := make(map[codebook.Condition]bool, len(c.tables.Comorbidities))
		for _, rule := range c.tables.Comorbidities {
			for _, d := range out[i].Diagnoses {
				if matchesRule(rule, d) {
					flags[rule.Condition] = true
					counts[rule.Condition]++
					break
				}
			}
		}
		out[i].Comorbidities = flags
	}
	for condition, n := range counts {
		c.logger.WithField("condition", string(condition)).Debugf("%d records flagged", n)
	}
	return out
}
