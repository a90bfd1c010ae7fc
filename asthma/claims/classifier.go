package claims

import (
	"context"
	"strings"

	"github.com/pchp/asthma-etl/asthma/codebook"
	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AsthmaFlags are the per record asthma flags. Secondary is set whenever
// Primary is.
type AsthmaFlags struct {
	Primary   bool
	Secondary bool
}

// Classifier flags claims as asthma related and tags comorbidities.
type Classifier struct {
	tables  codebook.CodeTables
	workers int
	logger  logrus.FieldLogger
}

func NewClassifier(tables codebook.CodeTables, workers int, logger logrus.FieldLogger) *Classifier {
	if workers < 1 {
		workers = 1
	}
	return &Classifier{tables: tables, workers: workers, logger: logger}
}

// NormalizeDiagnoses returns copies of records with every diagnosis code
// normalized.
func NormalizeDiagnoses(records []models.ClaimRecord) []models.ClaimRecord {
	out := models.CloneClaims(records)
	for i := range out {
		for j, d := range out[i].Diagnoses {
			out[i].Diagnoses[j].Code, out[i].Diagnoses[j].Present = codes.NormalizeDiagnosis(d.Code)
		}
	}
	return out
}

// IsAsthmaCode reports whether a normalized diagnosis is in the ICD-10 asthma
// set, or is an ICD-9 code in the asthma category.
func (c *Classifier) IsAsthmaCode(d models.Diagnosis) bool {
	if !d.Present {
		return false
	}
	if _, ok := c.tables.AsthmaICD10[d.Code]; ok {
		return true
	}
	return d.ICDVersion == 9 && strings.HasPrefix(d.Code, c.tables.AsthmaICD9Prefix)
}

// ClassifyAsthma flags a single normalized record, without claim-wide
// propagation.
func (c *Classifier) ClassifyAsthma(record models.ClaimRecord) AsthmaFlags {
	var flags AsthmaFlags
	for _, d := range record.Diagnoses {
		if !c.IsAsthmaCode(d) {
			continue
		}
		flags.Secondary = true
		if d.Primary {
			flags.Primary = true
		}
	}
	return flags
}

// PropagateByClaim spreads each flag to every record sharing a claim id with
// a flagged record. It returns a new slice and leaves flags untouched.
func PropagateByClaim(records []models.ClaimRecord, flags []AsthmaFlags) []AsthmaFlags {
	primary := make(map[string]struct{})
	secondary := make(map[string]struct{})
	for i, f := range flags {
		if f.Primary {
			primary[records[i].ClaimID] = struct{}{}
		}
		if f.Secondary {
			secondary[records[i].ClaimID] = struct{}{}
		}
	}

	out := make([]AsthmaFlags, len(flags))
	for i, r := range records {
		_, p := primary[r.ClaimID]
		_, s := secondary[r.ClaimID]
		out[i] = AsthmaFlags{Primary: p, Secondary: s}
	}
	return out
}

// ExtractAsthmaFlags normalizes diagnosis codes and sets PrimaryAsthma and
// SecondaryAsthma claim-wide. Columns are scanned in parallel and merged with
// a logical OR, so the result does not depend on scheduling.
func (c *Classifier) ExtractAsthmaFlags(ctx context.Context, records []models.ClaimRecord) ([]models.ClaimRecord, error) {
	out := NormalizeDiagnoses(records)

	columns := diagnosisWidth(out)
	hits := make([][]AsthmaFlags, columns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for col := 0; col < columns; col++ {
		col := col
		g.Go(func() error {
			column := make([]AsthmaFlags, len(out))
			for i, r := range out {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if col >= len(r.Diagnoses) {
					continue
				}
				d := r.Diagnoses[col]
				if c.IsAsthmaCode(d) {
					column[i] = AsthmaFlags{Primary: d.Primary, Secondary: true}
				}
			}
			hits[col] = column
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flags := make([]AsthmaFlags, len(out))
	for _, column := range hits {
		for i, f := range column {
			flags[i].Primary = flags[i].Primary || f.Primary
			flags[i].Secondary = flags[i].Secondary || f.Secondary
		}
	}
	flags = PropagateByClaim(out, flags)

	var primaries, secondaries int
	for i := range out {
		out[i].PrimaryAsthma = flags[i].Primary
		out[i].SecondaryAsthma = flags[i].Secondary
		if flags[i].Primary {
			primaries++
		}
		if flags[i].Secondary {
			secondaries++
		}
	}
	c.logger.WithFields(logrus.Fields{
		"records":           len(out),
		"diagnosis_columns": columns,
		"prm_as":            primaries,
		"prm_sec_as":        secondaries,
	}).Info("Extracted asthma flags")
	return out, nil
}

func diagnosisWidth(records []models.ClaimRecord) int {
	width := 0
	for _, r := range records {
		if len(r.Diagnoses) > width {
			width = len(r.Diagnoses)
		}
	}
	return width
}
