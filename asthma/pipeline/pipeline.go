// Package pipeline runs the claim path, the pharmacy path and the combined
// member level table.
//
// The claim path is:
//
//	read -> validate -> records -> member ids -> asthma flags -> comorbidities
//	  -> visit types -> member level windows
//
// The pharmacy path is:
//
//	read -> validate -> fills -> controller/reliever -> adherence scores
//	  -> last three controllers
//
// Any stage error aborts the run. Nothing is written by this package.
package pipeline

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/pchp/asthma-etl/asthma/claims"
	"github.com/pchp/asthma-etl/asthma/codebook"
	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/fuzzy"
	"github.com/pchp/asthma-etl/asthma/ingest"
	"github.com/pchp/asthma-etl/asthma/member"
	"github.com/pchp/asthma-etl/asthma/metrics"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/pchp/asthma-etl/asthma/pharmacy"
	"github.com/pchp/asthma-etl/asthma/rollup"
	"github.com/pchp/asthma-etl/asthma/visit"
	"github.com/pchp/asthma-etl/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Pipeline struct {
	cfg     Config
	tables  codebook.CodeTables
	matcher fuzzy.Matcher
	logger  logrus.FieldLogger
}

// New returns a pipeline using the default code tables and token sort
// matching.
func New(cfg Config, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{cfg: cfg, tables: codebook.Default(), matcher: fuzzy.TokenSortMatcher{}, logger: logger}
}

// WithMatcher swaps the controller name matcher.
func (p *Pipeline) WithMatcher(m fuzzy.Matcher) *Pipeline {
	p.matcher = m
	return p
}

// Inputs names the extracts of one run. Either path may be empty.
type Inputs struct {
	ClaimsPath   string
	PharmacyPath string
}

// ClaimsResult is the output of the claim path.
type ClaimsResult struct {
	Records  []models.ClaimRecord
	Members  *models.MemberTable
	Period   time.Time
	Identity member.Report
}

// PharmacyResult is the output of the pharmacy path.
type PharmacyResult struct {
	Fills   []models.DrugFill
	Members *models.MemberTable
}

// Result is one complete run.
type Result struct {
	RunID    string
	Period   time.Time
	Members  *models.MemberTable
	Audit    []models.MultipleIDAudit
	Claims   *ClaimsResult
	Pharmacy *PharmacyResult
}

// loggerFor prefers the run logger carried by ctx.
func (p *Pipeline) loggerFor(ctx context.Context) logrus.FieldLogger {
	if logger, ok := ctx.Value(log.CtxLoggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return p.logger
}

func (p *Pipeline) read(ctx context.Context, path string) (*ingest.Table, error) {
	logger := p.loggerFor(ctx)
	if p.cfg.ValidateSchema {
		if err := p.cfg.References().Validate(path); err != nil {
			return nil, err
		}
		logger.WithField("file", path).Info("Schema validated")
	}
	table, err := ingest.ReadTable(path)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"file": path, "rows": table.Len(), "columns": len(table.Columns)}).Info("Read input file")
	return table, nil
}

// LoadClaims reads, validates and converts a claims extract.
func (p *Pipeline) LoadClaims(ctx context.Context, path string) (records []models.ClaimRecord, err error) {
	end := metrics.StartStage(ctx, metrics.LoadClaims)
	defer func() { end(len(records)) }()

	table, err := p.read(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ingest.ValidateClaims(table); err != nil {
		return nil, err
	}
	return ingest.ToClaims(table, p.loggerFor(ctx))
}

// LoadFills reads, validates and converts a pharmacy extract.
func (p *Pipeline) LoadFills(ctx context.Context, path string) (fills []models.DrugFill, err error) {
	end := metrics.StartStage(ctx, metrics.LoadPharmacy)
	defer func() { end(len(fills)) }()

	table, err := p.read(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ingest.ValidatePharmacy(table); err != nil {
		return nil, err
	}
	return ingest.ToFills(table, p.loggerFor(ctx))
}

// ProcessClaims resolves member ids, classifies claims and visits and rolls
// the result up to one row per member.
func (p *Pipeline) ProcessClaims(ctx context.Context, records []models.ClaimRecord) (*ClaimsResult, error) {
	logger := p.loggerFor(ctx)

	end := metrics.StartStage(ctx, metrics.ResolveMembers)
	resolved, report := member.NewResolver(p.cfg.memberMode(), logger).Resolve(records)
	end(len(resolved))

	classifier := claims.NewClassifier(p.tables, p.cfg.ClassifyWorkers, logger)
	end = metrics.StartStage(ctx, metrics.ClassifyClaims)
	flagged, err := classifier.ExtractAsthmaFlags(ctx, resolved)
	if err != nil {
		end(0)
		return nil, errors.Wrap(err, "failed to flag asthma claims")
	}
	flagged = classifier.ExtractComorbidities(flagged)
	end(len(flagged))

	end = metrics.StartStage(ctx, metrics.ClassifyVisits)
	classified, _, err := visit.NewClassifier(p.tables, logger).Classify(flagged)
	end(len(classified))
	if err != nil {
		return nil, err
	}

	end = metrics.StartStage(ctx, metrics.AggregateClaims)
	agg := rollup.NewAggregator(logger).Aggregate(classified)
	end(agg.Members.Len())

	return &ClaimsResult{Records: classified, Members: agg.Members, Period: agg.Period, Identity: report}, nil
}

// ProcessPharmacy classifies fills and builds the pharmacy member table.
func (p *Pipeline) ProcessPharmacy(ctx context.Context, fills []models.DrugFill) (*PharmacyResult, error) {
	end := metrics.StartStage(ctx, metrics.ClassifyPharmacy)
	classifier := pharmacy.NewClassifier(p.tables, p.matcher, p.cfg.ControllerMatchCutoff, p.cfg.MatchWorkers, p.loggerFor(ctx))
	classified, table, err := classifier.MemberLevel(ctx, fills)
	if err != nil {
		end(0)
		return nil, errors.Wrap(err, "failed to classify pharmacy fills")
	}
	end(table.Len())
	return &PharmacyResult{Fills: classified, Members: table}, nil
}

// Combine outer joins the claim and pharmacy member tables. Claim counts and
// amounts are zero for pharmacy-only members; pharmacy columns stay null for
// claim-only members.
func Combine(claimsTable, pharmacyTable *models.MemberTable) *models.MemberTable {
	switch {
	case claimsTable == nil && pharmacyTable == nil:
		return models.NewMemberTable(nil)
	case pharmacyTable == nil:
		return claimsTable
	case claimsTable == nil:
		return pharmacyTable
	}

	combined := claimsTable.Join(pharmacyTable, true)
	var claimColumns []string
	for _, c := range claimsTable.Columns() {
		claimColumns = append(claimColumns, c.Name)
	}
	combined.FillZero(claimColumns...)
	combined.SortMembers(codes.LessID)
	return combined
}

// Run processes every input named in in. At least one path is required.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (result *Result, err error) {
	if in.ClaimsPath == "" && in.PharmacyPath == "" {
		return nil, errors.New("no input files given")
	}

	runID := uuid.NewRandom().String()
	logger := p.loggerFor(ctx).WithField("run_id", runID)
	ctx = log.NewContext(ctx, logger)
	ctx, endRun := metrics.StartRun(ctx, metrics.Run{ID: runID, ClaimsPath: in.ClaimsPath, PharmacyPath: in.PharmacyPath})
	defer func() {
		var members int
		if result != nil {
			members = result.Members.Len()
		}
		endRun(members, err)
	}()

	result = &Result{RunID: runID}
	if in.ClaimsPath != "" {
		records, err := p.LoadClaims(ctx, in.ClaimsPath)
		if err != nil {
			return nil, err
		}
		cr, err := p.ProcessClaims(ctx, records)
		if err != nil {
			return nil, err
		}
		result.Claims = cr
		result.Period = cr.Period
		result.Audit = cr.Identity.MultipleIDs
	}
	if in.PharmacyPath != "" {
		fills, err := p.LoadFills(ctx, in.PharmacyPath)
		if err != nil {
			return nil, err
		}
		pr, err := p.ProcessPharmacy(ctx, fills)
		if err != nil {
			return nil, err
		}
		result.Pharmacy = pr
	}

	var claimsTable, pharmacyTable *models.MemberTable
	if result.Claims != nil {
		claimsTable = result.Claims.Members
	}
	if result.Pharmacy != nil {
		pharmacyTable = result.Pharmacy.Members
	}
	end := metrics.StartStage(ctx, metrics.CombineMembers)
	result.Members = Combine(claimsTable, pharmacyTable)
	end(result.Members.Len())

	logger.WithFields(logrus.Fields{
		"members": result.Members.Len(),
		"columns": len(result.Members.Columns()),
		"audit":   len(result.Audit),
	}).Info("Completed asthma run")
	return result, nil
}
