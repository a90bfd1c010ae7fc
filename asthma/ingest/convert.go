package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var dateLayouts = []string{
	constants.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"20060102",
}

var integralFloat = regexp.MustCompile(`^(\d+)\.0+$`)

// ParseDate accepts ISO dates, timestamps and US style dates and returns the
// UTC calendar day.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Errorf("could not parse date %q", raw)
}

// memberID undoes float rendering of numeric ids ("123.0" -> "123").
func memberID(raw string) string {
	s := strings.TrimSpace(raw)
	if m := integralFloat.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// DiagnosisColumns lists the header and line diagnosis code columns used for
// classification.
func DiagnosisColumns(t *Table) []string {
	var out []string
	for _, c := range t.Columns {
		if !strings.HasPrefix(c, "claim_header_diagnosis") && !strings.HasPrefix(c, "claim_line_diagnosis") {
			continue
		}
		if excluded(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

type claimSetter func(*models.ClaimRecord, string) error

// Returns a map that links column position with the method that should be
// used to populate a claim field
func claimSetters(headers []string) map[int]claimSetter {
	setters := make(map[int]claimSetter)
	for idx, header := range headers {
		switch header {
		case constants.MemberID:
			setters[idx] = func(c *models.ClaimRecord, v string) error { c.MemberID = memberID(v); return nil }
		case constants.ClaimID:
			setters[idx] = func(c *models.ClaimRecord, v string) error { c.ClaimID = strings.TrimSpace(v); return nil }
		case constants.FirstName:
			setters[idx] = func(c *models.ClaimRecord, v string) error { c.FirstName = v; return nil }
		case constants.LastName:
			setters[idx] = func(c *models.ClaimRecord, v string) error { c.LastName = v; return nil }
		case constants.AttendingProvider:
			setters[idx] = func(c *models.ClaimRecord, v string) error { c.AttendingProviderID = strings.TrimSpace(v); return nil }
		case constants.DateOfService:
			setters[idx] = func(c *models.ClaimRecord, v string) (err error) {
				c.DateOfService, err = ParseDate(v)
				return err
			}
		case constants.RevenueCode:
			setters[idx] = func(c *models.ClaimRecord, v string) (err error) {
				c.RevenueCode, c.HasRevenueCode, err = codes.NormalizeRevenueCode(v)
				return err
			}
		case constants.PlaceOfService:
			setters[idx] = func(c *models.ClaimRecord, v string) (err error) {
				c.PlaceOfService, err = codes.NormalizePlaceOfService(v)
				return err
			}
		case constants.TotalPaid:
			setters[idx] = func(c *models.ClaimRecord, v string) (err error) {
				c.TotalPaid, err = parseAmount(v)
				return err
			}
		}
	}
	return setters
}

// ToClaims converts a claim table into records. Every diagnosis column
// becomes one models.Diagnosis per record, in column order.
func ToClaims(t *Table, logger logrus.FieldLogger) ([]models.ClaimRecord, error) {
	if err := RequireColumns(t, "claim records", claimFields...); err != nil {
		return nil, err
	}

	type dxColumn struct {
		name    string
		code    int
		version int
		primary bool
	}
	var dx []dxColumn
	for _, c := range DiagnosisColumns(t) {
		dx = append(dx, dxColumn{
			name:    c,
			code:    t.Index(c),
			version: t.Index(c + constants.ICDVersionSuffix),
			primary: c == constants.PrimaryDiagnosis,
		})
	}
	if len(dx) == 0 {
		logger.Warn("No diagnosis columns found; no claim will be flagged as asthma related")
	}

	setters := claimSetters(t.Columns)
	records := make([]models.ClaimRecord, 0, len(t.Rows))
	for r, row := range t.Rows {
		rec := models.ClaimRecord{Diagnoses: make([]models.Diagnosis, 0, len(dx))}
		for idx, setter := range setters {
			if err := setter(&rec, row[idx]); err != nil {
				return nil, errors.Wrapf(err, "%s row %d column %s", t.Path, r, t.Columns[idx])
			}
		}
		for _, d := range dx {
			diag := models.Diagnosis{Column: d.name, Code: row[d.code], Present: row[d.code] != "", Primary: d.primary}
			if d.version >= 0 {
				v, err := codes.NormalizeICDVersion(row[d.version])
				if err != nil {
					return nil, errors.Wrapf(err, "%s row %d column %s", t.Path, r, t.Columns[d.version])
				}
				diag.ICDVersion = v
			}
			rec.Diagnoses = append(rec.Diagnoses, diag)
		}
		records = append(records, rec)
	}

	logger.WithFields(logrus.Fields{
		"records":           len(records),
		"diagnosis_columns": len(dx),
	}).Info("Read claim records")
	return records, nil
}

type fillSetter func(*models.DrugFill, string) error

func fillSetters(headers []string, logger logrus.FieldLogger) map[int]fillSetter {
	setters := make(map[int]fillSetter)
	for idx, header := range headers {
		switch header {
		case constants.MemberID:
			setters[idx] = func(f *models.DrugFill, v string) error { f.MemberID = memberID(v); return nil }
		case constants.ClaimStartDate:
			setters[idx] = func(f *models.DrugFill, v string) (err error) {
				f.ClaimStartDate, err = ParseDate(v)
				return err
			}
		case constants.DrugStrength:
			setters[idx] = func(f *models.DrugFill, v string) error { f.DrugStrength = v; return nil }
		case constants.DrugProductName:
			setters[idx] = func(f *models.DrugFill, v string) error { f.DrugProductName = v; return nil }
		case constants.ClaimStatus:
			setters[idx] = func(f *models.DrugFill, v string) error { f.ClaimStatus = v; return nil }
		case constants.RefillCode:
			setters[idx] = func(f *models.DrugFill, v string) error { f.RefillCode = v; return nil }
		case constants.GenericProductName:
			setters[idx] = func(f *models.DrugFill, v string) error { f.GenericProductName = v; return nil }
		case constants.PharmacyName:
			setters[idx] = func(f *models.DrugFill, v string) error { f.PharmacyName = v; return nil }
		case constants.PharmacyPhone:
			setters[idx] = func(f *models.DrugFill, v string) error { f.PharmacyPhone = v; return nil }
		case constants.DaysSupply:
			setters[idx] = func(f *models.DrugFill, v string) (err error) {
				f.DaysSupply, err = parseAmount(v)
				return err
			}
		case constants.MemberAge:
			setters[idx] = func(f *models.DrugFill, v string) error {
				if strings.TrimSpace(v) == "" {
					return nil
				}
				age, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil {
					logger.Warnf("Could not parse member age %s %s. Will leave value unset.", v, err.Error())
					return nil
				}
				f.MemberAge, f.HasMemberAge = int(age), true
				return nil
			}
		}
	}
	return setters
}

// ToFills converts a pharmacy table into fills.
func ToFills(t *Table, logger logrus.FieldLogger) ([]models.DrugFill, error) {
	if err := RequireColumns(t, "pharmacy records", constants.MemberID, constants.ClaimStartDate,
		constants.GenericProductName, constants.ClaimStatus, constants.DaysSupply); err != nil {
		return nil, err
	}

	setters := fillSetters(t.Columns, logger)
	fills := make([]models.DrugFill, 0, len(t.Rows))
	for r, row := range t.Rows {
		var f models.DrugFill
		for idx, setter := range setters {
			if err := setter(&f, row[idx]); err != nil {
				return nil, errors.Wrapf(err, "%s row %d column %s", t.Path, r, t.Columns[idx])
			}
		}
		fills = append(fills, f)
	}

	logger.WithField("fills", len(fills)).Info("Read pharmacy records")
	return fills, nil
}
