package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pkg/errors"
)

var codeGroups = []string{"header_diagnosis", "line_diagnosis", "procedure"}

// Fields that must be present in a claim extract
var claimFields = []string{
	constants.MemberID, constants.ClaimID,
	constants.FirstName, constants.LastName,
	constants.DateOfService,
	constants.RevenueCode, constants.PlaceOfService,
	constants.TotalPaid, constants.AttendingProvider,
}

// Fields that must be present in a pharmacy extract
var pharmacyFields = []string{
	constants.MemberID, constants.ClaimStartDate,
	constants.GenericProductName, constants.ClaimStatus,
	constants.DaysSupply, constants.MemberAge,
}

// CodePair is a diagnosis or procedure code column and its ICD version column.
type CodePair struct {
	Code    string
	Version string
}

func excluded(column string) bool {
	return strings.Contains(column, "admit") || strings.Contains(column, "desc") || strings.Contains(column, "icd")
}

// CodePairs lists the diagnosis and procedure columns that have a version
// column, grouped in header, line, procedure order.
func CodePairs(t *Table) []CodePair {
	var pairs []CodePair
	for _, group := range codeGroups {
		for _, c := range t.Columns {
			if !strings.Contains(c, group) || excluded(c) {
				continue
			}
			if v := c + constants.ICDVersionSuffix; t.Has(v) {
				pairs = append(pairs, CodePair{Code: c, Version: v})
			}
		}
	}
	return pairs
}

// ValidateCodePairs checks that every row with a null ICD version also has a
// blank code.
func ValidateCodePairs(t *Table) error {
	for _, p := range CodePairs(t) {
		code, version := t.Index(p.Code), t.Index(p.Version)
		var rows []int
		for r, row := range t.Rows {
			if row[version] == "" && strings.TrimSpace(row[code]) != "" {
				rows = append(rows, r)
			}
		}
		if len(rows) > 0 {
			return &asthmaErrors.MissingValueMismatchError{Column: p.Code, VersionColumn: p.Version, Rows: rows}
		}
	}
	return nil
}

// ValidateRevenueCodes requires at least one revenue code, all within
// 100..9999.
func ValidateRevenueCodes(values []string) error {
	present := 0
	for _, v := range values {
		code, ok, err := codes.NormalizeRevenueCode(v)
		if err != nil {
			return &asthmaErrors.ValidationError{Err: err, Msg: "revenue codes must be numeric"}
		}
		if !ok {
			continue
		}
		present++
		if code >= 10000 || code <= 99 {
			return &asthmaErrors.ValidationError{
				Err: errors.Errorf("revenue code %d out of range", code),
				Msg: "revenue codes must be between 100 and 9999",
			}
		}
	}
	if present == 0 {
		return &asthmaErrors.ValidationError{Err: errors.New("no revenue codes"), Msg: "revenue codes are all null"}
	}
	return nil
}

// ValidatePlaceOfService requires codes within 0..99, not all of them 0.
func ValidatePlaceOfService(values []string) error {
	nonZero := 0
	for _, v := range values {
		code, err := codes.NormalizePlaceOfService(v)
		if err != nil {
			return &asthmaErrors.ValidationError{Err: err, Msg: "place of service codes must be numeric"}
		}
		if code < 0 || code > 99 {
			return &asthmaErrors.ValidationError{
				Err: errors.Errorf("place of service %d out of range", code),
				Msg: "place of service codes must be between 0 and 99",
			}
		}
		if code != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return &asthmaErrors.ValidationError{Err: errors.New("no place of service"), Msg: "place of service codes are all missing"}
	}
	return nil
}

// ValidateClaims runs every claim table check.
func ValidateClaims(t *Table) error {
	if err := RequireColumns(t, "claim data", claimFields...); err != nil {
		return err
	}
	if err := ValidateCodePairs(t); err != nil {
		return err
	}
	if err := ValidateRevenueCodes(t.Values(constants.RevenueCode)); err != nil {
		return err
	}
	return ValidatePlaceOfService(t.Values(constants.PlaceOfService))
}

// ValidatePharmacy requires days of supply and claim start dates on every row
// and member ages within 0..17.
func ValidatePharmacy(t *Table) error {
	if err := RequireColumns(t, "pharmacy data", pharmacyFields...); err != nil {
		return err
	}
	for _, c := range []string{constants.DaysSupply, constants.ClaimStartDate} {
		for r, v := range t.Values(c) {
			if v == "" {
				return &asthmaErrors.ValidationError{
					Err: errors.Errorf("row %d", r),
					Msg: fmt.Sprintf("%s has null values", c),
				}
			}
		}
	}
	for r, v := range t.Values(constants.MemberAge) {
		if v == "" {
			continue
		}
		age, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return &asthmaErrors.ValidationError{Err: errors.Wrapf(err, "row %d", r), Msg: "member age must be numeric"}
		}
		if age < 0 || age > 17 {
			return &asthmaErrors.ValidationError{
				Err: errors.Errorf("row %d: age %v", r, age),
				Msg: "member age must be between 0 and 17",
			}
		}
	}
	return nil
}
