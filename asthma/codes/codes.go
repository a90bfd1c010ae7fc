package codes

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// NormalizeDiagnosis canonicalizes a raw diagnosis code. It trims, upper
// cases, drops internal whitespace and inserts the decimal point after the
// three character category when it is missing ("J4520" -> "J45.20"). A blank
// code is reported as not present. The result is a fixed point:
// NormalizeDiagnosis(NormalizeDiagnosis(x)) == NormalizeDiagnosis(x).
func NormalizeDiagnosis(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if strings.IndexFunc(code, unicode.IsSpace) >= 0 {
		code = strings.Join(strings.Fields(code), "")
	}
	if code == "" {
		return "", false
	}
	if r := []rune(code); !strings.Contains(code, ".") && len(r) > 3 {
		code = string(r[:3]) + "." + string(r[3:])
	}
	return code, true
}

// NormalizePlaceOfService maps the raw place of service to its integer code.
// "Not Applicable" and blank map to 0, which means missing.
func NormalizePlaceOfService(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, constants.NotApplicable, "00")
	if s == "" || isNull(s) {
		return 0, nil
	}
	code, err := parseInt(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid place of service %q", raw)
	}
	return code, nil
}

// NormalizeRevenueCode parses a revenue code. Blank codes are not present.
func NormalizeRevenueCode(raw string) (int, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || isNull(s) {
		return 0, false, nil
	}
	code, err := parseInt(s)
	if err != nil {
		return 0, false, errors.Wrapf(err, "invalid revenue code %q", raw)
	}
	return code, true, nil
}

// NormalizeICDVersion parses an ICD version cell. Null cells return 0.
func NormalizeICDVersion(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || isNull(s) {
		return 0, nil
	}
	v, err := parseInt(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid ICD version %q", raw)
	}
	return v, nil
}

// NormalizeColumnName lower cases and trims a column name and replaces spaces
// with underscores.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeText folds compatibility characters (full width letters, non
// breaking spaces), trims and upper cases free text such as drug names and
// claim statuses.
func NormalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(s)))
}

// IsNumericID reports whether id is a non-empty run of decimal digits.
func IsNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CanonicalID renders a numeric id without leading zeros, the way an integer
// id prints. Non-numeric ids are returned trimmed.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if !IsNumericID(id) {
		return id
	}
	id = strings.TrimLeft(id, "0")
	if id == "" {
		return "0"
	}
	return id
}

// CompareIDs orders member ids. Two numeric ids compare by value, anything
// else compares as strings, with numeric ids first.
func CompareIDs(a, b string) int {
	an, bn := IsNumericID(a), IsNumericID(b)
	switch {
	case an && bn:
		a, b = CanonicalID(a), CanonicalID(b)
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

// LessID is CompareIDs as a sort predicate.
func LessID(a, b string) bool {
	return CompareIDs(a, b) < 0
}

func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "null", "none", "<nil>":
		return true
	}
	return false
}

// parseInt accepts integers and integral floats such as "450.0", which is how
// numeric columns come out of a float typed source.
func parseInt(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, errors.Errorf("%s is not an integer", s)
	}
	return int(f), nil
}

// IsNull reports whether a cell read from a table should be treated as null.
func IsNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || isNull(s)
}
