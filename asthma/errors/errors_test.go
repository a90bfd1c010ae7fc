package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"schema", &SchemaMismatchError{Path: "claims.parquet", Kind: "claim", Differences: []string{"a", "b"}},
			`schema mismatch for claims.parquet (kind "claim"): a; b`},
		{"format", &UnsupportedFileFormatError{Path: "claims.csv", Extension: ".csv"},
			`unsupported file format ".csv" for claims.csv: the data has to be in the .parquet format`},
		{"column", &MissingColumnError{Column: "dos_from", Stage: "Past visits"},
			`Past visits cannot be calculated without "dos_from"`},
		{"missing values", &MissingValueMismatchError{Column: "c", VersionColumn: "c_icd_vers", Rows: []int{1, 2}},
			"c needs manual check for missing values: 2 rows have a null c_icd_vers but a non-blank code"},
		{"overlap", &VisitTypeOverlapError{First: "inpt", Second: "ED", VisitIDs: []string{"1-20240101"}},
			"visit types inpt and ED overlap on 1 visits (e.g. 1-20240101)"},
		{"overlap without ids", &VisitTypeOverlapError{First: "inpt", Second: "ED"}, "visit types inpt and ED overlap"},
		{"remap", &RemapSkippedError{Before: 3, After: 3}, "mapping multiple Medicaid IDs terminated: distinct ids 3 -> 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	root := errors.New("max revenue code 10001")
	err := fmt.Errorf("claims: %w", &ValidationError{Err: root, Msg: "revenue codes"})

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "revenue codes", ve.Msg)
	assert.ErrorIs(t, err, root)
}
