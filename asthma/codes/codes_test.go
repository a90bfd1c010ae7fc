package codes

import (
	"sort"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDiagnosis(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		present bool
	}{
		{"J4520", "J45.20", true},
		{"j45.20", "J45.20", true},
		{"  J45 20 ", "J45.20", true},
		{"J45 .909", "J45.909", true},
		{"49390", "493.90", true},
		{"493", "493", true},
		{"J30", "J30", true},
		{"ÉÉÉ", "ÉÉÉ", true},
		{"éééé", "ÉÉÉ.É", true},
		{"", "", false},
		{"   ", "", false},
		{"\t", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeDiagnosis(tt.raw)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNormalizeDiagnosisIdempotent(t *testing.T) {
	for _, raw := range []string{"J4520", "j45 2 0", "493.9", "E6601", "K210", " g4733", "A", "ABCD.E", "."} {
		once, ok1 := NormalizeDiagnosis(raw)
		twice, ok2 := NormalizeDiagnosis(once)
		assert.Equal(t, ok1, ok2, raw)
		assert.Equal(t, once, twice, raw)
	}
}

func TestNormalizePlaceOfService(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"23", 23, false},
		{" 21 ", 21, false},
		{"Not Applicable", 0, false},
		{"", 0, false},
		{"02", 2, false},
		{"11.0", 11, false},
		{"ER", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizePlaceOfService(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRevenueCode(t *testing.T) {
	code, ok, err := NormalizeRevenueCode("450")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 450, code)

	code, ok, err = NormalizeRevenueCode("981.0")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 981, code)

	_, ok, err = NormalizeRevenueCode(" ")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = NormalizeRevenueCode("NaN")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = NormalizeRevenueCode("45.5")
	assert.Error(t, err)
}

func TestNormalizeICDVersion(t *testing.T) {
	v, err := NormalizeICDVersion("9")
	assert.NoError(t, err)
	assert.Equal(t, 9, v)
	v, err = NormalizeICDVersion("10.0")
	assert.NoError(t, err)
	assert.Equal(t, 10, v)
	v, err = NormalizeICDVersion("")
	assert.NoError(t, err)
	assert.Zero(t, v)
	_, err = NormalizeICDVersion("ten")
	assert.Error(t, err)
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "member_medicaid_id", NormalizeColumnName(" Member Medicaid ID "))
	assert.Equal(t, "claimid", NormalizeColumnName("ClaimID"))
}

func TestIDs(t *testing.T) {
	assert.True(t, IsNumericID("00123"))
	assert.False(t, IsNumericID("A123"))
	assert.False(t, IsNumericID(""))
	assert.False(t, IsNumericID("12 3"))

	assert.Equal(t, "123", CanonicalID(" 00123 "))
	assert.Equal(t, "0", CanonicalID("000"))
	assert.Equal(t, "A1", CanonicalID(" A1"))

	assert.Equal(t, 1, CompareIDs("205", "101"))
	assert.Equal(t, 1, CompareIDs("1000", "999"))
	assert.Equal(t, 0, CompareIDs("0101", "101"))
	assert.Equal(t, -1, CompareIDs("999", "A1"))
	assert.Equal(t, -1, CompareIDs("A1", "B1"))

	ids := []string{"A1", "20", "3", "100"}
	sort.Slice(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })
	assert.Equal(t, []string{"3", "20", "100", "A1"}, ids)
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", " ", "NaN", "null", "None"} {
		assert.True(t, IsNull(s), s)
	}
	assert.False(t, IsNull("0"))
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" paid ", "PAID"},
		{"albuterol sulfate hfa", "ALBUTEROL SULFATE HFA"},
		{" budesonide ", "BUDESONIDE"},
		{"ＭＯＮＴＥＬＵＫＡＳＴ", "MONTELUKAST"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), tt.in)
	}
}
