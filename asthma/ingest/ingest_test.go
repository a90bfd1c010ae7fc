package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeParquet writes rows keyed by column name. Columns come out in name
// order. A nil value is a null cell.
func writeParquet(t *testing.T, path string, group parquet.Group, rows []map[string]interface{}) {
	schema := parquet.NewSchema("test", group)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := parquet.NewWriter(f, schema)
	for _, r := range rows {
		var row parquet.Row
		for i, col := range schema.Columns() {
			v, ok := r[col[0]]
			if !ok || v == nil {
				row = append(row, parquet.NullValue().Level(0, 0, i))
				continue
			}
			var pv parquet.Value
			switch x := v.(type) {
			case string:
				pv = parquet.ByteArrayValue([]byte(x))
			case int64:
				pv = parquet.Int64Value(x)
			case float64:
				pv = parquet.DoubleValue(x)
			case time.Time:
				pv = parquet.Int32Value(int32(x.Unix() / 86400))
			}
			row = append(row, pv.Level(0, 1, i))
		}
		_, err := w.WriteRows([]parquet.Row{row})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func claimGroup() parquet.Group {
	return parquet.Group{
		"claimid":            parquet.Optional(parquet.String()),
		"dos_from":           parquet.Optional(parquet.Date()),
		"member_medicaid_id": parquet.Optional(parquet.Int(64)),
		"total_paid_amt":     parquet.Optional(parquet.Leaf(parquet.DoubleType)),
	}
}

func TestReadTableParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims_2024.parquet")
	writeParquet(t, path, claimGroup(), []map[string]interface{}{
		{"claimid": "c1", "dos_from": time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "member_medicaid_id": int64(101), "total_paid_amt": 12.5},
		{"claimid": "c2", "member_medicaid_id": int64(7)},
	})

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"claimid", "dos_from", "member_medicaid_id", "total_paid_amt"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"c1", "2024-01-05", "101", "12.5"}, table.Rows[0])
	assert.Equal(t, []string{"c2", "", "7", ""}, table.Rows[1])
}

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pharmacy.csv")
	content := "\xef\xbb\xbfMember Medicaid ID, Claim Status ,days_supply\n0101,PAID,30\n202,NaN,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"member_medicaid_id", "claim_status", "days_supply"}, table.Columns)
	assert.Equal(t, []string{"0101", "202"}, table.Values(constants.MemberID))
	assert.Equal(t, []string{"PAID", ""}, table.Values(constants.ClaimStatus))
	assert.Equal(t, "", table.Rows[1][2])
}

func TestReadTableUnsupported(t *testing.T) {
	_, err := ReadTable("claims.xlsx")
	var unsupported *asthmaErrors.UnsupportedFileFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".xlsx", unsupported.Extension)
}

func TestFileKind(t *testing.T) {
	assert.Equal(t, constants.KindClaim, FileKind("/data/Claims_View_2022.parquet"))
	assert.Equal(t, constants.KindPharmacy, FileKind("/data/pharmacy_view.parquet"))
	assert.Equal(t, constants.KindUnknown, FileKind("/claims/members.parquet"))
}

func TestValidateSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claims.parquet")
	writeParquet(t, path, claimGroup(), nil)

	got, err := ReadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, []SchemaField{
		{Name: "claimid", Type: "string"},
		{Name: "dos_from", Type: "date32[day]"},
		{Name: "member_medicaid_id", Type: "int64"},
		{Name: "total_paid_amt", Type: "double"},
	}, got)

	good := filepath.Join(dir, "claim_schema.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"column_name": "claimid", "data_type": "string"},
		{"column_name": "dos_from", "data_type": "date32[day]"},
		{"column_name": "member_medicaid_id", "data_type": "int64"},
		{"column_name": "total_paid_amt", "data_type": "double"}
	]`), 0600))
	assert.NoError(t, ValidateSchema(path, good))
	assert.NoError(t, References{constants.KindClaim: good}.Validate(path))

	bad := filepath.Join(dir, "bad_schema.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[
		{"column_name": "claimid", "data_type": "string"},
		{"column_name": "dos_from", "data_type": "timestamp[ns]"},
		{"column_name": "member_medicaid_id", "data_type": "int64"}
	]`), 0600))
	err = ValidateSchema(path, bad)
	var mismatch *asthmaErrors.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, constants.KindClaim, mismatch.Kind)
	assert.Len(t, mismatch.Differences, 3)

	err = References{constants.KindClaim: good}.Validate(filepath.Join(dir, "pharmacy.parquet"))
	assert.True(t, errors.As(err, &mismatch))

	_, err = ReadSchema(filepath.Join(dir, "claims.csv"))
	var unsupported *asthmaErrors.UnsupportedFileFormatError
	assert.True(t, errors.As(err, &unsupported))
}

func claimTable(rows ...[]string) *Table {
	return NewTable("claims.csv", []string{
		"member_medicaid_id", "claimid", "member_first_name", "member_last_name", "dos_from",
		"revenue_code", "place_of_service", "total_paid_amt", "attending_providerid",
		"claim_header_diagnosis_code_primary", "claim_header_diagnosis_code_primary_icd_vers",
		"claim_line_diagnosis_code_1", "claim_line_diagnosis_code_1_icd_vers",
		"claim_header_diagnosis_code_admit", "claim_header_diagnosis_desc",
	}, rows)
}

func TestCodePairs(t *testing.T) {
	pairs := CodePairs(claimTable())
	assert.Equal(t, []CodePair{
		{Code: "claim_header_diagnosis_code_primary", Version: "claim_header_diagnosis_code_primary_icd_vers"},
		{Code: "claim_line_diagnosis_code_1", Version: "claim_line_diagnosis_code_1_icd_vers"},
	}, pairs)
	assert.Equal(t, []string{"claim_header_diagnosis_code_primary", "claim_line_diagnosis_code_1"}, DiagnosisColumns(claimTable()))
}

func TestValidateClaims(t *testing.T) {
	ok := []string{"101", "1", "Jane", "Doe", "2024-01-05", "450", "23", "10", "P1", "J45.20", "10", "", "", "", ""}
	assert.NoError(t, ValidateClaims(claimTable(ok)))

	blankWithVersion := append([]string(nil), ok...)
	blankWithVersion[11], blankWithVersion[12] = " ", "10"
	assert.NoError(t, ValidateClaims(claimTable(blankWithVersion)), "blank code with a version is tolerated")

	codeWithoutVersion := append([]string(nil), ok...)
	codeWithoutVersion[11] = "E66.9"
	err := ValidateClaims(claimTable(ok, codeWithoutVersion))
	var mismatch *asthmaErrors.MissingValueMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "claim_line_diagnosis_code_1", mismatch.Column)
	assert.Equal(t, []int{1}, mismatch.Rows)

	var validation *asthmaErrors.ValidationError
	badRevenue := append([]string(nil), ok...)
	badRevenue[5] = "99"
	assert.True(t, errors.As(ValidateClaims(claimTable(badRevenue)), &validation))

	noPOS := append([]string(nil), ok...)
	noPOS[6] = constants.NotApplicable
	assert.True(t, errors.As(ValidateClaims(claimTable(noPOS)), &validation))

	missing := NewTable("claims.csv", []string{"member_medicaid_id"}, nil)
	var missingCol *asthmaErrors.MissingColumnError
	assert.True(t, errors.As(ValidateClaims(missing), &missingCol))
}

func TestValidateRevenueAndPOS(t *testing.T) {
	assert.NoError(t, ValidateRevenueCodes([]string{"", "450", "9999"}))
	assert.Error(t, ValidateRevenueCodes([]string{"", ""}))
	assert.Error(t, ValidateRevenueCodes([]string{"10000"}))
	assert.Error(t, ValidateRevenueCodes([]string{"abc"}))

	assert.NoError(t, ValidatePlaceOfService([]string{"Not Applicable", "23", "99"}))
	assert.Error(t, ValidatePlaceOfService([]string{"Not Applicable", "00"}))
	assert.Error(t, ValidatePlaceOfService([]string{"100"}))
}

func pharmacyTable(rows ...[]string) *Table {
	return NewTable("pharmacy.csv", []string{
		"member_medicaid_id", "claim_start_date", "generic_product_name", "claim_status",
		"days_supply", "member_age_on_date_of_service", "drug_strength",
	}, rows)
}

func TestValidatePharmacy(t *testing.T) {
	ok := []string{"101", "2024-02-01", "QVAR", "PAID", "30", "7", "40 MCG"}
	assert.NoError(t, ValidatePharmacy(pharmacyTable(ok)))

	noSupply := append([]string(nil), ok...)
	noSupply[4] = ""
	assert.Error(t, ValidatePharmacy(pharmacyTable(noSupply)))

	adult := append([]string(nil), ok...)
	adult[5] = "18"
	assert.Error(t, ValidatePharmacy(pharmacyTable(adult)))
}

func TestToClaims(t *testing.T) {
	logger, _ := test.NewNullLogger()
	table := claimTable(
		[]string{"101.0", " 1 ", "Jane", "Doe", "2024-01-05 00:00:00", "450.0", "Not Applicable", "10.5", "P1", "j4520", "10.0", "", "", "X", "desc"},
		[]string{"0202", "2", "John", "Roe", "01/31/2024", "", "23", "", "P2", "", "", "493.90", "9", "", ""},
	)

	records, err := ToClaims(table, logger)
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "101", r.MemberID)
	assert.Equal(t, "1", r.ClaimID)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), r.DateOfService)
	assert.Equal(t, 450, r.RevenueCode)
	assert.True(t, r.HasRevenueCode)
	assert.Zero(t, r.PlaceOfService)
	assert.Equal(t, 10.5, r.TotalPaid)
	require.Len(t, r.Diagnoses, 2)
	assert.Equal(t, "j4520", r.Diagnoses[0].Code)
	assert.True(t, r.Diagnoses[0].Primary)
	assert.Equal(t, 10, r.Diagnoses[0].ICDVersion)
	assert.False(t, r.Diagnoses[1].Present)

	r = records[1]
	assert.Equal(t, "0202", r.MemberID)
	assert.False(t, r.HasRevenueCode)
	assert.Equal(t, 23, r.PlaceOfService)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), r.DateOfService)
	assert.Equal(t, 9, r.Diagnoses[1].ICDVersion)
	assert.False(t, r.Diagnoses[1].Primary)

	bad := claimTable([]string{"1", "1", "A", "B", "not a date", "450", "23", "", "", "", "", "", "", "", ""})
	_, err = ToClaims(bad, logger)
	assert.Error(t, err)
}

func TestToClaimsOnlyHeaderPrimaryIsPrimary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	table := NewTable("claims.csv", []string{
		"member_medicaid_id", "claimid", "member_first_name", "member_last_name", "dos_from",
		"revenue_code", "place_of_service", "total_paid_amt", "attending_providerid",
		"claim_header_diagnosis_code_primary", "claim_header_diagnosis_code_primary_icd_vers",
		"claim_line_diagnosis_code_primary", "claim_line_diagnosis_code_primary_icd_vers",
	}, [][]string{
		{"101", "1", "Jane", "Doe", "2024-01-05", "450", "23", "10", "P1", "R05", "10", "J45.20", "10"},
	})

	records, err := ToClaims(table, logger)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Diagnoses, 2)
	assert.True(t, records[0].Diagnoses[0].Primary)
	assert.False(t, records[0].Diagnoses[1].Primary)
	assert.Equal(t, "J45.20", records[0].Diagnoses[1].Code)
}

func TestToFills(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fills, err := ToFills(pharmacyTable(
		[]string{"7", "2024-02-01", "QVAR", "PAID", "30", "7", "40 MCG"},
		[]string{"8", "2024-02-02", "ALBUTEROL", "PAID", "15.5", "unknown", ""},
	), logger)
	require.NoError(t, err)
	require.Len(t, fills, 2)

	assert.Equal(t, "7", fills[0].MemberID)
	assert.Equal(t, 30.0, fills[0].DaysSupply)
	assert.Equal(t, 7, fills[0].MemberAge)
	assert.True(t, fills[0].HasMemberAge)
	assert.Equal(t, "40 MCG", fills[0].DrugStrength)
	assert.False(t, fills[1].HasMemberAge)
	assert.Equal(t, 15.5, fills[1].DaysSupply)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level.String() == "warning" {
			warned = true
		}
	}
	assert.True(t, warned)

	_, err = ToFills(NewTable("p.csv", []string{"member_medicaid_id"}, nil), logger)
	var missing *asthmaErrors.MissingColumnError
	assert.True(t, errors.As(err, &missing))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-02-29", "2024-02-29 13:00:00", "2024-02-29T13:00:00Z", "02/29/2024", "20240229"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseDate("")
	assert.Error(t, err)
}
