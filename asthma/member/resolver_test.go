package member

import (
	"testing"

	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(claim, member, first, last string) models.ClaimRecord {
	return models.ClaimRecord{ClaimID: claim, MemberID: member, FirstName: first, LastName: last}
}

func ids(records []models.ClaimRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.MemberID
	}
	return out
}

func TestResolveConsolidatesByName(t *testing.T) {
	logger, hook := test.NewNullLogger()
	resolver := NewResolver(Strict, logger)
	records := []models.ClaimRecord{
		rec("1", "101", "Jane", "Doe"),
		rec("1", "205", "Jane", "Doe"),
		rec("2", "101", "Jane", "Doe"),
		rec("3", "300", "John", "Roe"),
	}

	out, report := resolver.Resolve(records)

	assert.Equal(t, []string{"205", "205", "205", "300"}, ids(out))
	assert.Equal(t, []string{"101", "205", "101", "300"}, ids(records), "input is not mutated")
	assert.True(t, report.Remapped)
	assert.Nil(t, report.Skipped)
	assert.Equal(t, map[string]string{"101": "205"}, report.Mapping)
	assert.Equal(t, []models.MultipleIDAudit{{MemberID: "101", Name: "Jane Doe"}, {MemberID: "205", Name: "Jane Doe"}}, report.MultipleIDs)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "There are multiple Medicaid IDs for some members")
	assert.Contains(t, messages, "Multiple Medicaid IDs reduced to one unique ID")
}

func TestResolveLargestIDIsNumeric(t *testing.T) {
	logger, _ := test.NewNullLogger()
	records := []models.ClaimRecord{
		rec("1", "99", "Ann", "Lee"),
		rec("1", "100", "Ann", "Lee"),
		rec("1", "1000", "Ann", "Lee"),
	}

	out, report := NewResolver(Strict, logger).Resolve(records)
	require.True(t, report.Remapped)
	assert.Equal(t, []string{"1000", "1000", "1000"}, ids(out))
}

func TestResolveSkipsWhenNamesDiffer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	records := []models.ClaimRecord{
		rec("1", "101", "Jane", "Doe"),
		rec("1", "205", "Janet", "Doe"),
	}

	out, report := NewResolver(Strict, logger).Resolve(records)

	assert.Equal(t, []string{"101", "205"}, ids(out))
	assert.False(t, report.Remapped)
	require.NotNil(t, report.Skipped)
	assert.Equal(t, 2, report.Skipped.Before)
	assert.Equal(t, 2, report.Skipped.After)
	assert.Len(t, report.MultipleIDs, 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "terminated")
}

func TestResolveNoMultipleIDs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	records := []models.ClaimRecord{
		rec("1", "101", "Jane", "Doe"),
		rec("1", "101", "Jane", "Doe"),
		rec("2", "202", "John", "Roe"),
	}

	out, report := NewResolver(Strict, logger).Resolve(records)
	assert.Equal(t, ids(records), ids(out))
	assert.Empty(t, report.MultipleIDs)
	assert.Nil(t, report.Mapping)
	assert.Empty(t, hook.AllEntries())
}

func TestResolveAlphanumeric(t *testing.T) {
	records := []models.ClaimRecord{
		rec("1", " 0101 ", "Jane", "Doe"),
		rec("2", "A77", "Al", "Pha"),
		rec("3", "A77", "Al", "Pha"),
		rec("4", "202", "John", "Roe"),
	}

	t.Run("strict drops", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		out, report := NewResolver(Strict, logger).Resolve(records)

		assert.Equal(t, []string{"101", "202"}, ids(out))
		assert.Equal(t, []string{"A77"}, report.AlphanumericIDs)
		assert.Equal(t, 2, report.AlphanumericRecords)
		assert.Equal(t, 2, report.DroppedRecords)
		assert.Equal(t, 3, report.TotalMembers)
		assert.Equal(t, 4, report.TotalRecords)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, 1, entry.Data["alphanumeric_members"])
		assert.Equal(t, "strict", entry.Data["mode"])
	})

	t.Run("permissive keeps", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		out, report := NewResolver(Permissive, logger).Resolve(records)

		assert.Equal(t, []string{"101", "A77", "A77", "202"}, ids(out))
		assert.Equal(t, 2, report.AlphanumericRecords)
		assert.Zero(t, report.DroppedRecords)
		assert.Equal(t, "permissive", hook.LastEntry().Data["mode"])
	})
}
