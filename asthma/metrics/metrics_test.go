package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/newrelic/go-agent/v3/integrations/nrlogrus"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pchp/asthma-etl/conf"
	"github.com/pchp/asthma-etl/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MetricTestSuite struct {
	suite.Suite
	timer Timer
	ctx   context.Context
	hook  *test.Hook
}

func (s *MetricTestSuite) SetupTest() {
	nr, err := newrelic.NewApplication(
		newrelic.ConfigAppName("ASTHMA-ETL-test"),
		newrelic.ConfigEnabled(false),
		nrlogrus.ConfigStandardLogger(),
	)
	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), nr)
	s.timer = &timer{nr}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s.hook = hook
	s.ctx = log.NewContext(context.Background(), logger)
}

func TestMetricTestSuite(t *testing.T) {
	suite.Run(t, new(MetricTestSuite))
}

func (s *MetricTestSuite) TestRunAndStages() {
	ctx := NewContext(s.ctx, s.timer)
	ctx, endRun := StartRun(ctx, Run{ID: "run-1", ClaimsPath: "claims.parquet"})
	assert.NotNil(s.T(), newrelic.FromContext(ctx))

	endStage := StartStage(ctx, LoadClaims)
	assert.NotNil(s.T(), endStage)
	endStage(12)
	endRun(3, nil)

	assert.Empty(s.T(), s.hook.AllEntries())
}

func (s *MetricTestSuite) TestRunError() {
	ctx := NewContext(s.ctx, s.timer)
	ctx, endRun := StartRun(ctx, Run{ID: "run-2"})
	StartStage(ctx, LoadPharmacy)(0)
	assert.NotPanics(s.T(), func() { endRun(0, errors.New("could not read file")) })
}

func (s *MetricTestSuite) TestStageWithoutRun() {
	end := s.timer.startStage(s.ctx, ClassifyVisits)
	assert.NotNil(s.T(), end)
	end(1)

	entries := s.hook.AllEntries()
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "No run transaction found. Cannot time stage.", entries[0].Message)
	assert.Equal(s.T(), ClassifyVisits, entries[0].Data["stage"])
}

func (s *MetricTestSuite) TestLogTimer() {
	ctx := NewContext(s.ctx, &logTimer{})
	ctx, endRun := StartRun(ctx, Run{ID: "run-3"})
	StartStage(ctx, AggregateClaims)(7)
	endRun(2, errors.New("visit type overlap"))

	entries := s.hook.AllEntries()
	require.Len(s.T(), entries, 2)

	assert.Equal(s.T(), "Stage timed", entries[0].Message)
	assert.Equal(s.T(), AggregateClaims, entries[0].Data["stage"])
	assert.Equal(s.T(), 7, entries[0].Data["rows"])
	assert.Contains(s.T(), entries[0].Data, "elapsed_ms")

	assert.Equal(s.T(), "Run timed", entries[1].Message)
	assert.Equal(s.T(), "run-3", entries[1].Data["run_id"])
	assert.Equal(s.T(), RunTransaction, entries[1].Data["transaction"])
	assert.Equal(s.T(), 2, entries[1].Data["members"])
	assert.EqualError(s.T(), entries[1].Data[logrus.ErrorKey].(error), "visit type overlap")
}

func (s *MetricTestSuite) TestNoOpTimer() {
	timer := &noopTimer{}
	parent := context.WithValue(context.Background(), key(42), "value")
	ctx, endRun := timer.startRun(parent, Run{ID: "run-4"})
	assert.NotNil(s.T(), endRun)
	assert.Equal(s.T(), parent, ctx)

	endStage := timer.startStage(ctx, CombineMembers)
	assert.NotNil(s.T(), endStage)
}

func (s *MetricTestSuite) TestContextWithoutTimer() {
	ctx, endRun := StartRun(s.ctx, Run{ID: "run-5"})
	assert.Equal(s.T(), s.ctx, ctx)
	StartStage(ctx, ResolveMembers)(4)
	endRun(1, nil)
	assert.Empty(s.T(), s.hook.AllEntries())
}

// TestDefaultTimer validates that stage timings fall back to the logger
// when New Relic is not configured.
func (s *MetricTestSuite) TestDefaultTimer() {
	assert.NoError(s.T(), conf.UnsetEnv(s.T(), "NEW_RELIC_LICENSE_KEY"))
	t := GetTimer()
	assert.NotNil(s.T(), t)
	assert.IsType(s.T(), &logTimer{}, t)
	t.Close()
}

func TestRunAttributes(t *testing.T) {
	assert.Equal(t, map[string]string{"run_id": "r"}, Run{ID: "r"}.attributes())
	assert.Equal(t, map[string]string{
		"run_id":        "r",
		"claims_path":   "c.parquet",
		"pharmacy_path": "p.parquet",
	}, Run{ID: "r", ClaimsPath: "c.parquet", PharmacyPath: "p.parquet"}.attributes())
}
