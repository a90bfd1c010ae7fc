// Package metrics times asthma runs and their stages. Runs are New Relic
// transactions carrying the run id and inputs; stages are segments carrying
// the number of rows they produced. Without New Relic, stage timings are
// written to the run's logger instead.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrlogrus"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pchp/asthma-etl/conf"
	"github.com/pchp/asthma-etl/log"
	"github.com/sirupsen/logrus"
)

// Stage is a timed step of a run.
type Stage string

const (
	LoadClaims       Stage = "load claims"
	LoadPharmacy     Stage = "load pharmacy"
	ResolveMembers   Stage = "resolve member ids"
	ClassifyClaims   Stage = "classify claims"
	ClassifyVisits   Stage = "classify visits"
	AggregateClaims  Stage = "aggregate claims"
	ClassifyPharmacy Stage = "classify pharmacy"
	CombineMembers   Stage = "combine member tables"
)

// RunTransaction names the transaction recorded for every run.
const RunTransaction = "asthma run"

// Run describes the run being timed.
type Run struct {
	ID           string
	ClaimsPath   string
	PharmacyPath string
}

func (r Run) attributes() map[string]string {
	attrs := map[string]string{"run_id": r.ID}
	if r.ClaimsPath != "" {
		attrs["claims_path"] = r.ClaimsPath
	}
	if r.PharmacyPath != "" {
		attrs["pharmacy_path"] = r.PharmacyPath
	}
	return attrs
}

// EndRun finishes a run. members is recorded on success, err on failure.
type EndRun func(members int, err error)

// EndStage finishes a stage with the number of rows it produced.
type EndStage func(rows int)

// Timer records runs and stages.
// Typical Usage scenario:
//
//	timer := metrics.GetTimer()
//	defer timer.Close()
//	ctx := metrics.NewContext(ctx, timer)
//	ctx, end := metrics.StartRun(ctx, metrics.Run{ID: runID, ClaimsPath: path})
//	endStage := metrics.StartStage(ctx, metrics.LoadClaims)
//	// read the claims extract
//	endStage(len(records))
//	end(members, err)
type Timer interface {
	// startRun begins timing a run and embeds it into the returned context,
	// which startStage expects.
	startRun(ctx context.Context, run Run) (context.Context, EndRun)

	startStage(ctx context.Context, stage Stage) EndStage

	// Close flushes anything not yet reported.
	Close()
}

type key int

const timerKey key = 0

// NewContext returns a new Context that carries the provided Timer
func NewContext(ctx context.Context, t Timer) context.Context {
	return context.WithValue(ctx, timerKey, t)
}

// StartRun starts timing run with the Timer found in ctx.
func StartRun(ctx context.Context, run Run) (context.Context, EndRun) {
	return fromContext(ctx).startRun(ctx, run)
}

// StartStage starts timing a stage of the run found in ctx.
func StartStage(ctx context.Context, stage Stage) EndStage {
	return fromContext(ctx).startStage(ctx, stage)
}

var defaultTimer = &noopTimer{}

// fromContext returns the Timer associated with the context, or a no-op
// timer.
func fromContext(ctx context.Context) Timer {
	t, ok := ctx.Value(timerKey).(Timer)
	if !ok {
		return defaultTimer
	}
	return t
}

type newRelicConfig struct {
	License        string `conf:"NEW_RELIC_LICENSE_KEY"`
	Target         string `conf:"DEPLOYMENT_TARGET" conf_default:"local"`
	TimeoutSeconds int    `conf:"NEW_RELIC_CONNECTION_TIMEOUT_SECONDS" conf_default:"30"`
}

// GetTimer returns a New Relic backed timer, or a timer that logs stage
// durations when New Relic is not configured or not reachable.
func GetTimer() Timer {
	var cfg newRelicConfig
	if err := conf.Checkout(&cfg); err != nil {
		log.ETL.Warnf("Failed to read New Relic configuration. Logging stage timings instead. %s", err.Error())
		return &logTimer{}
	}
	if cfg.License == "" {
		log.ETL.Info("NEW_RELIC_LICENSE_KEY not set. Logging stage timings instead.")
		return &logTimer{}
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(fmt.Sprintf("ASTHMA-ETL-%s", cfg.Target)),
		newrelic.ConfigLicense(cfg.License),
		newrelic.ConfigEnabled(true),
		nrlogrus.ConfigStandardLogger(),
		func(cfg *newrelic.Config) {
			cfg.HighSecurity = true
		},
	)
	if err != nil {
		log.ETL.Warnf("Failed to instantiate NewRelic application. Logging stage timings instead. %s", err.Error())
		return &logTimer{}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if err = app.WaitForConnection(timeout); err != nil {
		log.ETL.Warnf("Failed to establish connection to New Relic server in %s. Logging stage timings instead.", timeout)
		return &logTimer{}
	}

	log.ETL.Info("Using New Relic backed timer.")
	return &timer{app}
}

var _ Timer = &timer{}

type timer struct {
	nr *newrelic.Application
}

func (t *timer) startRun(ctx context.Context, run Run) (context.Context, EndRun) {
	txn := t.nr.StartTransaction(RunTransaction)
	for k, v := range run.attributes() {
		txn.AddAttribute(k, v)
	}
	return newrelic.NewContext(ctx, txn), func(members int, err error) {
		if err != nil {
			txn.NoticeError(err)
		} else {
			txn.AddAttribute("members", members)
		}
		txn.End()
	}
}

func (t *timer) startStage(ctx context.Context, stage Stage) EndStage {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		log.GetCtxLogger(ctx).WithField("stage", stage).Warn("No run transaction found. Cannot time stage.")
		return func(int) {}
	}
	segment := txn.StartSegment(string(stage))
	return func(rows int) {
		segment.AddAttribute("rows", rows)
		segment.End()
	}
}

func (t *timer) Close() {
	const shutdownTimeout = 30 * time.Second
	t.nr.Shutdown(shutdownTimeout)
}

var _ Timer = &logTimer{}

// logTimer reports durations on the context logger at debug level.
type logTimer struct{}

func (t *logTimer) startRun(ctx context.Context, run Run) (context.Context, EndRun) {
	start := time.Now()
	return ctx, func(members int, err error) {
		entry := log.GetCtxLogger(ctx).WithFields(logrus.Fields{
			"transaction": RunTransaction,
			"run_id":      run.ID,
			"members":     members,
			"elapsed_ms":  time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Debug("Run timed")
	}
}

func (t *logTimer) startStage(ctx context.Context, stage Stage) EndStage {
	start := time.Now()
	return func(rows int) {
		log.GetCtxLogger(ctx).WithFields(logrus.Fields{
			"stage":      stage,
			"rows":       rows,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Debug("Stage timed")
	}
}

func (t *logTimer) Close() {}

var _ Timer = &noopTimer{}

type noopTimer struct{}

func (t *noopTimer) startRun(ctx context.Context, run Run) (context.Context, EndRun) {
	return ctx, func(int, error) {}
}

func (t *noopTimer) startStage(ctx context.Context, stage Stage) EndStage {
	return func(int) {}
}

func (t *noopTimer) Close() {}
