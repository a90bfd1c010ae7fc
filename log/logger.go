package log

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/conf"
	"github.com/sirupsen/logrus"
)

// Loggers per area of the pipeline. Each writes JSON to the file named by its
// env key, or stderr when the key is unset.
var (
	ETL      logrus.FieldLogger
	Claims   logrus.FieldLogger
	Pharmacy logrus.FieldLogger
)

type ctxLoggerKey int

// CtxLoggerKey is the context key holding a run-scoped logger.
const CtxLoggerKey ctxLoggerKey = 0

func init() {
	SetupLoggers()
}

// SetupLoggers (re)builds the package loggers from the current configuration.
func SetupLoggers() {
	env := conf.GetEnv("DEPLOYMENT_TARGET")
	ETL = Logger(logrus.New(), conf.GetEnv("ASTHMA_ETL_LOG"), "etl", env)
	Claims = Logger(logrus.New(), conf.GetEnv("ASTHMA_CLAIMS_LOG"), "claims", env)
	Pharmacy = Logger(logrus.New(), conf.GetEnv("ASTHMA_PHARMACY_LOG"), "pharmacy", env)
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	logger.SetFormatter(&logrus.JSONFormatter{})
	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment,
		"source_app":  "asthma-etl",
		"version":     constants.Version})
}

// NewContext returns a context carrying logger.
func NewContext(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, CtxLoggerKey, logger)
}

// GetCtxLogger returns the logger carried by ctx, or ETL if there is none.
func GetCtxLogger(ctx context.Context) logrus.FieldLogger {
	if logger, ok := ctx.Value(CtxLoggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return ETL
}

// SetCtxLoggerFields adds fields to the context logger and stores the result
// back on a derived context.
func SetCtxLoggerFields(ctx context.Context, fields logrus.Fields) (context.Context, logrus.FieldLogger) {
	logger := GetCtxLogger(ctx).WithFields(fields)
	return NewContext(ctx, logger), logger
}
