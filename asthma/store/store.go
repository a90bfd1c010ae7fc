// Package store persists member level runs to Postgres.
package store

import (
	"context"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	sqlFlavor = sqlbuilder.PostgreSQL

	runsTable    = "asthma_runs"
	membersTable = "asthma_member_level"
)

var memberColumns = []string{"run_id", constants.MemberID, "metrics"}

// Config holds the database settings.
type Config struct {
	DatabaseURL string `conf:"DATABASE_URL"`
	// MigrationsDir holds the golang-migrate SQL files.
	MigrationsDir string `conf:"ASTHMA_MIGRATIONS_DIR" conf_default:"db/migrations/asthma"`
}

// this implements both pgx transactions (tx) as well as pgx connections
type PgxConnection interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Run describes one pipeline execution.
type Run struct {
	ID           string
	ClaimsPath   string
	PharmacyPath string
	Period       time.Time
	Members      int
	StrictIDs    bool
	CreatedAt    time.Time
}

type Repository struct {
	conn   PgxConnection
	logger logrus.FieldLogger
}

func NewRepository(conn PgxConnection, logger logrus.FieldLogger) *Repository {
	return &Repository{conn: conn, logger: logger}
}

// Connect opens a connection pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to reach database")
	}
	return pool, nil
}

// Migrate applies the migrations under dir.
func Migrate(databaseURL, dir string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}
	return nil
}

func insertRun(run Run) (string, []interface{}) {
	ib := sqlFlavor.NewInsertBuilder()
	ib.InsertInto(runsTable)
	ib.Cols("run_id", "claims_path", "pharmacy_path", "period", "members", "strict_ids", "created_at")
	var period interface{}
	if !run.Period.IsZero() {
		period = run.Period
	}
	ib.Values(run.ID, run.ClaimsPath, run.PharmacyPath, period, run.Members, run.StrictIDs, run.CreatedAt)
	return ib.Build()
}

// MemberRows turns table into copy rows of run id, member id and a JSON
// object of the member's non-null metrics. Dates are rendered as
// YYYY-MM-DD.
func MemberRows(runID string, table *models.MemberTable) [][]any {
	columns := table.Columns()
	rows := make([][]any, 0, table.Len())
	for _, m := range table.Members() {
		metrics := make(map[string]any, len(columns))
		for _, c := range columns {
			v, ok := table.Get(m, c.Name)
			if !ok {
				continue
			}
			if d, isDate := v.(time.Time); isDate {
				v = d.Format(constants.DateLayout)
			}
			metrics[c.Name] = v
		}
		rows = append(rows, []any{runID, m, metrics})
	}
	return rows
}

// SaveRun records the run and copies every member row in one transaction.
func (r *Repository) SaveRun(ctx context.Context, run Run, table *models.MemberTable) (err error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Warnf("Failed to rollback run %s: %s", run.ID, rbErr)
			}
		}
	}()

	query, args := insertRun(run)
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "failed to insert run %s", run.ID)
	}

	rows := MemberRows(run.ID, table)
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{membersTable}, memberColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return errors.Wrapf(err, "failed to copy member rows for run %s", run.ID)
	}
	if int(copied) != len(rows) {
		err = errors.Errorf("copied %d of %d member rows for run %s", copied, len(rows), run.ID)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "failed to commit run %s", run.ID)
	}

	r.logger.WithFields(logrus.Fields{"run_id": run.ID, "members": copied}).Info("Saved member level run")
	return nil
}
