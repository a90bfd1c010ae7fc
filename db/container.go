package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pchp/asthma-etl/asthma/store"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// BaseSnapshot is taken once migrations and seed data are applied.
const BaseSnapshot = "Base"

type TestDatabaseContainer struct {
	Container        *postgres.PostgresContainer
	ConnectionString string
}

// ExecuteFile will execute a *.sql file for a database container.
// Sql files for testing purposes should be under db/testdata.
func (td *TestDatabaseContainer) ExecuteFile(path string) (int64, error) {
	ctx := context.Background()
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open file %s", path)
	}
	if len(content) == 0 {
		return 0, errors.Errorf("%s is empty", path)
	}

	conn, err := td.NewPgxConnection()
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	result, err := conn.Exec(ctx, string(content))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to execute %s", path)
	}
	return result.RowsAffected(), nil
}

// CreateSnapshot will create a snapshot for a given name. Close any active connections to the database
// before taking a snapshot.
func (td *TestDatabaseContainer) CreateSnapshot(name string) error {
	if err := td.Container.Snapshot(context.Background(), postgres.WithSnapshotName(name)); err != nil {
		return errors.Wrapf(err, "failed to create container database snapshot %q", name)
	}
	return nil
}

// RestoreSnapshot restores a snapshot. An empty name restores the default
// snapshot; BaseSnapshot restores the migrated and seeded state.
func (td *TestDatabaseContainer) RestoreSnapshot(name string) error {
	if err := td.Container.Restore(context.Background(), postgres.WithSnapshotName(name)); err != nil {
		return errors.Wrapf(err, "failed to restore container database snapshot %q", name)
	}
	return nil
}

// Return a pgx connection for a given database container.
func (td *TestDatabaseContainer) NewPgxConnection() (*pgx.Conn, error) {
	conn, err := pgx.Connect(context.Background(), td.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open connection to container database")
	}
	return conn, nil
}

// Return a pgx pool for a given database container.
func (td *TestDatabaseContainer) NewPgxPoolConnection() (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), td.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pool for container database")
	}
	return pool, nil
}

// runMigrations applies the production migrations so there is no drift
// between the schema under test and the deployed one.
func (td *TestDatabaseContainer) runMigrations() error {
	dir, err := findDir(filepath.Join("db", "migrations", "asthma"))
	if err != nil {
		return err
	}
	return store.Migrate(td.ConnectionString, dir)
}

// initSeed applies the baseline data. For scenario specific data, use
// ExecuteFile.
func (td *TestDatabaseContainer) initSeed() error {
	dir, err := findDir(filepath.Join("db", "testdata"))
	if err != nil {
		return err
	}

	rows, err := td.ExecuteFile(filepath.Join(dir, "insert_runs.sql"))
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("failed to seed init data; zero affected rows")
	}
	return nil
}

// Returns a new postgres container with migrations from db/migrations/asthma
// and the seed data from db/testdata applied.
func NewTestDatabaseContainer() (TestDatabaseContainer, error) {
	ctx := context.Background()
	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("asthma"),
		postgres.WithUsername("toor"),
		postgres.WithPassword("foobar"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return TestDatabaseContainer{}, errors.Wrap(err, "failed to create database container")
	}

	conn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return TestDatabaseContainer{}, errors.Wrap(err, "failed to get connection string for container database")
	}

	tdc := TestDatabaseContainer{Container: c, ConnectionString: conn}
	if err = tdc.runMigrations(); err != nil {
		return TestDatabaseContainer{}, err
	}
	if err = tdc.initSeed(); err != nil {
		return TestDatabaseContainer{}, err
	}
	if err = tdc.CreateSnapshot(BaseSnapshot); err != nil {
		return TestDatabaseContainer{}, err
	}
	return tdc, nil
}

// findDir looks for rel in the working directory and its parents, so the
// container can be created from any package's tests.
func findDir(rel string) (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		targetPath := filepath.Join(currentDir, rel)
		_, err := os.Stat(targetPath)
		if err == nil {
			return targetPath, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("error checking path %s: %w", targetPath, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("file or directory '%s' not found in parent directories", rel)
		}
		currentDir = parentDir
	}
}
