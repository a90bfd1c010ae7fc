package db

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/pborman/uuid"
	"github.com/pchp/asthma-etl/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DatabaseContainerTestSuite struct {
	suite.Suite
	ctr TestDatabaseContainer
}

func (s *DatabaseContainerTestSuite) SetupSuite() {
	if conf.GetEnv("ASTHMA_CONTAINER_TESTS") != "true" {
		s.T().Skip("set ASTHMA_CONTAINER_TESTS=true to run database container tests")
	}
	var err error
	s.ctr, err = NewTestDatabaseContainer()
	require.NoError(s.T(), err)
}

func (s *DatabaseContainerTestSuite) SetupSubTest() {
	require.NoError(s.T(), s.ctr.RestoreSnapshot(BaseSnapshot))
}

func (s *DatabaseContainerTestSuite) TearDownSuite() {
	if s.ctr.Container != nil {
		assert.NoError(s.T(), s.ctr.Container.Terminate(context.Background()))
	}
}

func TestDatabaseContainerTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseContainerTestSuite))
}

func (s *DatabaseContainerTestSuite) TestSeedData() {
	ctx := context.Background()
	c, err := s.ctr.NewPgxConnection()
	require.NoError(s.T(), err)
	defer c.Close(ctx)

	var runs, members int
	require.NoError(s.T(), c.QueryRow(ctx, "SELECT count(*) FROM asthma_runs").Scan(&runs))
	require.NoError(s.T(), c.QueryRow(ctx, "SELECT count(*) FROM asthma_member_level").Scan(&members))
	assert.Equal(s.T(), 1, runs)
	assert.Equal(s.T(), 2, members)
}

func (s *DatabaseContainerTestSuite) TestExecuteFile() {
	id := uuid.New()
	validSql := fmt.Sprintf("INSERT INTO asthma_runs (run_id, members) VALUES ('%s', 0);", id)
	tests := []struct {
		name     string
		filename string
		text     string
		expRows  int64
		expErr   bool
	}{
		{"Execute valid SQL", "insert_runs-*.sql", validSql, int64(1), false},
		{"Execute empty file", "insert_empty-*.sql", "", int64(0), true},
		{"Execute invalid SQL", "insert_invalid-*.sql", "insert into foo (id) values ('bar')", int64(0), true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tmpFile, err := os.CreateTemp(s.T().TempDir(), tt.filename)
			require.NoError(s.T(), err)
			defer tmpFile.Close()

			_, err = tmpFile.Write([]byte(tt.text))
			require.NoError(s.T(), err)

			rows, err := s.ctr.ExecuteFile(tmpFile.Name())
			if !tt.expErr {
				assert.NoError(s.T(), err)
				assert.Equal(s.T(), tt.expRows, rows)
			} else {
				assert.Error(s.T(), err)
			}
		})
	}
}

func (s *DatabaseContainerTestSuite) TestRestoreSnapshot() {
	tests := []struct {
		name     string
		snapshot string
		expErr   bool
	}{
		{"Restore snapshot with name", "test", false},
		{"Restore snapshot with invalid name", "invalidname", true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			if !tt.expErr {
				assert.NoError(s.T(), s.ctr.CreateSnapshot(tt.snapshot))
			}

			ctx := context.Background()
			c, err := s.ctr.NewPgxConnection()
			require.NoError(s.T(), err)
			_, err = c.Exec(ctx, "CREATE TABLE foobar (id int)")
			assert.NoError(s.T(), err)
			c.Close(ctx)

			err = s.ctr.RestoreSnapshot(tt.snapshot)
			if tt.expErr {
				assert.Error(s.T(), err)
				return
			}
			assert.NoError(s.T(), err)

			c, err = s.ctr.NewPgxConnection()
			require.NoError(s.T(), err)
			defer c.Close(ctx)
			_, err = c.Exec(ctx, "SELECT count(*) FROM foobar")
			assert.ErrorContains(s.T(), err, "does not exist")
		})
	}
}

func TestFindDir(t *testing.T) {
	dir, err := findDir("testdata")
	require.NoError(t, err)
	assert.DirExists(t, dir)

	_, err = findDir(uuid.New())
	assert.ErrorContains(t, err, "not found in parent directories")
}
