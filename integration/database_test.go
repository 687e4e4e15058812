//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCohortWithMySQL tests the cohort CLI with a MySQL run backend.
func TestCohortWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "cohort",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/cohort", host, port.Port())
	exerciseRunBackend(t, "mysql", connStr)
}

// TestCohortWithPostgres tests the cohort CLI with a PostgreSQL run backend.
func TestCohortWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseRunBackend(t, "postgresql", connStr)
}

// exerciseRunBackend drives the run lifecycle commands against one backend.
func exerciseRunBackend(t *testing.T, backend, connStr string) {
	t.Setenv("COHORT_RUN_BACKEND", backend)
	t.Setenv("COHORT_RUN_DB_CONNECT", connStr)

	_, err := runCohortCommand(t, "runs", "clear")
	require.NoError(t, err)

	// Migrations run on the empty database, then roll back and forward again
	_, err = runCohortCommand(t, "runs", "migrate")
	require.NoError(t, err)
	_, err = runCohortCommand(t, "runs", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runCohortCommand(t, "runs", "migrate")
	require.NoError(t, err)

	for range 2 {
		_, err = runCohortCommand(t, "calculate", peopleFixture,
			"--evaluation-date", "2020-01-01", "--output", "csv", "--output-file", os.DevNull)
		require.NoError(t, err)
	}

	status, err := runCohortCommand(t, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, string(status), "Total Runs: 2")

	out := filepath.Join(t.TempDir(), "export")
	_, err = runCohortCommand(t, "runs", "export", "--output-file", out)
	require.NoError(t, err)
	for _, suffix := range []string{".runs.parquet", ".metric_records.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	_, err = runCohortCommand(t, "runs", "clear")
	require.NoError(t, err)
}
