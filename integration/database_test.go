//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDebriefWithMySQL tests the debrief CLI with a MySQL backend.
func TestDebriefWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "debrief",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/debrief?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestDebriefWithPostgres tests the debrief CLI with a PostgreSQL backend.
func TestDebriefWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario drives the cache and history commands against one backend.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Setenv("DEBRIEF_CACHE_BACKEND", backend)
	t.Setenv("DEBRIEF_CACHE_DB_CONNECT", connStr)
	t.Setenv("DEBRIEF_HISTORY_BACKEND", backend)
	t.Setenv("DEBRIEF_HISTORY_DB_CONNECT", connStr)

	survey := writeSurvey(t)
	dir := filepath.Dir(survey)

	require.NoError(t, runDebriefCommand(t, dir, "cache", "clear"))
	require.NoError(t, runDebriefCommand(t, dir, "history", "clear"))
	require.NoError(t, runDebriefCommand(t, dir, "history", "migrate"))

	// Second run reads the table back from the cache
	require.NoError(t, runDebriefCommand(t, dir, "overview", "--input", survey))
	require.NoError(t, runDebriefCommand(t, dir, "overview", "--input", survey))
	require.NoError(t, runDebriefCommand(t, dir, "compare", "Acme", "Beta", "--input", survey))

	out, err := debriefCommand(dir, "cache", "status").CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "Total Entries: 1")

	out, err = debriefCommand(dir, "history", "status").CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "Total Runs: 3")

	require.NoError(t, runDebriefCommand(t, dir, "history", "export", "--output-file", filepath.Join(dir, "history")))
	assert.FileExists(t, filepath.Join(dir, "history.report_runs.parquet"))
	assert.FileExists(t, filepath.Join(dir, "history.partner_snapshots.parquet"))
}

func runDebriefCommand(t *testing.T, dir string, args ...string) error {
	cmd := debriefCommand(dir, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
