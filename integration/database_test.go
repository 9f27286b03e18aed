//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCodesageWithMySQL tests the codesage CLI with MySQL cache and history backends.
func TestCodesageWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "codesage",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
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

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/codesage?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestCodesageWithPostgres tests the codesage CLI with PostgreSQL cache and history backends.
func TestCodesageWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
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

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario clears, migrates and fills both stores, then reads them back.
func runBackendScenario(t *testing.T, backend, connStr string) {
	svc := newFakeService(t)
	ws := newWorkspace(t, svc,
		"CODESAGE_CACHE_BACKEND="+backend,
		"CODESAGE_CACHE_DB_CONNECT="+connStr,
		"CODESAGE_HISTORY_BACKEND="+backend,
		"CODESAGE_HISTORY_DB_CONNECT="+connStr,
	)

	_, err := ws.run(t, "cache", "clear")
	require.NoError(t, err)
	_, err = ws.run(t, "history", "clear")
	require.NoError(t, err)
	_, err = ws.run(t, "history", "migrate")
	require.NoError(t, err)

	// The second analysis is served from the cache
	_, err = ws.run(t, "analyze", "example.js")
	require.NoError(t, err)
	_, err = ws.run(t, "analyze", "example.js")
	require.NoError(t, err)
	assert.Equal(t, int32(1), svc.analyzeCalls.Load())

	_, err = ws.run(t, "ask", "example.js", "What does Calculator.add do?")
	require.NoError(t, err)
	_, err = ws.run(t, "docs", "example.js", "--stdout")
	require.NoError(t, err)

	out, err := ws.run(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	out, err = ws.run(t, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	out, err = ws.run(t, "history", "list", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "What does Calculator.add do?")
	assert.Contains(t, out, "example.js")
}
