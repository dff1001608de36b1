//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/codesight/codesight/internal/iocache"
	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns its DSN.
func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "codesight",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/codesight", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		// The server restarts once after init, so wait for the second ready line
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

func archivedReport() schema.AnalysisReport {
	return schema.AnalysisReport{
		RunID:           "2f0b4c0e-5d0a-4bb5-9a57-3c3f8b6f1d20",
		RepoInfo:        schema.RepoInfo{Name: "acme/widgets", Stars: 3},
		CommitsAnalyzed: 12,
		Metrics: schema.Metrics{
			TechDebtIndex: 8.33,
			CollaborationMetrics: schema.CollaborationMetrics{
				MergedPRCount:     2,
				AvgMergeTime:      "0h 45m",
				AvgReviewComments: schema.Number(1.5),
			},
		},
		BugHotbeds: []schema.FileStat{
			{Path: "core/engine.go", Modifications: 7, DistinctAuthors: 3, RiskScore: 100},
			{Path: "README.md", Modifications: 2, DistinctAuthors: 1, RiskScore: 25.71},
		},
		AIReviews: []schema.FileReview{{Filename: "core/engine.go", Findings: []schema.ReviewFinding{}}},
	}
}

// exerciseArchive runs migrations, the store and the CLI against one backend.
func exerciseArchive(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	require.NoError(t, iocache.MigrateArchive(backend, connStr, -1))

	store, err := iocache.NewArchiveStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Clear())

	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	runID, err := store.RecordReport(archivedReport(), start, start.Add(4*time.Second), map[string]any{"max_commits": 12})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "acme/widgets", runs[0].Repository)
	assert.Equal(t, int32(12), runs[0].CommitsAnalyzed)
	assert.WithinDuration(t, start, runs[0].StartTime, time.Millisecond)
	require.NotNil(t, runs[0].AvgReviewComments)
	assert.InDelta(t, 1.5, *runs[0].AvgReviewComments, 0.001)

	hotspots, err := store.GetAllHotspots()
	require.NoError(t, err)
	require.Len(t, hotspots, 2)
	assert.Equal(t, int32(1), hotspots[0].Rank)
	assert.Equal(t, "core/engine.go", hotspots[0].FilePath)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)

	// The CLI sees the same archive
	t.Setenv("CODESIGHT_ARCHIVE_BACKEND", string(backend))
	t.Setenv("CODESIGHT_ARCHIVE_CONN", connStr)

	out, err := runCodesight(t, "archive", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")

	_, err = runCodesight(t, "archive", "clear")
	require.NoError(t, err)

	out, err = runCodesight(t, "archive", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 0")

	_, err = runCodesight(t, "archive", "migrate", "--target-version", "1")
	require.NoError(t, err)
}

// TestArchiveWithMySQL tests the report archive with a MySQL backend.
func TestArchiveWithMySQL(t *testing.T) {
	exerciseArchive(t, schema.MySQLBackend, startMySQL(t))
}

// TestArchiveWithPostgres tests the report archive with a PostgreSQL backend.
func TestArchiveWithPostgres(t *testing.T) {
	exerciseArchive(t, schema.PostgreSQLBackend, startPostgres(t))
}
