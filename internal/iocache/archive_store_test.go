package iocache

import (
	"testing"
	"time"

	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() schema.AnalysisReport {
	return schema.AnalysisReport{
		RunID:           "9f1c3c36-6a0e-4d52-8f3f-0e0f7f6d2c11",
		RepoInfo:        schema.RepoInfo{Name: "acme/widgets", Stars: 10, Forks: 2},
		CommitsAnalyzed: 4,
		Metrics: schema.Metrics{
			TechDebtIndex: 50,
			CollaborationMetrics: schema.CollaborationMetrics{
				MergedPRCount:     1,
				AvgMergeTime:      "1h 30m",
				AvgReviewComments: schema.Number(4),
			},
		},
		BugHotbeds: []schema.FileStat{
			{Path: "a.go", Modifications: 3, DistinctAuthors: 2, RiskScore: 100},
			{Path: "b.go", Modifications: 1, DistinctAuthors: 1, RiskScore: 16.67},
		},
		AIReviews: []schema.FileReview{
			{Filename: "a.go", Findings: []schema.ReviewFinding{}},
			{Filename: "b.go", Error: "failed to fetch file: not found"},
		},
	}
}

func newMemoryStore(t *testing.T) *ArchiveStoreImpl {
	t.Helper()
	store, err := NewArchiveStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	impl, ok := store.(*ArchiveStoreImpl)
	require.True(t, ok)
	return impl
}

func TestArchiveStore_NoneBackend(t *testing.T) {
	store, err := NewArchiveStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.RecordReport(sampleReport(), time.Now(), time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	hotspots, err := store.GetAllHotspots()
	assert.NoError(t, err)
	assert.Empty(t, hotspots)

	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Close())
}

func TestArchiveStore_UnsupportedBackend(t *testing.T) {
	_, err := NewArchiveStore(schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive backend")
}

func TestArchiveStore_SQLite(t *testing.T) {
	store := newMemoryStore(t)

	startTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	endTime := startTime.Add(2 * time.Second)
	configParams := map[string]any{"max_commits": 100, "review": true}

	runID, err := store.RecordReport(sampleReport(), startTime, endTime, configParams)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "9f1c3c36-6a0e-4d52-8f3f-0e0f7f6d2c11", run.RunUUID)
	assert.Equal(t, "acme/widgets", run.Repository)
	assert.WithinDuration(t, startTime, run.StartTime, time.Microsecond)
	assert.WithinDuration(t, endTime, run.EndTime, time.Microsecond)
	assert.Equal(t, int32(4), run.CommitsAnalyzed)
	assert.InDelta(t, 50.0, run.TechDebtIndex, 0.001)
	assert.Equal(t, int32(1), run.MergedPRCount)
	assert.Equal(t, "1h 30m", run.AvgMergeTime)
	require.NotNil(t, run.AvgReviewComments)
	assert.InDelta(t, 4.0, *run.AvgReviewComments, 0.001)
	assert.Equal(t, int32(2), run.ReviewsRequested)
	assert.Equal(t, int32(1), run.ReviewsFailed)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"max_commits":100,"review":true}`, *run.ConfigParams)

	hotspots, err := store.GetAllHotspots()
	require.NoError(t, err)
	require.Len(t, hotspots, 2)
	assert.Equal(t, schema.ArchivedHotspotRecord{
		RunID: runID, Rank: 1, FilePath: "a.go", Modifications: 3, DistinctAuthors: 2, RiskScore: 100,
	}, hotspots[0])
	assert.Equal(t, int32(2), hotspots[1].Rank)
	assert.Equal(t, "b.go", hotspots[1].FilePath)
}

func TestArchiveStore_UnavailableCollaboration(t *testing.T) {
	store := newMemoryStore(t)

	report := sampleReport()
	report.Metrics.CollaborationMetrics = schema.CollaborationMetrics{AvgMergeTime: "N/A", AvgReviewComments: schema.NA()}
	report.BugHotbeds = nil
	report.AIReviews = nil

	_, err := store.RecordReport(report, time.Now(), time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].AvgReviewComments)
	assert.Equal(t, "N/A", runs[0].AvgMergeTime)
	assert.Equal(t, int32(0), runs[0].ReviewsRequested)

	hotspots, err := store.GetAllHotspots()
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestArchiveStore_StatusAndClear(t *testing.T) {
	store := newMemoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)
	_, err = store.RecordReport(sampleReport(), first, first.Add(time.Second), nil)
	require.NoError(t, err)
	lastID, err := store.RecordReport(sampleReport(), second, second.Add(time.Second), nil)
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, lastID, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(second))
	assert.True(t, status.OldestRunTime.Equal(first))
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
	assert.Equal(t, int64(4), status.TableSizes[hotspotsTable])

	require.NoError(t, store.Clear())

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[hotspotsTable])
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		expected string
	}{
		{schema.SQLiteBackend, `"codesight_runs"`},
		{schema.PostgreSQLBackend, `"codesight_runs"`},
		{schema.MySQLBackend, "`codesight_runs`"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteTableName(runsTable, tt.backend))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/archive", true)
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")

	dsn, err = mysqlDSN("user:pass@tcp(localhost:3306)/archive", false)
	require.NoError(t, err)
	assert.NotContains(t, dsn, "multiStatements")

	_, err = mysqlDSN("not a dsn", false)
	assert.Error(t, err)
}

func TestScannedTime(t *testing.T) {
	ref := time.Date(2026, 5, 4, 3, 2, 1, 500, time.UTC)

	tests := []struct {
		name    string
		src     any
		want    time.Time
		wantErr bool
	}{
		{"native", ref, ref, false},
		{"text", ref.Format(time.RFC3339Nano), ref, false},
		{"bytes", []byte(ref.Format(time.RFC3339Nano)), ref, false},
		{"null", nil, time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, true},
		{"wrong type", 42, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st scannedTime
			err := st.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(st.Time))
		})
	}
}
