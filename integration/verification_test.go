//go:build integration

// Package integration contains integration tests for codesight.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyzeVerification runs codesight analyze against a public repository and
// checks the invariants of the JSON report.
func TestAnalyzeVerification(t *testing.T) {
	if os.Getenv("GITHUB_TOKEN") == "" {
		t.Skip("GITHUB_TOKEN not set")
	}

	out, err := runCodesight(t, "analyze", "https://github.com/spf13/cobra",
		"--output", "json", "--max-commits", "30", "--max-prs", "10", "--review-limit", "0")
	require.NoError(t, err)

	var report schema.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "spf13/cobra", report.RepoInfo.Name)
	assert.LessOrEqual(t, report.CommitsAnalyzed, 30)
	assert.GreaterOrEqual(t, report.Metrics.TechDebtIndex, 0.0)
	assert.LessOrEqual(t, report.Metrics.TechDebtIndex, 100.0)
	assert.LessOrEqual(t, report.Metrics.MergedPRCount, 10)
	assert.Empty(t, report.AIReviews)

	require.NotEmpty(t, report.BugHotbeds)
	assert.LessOrEqual(t, len(report.BugHotbeds), 10)
	assert.Equal(t, 100.0, report.BugHotbeds[0].RiskScore)
	for i := 1; i < len(report.BugHotbeds); i++ {
		assert.GreaterOrEqual(t, report.BugHotbeds[i-1].RiskScore, report.BugHotbeds[i].RiskScore)
	}
}
