package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		precision int
		expected  string
	}{
		{precision: 0, expected: "67"},
		{precision: 1, expected: "66.7"},
		{precision: 2, expected: "66.67"},
		{precision: 4, expected: "66.6660"},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.precision), func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(66.666))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON_Hotspots(t *testing.T) {
	hotspots := sampleReport().BugHotbeds

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, hotspots))

	assert.Contains(t, buf.String(), "\n    \"filename\": \"core/engine.go\"")
	assert.True(t, strings.HasSuffix(buf.String(), "]\n"))

	var decoded []schema.FileStat
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, hotspots, decoded)
}

func TestWriteJSON_UnavailableMetric(t *testing.T) {
	metrics := schema.CollaborationMetrics{
		AvgMergeTime:      schema.NotAvailable,
		AvgReviewComments: schema.NA(),
	}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, metrics))
	assert.JSONEq(t, `{"merged_pr_count": 0, "avg_merge_time_str": "N/A", "avg_review_comments": "N/A"}`, buf.String())
}

func TestWriteJSON_Error(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, map[string]any{"progress": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteYAML_Review(t *testing.T) {
	review := schema.FileReview{
		Filename: "core/engine.go",
		Code:     "package core\n",
		Findings: []schema.ReviewFinding{{
			LineNumber:  12,
			CodeSnippet: "x := 1",
			IssueType:   "Potential Bug",
			Description: "shadowed variable",
			Suggestion:  "rename x",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, review))

	output := buf.String()
	assert.Contains(t, output, "filename: core/engine.go")
	assert.Contains(t, output, "- line_number: 12")
	assert.NotContains(t, output, "error:")

	var decoded schema.FileReview
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, review, decoded)
}

func TestWriteYAML_FailedReview(t *testing.T) {
	review := schema.FileReview{Filename: "big.bin", Error: "File size exceeds 1MB; skipped AI review"}

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, review))
	assert.Contains(t, buf.String(), "error: File size exceeds 1MB; skipped AI review")
}

func TestWriteCSVWithHeader(t *testing.T) {
	hotspots := sampleReport().BugHotbeds
	header := []string{"file", "modifications", "authors"}

	tests := []struct {
		name      string
		writeRows func(*csv.Writer) error
		expected  string
		expectErr string
	}{
		{
			name: "hotspot rows",
			writeRows: func(w *csv.Writer) error {
				for _, f := range hotspots {
					if err := w.Write([]string{f.Path, strconv.Itoa(f.Modifications), strconv.Itoa(f.DistinctAuthors)}); err != nil {
						return err
					}
				}
				return nil
			},
			expected: "file,modifications,authors\ncore/engine.go,20,5\ndocs/README.md,3,1\n",
		},
		{
			name:      "header only",
			writeRows: func(*csv.Writer) error { return nil },
			expected:  "file,modifications,authors\n",
		},
		{
			name: "path needing quotes",
			writeRows: func(w *csv.Writer) error {
				return w.Write([]string{"docs/a,b.md", "1", "1"})
			},
			expected: "file,modifications,authors\n\"docs/a,b.md\",1,1\n",
		},
		{
			name:      "row error",
			writeRows: func(*csv.Writer) error { return errors.New("row failed") },
			expectErr: "row failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, header, tt.writeRows)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var got io.Writer
		err := writeWithFile("", func(w io.Writer) error {
			got = w
			return nil
		}, "Report written")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, sampleReport())
		}, "Report written")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var report schema.AnalysisReport
		require.NoError(t, json.Unmarshal(content, &report))
		assert.Equal(t, "acme/widgets", report.RepoInfo.Name)
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.csv")
		err := writeWithFile(path, func(io.Writer) error {
			return errors.New("encode failed")
		}, "Report written")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encode failed")
	})

	t.Run("invalid path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "report.json")
		err := writeWithFile(path, func(io.Writer) error { return nil }, "Report written")
		assert.Error(t, err)
	})
}
