package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintArchiveStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   schema.ArchiveStatus
		contains []string
		excludes []string
	}{
		{
			name:     "disconnected",
			status:   schema.ArchiveStatus{Backend: "none"},
			contains: []string{"Archive Backend: none", "Connected: false"},
			excludes: []string{"Total Runs", "Table Sizes"},
		},
		{
			name: "empty archive",
			status: schema.ArchiveStatus{
				Backend:    "sqlite",
				Connected:  true,
				TableSizes: map[string]int64{runsTable: 0, hotspotsTable: 0},
			},
			contains: []string{"Total Runs: 0", "codesight_hotspots: 0 rows", "codesight_runs: 0 rows"},
			excludes: []string{"Last Run ID"},
		},
		{
			name: "populated archive",
			status: schema.ArchiveStatus{
				Backend:       "postgresql",
				Connected:     true,
				TotalRuns:     3,
				LastRunID:     7,
				LastRunTime:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
				OldestRunTime: time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC),
				TableSizes:    map[string]int64{runsTable: 3, hotspotsTable: 25},
			},
			contains: []string{
				"Total Runs: 3",
				"Last Run ID: 7",
				"Last Run: 2026-03-02 10:00:00",
				"Oldest Run: 2026-01-05 09:30:00",
				"codesight_hotspots: 25 rows",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintArchiveStatus(&buf, tt.status)
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
