// Package parquet provides data structures and functions for exporting the
// report archive to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/codesight/codesight/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents one archived analysis run.
// This struct maps to the codesight_runs database table.
type Run struct {
	// RunID is the archive's identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the identifier printed in the report itself
	RunUUID string `parquet:"run_uuid,snappy"`

	// Repository is the owner/name of the analyzed repository
	Repository string `parquet:"repository,snappy"`

	StartTime time.Time `parquet:"start_time,snappy"`
	EndTime   time.Time `parquet:"end_time,snappy"`

	CommitsAnalyzed int32   `parquet:"commits_analyzed,snappy"`
	TechDebtIndex   float64 `parquet:"tech_debt_index,snappy"`
	MergedPRCount   int32   `parquet:"merged_pr_count,snappy"`

	// AvgMergeTime is the rendered duration, or "N/A"
	AvgMergeTime string `parquet:"avg_merge_time,snappy"`

	// AvgReviewComments is null when collaboration metrics were unavailable
	AvgReviewComments *float64 `parquet:"avg_review_comments,optional,snappy"`

	ReviewsRequested int32 `parquet:"reviews_requested,snappy"`
	ReviewsFailed    int32 `parquet:"reviews_failed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Hotspot represents one ranked file of an archived run.
// This struct maps to the codesight_hotspots database table.
type Hotspot struct {
	RunID           int64   `parquet:"run_id,snappy"`
	Rank            int32   `parquet:"rank,snappy"`
	FilePath        string  `parquet:"file_path,snappy"`
	Modifications   int32   `parquet:"modifications,snappy"`
	DistinctAuthors int32   `parquet:"distinct_authors,snappy"`
	RiskScore       float64 `parquet:"risk_score,snappy"`
}

// WriteRunsParquet writes archived runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteHotspotsParquet writes archived hotspot rows to a Parquet file.
func WriteHotspotsParquet(data []Hotspot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row groups and writes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts archived run rows for Parquet export.
func ConvertRunRecords(records []schema.ArchivedRunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:             record.RunID,
			RunUUID:           record.RunUUID,
			Repository:        record.Repository,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			CommitsAnalyzed:   record.CommitsAnalyzed,
			TechDebtIndex:     record.TechDebtIndex,
			MergedPRCount:     record.MergedPRCount,
			AvgMergeTime:      record.AvgMergeTime,
			AvgReviewComments: record.AvgReviewComments,
			ReviewsRequested:  record.ReviewsRequested,
			ReviewsFailed:     record.ReviewsFailed,
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

// ConvertHotspotRecords converts archived hotspot rows for Parquet export.
func ConvertHotspotRecords(records []schema.ArchivedHotspotRecord) []Hotspot {
	result := make([]Hotspot, len(records))
	for i, record := range records {
		result[i] = Hotspot{
			RunID:           record.RunID,
			Rank:            record.Rank,
			FilePath:        record.FilePath,
			Modifications:   record.Modifications,
			DistinctAuthors: record.DistinctAuthors,
			RiskScore:       record.RiskScore,
		}
	}
	return result
}
