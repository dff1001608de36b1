package schema

import "time"

// ArchivedRunRecord represents a row from the codesight_runs table.
type ArchivedRunRecord struct {
	RunID             int64
	RunUUID           string
	Repository        string
	StartTime         time.Time
	EndTime           time.Time
	CommitsAnalyzed   int32
	TechDebtIndex     float64
	MergedPRCount     int32
	AvgMergeTime      string
	AvgReviewComments *float64 // nil when unavailable
	ReviewsRequested  int32
	ReviewsFailed     int32
	ConfigParams      *string
}

// ArchivedHotspotRecord represents a row from the codesight_hotspots table.
type ArchivedHotspotRecord struct {
	RunID           int64
	Rank            int32
	FilePath        string
	Modifications   int32
	DistinctAuthors int32
	RiskScore       float64
}
