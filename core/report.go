package core

import "github.com/codesight/codesight/schema"

// AssembleReport combines the pipeline outputs into the final report.
func AssembleReport(runID string, info schema.RepoInfo, window *CommitWindow, collab schema.CollaborationMetrics, hotspots []schema.FileStat, reviews []schema.FileReview) schema.AnalysisReport {
	if hotspots == nil {
		hotspots = []schema.FileStat{}
	}
	if reviews == nil {
		reviews = []schema.FileReview{}
	}
	return schema.AnalysisReport{
		RunID:           runID,
		RepoInfo:        info,
		CommitsAnalyzed: window.Commits,
		Metrics: schema.Metrics{
			TechDebtIndex:        window.TechDebtIndex(),
			CollaborationMetrics: collab,
		},
		BugHotbeds: hotspots,
		AIReviews:  reviews,
	}
}

// EmptyReport is the report for a window in which no files were observed.
func EmptyReport(runID string, ref schema.RepositoryRef, commits int) schema.AnalysisReport {
	return schema.AnalysisReport{
		RunID:           runID,
		RepoInfo:        schema.RepoInfo{Name: ref.FullName()},
		CommitsAnalyzed: commits,
		Metrics: schema.Metrics{
			CollaborationMetrics: schema.CollaborationMetrics{
				AvgMergeTime:      schema.NotAvailable,
				AvgReviewComments: schema.NA(),
			},
		},
		BugHotbeds: []schema.FileStat{},
		AIReviews:  []schema.FileReview{},
	}
}
