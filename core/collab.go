package core

import (
	"context"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// AnalyzeCollaboration averages merge latency and review comments over up to
// maxPRs merged pull requests. Unmerged PRs are skipped without counting.
// Any listing failure degrades both averages to "N/A" instead of failing.
// Merge time is averaged only over PRs carrying both timestamps; GitHub sets
// merged_at on every merged PR, so this matches the merged count in practice.
func AnalyzeCollaboration(ctx context.Context, hosting contract.HostingClient, ref schema.RepositoryRef, maxPRs int) schema.CollaborationMetrics {
	var (
		merged        int
		timed         int
		totalSeconds  float64
		totalComments int
	)

	for pr, err := range hosting.ListPullRequests(ctx, ref) {
		if err != nil {
			contract.LogWarn("Collaboration metrics unavailable", err)
			return schema.CollaborationMetrics{
				AvgMergeTime:      schema.NotAvailable,
				AvgReviewComments: schema.NA(),
			}
		}
		if !pr.Merged {
			continue
		}

		merged++
		if pr.CreatedAt != nil && pr.MergedAt != nil {
			totalSeconds += pr.MergedAt.Sub(*pr.CreatedAt).Seconds()
			timed++
		}
		totalComments += pr.ReviewComments

		if merged >= maxPRs {
			break
		}
	}

	if merged == 0 {
		return schema.CollaborationMetrics{
			AvgMergeTime:      schema.NotAvailable,
			AvgReviewComments: schema.Number(0),
		}
	}

	metrics := schema.CollaborationMetrics{
		MergedPRCount:     merged,
		AvgMergeTime:      schema.NotAvailable,
		AvgReviewComments: schema.Number(schema.Round2(float64(totalComments) / float64(merged))),
	}
	if timed > 0 {
		metrics.AvgMergeTime = schema.FormatMergeDuration(totalSeconds / float64(timed))
	}
	return metrics
}
