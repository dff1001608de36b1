// Package contract provides interfaces and shared utilities for codesight's internal architecture.
package contract

import (
	"context"
	"iter"
	"time"

	"github.com/codesight/codesight/schema"
)

// HostingClient defines the operations needed from a source-hosting API.
// This allows the analysis pipeline to be tested without network access.
type HostingClient interface {
	// Resolve checks that owner/name exists and is readable, returning its canonical reference.
	Resolve(ctx context.Context, owner, name string) (schema.RepositoryRef, error)

	// GetRepoMetadata returns star, fork and open-issue counts.
	GetRepoMetadata(ctx context.Context, ref schema.RepositoryRef) (schema.RepoInfo, error)

	// ListCommits lazily streams commits most recent first. Pages are fetched
	// only as the sequence is consumed.
	ListCommits(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.CommitRecord, error]

	// ListPullRequests lazily streams closed pull requests, most recently updated first.
	ListPullRequests(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.PullRequestRecord, error]

	// GetFileContent fetches a file at the default branch.
	GetFileContent(ctx context.Context, ref schema.RepositoryRef, path string) (schema.FileContent, error)
}

// ModelClient defines the single operation needed from a language-model API.
// The returned text is untrusted and must be validated by the caller.
type ModelClient interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// ArchiveStore defines the interface for appending finished reports to an archive.
// Nothing in the analysis pipeline reads from it.
type ArchiveStore interface {
	// RecordReport stores a report with its timing and config, returning the archive run ID
	RecordReport(report schema.AnalysisReport, startTime, endTime time.Time, configParams map[string]any) (int64, error)

	// GetStatus returns status information about the archive
	GetStatus() (schema.ArchiveStatus, error)

	// GetAllRuns returns every archived run ordered by run ID
	GetAllRuns() ([]schema.ArchivedRunRecord, error)

	// GetAllHotspots returns every archived hotspot row ordered by run ID and rank
	GetAllHotspots() ([]schema.ArchivedHotspotRecord, error)

	// Clear deletes all archived data
	Clear() error

	// Close closes the underlying connection
	Close() error
}
