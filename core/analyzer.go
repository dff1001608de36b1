package core

import (
	"context"
	"fmt"
	"time"

	"github.com/codesight/codesight/core/algo"
	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
	"github.com/google/uuid"
)

// Analyzer runs the repository health pipeline. It holds no state between runs.
type Analyzer struct {
	cfg      *contract.Config
	hosting  contract.HostingClient
	reviewer *Reviewer
	archive  contract.ArchiveStore
}

// NewAnalyzer creates an analyzer. A nil model disables AI review and a nil
// archive disables archiving.
func NewAnalyzer(cfg *contract.Config, hosting contract.HostingClient, model contract.ModelClient, archive contract.ArchiveStore) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		hosting:  hosting,
		reviewer: NewReviewer(hosting, model, cfg.MaxFileBytes),
		archive:  archive,
	}
}

// Analyze produces the health report for the repository at repoURL.
// Only locating the repository, reading its metadata and mining its commits
// can fail the run; collaboration and review failures are reported inline.
func (a *Analyzer) Analyze(ctx context.Context, repoURL string) (schema.AnalysisReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	ref, err := Locate(ctx, a.hosting, repoURL)
	if err != nil {
		return schema.AnalysisReport{}, err
	}
	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("🔎 Analyzing %s (run %s)", ref.FullName(), runID)
	}

	window, err := MineCommits(ctx, a.hosting, ref, a.cfg.MaxCommits)
	if err != nil {
		return schema.AnalysisReport{}, err
	}
	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("Analyzed %d commits touching %d files", window.Commits, window.Files.Len())
	}

	if window.Files.Len() == 0 {
		report := EmptyReport(runID, ref, window.Commits)
		a.archiveReport(report, start)
		return report, nil
	}

	info, err := a.hosting.GetRepoMetadata(ctx, ref)
	if err != nil {
		return schema.AnalysisReport{}, fmt.Errorf("failed to read metadata of %s: %w", ref.FullName(), err)
	}

	collab := AnalyzeCollaboration(ctx, a.hosting, ref, a.cfg.MaxPRs)

	weights := algo.Weights{Modifications: a.cfg.WeightModifications, Authors: a.cfg.WeightAuthors}
	hotspots := algo.RankFiles(algo.ScoreFiles(window.Files.Stats(), weights), a.cfg.HotspotLimit)

	reviewPaths := algo.TopPaths(hotspots, a.cfg.ReviewLimit)
	if len(reviewPaths) > 0 && !shouldSuppressHeader(ctx) {
		contract.LogInfo("Reviewing top %d files", len(reviewPaths))
	}
	reviews := a.reviewer.Review(ctx, ref, reviewPaths)

	report := AssembleReport(runID, info, window, collab, hotspots, reviews)
	a.archiveReport(report, start)
	return report, nil
}

// archiveReport appends the report to the archive. Failures are only logged.
func (a *Analyzer) archiveReport(report schema.AnalysisReport, start time.Time) {
	if a.archive == nil {
		return
	}
	if _, err := a.archive.RecordReport(report, start, time.Now(), a.cfg.Params()); err != nil {
		contract.LogWarn("Failed to archive report", err)
	}
}
