package core

import (
	"context"
	"fmt"

	"github.com/codesight/codesight/core/algo"
	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// CommitWindow is the aggregate of the sampled commits.
type CommitWindow struct {
	Commits     int
	DebtCommits int
	Files       *algo.Accumulator
}

// TechDebtIndex returns the debt percentage of the window.
func (w *CommitWindow) TechDebtIndex() float64 {
	return TechDebtIndex(w.DebtCommits, w.Commits)
}

// MineCommits consumes at most maxCommits of the most recent commits and
// feeds the hotspot and tech-debt accumulators. Commits without file data
// still count toward the debt ratio.
func MineCommits(ctx context.Context, hosting contract.HostingClient, ref schema.RepositoryRef, maxCommits int) (*CommitWindow, error) {
	window := &CommitWindow{Files: algo.NewAccumulator()}
	for commit, err := range contract.Take(hosting.ListCommits(ctx, ref), maxCommits) {
		if err != nil {
			return nil, fmt.Errorf("failed to mine commits of %s: %w", ref.FullName(), err)
		}
		window.Commits++
		if HasDebtKeyword(commit.Message) {
			window.DebtCommits++
		}

		author := commit.AuthorID
		if author == "" {
			author = schema.UnknownAuthor
		}
		window.Files.Add(author, uniquePaths(commit.TouchedFiles))
	}
	return window, nil
}

// uniquePaths drops repeated and empty paths, keeping first-seen order.
func uniquePaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
