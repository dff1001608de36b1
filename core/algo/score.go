// Package algo has the hotspot scoring and ranking algorithms.
package algo

import (
	"sort"

	"github.com/codesight/codesight/schema"
)

// Weights are the coefficients of the raw hotspot score.
type Weights struct {
	Modifications float64
	Authors       float64
}

// DefaultWeights returns the standard 0.6 / 0.4 split.
func DefaultWeights() Weights {
	return Weights{Modifications: 0.6, Authors: 0.4}
}

// Accumulator collects per-file modification counts and author sets
// across a commit window. Files keep the order in which they were first seen.
type Accumulator struct {
	order   []string
	mods    map[string]int
	authors map[string]map[string]struct{}
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		mods:    make(map[string]int),
		authors: make(map[string]map[string]struct{}),
	}
}

// Add records one commit touching files. Callers pass each path at most once.
func (a *Accumulator) Add(author string, files []string) {
	for _, path := range files {
		if _, seen := a.mods[path]; !seen {
			a.order = append(a.order, path)
			a.authors[path] = make(map[string]struct{})
		}
		a.mods[path]++
		a.authors[path][author] = struct{}{}
	}
}

// Len returns the number of distinct files observed.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Stats returns one FileStat per observed file in encounter order, without scores.
func (a *Accumulator) Stats() []schema.FileStat {
	stats := make([]schema.FileStat, 0, len(a.order))
	for _, path := range a.order {
		stats = append(stats, schema.FileStat{
			Path:            path,
			Modifications:   a.mods[path],
			DistinctAuthors: len(a.authors[path]),
		})
	}
	return stats
}

// RawScore is the weighted sum of modifications and distinct authors.
func RawScore(s schema.FileStat, w Weights) float64 {
	return float64(s.Modifications)*w.Modifications + float64(s.DistinctAuthors)*w.Authors
}

// ScoreFiles computes normalized risk scores and returns the files sorted by
// score descending. The highest raw score maps to 100; when every raw score is
// zero no rescaling happens. Ties keep their input order and scores are
// rounded to two decimals after sorting.
func ScoreFiles(stats []schema.FileStat, w Weights) []schema.FileStat {
	scored := make([]schema.FileStat, len(stats))
	copy(scored, stats)

	maxScore := 0.0
	for i := range scored {
		scored[i].RiskScore = RawScore(scored[i], w)
		if scored[i].RiskScore > maxScore {
			maxScore = scored[i].RiskScore
		}
	}
	if maxScore > 0 {
		for i := range scored {
			scored[i].RiskScore = scored[i].RiskScore / maxScore * 100
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RiskScore > scored[j].RiskScore
	})
	for i := range scored {
		scored[i].RiskScore = schema.Round2(scored[i].RiskScore)
	}
	return scored
}
