// Package core has the analysis pipeline: locating a repository, mining its
// history, scoring hotspots and orchestrating AI reviews.
package core

import (
	"context"
	"time"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/ghclient"
	"github.com/codesight/codesight/internal/llm"
	"github.com/codesight/codesight/internal/outwriter"
	"github.com/codesight/codesight/schema"
)

// NewAnalyzerFromConfig wires the GitHub and Anthropic clients described by cfg.
// Review stays disabled when no Anthropic key is configured.
func NewAnalyzerFromConfig(ctx context.Context, cfg *contract.Config, archive contract.ArchiveStore) (*Analyzer, error) {
	hosting, err := ghclient.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var model contract.ModelClient
	if cfg.ReviewEnabled() {
		client, err := llm.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		model = client
	}
	return NewAnalyzer(cfg, hosting, model, archive), nil
}

// GetAnalysisReport runs one analysis and returns the report with its duration.
func GetAnalysisReport(ctx context.Context, cfg *contract.Config, archive contract.ArchiveStore, repoURL string) (schema.AnalysisReport, time.Duration, error) {
	start := time.Now()
	analyzer, err := NewAnalyzerFromConfig(ctx, cfg, archive)
	if err != nil {
		return schema.AnalysisReport{}, 0, err
	}
	report, err := analyzer.Analyze(ctx, repoURL)
	if err != nil {
		return schema.AnalysisReport{}, 0, err
	}
	return report, time.Since(start), nil
}

// ExecuteAnalyze runs the analysis and writes the report in the configured format.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, archive contract.ArchiveStore, repoURL string) error {
	report, duration, err := GetAnalysisReport(ctx, cfg, archive, repoURL)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(report, cfg, duration)
}
