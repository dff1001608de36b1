// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints an analysis report using the configured output format.
func (ow *OutWriter) WriteReport(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return WriteReport(report, cfg, duration)
}
