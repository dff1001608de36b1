package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReport outputs the analysis report, dispatching based on the output format configured.
func WriteReport(report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeReport(w, report, cfg, duration)
	}, successMessage(cfg.Output))
}

func successMessage(mode schema.OutputMode) string {
	switch mode {
	case schema.JSONOut:
		return "Wrote JSON"
	case schema.CSVOut:
		return "Wrote CSV"
	case schema.YAMLOut:
		return "Wrote YAML"
	default:
		return "Wrote report"
	}
}

// writeReport renders the report to w in the configured format.
func writeReport(w io.Writer, report schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, report); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, report); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeHotspotCSV(w, report.BugHotbeds, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable text
		return writeReportText(w, report, cfg, fmtFloat, intFmt, duration)
	}
	return nil
}

// writeHotspotCSV writes one row per hotspot.
func writeHotspotCSV(w io.Writer, hotspots []schema.FileStat, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "file", "score", "label", "modifications", "authors"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, f := range hotspots {
			rec := []string{
				strconv.Itoa(i + 1),
				f.Path,
				fmtFloat(f.RiskScore),
				contract.GetPlainLabel(f.RiskScore),
				fmt.Sprintf(intFmt, f.Modifications),
				fmt.Sprintf(intFmt, f.DistinctAuthors),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeReportText generates the human-readable report: a summary, the
// hotspot table and one section per reviewed file.
func writeReportText(w io.Writer, report schema.AnalysisReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if err := writeSummary(w, report, fmtFloat); err != nil {
		return err
	}
	if err := writeHotspotTable(w, report.BugHotbeds, cfg, fmtFloat, intFmt); err != nil {
		return err
	}
	for _, review := range report.AIReviews {
		if err := writeReviewSection(w, review); err != nil {
			return err
		}
	}
	backend := cfg.ArchiveBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v. Archive backend: %s\n", duration, backend)
	return err
}

func writeSummary(w io.Writer, report schema.AnalysisReport, fmtFloat func(float64) string) error {
	info := report.RepoInfo
	m := report.Metrics
	lines := []string{
		contract.HeaderColor.Sprintf("📊 %s", info.Name),
		fmt.Sprintf("Stars: %d  Forks: %d  Open issues: %d", info.Stars, info.Forks, info.OpenIssues),
		fmt.Sprintf("Commits analyzed: %d  Tech-debt index: %s%%", report.CommitsAnalyzed, fmtFloat(m.TechDebtIndex)),
		fmt.Sprintf("Merged PRs: %d  Avg merge time: %s  Avg review comments: %s",
			m.MergedPRCount, m.AvgMergeTime, formatNumberOrNA(m.AvgReviewComments, fmtFloat)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatNumberOrNA(n schema.NumberOrNA, fmtFloat func(float64) string) string {
	if !n.Valid {
		return schema.NotAvailable
	}
	return fmtFloat(n.Value)
}

func writeHotspotTable(w io.Writer, hotspots []schema.FileStat, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if len(hotspots) == 0 {
		_, err := fmt.Fprintln(w, "No hotspots: no file changes in the sampled commits")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Score", "Label", "Mods", "Authors"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(hotspots))
	for i, f := range hotspots {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			fmtFloat(f.RiskScore),
			contract.GetColorLabel(f.RiskScore),
			fmt.Sprintf(intFmt, f.Modifications),
			fmt.Sprintf(intFmt, f.DistinctAuthors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d hotspots\n", len(hotspots))
	return err
}

func writeReviewSection(w io.Writer, review schema.FileReview) error {
	if _, err := fmt.Fprintln(w, contract.HeaderColor.Sprintf("🤖 Review of %s", review.Filename)); err != nil {
		return err
	}
	if review.Failed() {
		_, err := fmt.Fprintln(w, contract.ErrorColor.Sprintf("  %s", review.Error))
		return err
	}
	if len(review.Findings) == 0 {
		_, err := fmt.Fprintln(w, "  No issues found")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Line", "Type", "Description", "Suggestion"})
	data := make([][]string, 0, len(review.Findings))
	for _, f := range review.Findings {
		data = append(data, []string{strconv.Itoa(f.LineNumber), f.IssueType, f.Description, f.Suggestion})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
