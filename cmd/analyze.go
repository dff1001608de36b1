package cmd

import (
	"github.com/codesight/codesight/core"
	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/iocache"
	"github.com/codesight/codesight/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full repository health analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo-url>",
	Short: "Analyze a GitHub repository's recent history",
	Long: `Analyze a public GitHub repository and print its health report.

The report contains:
- Repository stars, forks and open issues
- Bug hotbeds: the most frequently changed files weighted by author count
- Tech-debt index: share of sampled commits mentioning TODO, FIXME, HACK or XXX
- Collaboration: merged pull request count, average merge time and review comments
- AI review of the top hotspots (requires an Anthropic API key)

Examples:
  # Analyze with defaults
  codesight analyze https://github.com/owner/name

  # Sample more history and emit JSON
  codesight analyze https://github.com/owner/name --max-commits 500 --output json

  # Skip AI review
  codesight analyze https://github.com/owner/name --review-limit 0`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		ctx := rootCtx
		// Keep machine-readable stdout free of progress chatter
		if cfg.Output != schema.TextOut && cfg.OutputFile == "" {
			ctx = core.WithSuppressHeader(ctx)
		}
		if err := core.ExecuteAnalyze(ctx, cfg, iocache.Manager.GetArchiveStore(), args[0]); err != nil {
			contract.LogFatal("Analysis failed", err)
		}
	},
}
