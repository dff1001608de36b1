// Package cmd defines the command-line interface for codesight.
package cmd

import (
	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the archive subcommands to the parent archive command
	archiveCmd.AddCommand(archiveStatusCmd)
	archiveCmd.AddCommand(archiveExportCmd)
	archiveCmd.AddCommand(archiveMigrateCmd)
	archiveCmd.AddCommand(archiveClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token (prefer the GITHUB_TOKEN env var)")
	rootCmd.PersistentFlags().String("github-base-url", "", "GitHub Enterprise API base URL")
	rootCmd.PersistentFlags().Float64("requests-per-second", contract.DefaultRequestsPerSecond, "Client-side limit on GitHub API requests")
	rootCmd.PersistentFlags().String("anthropic-api-key", "", "Anthropic API key (prefer the ANTHROPIC_API_KEY env var); empty disables AI review")
	rootCmd.PersistentFlags().String("model", contract.DefaultModel, "Model used for AI review")
	rootCmd.PersistentFlags().Int("model-max-tokens", contract.DefaultModelMaxTokens, "Maximum tokens per review response")
	rootCmd.PersistentFlags().Int("model-concurrency", contract.DefaultModelConcurrency, "Maximum concurrent model requests")
	rootCmd.PersistentFlags().Int("max-commits", contract.DefaultMaxCommits, "Number of recent commits to sample")
	rootCmd.PersistentFlags().Int("max-prs", contract.DefaultMaxPRs, "Number of recent closed pull requests to sample")
	rootCmd.PersistentFlags().IntP("hotspot-limit", "l", contract.DefaultHotspotLimit, "Number of hotspots to report")
	rootCmd.PersistentFlags().Int("review-limit", contract.DefaultReviewLimit, "Number of top hotspots sent to AI review (0 disables review)")
	rootCmd.PersistentFlags().Int64("max-file-bytes", contract.DefaultMaxFileBytes, "Files larger than this are not reviewed")
	rootCmd.PersistentFlags().Float64("weight-modifications", contract.DefaultWeightMods, "Hotspot weight of modification counts")
	rootCmd.PersistentFlags().Float64("weight-authors", contract.DefaultWeightAuthors, "Hotspot weight of distinct author counts")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or csv or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("archive-backend", string(schema.NoneBackend), "Report archive backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("archive-conn", "", "Archive connection string (sqlite file path, or DSN for mysql/postgresql)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of archiveMigrateCmd to Viper
	archiveMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(archiveMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding archive migrate flags", err)
	}
}
