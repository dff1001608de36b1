package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/iocache"
	"github.com/codesight/codesight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = contract.DefaultConfig()

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "codesight",
	Short:              "Analyze the health of a GitHub repository.",
	Long:               `CodeSight samples a repository's recent history to surface bug hotbeds, tech debt, collaboration health and AI review findings.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("CODESIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Credentials also honor the conventional variable names
	_ = viper.BindEnv("github-token", "CODESIGHT_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = viper.BindEnv("anthropic-api-key", "CODESIGHT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	// Set defaults in Viper
	viper.SetDefault("requests-per-second", contract.DefaultRequestsPerSecond)
	viper.SetDefault("model", contract.DefaultModel)
	viper.SetDefault("model-max-tokens", contract.DefaultModelMaxTokens)
	viper.SetDefault("model-concurrency", contract.DefaultModelConcurrency)
	viper.SetDefault("max-commits", contract.DefaultMaxCommits)
	viper.SetDefault("max-prs", contract.DefaultMaxPRs)
	viper.SetDefault("hotspot-limit", contract.DefaultHotspotLimit)
	viper.SetDefault("review-limit", contract.DefaultReviewLimit)
	viper.SetDefault("max-file-bytes", contract.DefaultMaxFileBytes)
	viper.SetDefault("weight-modifications", contract.DefaultWeightMods)
	viper.SetDefault("weight-authors", contract.DefaultWeightAuthors)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("archive-backend", schema.NoneBackend)
	viper.SetDefault("archive-conn", "")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".codesight") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the archive.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and populate the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Initialize the report archive with validated config
	if err := iocache.InitArchive(cfg.ArchiveBackend, cfg.ArchiveConn); err != nil {
		return err
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
