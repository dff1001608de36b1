package contract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/codesight/codesight/schema"
)

// Default values for configuration.
const (
	DefaultMaxCommits        = 100
	MaxMaxCommits            = 1000
	DefaultMaxPRs            = 25
	MaxMaxPRs                = 500
	DefaultHotspotLimit      = 10
	MaxHotspotLimit          = 100
	DefaultReviewLimit       = 3
	DefaultWeightMods        = 0.6
	DefaultWeightAuthors     = 0.4
	DefaultMaxFileBytes      = 1 << 20
	DefaultRequestsPerSecond = 10.0
	DefaultModel             = "claude-sonnet-4-5"
	DefaultModelMaxTokens    = 4096
	DefaultModelConcurrency  = 3
	DefaultPrecision         = 2
)

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	GitHubToken       string // Please use env var as this is plaintext
	GitHubBaseURL     string
	RequestsPerSecond float64

	AnthropicAPIKey  string // Please use env var as this is plaintext
	Model            string
	ModelMaxTokens   int
	ModelConcurrency int

	MaxCommits   int
	MaxPRs       int
	HotspotLimit int
	ReviewLimit  int
	MaxFileBytes int64

	WeightModifications float64
	WeightAuthors       float64

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	ArchiveBackend schema.DatabaseBackend
	ArchiveConn    string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	GitHubToken       string  `mapstructure:"github-token"`
	GitHubBaseURL     string  `mapstructure:"github-base-url"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`

	AnthropicAPIKey  string `mapstructure:"anthropic-api-key"`
	Model            string `mapstructure:"model"`
	ModelMaxTokens   int    `mapstructure:"model-max-tokens"`
	ModelConcurrency int    `mapstructure:"model-concurrency"`

	MaxCommits   int   `mapstructure:"max-commits"`
	MaxPRs       int   `mapstructure:"max-prs"`
	HotspotLimit int   `mapstructure:"hotspot-limit"`
	ReviewLimit  int   `mapstructure:"review-limit"`
	MaxFileBytes int64 `mapstructure:"max-file-bytes"`

	WeightModifications float64 `mapstructure:"weight-modifications"`
	WeightAuthors       float64 `mapstructure:"weight-authors"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`

	ArchiveBackend string `mapstructure:"archive-backend"`
	ArchiveConn    string `mapstructure:"archive-conn"`
}

// DefaultConfig returns a config with every default applied and review disabled.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerSecond:   DefaultRequestsPerSecond,
		Model:               DefaultModel,
		ModelMaxTokens:      DefaultModelMaxTokens,
		ModelConcurrency:    DefaultModelConcurrency,
		MaxCommits:          DefaultMaxCommits,
		MaxPRs:              DefaultMaxPRs,
		HotspotLimit:        DefaultHotspotLimit,
		ReviewLimit:         DefaultReviewLimit,
		MaxFileBytes:        DefaultMaxFileBytes,
		WeightModifications: DefaultWeightMods,
		WeightAuthors:       DefaultWeightAuthors,
		Output:              schema.TextOut,
		Precision:           DefaultPrecision,
		ArchiveBackend:      schema.NoneBackend,
	}
}

// Clone creates a copy of the config for per-request overrides.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ReviewEnabled reports whether a model credential is configured.
func (c *Config) ReviewEnabled() bool {
	return c.AnthropicAPIKey != "" && c.ReviewLimit > 0
}

// Params returns the non-secret settings that shaped a run, for archiving.
func (c *Config) Params() map[string]any {
	params := map[string]any{
		"max_commits":          c.MaxCommits,
		"max_prs":              c.MaxPRs,
		"hotspot_limit":        c.HotspotLimit,
		"review_limit":         c.ReviewLimit,
		"max_file_bytes":       c.MaxFileBytes,
		"weight_modifications": c.WeightModifications,
		"weight_authors":       c.WeightAuthors,
		"review_enabled":       c.ReviewEnabled(),
	}
	if c.ReviewEnabled() {
		params["model"] = c.Model
	}
	if c.GitHubBaseURL != "" {
		params["github_base_url"] = c.GitHubBaseURL
	}
	return params
}

// ProcessAndValidate performs all validation and processing on the raw input.
// It mutates the cfg object with the final, processed values.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateScoringInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateCollaborators(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of a database connection string.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("archive-conn is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("archive-conn is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs covers output and window-size settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxCommits <= 0 || input.MaxCommits > MaxMaxCommits {
		return fmt.Errorf("max-commits must be greater than 0 and cannot exceed %d (received %d)", MaxMaxCommits, input.MaxCommits)
	}
	cfg.MaxCommits = input.MaxCommits

	if input.MaxPRs <= 0 || input.MaxPRs > MaxMaxPRs {
		return fmt.Errorf("max-prs must be greater than 0 and cannot exceed %d (received %d)", MaxMaxPRs, input.MaxPRs)
	}
	cfg.MaxPRs = input.MaxPRs

	if input.HotspotLimit <= 0 || input.HotspotLimit > MaxHotspotLimit {
		return fmt.Errorf("hotspot-limit must be greater than 0 and cannot exceed %d (received %d)", MaxHotspotLimit, input.HotspotLimit)
	}
	cfg.HotspotLimit = input.HotspotLimit

	if input.ReviewLimit < 0 || input.ReviewLimit > input.HotspotLimit {
		return fmt.Errorf("review-limit must be between 0 and hotspot-limit %d (received %d)", input.HotspotLimit, input.ReviewLimit)
	}
	cfg.ReviewLimit = input.ReviewLimit

	if input.MaxFileBytes <= 0 {
		return fmt.Errorf("max-file-bytes must be greater than 0 (received %d)", input.MaxFileBytes)
	}
	cfg.MaxFileBytes = input.MaxFileBytes

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, yaml", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	return nil
}

// validateScoringInputs covers the hotspot weights.
func validateScoringInputs(cfg *Config, input *ConfigRawInput) error {
	if input.WeightModifications < 0 || input.WeightAuthors < 0 {
		return fmt.Errorf("weights cannot be negative (received %.2f, %.2f)", input.WeightModifications, input.WeightAuthors)
	}
	if input.WeightModifications == 0 && input.WeightAuthors == 0 {
		return fmt.Errorf("at least one of weight-modifications and weight-authors must be positive")
	}
	cfg.WeightModifications = input.WeightModifications
	cfg.WeightAuthors = input.WeightAuthors
	return nil
}

// validateCollaborators covers the hosting and model client settings.
func validateCollaborators(cfg *Config, input *ConfigRawInput) error {
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)

	if input.GitHubBaseURL != "" {
		u, err := url.Parse(input.GitHubBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("github-base-url must be an absolute URL (received %q)", input.GitHubBaseURL)
		}
	}
	cfg.GitHubBaseURL = input.GitHubBaseURL

	if input.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests-per-second must be greater than 0 (received %v)", input.RequestsPerSecond)
	}
	cfg.RequestsPerSecond = input.RequestsPerSecond

	cfg.AnthropicAPIKey = strings.TrimSpace(input.AnthropicAPIKey)
	if cfg.AnthropicAPIKey != "" && strings.TrimSpace(input.Model) == "" {
		return fmt.Errorf("model cannot be empty when anthropic-api-key is set")
	}
	cfg.Model = strings.TrimSpace(input.Model)

	if input.ModelMaxTokens <= 0 {
		return fmt.Errorf("model-max-tokens must be greater than 0 (received %d)", input.ModelMaxTokens)
	}
	cfg.ModelMaxTokens = input.ModelMaxTokens

	if input.ModelConcurrency <= 0 {
		return fmt.Errorf("model-concurrency must be greater than 0 (received %d)", input.ModelConcurrency)
	}
	cfg.ModelConcurrency = input.ModelConcurrency
	return nil
}

// validateBackendConfigs covers the report archive.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := schema.DatabaseBackend(strings.ToLower(input.ArchiveBackend))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, none", input.ArchiveBackend)
	}
	if err := ValidateDatabaseConnectionString(backend, input.ArchiveConn); err != nil {
		return err
	}
	cfg.ArchiveBackend = backend
	cfg.ArchiveConn = input.ArchiveConn
	return nil
}
