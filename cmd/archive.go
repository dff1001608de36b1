package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/iocache"
	"github.com/codesight/codesight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// readArchiveConfig loads the archive settings without the full analysis validation.
func readArchiveConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("archive-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("archive-conn")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.ArchiveBackend = backend
	cfg.ArchiveConn = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// archiveSetup opens the archive for the status, export and clear commands.
func archiveSetup(_ *cobra.Command, _ []string) error {
	if err := readArchiveConfig(); err != nil {
		return err
	}
	return iocache.InitArchive(cfg.ArchiveBackend, cfg.ArchiveConn)
}

// archiveMigrateSetup does NOT open the store or create tables,
// allowing migrations to run on a fresh database.
func archiveMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := readArchiveConfig(); err != nil {
		return err
	}
	if cfg.ArchiveBackend == schema.SQLiteBackend && cfg.ArchiveConn == "" {
		cfg.ArchiveConn = contract.GetArchiveDBFilePath()
	}
	return nil
}

// archiveCmd focused on the report archive.
//
// Note: archive subcommands skip the GitHub and model settings validated by analyze.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the archive of past analysis reports",
	Long: `Manage the opt-in archive of finished analysis reports.

When --archive-backend is set, every analysis appends:
- A run row (repository, timing, tech-debt index, collaboration metrics, config)
- One row per reported hotspot

Archived data is never read back into an analysis.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show archive statistics
  export  - Export archived data to Parquet
  migrate - Run database schema migrations
  clear   - Remove all archived data

Examples:
  # Check archive status
  codesight archive status --archive-backend sqlite

  # Export for analysis in pandas/DuckDB
  codesight archive export --archive-backend sqlite --output-file reports`,
}

// archiveStatusCmd shows archive status.
var archiveStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display archive statistics and connection details",
	PreRunE: archiveSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetArchiveStore()
		if store == nil {
			contract.LogFatal("Failed to get archive status", fmt.Errorf("archive is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get archive status", err)
		}
		iocache.PrintArchiveStatus(os.Stdout, status)
	},
}

// archiveExportCmd exports archived data to Parquet files.
var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived reports to Parquet for BI tools and analytics",
	Long: `Export all archived runs and hotspots to Parquet.

Writes two files next to --output-file:
- <output-file>.runs.parquet
- <output-file>.hotspots.parquet

Examples:
  codesight archive export --archive-backend sqlite --output-file reports
  duckdb -c "SELECT * FROM read_parquet('reports.runs.parquet') LIMIT 10"`,
	PreRunE: archiveSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteArchiveExport(iocache.Manager.GetArchiveStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export archive", err)
		}
	},
}

// archiveMigrateCmd runs database migrations for the archive.
var archiveMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run archive schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the report archive.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codesight archive migrate --archive-backend sqlite

  # Rollback everything
  codesight archive migrate --archive-backend sqlite --target-version 0`,
	PreRunE: archiveMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateArchive(cfg.ArchiveBackend, cfg.ArchiveConn, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// archiveClearCmd clears the archive.
var archiveClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all archived reports",
	Long: `Delete every archived run and hotspot row.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: archiveSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetArchiveStore()
		if store == nil {
			contract.LogFatal("Failed to clear archive", fmt.Errorf("archive is not initialized"))
		}
		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear archive", err)
		}
		fmt.Println("Archive cleared successfully.")
	},
}
