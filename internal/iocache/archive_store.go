package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
	"github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the report archive.
const (
	runsTable     = "codesight_runs"
	hotspotsTable = "codesight_hotspots"
)

// ArchiveStoreImpl implements the ArchiveStore interface on database/sql.
type ArchiveStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ArchiveStore = &ArchiveStoreImpl{} // Compile-time check

// NewArchiveStore creates a new ArchiveStore with the specified backend.
func NewArchiveStore(backend schema.DatabaseBackend, connStr string) (contract.ArchiveStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled archiving
		return &ArchiveStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createArchiveTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create archive tables: %w", err)
	}

	return &ArchiveStoreImpl{db: db, backend: backend}, nil
}

// openDatabase opens a connection pool for the backend without verifying it.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetArchiveDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL connection string: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported archive backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// mysqlDSN enables parseTime so DATETIME columns scan into time.Time.
// Migrations additionally need multi-statement support.
func mysqlDSN(connStr string, multiStatements bool) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.MultiStatements = multiStatements
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// createArchiveTables creates the archive tables if they do not exist yet.
func createArchiveTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{hotspotsTable, getCreateHotspotsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for codesight_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid VARCHAR(36) NOT NULL,
				repository VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6) NOT NULL,
				commits_analyzed INT NOT NULL,
				tech_debt_index DOUBLE NOT NULL,
				merged_pr_count INT NOT NULL,
				avg_merge_time VARCHAR(32) NOT NULL,
				avg_review_comments DOUBLE,
				reviews_requested INT NOT NULL,
				reviews_failed INT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				repository TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ NOT NULL,
				commits_analyzed INT NOT NULL,
				tech_debt_index DOUBLE PRECISION NOT NULL,
				merged_pr_count INT NOT NULL,
				avg_merge_time TEXT NOT NULL,
				avg_review_comments DOUBLE PRECISION,
				reviews_requested INT NOT NULL,
				reviews_failed INT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				repository TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				commits_analyzed INTEGER NOT NULL,
				tech_debt_index REAL NOT NULL,
				merged_pr_count INTEGER NOT NULL,
				avg_merge_time TEXT NOT NULL,
				avg_review_comments REAL,
				reviews_requested INTEGER NOT NULL,
				reviews_failed INTEGER NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateHotspotsQuery returns the CREATE TABLE query for codesight_hotspots.
func getCreateHotspotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(hotspotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				hotspot_rank INT NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				modifications INT NOT NULL,
				distinct_authors INT NOT NULL,
				risk_score DOUBLE NOT NULL,
				PRIMARY KEY (run_id, hotspot_rank)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				hotspot_rank INT NOT NULL,
				file_path TEXT NOT NULL,
				modifications INT NOT NULL,
				distinct_authors INT NOT NULL,
				risk_score DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, hotspot_rank)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				hotspot_rank INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				modifications INTEGER NOT NULL,
				distinct_authors INTEGER NOT NULL,
				risk_score REAL NOT NULL,
				PRIMARY KEY (run_id, hotspot_rank)
			);
		`, quotedTableName)
	}
}

// RecordReport stores one run row and its hotspot rows in a single transaction.
func (as *ArchiveStoreImpl) RecordReport(report schema.AnalysisReport, startTime, endTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var avgComments *float64
	if c := report.Metrics.AvgReviewComments; c.Valid {
		avgComments = &c.Value
	}
	failed := 0
	for _, r := range report.AIReviews {
		if r.Failed() {
			failed++
		}
	}

	tx, err := as.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	columns := []string{
		"run_uuid", "repository", "start_time", "end_time", "commits_analyzed",
		"tech_debt_index", "merged_pr_count", "avg_merge_time", "avg_review_comments",
		"reviews_requested", "reviews_failed", "config_params",
	}
	args := []any{
		report.RunID, report.RepoInfo.Name, formatTime(startTime, as.backend), formatTime(endTime, as.backend),
		report.CommitsAnalyzed, report.Metrics.TechDebtIndex, report.Metrics.MergedPRCount,
		report.Metrics.AvgMergeTime, avgComments, len(report.AIReviews), failed, string(configJSON),
	}
	insertRun := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(runsTable, as.backend), strings.Join(columns, ", "), placeholders(as.backend, len(columns)))

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		err = tx.QueryRow(insertRun+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = tx.Exec(insertRun, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert archive run: %w", err)
	}

	insertHotspot := fmt.Sprintf("INSERT INTO %s (run_id, hotspot_rank, file_path, modifications, distinct_authors, risk_score) VALUES (%s)",
		quoteTableName(hotspotsTable, as.backend), placeholders(as.backend, 6))
	for i, f := range report.BugHotbeds {
		if _, err := tx.Exec(insertHotspot, runID, i+1, f.Path, f.Modifications, f.DistinctAuthors, f.RiskScore); err != nil {
			return 0, fmt.Errorf("failed to insert hotspot %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive run: %w", err)
	}
	return runID, nil
}

// GetStatus returns status information about the archive.
func (as *ArchiveStoreImpl) GetStatus() (schema.ArchiveStatus, error) {
	status := schema.ArchiveStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, as.backend))
	if err := as.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoteTableName(runsTable, as.backend))
		var lastRunTime scannedTime
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime.Time

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoteTableName(runsTable, as.backend))
		var oldestRunTime scannedTime
		if err := as.db.QueryRow(oldestRunQuery).Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime.Time
	}

	for _, table := range []string{runsTable, hotspotsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		var count int64
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all archived runs ordered by run ID.
func (as *ArchiveStoreImpl) GetAllRuns() ([]schema.ArchivedRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, repository, start_time, end_time, commits_analyzed,
		tech_debt_index, merged_pr_count, avg_merge_time, avg_review_comments,
		reviews_requested, reviews_failed, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ArchivedRunRecord
	for rows.Next() {
		var record schema.ArchivedRunRecord
		var startTime, endTime scannedTime
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Repository, &startTime, &endTime,
			&record.CommitsAnalyzed, &record.TechDebtIndex, &record.MergedPRCount, &record.AvgMergeTime,
			&record.AvgReviewComments, &record.ReviewsRequested, &record.ReviewsFailed, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan archive run: %w", err)
		}
		record.StartTime = startTime.Time
		record.EndTime = endTime.Time
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive runs: %w", err)
	}
	return results, nil
}

// GetAllHotspots retrieves all archived hotspot rows ordered by run ID and rank.
func (as *ArchiveStoreImpl) GetAllHotspots() ([]schema.ArchivedHotspotRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, hotspot_rank, file_path, modifications, distinct_authors, risk_score
		FROM %s ORDER BY run_id, hotspot_rank`, quoteTableName(hotspotsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive hotspots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ArchivedHotspotRecord
	for rows.Next() {
		var record schema.ArchivedHotspotRecord
		if err := rows.Scan(&record.RunID, &record.Rank, &record.FilePath,
			&record.Modifications, &record.DistinctAuthors, &record.RiskScore); err != nil {
			return nil, fmt.Errorf("failed to scan archive hotspot: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive hotspots: %w", err)
	}
	return results, nil
}

// Clear deletes every archived run and hotspot row.
func (as *ArchiveStoreImpl) Clear() error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}
	for _, table := range []string{hotspotsTable, runsTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, as.backend))
		if _, err := as.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (as *ArchiveStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// placeholders returns n comma-separated bind parameters for the backend.
func placeholders(backend schema.DatabaseBackend, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// scannedTime scans both native datetime columns and the RFC 3339 text
// that the SQLite backend stores.
type scannedTime struct {
	time.Time
}

// Scan implements sql.Scanner.
func (st *scannedTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		st.Time = v
	case string:
		return st.parse(v)
	case []byte:
		return st.parse(string(v))
	case nil:
		st.Time = time.Time{}
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
	return nil
}

func (st *scannedTime) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	st.Time = t
	return nil
}
