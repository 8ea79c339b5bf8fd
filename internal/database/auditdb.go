package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yaudit/internal/model"
)

// DBFileName is the database file created inside the database directory.
const DBFileName = "a11yaudit.db"

// timestampLayout stores timestamps with fixed-width fractions so that
// lexical order in SQL equals chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// AuditDB provides SQLite-based storage for audit reports.
// Reports are stored as JSON, keyed by audit id and indexed by site.
//
// Design decision: We store the full report as one JSON document plus a few
// denormalized columns for listing. History views never need to parse the
// full report, and the report schema can grow without migrations.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. Concurrent audits in server mode
	// serialize on this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audits (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		site TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		overall_status TEXT NOT NULL,
		total_violations INTEGER NOT NULL,
		successful_scans INTEGER NOT NULL,
		failed_scans INTEGER NOT NULL,
		summary TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_site ON audits(site);
	CREATE INDEX IF NOT EXISTS idx_audits_timestamp ON audits(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAudit stores a finished audit report. Saving the same audit id twice
// returns ErrDuplicateAudit.
func (adb *AuditDB) SaveAudit(ctx context.Context, report *model.AuditReport) error {
	if report == nil || report.ID == "" {
		return ErrInvalidReport
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	if existing, err := adb.AuditByID(ctx, report.ID); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateAudit, report.ID)
	}

	query := `
	INSERT INTO audits (id, site, timestamp, overall_status, total_violations,
		successful_scans, failed_scans, summary, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		report.ID,
		report.Site(),
		report.Timestamp.UTC().Format(timestampLayout),
		string(report.OverallStatus),
		report.Summary.TotalViolations,
		report.SuccessfulScans,
		len(report.FailedScans),
		string(summaryJSON),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit: %w", err)
	}

	return nil
}

// LatestAudit retrieves the most recent audit for a site.
// It returns nil without error when the site has no audits.
func (adb *AuditDB) LatestAudit(ctx context.Context, site string) (*model.AuditReport, error) {
	reports, err := adb.RecentAudits(ctx, site, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}

// RecentAudits retrieves up to limit audits for a site, newest first.
func (adb *AuditDB) RecentAudits(ctx context.Context, site string, limit int) ([]*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, seq DESC
	LIMIT ?
	`

	rows, err := adb.db.QueryContext(ctx, query, site, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audits: %w", err)
	}
	defer rows.Close()

	var reports []*model.AuditReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}

		var report model.AuditReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// AuditByID retrieves an audit by its id.
// It returns nil without error when no such audit exists.
func (adb *AuditDB) AuditByID(ctx context.Context, id string) (*model.AuditReport, error) {
	query := `SELECT report_json FROM audits WHERE id = ?`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListSites returns every audited site in alphabetical order.
func (adb *AuditDB) ListSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM audits
	ORDER BY site
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying audit history without loading the full report.
type AuditMetadata struct {
	ID              string              `json:"id"`
	Site            string              `json:"site"`
	Timestamp       time.Time           `json:"timestamp"`
	OverallStatus   model.OverallStatus `json:"overall_status"`
	TotalViolations int                 `json:"total_violations"`
	SuccessfulScans int                 `json:"successful_scans"`
	FailedScans     int                 `json:"failed_scans"`
	Summary         model.Summary       `json:"summary"`
}

// AuditHistory retrieves audit metadata for a site, newest first.
// This is more efficient than loading full reports when only metadata is needed.
func (adb *AuditDB) AuditHistory(ctx context.Context, site string) ([]AuditMetadata, error) {
	query := `
	SELECT id, site, timestamp, overall_status, total_violations,
		successful_scans, failed_scans, summary
	FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, seq DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp, status string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &status, &meta.TotalViolations,
			&meta.SuccessfulScans, &meta.FailedScans, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.OverallStatus = model.OverallStatus(status)

		if summaryJSON.Valid && summaryJSON.String != "" {
			// A malformed summary leaves the zero Summary.
			_ = json.Unmarshal([]byte(summaryJSON.String), &meta.Summary) //nolint:errcheck // best effort
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
