package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// StatusDB provides SQLite-based storage for per-page download status.
// It is advisory metadata next to the JSON state file: queries over
// crawl history (what failed when, with what code) without loading the
// whole state into memory.
//
// Design decision: We keep this separate from the resume state file
// rather than making SQLite the source of truth. The state file must
// stay a single portable JSON document; the database serves ad-hoc
// inspection and can be deleted at any time without losing resume data.
type StatusDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures StatusDB behavior.
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

// Open opens or creates a StatusDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*StatusDB, error) {
	dbPath := filepath.Join(dbDir, "webmark.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under our single-worker access pattern.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StatusDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *StatusDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *StatusDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *StatusDB) createTables() error {
	schema := `
	-- Page status records, one row per URL ever processed
	CREATE TABLE IF NOT EXISTS page_status (
		url TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		status_code INTEGER,
		message TEXT,
		child_count INTEGER DEFAULT 0,
		last_checked DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_page_status_status ON page_status(status);
	CREATE INDEX IF NOT EXISTS idx_page_status_checked ON page_status(last_checked);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageStatus represents a stored per-page status record.
type PageStatus struct {
	// URL is the canonical page URL.
	URL string

	// Status is the outcome label: completed, failed, retrying, or
	// depth_limited.
	Status string

	// StatusCode is the last HTTP status code seen, 0 for transport
	// errors.
	StatusCode int

	// Message carries the failure reason when Status is not completed.
	Message string

	// ChildCount is the number of in-scope links discovered on the page.
	ChildCount int

	// LastChecked is when the record was last updated.
	LastChecked time.Time
}

// Status labels stored in the page_status table.
const (
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
	StatusRetrying     = "retrying"
	StatusDepthLimited = "depth_limited"
)

// UpsertStatus inserts or updates the status record for a URL.
// Uses UPSERT to keep exactly one row per URL.
func (sdb *StatusDB) UpsertStatus(ctx context.Context, rec *PageStatus) error {
	query := `
	INSERT INTO page_status (url, status, status_code, message, child_count)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		status = excluded.status,
		status_code = excluded.status_code,
		message = excluded.message,
		child_count = excluded.child_count,
		last_checked = CURRENT_TIMESTAMP
	`

	_, err := sdb.db.ExecContext(ctx, query,
		rec.URL,
		rec.Status,
		rec.StatusCode,
		rec.Message,
		rec.ChildCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page status: %w", err)
	}
	return nil
}

// GetStatus retrieves the status record for a URL, or nil if the URL
// has never been recorded.
func (sdb *StatusDB) GetStatus(ctx context.Context, url string) (*PageStatus, error) {
	query := `
	SELECT url, status, status_code, message, child_count, last_checked
	FROM page_status
	WHERE url = ?
	`

	var rec PageStatus
	var checked string

	err := sdb.db.QueryRowContext(ctx, query, url).Scan(
		&rec.URL,
		&rec.Status,
		&rec.StatusCode,
		&rec.Message,
		&rec.ChildCount,
		&checked,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page status: %w", err)
	}

	rec.LastChecked = parseTimestamp(checked)
	return &rec, nil
}

// ListByStatus returns all records with the given status label,
// most recently checked first.
func (sdb *StatusDB) ListByStatus(ctx context.Context, status string) ([]PageStatus, error) {
	query := `
	SELECT url, status, status_code, message, child_count, last_checked
	FROM page_status
	WHERE status = ?
	ORDER BY last_checked DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list page status: %w", err)
	}
	defer rows.Close()

	var results []PageStatus
	for rows.Next() {
		var rec PageStatus
		var checked string

		if err := rows.Scan(
			&rec.URL,
			&rec.Status,
			&rec.StatusCode,
			&rec.Message,
			&rec.ChildCount,
			&checked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page status: %w", err)
		}

		rec.LastChecked = parseTimestamp(checked)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// CountByStatus returns the number of records per status label.
func (sdb *StatusDB) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `
	SELECT status, COUNT(*) FROM page_status
	GROUP BY status
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count page status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
