package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/restmap/restmap/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl results.
//
// Design decision: We store the full result as a JSON column next to a few
// queryable summary columns rather than normalizing endpoints into rows.
// History queries only need the summary columns, and the JSON blob means a
// saved crawl round-trips losslessly into model.CrawlResult.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "restmap.db")

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

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
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

	// SQLite only supports one writer; multiple connections buy nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl runs store one row per completed crawl with the full result as JSON
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		urls_processed INTEGER NOT NULL,
		endpoint_count INTEGER NOT NULL,
		failed_requests INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_start_url ON crawl_runs(start_url);
	CREATE INDEX IF NOT EXISTS idx_runs_completed ON crawl_runs(completed_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata summarizes a saved crawl without its full result payload.
type RunMetadata struct {
	ID             int64
	StartURL       string
	StartedAt      time.Time
	CompletedAt    time.Time
	URLsProcessed  int
	EndpointCount  int
	FailedRequests int
}

// SaveCrawlResult stores a completed crawl and returns its row ID.
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize crawl result: %w", err)
	}

	query := `
	INSERT INTO crawl_runs (start_url, started_at, completed_at, urls_processed, endpoint_count, failed_requests, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := cdb.db.ExecContext(ctx, query,
		result.StartURL,
		result.StartedAt.Format(time.RFC3339Nano),
		result.CompletedAt.Format(time.RFC3339Nano),
		result.Stats.URLsProcessed,
		len(result.Endpoints),
		result.Stats.FailedRequests,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}

	return res.LastInsertId()
}

// GetLatestCrawlResult retrieves the most recently completed crawl for the
// given start URL. Returns nil without error when no crawl was saved.
func (cdb *CrawlDB) GetLatestCrawlResult(ctx context.Context, startURL string) (*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_runs
	WHERE start_url = ?
	ORDER BY completed_at DESC, id DESC
	LIMIT 1
	`

	var resultJSON string
	err := cdb.db.QueryRowContext(ctx, query, startURL).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse stored crawl result: %w", err)
	}

	return &result, nil
}

// ListRuns returns metadata for saved crawls, most recent first.
// When startURL is non-empty, only runs for that seed are listed.
func (cdb *CrawlDB) ListRuns(ctx context.Context, startURL string) ([]RunMetadata, error) {
	query := `
	SELECT id, start_url, started_at, completed_at, urls_processed, endpoint_count, failed_requests
	FROM crawl_runs
	`
	args := []any{}
	if startURL != "" {
		query += " WHERE start_url = ?"
		args = append(args, startURL)
	}
	query += " ORDER BY completed_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var runs []RunMetadata
	for rows.Next() {
		var run RunMetadata
		var startedAt, completedAt string
		if err := rows.Scan(
			&run.ID,
			&run.StartURL,
			&startedAt,
			&completedAt,
			&run.URLsProcessed,
			&run.EndpointCount,
			&run.FailedRequests,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		run.CompletedAt = parseTimestamp(completedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// parseTimestamp handles the timestamp formats SQLite may return depending
// on version and configuration.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
