// Package storage persists scan results and migration reports in SQLite
// so runs can be compared and re-examined later.
//
// Thread-safe: sql.DB handles connection pooling and concurrent access.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/harmonize/model"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         string
	Root       string
	CreatedAt  time.Time
	CallsFound int
	Complexity model.Complexity
}

// ReportStore persists scan and migration outcomes.
type ReportStore struct {
	db *sql.DB
}

// Open opens or creates the store at path, creating parent directories
// as needed.
func Open(path string) (*ReportStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	store := &ReportStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

// OpenInMemory creates an in-memory store, useful for testing.
func OpenInMemory() (*ReportStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("creating in-memory SQLite: %w", err)
	}
	store := &ReportStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

func (s *ReportStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scan_runs (
			run_id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			calls_found INTEGER NOT NULL,
			complexity TEXT NOT NULL,
			payload TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS migration_reports (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			payload TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES scan_runs(run_id) ON DELETE CASCADE
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveScan stores a scan result and returns its new run ID.
func (s *ReportStore) SaveScan(root string, result model.ScanResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding scan result: %w", err)
	}
	runID := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO scan_runs (run_id, root, calls_found, complexity, payload) VALUES (?, ?, ?, ?, ?)`,
		runID, root, result.CallsFound, string(result.Complexity), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("saving scan run: %w", err)
	}
	return runID, nil
}

// LoadScan retrieves a stored scan result by run ID.
func (s *ReportStore) LoadScan(runID string) (model.ScanResult, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM scan_runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScanResult{}, ErrRunNotFound
	}
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("loading scan run: %w", err)
	}
	var result model.ScanResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return model.ScanResult{}, fmt.Errorf("decoding scan run: %w", err)
	}
	return result, nil
}

// SaveMigration stores a migration report under an existing run ID.
func (s *ReportStore) SaveMigration(runID string, report model.MigrationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding migration report: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO migration_reports (run_id, succeeded, failed, payload) VALUES (?, ?, ?, ?)`,
		runID, report.Succeeded, report.Failed, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving migration report: %w", err)
	}
	return nil
}

// LoadMigration retrieves a stored migration report by run ID.
func (s *ReportStore) LoadMigration(runID string) (model.MigrationReport, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM migration_reports WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MigrationReport{}, ErrRunNotFound
	}
	if err != nil {
		return model.MigrationReport{}, fmt.Errorf("loading migration report: %w", err)
	}
	var report model.MigrationReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return model.MigrationReport{}, fmt.Errorf("decoding migration report: %w", err)
	}
	return report, nil
}

// ListRuns returns stored scan runs, newest first.
func (s *ReportStore) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT run_id, root, created_at, calls_found, complexity FROM scan_runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var created, complexity string
		if err := rows.Scan(&run.ID, &run.Root, &created, &run.CallsFound, &complexity); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
		run.Complexity = model.Complexity(complexity)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
