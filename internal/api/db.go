package api

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"emirps/internal/emirp"
)

const createTables = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		limit_value INTEGER NOT NULL,
		count INTEGER NOT NULL,
		max_emirp INTEGER NOT NULL,
		sum INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// DropTables removes the run history.
const DropTables = `DROP TABLE IF EXISTS runs;`

// Run is one recorded emirp search.
type Run struct {
	ID        uuid.UUID
	Limit     int64
	Summary   emirp.Summary
	Elapsed   time.Duration
	CreatedAt time.Time
}

// InitDB initializes and returns a SQLite database connection
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// CreateSchema creates the run history tables if they do not exist yet
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(createTables); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SaveRun records a run. A zero ID is replaced with a new random one, which
// is returned.
func SaveRun(db *sql.DB, run Run) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO runs (id, limit_value, count, max_emirp, sum, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		run.ID.String(),
		run.Limit,
		run.Summary.Count,
		run.Summary.Max,
		run.Summary.Sum,
		run.Elapsed.Milliseconds(),
		run.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run.ID, nil
}

// GetRun fetches a single run by its ID
func GetRun(db *sql.DB, id uuid.UUID) (*Run, error) {
	query := `SELECT id, limit_value, count, max_emirp, sum, elapsed_ms, created_at FROM runs WHERE id = ?`

	run, err := scanRun(db.QueryRow(query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil // Run not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// ListRuns fetches up to maxRuns runs, newest first
func ListRuns(db *sql.DB, maxRuns int) ([]Run, error) {
	if maxRuns <= 0 {
		return []Run{}, nil
	}

	query := `SELECT id, limit_value, count, max_emirp, sum, elapsed_ms, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := db.Query(query, maxRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, maxRuns)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// CountRuns returns the number of recorded runs
func CountRuns(db *sql.DB) (int64, error) {
	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var id string
	var elapsedMs int64

	err := row.Scan(
		&id,
		&run.Limit,
		&run.Summary.Count,
		&run.Summary.Max,
		&run.Summary.Sum,
		&elapsedMs,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	run.Elapsed = time.Duration(elapsedMs) * time.Millisecond

	return &run, nil
}
