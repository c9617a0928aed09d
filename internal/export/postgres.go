package export

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/azraattar/deduplication-system/internal/dedupe"
)

// PostgresSink mirrors a run's predictions into a match_candidate table, for
// deployments that want query access to results rather than just the CSV
// artifact.
type PostgresSink struct {
	db *sql.DB
}

// OpenPostgres connects to Postgres and ensures the results table exists.
func OpenPostgres(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS match_candidate (
			run_id      TEXT NOT NULL,
			record_id_l TEXT NOT NULL,
			record_id_r TEXT NOT NULL,
			match_score DOUBLE PRECISION NOT NULL,
			match_tier  TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create match_candidate table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

// Name identifies the sink in driver logs.
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Save inserts all candidates for one run in a single transaction.
func (s *PostgresSink) Save(runID string, candidates []dedupe.Candidate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO match_candidate (
			run_id, record_id_l, record_id_r, match_score, match_tier, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range candidates {
		if _, err := stmt.Exec(runID, c.RecordIDL, c.RecordIDR, c.Score, string(c.Tier), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
