package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			set_id TEXT NOT NULL,
			document_type TEXT NOT NULL,
			source_name TEXT NOT NULL DEFAULT '',
			raw_text TEXT NOT NULL,
			text_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			fields TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (set_id, text_hash)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_set ON documents(set_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,

		`CREATE TABLE IF NOT EXISTS discrepancies (
			id TEXT PRIMARY KEY,
			set_id TEXT NOT NULL,
			document_id TEXT,
			kind TEXT NOT NULL,
			field TEXT NOT NULL,
			severity TEXT NOT NULL,
			description TEXT NOT NULL,
			field_values TEXT NOT NULL DEFAULT '{}',
			ucp_reference TEXT NOT NULL,
			ucp_explanation TEXT NOT NULL,
			ucp_advice TEXT NOT NULL DEFAULT '',
			detected_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_set ON discrepancies(set_id)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_kind ON discrepancies(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_severity ON discrepancies(severity)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			set_id TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			total_findings INTEGER NOT NULL,
			body TEXT NOT NULL,
			generated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_set ON reports(set_id, generated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
