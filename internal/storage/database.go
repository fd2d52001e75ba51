package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Foreign keys are off by default in SQLite
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the required tables. Idempotent; safe to run on every
// startup.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS rules_content (
			rule_id TEXT PRIMARY KEY,
			section TEXT NOT NULL,
			title TEXT,
			content TEXT NOT NULL,
			effective_date TEXT,
			source_url TEXT,
			last_scraped DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS query_history (
			query_id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_text TEXT NOT NULL,
			retrieved_contexts TEXT,
			response_text TEXT,
			response_time_ms INTEGER,
			tokens_used INTEGER,
			cost_usd REAL,
			user_feedback INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS rag_metrics (
			metric_id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_id INTEGER,
			context_relevancy REAL,
			context_precision REAL,
			answer_relevancy REAL,
			faithfulness REAL,
			cosine_similarity REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (query_id) REFERENCES query_history (query_id)
		);`,
		`CREATE TABLE IF NOT EXISTS api_usage (
			usage_id INTEGER PRIMARY KEY AUTOINCREMENT,
			api_name TEXT,
			operation TEXT,
			tokens_input INTEGER,
			tokens_output INTEGER,
			cost_usd REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS data_freshness (
			data_type TEXT PRIMARY KEY,
			last_update DATETIME,
			update_status TEXT,
			records_updated INTEGER DEFAULT 0,
			error_message TEXT
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
