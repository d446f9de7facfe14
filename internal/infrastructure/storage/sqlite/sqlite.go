// Package sqlite is the durable on-device store for queued reports. SQLite in
// WAL mode gives the write-ahead durability the sync lifecycle depends on: a
// transition is persisted before anything else observes it.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

// New opens (creating if needed) the local queue database at path.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init local schema: %w", err)
	}

	return s, nil
}

func (s *Storage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS queued_reports (
			local_id        TEXT PRIMARY KEY,
			payload         TEXT NOT NULL,
			attachments     TEXT NOT NULL DEFAULT '[]',
			state           TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			last_attempt_at TEXT,
			synced_at       TEXT,
			remote_id       TEXT NOT NULL DEFAULT '',
			attempt_count   INTEGER NOT NULL DEFAULT 0,
			last_error      TEXT NOT NULL DEFAULT '',
			last_error_kind TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_queued_reports_state ON queued_reports(state);
		CREATE INDEX IF NOT EXISTS idx_queued_reports_created ON queued_reports(created_at);
	`)
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}
