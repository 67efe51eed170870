package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "runs: one row per exported rewrite",
		SQL: `
CREATE TABLE runs (
    id          INTEGER PRIMARY KEY,
    run_id      TEXT NOT NULL UNIQUE,
    input_path  TEXT NOT NULL,
    output_path TEXT NOT NULL,
    title       TEXT,
    language    TEXT,
    total_words INTEGER NOT NULL DEFAULT 0,
    word_count  INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);

CREATE INDEX idx_runs_created_at ON runs(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "word_stats: per-word familiarity at the end of a run",
		SQL: `
CREATE TABLE word_stats (
    run_id       TEXT NOT NULL,
    ordinal      INTEGER NOT NULL,
    surface      TEXT NOT NULL,
    sense        TEXT NOT NULL DEFAULT '',
    max_distance INTEGER NOT NULL,
    times_seen   INTEGER NOT NULL,

    PRIMARY KEY (run_id, ordinal),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX idx_word_stats_seen ON word_stats(run_id, times_seen DESC);
`,
	},
}

// migrate brings the stats schema up to the latest version. Each step runs
// in its own transaction together with its schema_versions row.
func (db *DB) migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("read stats schema version: %w", err)
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) apply(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("stats schema v%d: begin: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("stats schema v%d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("stats schema v%d: record: %w", m.Version, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the newest applied stats schema version, 0 for a
// fresh database.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
