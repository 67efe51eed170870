package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one exported rewrite.
type Run struct {
	ID         int64
	RunID      string
	InputPath  string
	OutputPath string
	Title      string
	Language   string
	TotalWords int
	WordCount  int
	CreatedAt  int64
}

// WordStat is a word's familiarity at the end of a run.
type WordStat struct {
	Ordinal     int
	Surface     string
	Sense       string
	MaxDistance int
	TimesSeen   int
}

// SaveRun stores a run and its word stats in one transaction. RunID and
// CreatedAt are assigned when empty. Words keep the order given.
func (db *DB) SaveRun(run *Run, words []WordStat) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixMilli()
	}
	run.WordCount = len(words)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO runs (run_id, input_path, output_path, title, language, total_words, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.InputPath, run.OutputPath, run.Title, run.Language, run.TotalWords, run.WordCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	run.ID, _ = result.LastInsertId()

	stmt, err := tx.Prepare(`
		INSERT INTO word_stats (run_id, ordinal, surface, sense, max_distance, times_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare word stats: %w", err)
	}
	defer stmt.Close()

	for i, w := range words {
		if _, err := stmt.Exec(run.RunID, i, w.Surface, w.Sense, w.MaxDistance, w.TimesSeen); err != nil {
			return fmt.Errorf("insert word %q: %w", w.Surface, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRun returns a run by its run_id, or nil if absent.
func (db *DB) GetRun(runID string) (*Run, error) {
	var r Run
	var title, lang sql.NullString
	err := db.QueryRow(`
		SELECT id, run_id, input_path, output_path, title, language, total_words, word_count, created_at
		FROM runs WHERE run_id = ?
	`, runID).Scan(&r.ID, &r.RunID, &r.InputPath, &r.OutputPath, &title, &lang, &r.TotalWords, &r.WordCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	r.Title, r.Language = title.String, lang.String
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT id, run_id, input_path, output_path, title, language, total_words, word_count, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var title, lang sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.InputPath, &r.OutputPath, &title, &lang, &r.TotalWords, &r.WordCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Title, r.Language = title.String, lang.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TopWords returns a run's most frequently seen words, ties broken by
// first sighting.
func (db *DB) TopWords(runID string, limit int) ([]WordStat, error) {
	rows, err := db.Query(`
		SELECT ordinal, surface, sense, max_distance, times_seen
		FROM word_stats WHERE run_id = ?
		ORDER BY times_seen DESC, ordinal ASC LIMIT ?
	`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("top words: %w", err)
	}
	defer rows.Close()

	var words []WordStat
	for rows.Next() {
		var w WordStat
		if err := rows.Scan(&w.Ordinal, &w.Surface, &w.Sense, &w.MaxDistance, &w.TimesSeen); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
