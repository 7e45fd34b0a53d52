package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const feedbackColumns = `id, raw_text, normalized_text, content_hash,
	sentiment, urgency, impact, priority, tags, source, metadata, created_at`

// InsertFeedback inserts one feedback row and returns its ID.
func (db *DB) InsertFeedback(f *Feedback) (int64, error) {
	tags, metadata, err := encodeJSONFields(f)
	if err != nil {
		return 0, err
	}
	result, err := db.conn.Exec(
		`INSERT INTO feedback (raw_text, normalized_text, content_hash,
		sentiment, urgency, impact, priority, tags, source, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.RawText, f.NormalizedText, f.ContentHash,
		f.Sentiment, f.Urgency, f.Impact, f.Priority, tags, f.Source, metadata,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting feedback: %w", err)
	}
	return result.LastInsertId()
}

// InsertFeedbackBatch inserts rows in a single transaction and returns the
// inserted count. The transaction is all-or-nothing; a failure rolls back
// every row of the batch.
func (db *DB) InsertFeedbackBatch(rows []Feedback) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin batch insert: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO feedback (raw_text, normalized_text, content_hash,
		sentiment, urgency, impact, priority, tags, source, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		f := &rows[i]
		tags, metadata, err := encodeJSONFields(f)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if _, err := stmt.Exec(
			f.RawText, f.NormalizedText, f.ContentHash,
			f.Sentiment, f.Urgency, f.Impact, f.Priority, tags, f.Source, metadata,
		); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting batch row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch insert: %w", err)
	}
	return len(rows), nil
}

// ExistingHashes returns the subset of the given content hashes that are
// already present in the store.
func (db *DB) ExistingHashes(hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(hashes) == 0 {
		return existing, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(hashes)), ",")
	args := make([]any, len(hashes))
	for i, h := range hashes {
		args[i] = h
	}
	rows, err := db.conn.Query(
		"SELECT DISTINCT content_hash FROM feedback WHERE content_hash IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting existing hashes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		existing[h] = true
	}
	return existing, rows.Err()
}

// GetFeedbackByID returns a single feedback row, or nil when absent.
func (db *DB) GetFeedbackByID(id int64) (*Feedback, error) {
	row := db.conn.QueryRow(
		"SELECT "+feedbackColumns+" FROM feedback WHERE id = ?", id,
	)
	f, err := scanFeedbackRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateSignals overwrites the computed signal fields of a row while leaving
// raw text, source, metadata, and identity untouched.
func (db *DB) UpdateSignals(id int64, normalizedText, contentHash string,
	sentiment, urgency, impact, priority float64, tags []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	_, err = db.conn.Exec(
		`UPDATE feedback SET normalized_text = ?, content_hash = ?, sentiment = ?,
		urgency = ?, impact = ?, priority = ?, tags = ? WHERE id = ?`,
		normalizedText, contentHash, sentiment, urgency, impact, priority,
		string(tagsJSON), id,
	)
	return err
}

// ListRecent returns the newest rows by id descending.
func (db *DB) ListRecent(limit int) ([]Feedback, error) {
	rows, err := db.conn.Query(
		"SELECT "+feedbackColumns+" FROM feedback ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedbackRows(rows)
}

// ListPrioritized returns the highest-priority rows first.
func (db *DB) ListPrioritized(limit int) ([]Feedback, error) {
	rows, err := db.conn.Query(
		"SELECT "+feedbackColumns+" FROM feedback ORDER BY priority DESC, id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedbackRows(rows)
}

// ListSince returns rows created at or after the cutoff, newest first.
func (db *DB) ListSince(cutoff time.Time) ([]Feedback, error) {
	rows, err := db.conn.Query(
		"SELECT "+feedbackColumns+" FROM feedback WHERE created_at >= ? ORDER BY id DESC",
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedbackRows(rows)
}

// CountBySource returns the number of rows with the given source.
func (db *DB) CountBySource(source string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM feedback WHERE source = ?", source,
	).Scan(&count)
	return count, err
}

// GetStats returns aggregate statistics for the status command.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{BySource: make(map[string]int)}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM feedback").Scan(&s.TotalFeedback); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COALESCE(AVG(priority), 0) FROM feedback",
	).Scan(&s.AvgPriority); err != nil {
		return nil, err
	}
	rows, err := db.conn.Query("SELECT source, COUNT(*) FROM feedback GROUP BY source")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		s.BySource[source] = count
	}
	return s, rows.Err()
}

func encodeJSONFields(f *Feedback) (tags string, metadata *string, err error) {
	tagsBytes, err := json.Marshal(f.Tags)
	if err != nil {
		return "", nil, fmt.Errorf("encoding tags: %w", err)
	}
	if len(f.Metadata) > 0 {
		metaBytes, err := json.Marshal(f.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("encoding metadata: %w", err)
		}
		m := string(metaBytes)
		metadata = &m
	}
	return string(tagsBytes), metadata, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(s rowScanner) (*Feedback, error) {
	var f Feedback
	var tags string
	var metadata *string
	if err := s.Scan(&f.ID, &f.RawText, &f.NormalizedText, &f.ContentHash,
		&f.Sentiment, &f.Urgency, &f.Impact, &f.Priority, &tags, &f.Source,
		&metadata, &f.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags for row %d: %w", f.ID, err)
	}
	if metadata != nil {
		if err := json.Unmarshal([]byte(*metadata), &f.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for row %d: %w", f.ID, err)
		}
	}
	return &f, nil
}

func scanFeedbackRow(row *sql.Row) (*Feedback, error) {
	return scanFeedback(row)
}

func scanFeedbackRows(rows *sql.Rows) ([]Feedback, error) {
	var out []Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}
