package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Create inserts a new record. Status defaults to pending and timestamps are
// assigned by the store.
func (s *Store) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	if strings.TrimSpace(rec.URL) == "" {
		return nil, errors.New("record url is required")
	}
	status := rec.Status
	if status == "" {
		status = StatusPending
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO captures (
            run_id, url, title, speaker, status, output_dir, video_path,
            audio_path, transcript_path, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(rec.RunID),
		rec.URL,
		nullableString(rec.Title),
		nullableString(rec.Speaker),
		status,
		nullableString(rec.OutputDir),
		nullableString(rec.VideoPath),
		nullableString(rec.AudioPath),
		nullableString(rec.TranscriptPath),
		nullableString(rec.ErrorMessage),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert capture: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	created, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("capture %d vanished after insert", id)
	}
	return created, nil
}

// Get fetches a record by identifier. A missing record returns nil, nil.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+recordColumns+` FROM captures WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get capture: %w", err)
	}
	return rec, nil
}

// LatestByURL returns the most recent record for url, or nil when the video
// was never captured.
func (s *Store) LatestByURL(ctx context.Context, url string) (*Record, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+recordColumns+` FROM captures WHERE url = ? ORDER BY id DESC LIMIT 1`,
		url,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find capture by url: %w", err)
	}
	return rec, nil
}

// Update persists changes to an existing record and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	rec.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE captures
         SET run_id = ?, url = ?, title = ?, speaker = ?, status = ?, output_dir = ?,
             video_path = ?, audio_path = ?, transcript_path = ?, error_message = ?,
             updated_at = ?
         WHERE id = ?`,
		nullableString(rec.RunID),
		rec.URL,
		nullableString(rec.Title),
		nullableString(rec.Speaker),
		rec.Status,
		nullableString(rec.OutputDir),
		nullableString(rec.VideoPath),
		nullableString(rec.AudioPath),
		nullableString(rec.TranscriptPath),
		nullableString(rec.ErrorMessage),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update capture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update capture %d: %w", rec.ID, sql.ErrNoRows)
	}
	return nil
}

// List returns records filtered by status set (or all records when no status
// is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM captures`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats returns a count of records grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM captures GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("capture stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Summarize folds Stats into totals for status output.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for status, count := range stats {
		summary.Total += count
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusReview:
			summary.Review += count
		case status.IsProcessing():
			summary.Processing += count
		}
	}
	return summary, nil
}

// Remove deletes a record by identifier and reports whether it existed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete capture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all records and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM captures`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// ResetInterrupted marks records left in a processing status (for example by
// a killed process) as failed.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE captures SET status = ?, error_message = ?, updated_at = ?
         WHERE status IN (?, ?, ?)`,
		StatusFailed,
		InterruptedReason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusDownloading,
		StatusExtracting,
		StatusTranscribing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted captures: %w", err)
	}
	return res.RowsAffected()
}

// InterruptedReason is the error message recorded by ResetInterrupted.
const InterruptedReason = "capture interrupted"
