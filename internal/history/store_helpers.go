package history

import (
	"database/sql"
	"errors"
	"time"
)

const recordColumns = "id, run_id, url, title, speaker, status, output_dir, video_path, audio_path, transcript_path, error_message, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id             int64
		runID          sql.NullString
		url            string
		title          sql.NullString
		speaker        sql.NullString
		statusStr      string
		outputDir      sql.NullString
		videoPath      sql.NullString
		audioPath      sql.NullString
		transcriptPath sql.NullString
		errorMessage   sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&url,
		&title,
		&speaker,
		&statusStr,
		&outputDir,
		&videoPath,
		&audioPath,
		&transcriptPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:             id,
		RunID:          runID.String,
		URL:            url,
		Title:          title.String,
		Speaker:        speaker.String,
		Status:         Status(statusStr),
		OutputDir:      outputDir.String,
		VideoPath:      videoPath.String,
		AudioPath:      audioPath.String,
		TranscriptPath: transcriptPath.String,
		ErrorMessage:   errorMessage.String,
	}
	if createdRaw.Valid {
		if ts, err := parseTimeString(createdRaw.String); err == nil {
			rec.CreatedAt = ts
		}
	}
	if updatedRaw.Valid {
		if ts, err := parseTimeString(updatedRaw.String); err == nil {
			rec.UpdatedAt = ts
		}
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
