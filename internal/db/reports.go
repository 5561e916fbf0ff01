package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// InsertSavedReport records the metadata row for a saved report. The payload
// must already be durable in blob storage; this is step 2 of the save flow.
func (db *DB) InsertSavedReport(ctx context.Context, r models.SavedReport) (*models.SavedReport, error) {
	query := `
		INSERT INTO saved_reports (id, user_id, url, name, include_ss, include_al,
		                           include_pr, include_apps, options, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	r.ID = uuid.New().String()
	var options interface{}
	if len(r.Options) > 0 {
		options = []byte(r.Options)
	}

	err := db.conn.QueryRowContext(ctx, query,
		r.ID,
		r.UserID,
		r.URL,
		r.Name,
		r.IncludeSS,
		r.IncludeAL,
		r.IncludePR,
		r.IncludeApps,
		options,
		r.FileName,
	).Scan(&r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert saved report: %w", err)
	}

	return &r, nil
}

// FindSavedReportByURL returns the earliest-stored report for a URL.
//
// URLs carry no uniqueness constraint, so several rows can share one. The
// insertion-order tiebreak means a duplicate URL silently shadows every later
// save; deduplication belongs to the caller generating URLs.
func (db *DB) FindSavedReportByURL(ctx context.Context, url string) (*models.SavedReport, error) {
	query := `
		SELECT id, user_id, url, name, include_ss, include_al, include_pr,
		       include_apps, options, file_name, created_at
		FROM saved_reports
		WHERE url = $1
		ORDER BY seq ASC
		LIMIT 1
	`

	var r models.SavedReport
	var options []byte
	err := db.conn.QueryRowContext(ctx, query, url).Scan(
		&r.ID,
		&r.UserID,
		&r.URL,
		&r.Name,
		&r.IncludeSS,
		&r.IncludeAL,
		&r.IncludePR,
		&r.IncludeApps,
		&options,
		&r.FileName,
		&r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSavedReportNotFound
		}
		return nil, fmt.Errorf("failed to get saved report: %w", err)
	}
	r.Options = options

	return &r, nil
}

// ListSavedReports returns a user's saved reports, newest first.
func (db *DB) ListSavedReports(ctx context.Context, userID int64) ([]models.SavedReport, error) {
	query := `
		SELECT id, user_id, url, name, include_ss, include_al, include_pr,
		       include_apps, options, file_name, created_at
		FROM saved_reports
		WHERE user_id = $1
		ORDER BY seq DESC
	`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved reports: %w", err)
	}
	defer rows.Close()

	var reports []models.SavedReport
	for rows.Next() {
		var r models.SavedReport
		var options []byte
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.URL, &r.Name, &r.IncludeSS, &r.IncludeAL,
			&r.IncludePR, &r.IncludeApps, &options, &r.FileName, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved report: %w", err)
		}
		r.Options = options
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved reports: %w", err)
	}

	return reports, nil
}
