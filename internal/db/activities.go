package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/clockwise-hq/clockwise-web/internal/models"
	"github.com/clockwise-hq/clockwise-web/internal/report"
)

// FetchActivities returns the activity records matching a report filter's
// id-set constraints. Date filtering happens in the aggregation engine, which
// also re-checks the id sets, so this is a superset pushdown.
//
// A nil id slice binds as SQL NULL and disables the constraint. A non-nil
// empty slice binds as an empty array: `= ANY('{}')` matches nothing, and a
// NULL project_id or client_id never satisfies ANY, which is exactly the
// membership-required semantics a present filter demands.
func (db *DB) FetchActivities(ctx context.Context, f report.Filter) ([]models.ActivityRecord, error) {
	query := `
		SELECT id, employee_id, project_id, client_id, is_internal,
		       consume_time, performance_score, activity_on, screenshot_ids, created_at
		FROM activities
		WHERE ($1::bigint[] IS NULL OR employee_id = ANY($1))
		  AND ($2::bigint[] IS NULL OR project_id = ANY($2))
		  AND ($3::bigint[] IS NULL OR client_id = ANY($3))
		ORDER BY id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query,
		pq.Array(f.EmployeeIDs), pq.Array(f.ProjectIDs), pq.Array(f.ClientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var records []models.ActivityRecord
	for rows.Next() {
		var rec models.ActivityRecord
		var shots pq.Int64Array
		if err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.ProjectID,
			&rec.ClientID,
			&rec.IsInternal,
			&rec.ConsumeTime,
			&rec.PerformanceScore,
			&rec.ActivityOn,
			&shots,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		rec.ScreenshotIDs = shots
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return records, nil
}

// InsertActivity inserts one activity record and returns it with its assigned
// id. Used by the activity ingest endpoint and by tests seeding fixtures.
func (db *DB) InsertActivity(ctx context.Context, rec models.ActivityRecord) (*models.ActivityRecord, error) {
	query := `
		INSERT INTO activities (employee_id, project_id, client_id, is_internal,
		                        consume_time, performance_score, activity_on, screenshot_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'))
		RETURNING id, created_at
	`

	err := db.conn.QueryRowContext(ctx, query,
		rec.EmployeeID,
		rec.ProjectID,
		rec.ClientID,
		rec.IsInternal,
		rec.ConsumeTime,
		rec.PerformanceScore,
		rec.ActivityOn,
		pq.Array(rec.ScreenshotIDs),
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	return &rec, nil
}
