package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/clockwise-hq/clockwise-web/internal/report"
)

// ResolveProjects batch-resolves project ids to names. Ids with no matching
// row are absent from the map; callers treat them as unresolved.
func (db *DB) ResolveProjects(ctx context.Context, ids []int64) (map[int64]report.XRef, error) {
	return db.resolveNames(ctx, `SELECT id, name FROM projects WHERE id = ANY($1)`, ids)
}

// ResolveClients batch-resolves client ids to names.
func (db *DB) ResolveClients(ctx context.Context, ids []int64) (map[int64]report.XRef, error) {
	return db.resolveNames(ctx, `SELECT id, name FROM clients WHERE id = ANY($1)`, ids)
}

// ResolveEmployees batch-resolves employee ids. The name columns are
// nullable; nulls come back as empty strings and the caller decides how to
// render them.
func (db *DB) ResolveEmployees(ctx context.Context, ids []int64) (map[int64]report.EmployeeRef, error) {
	refs := make(map[int64]report.EmployeeRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, COALESCE(first_name, ''), COALESCE(last_name, '')
		FROM employees
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref report.EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		refs[ref.ID] = ref
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return refs, nil
}

// ResolveScreenshots batch-resolves screenshot ids to their titles.
func (db *DB) ResolveScreenshots(ctx context.Context, ids []int64) (map[int64]report.XRef, error) {
	return db.resolveNames(ctx, `SELECT id, title FROM screenshots WHERE id = ANY($1)`, ids)
}

func (db *DB) resolveNames(ctx context.Context, query string, ids []int64) (map[int64]report.XRef, error) {
	refs := make(map[int64]report.XRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	rows, err := db.conn.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve references: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref report.XRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		refs[ref.ID] = ref
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating references: %w", err)
	}

	return refs, nil
}
