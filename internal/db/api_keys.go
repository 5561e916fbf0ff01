package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// MaxAPIKeysPerEmployee is the maximum number of API keys an employee can have
const MaxAPIKeysPerEmployee = 100

// ValidateAPIKey checks if an API key is valid and returns the associated employee ID and key ID
func (db *DB) ValidateAPIKey(ctx context.Context, keyHash string) (employeeID int64, keyID int64, err error) {
	query := `SELECT id, employee_id FROM api_keys WHERE key_hash = $1`

	err = db.conn.QueryRowContext(ctx, query, keyHash).Scan(&keyID, &employeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, fmt.Errorf("invalid API key")
		}
		return 0, 0, fmt.Errorf("failed to validate API key: %w", err)
	}

	return employeeID, keyID, nil
}

// UpdateAPIKeyLastUsed updates the last_used_at timestamp for an API key
func (db *DB) UpdateAPIKeyLastUsed(ctx context.Context, keyID int64) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, query, keyID)
	if err != nil {
		return fmt.Errorf("failed to update API key last used: %w", err)
	}
	return nil
}

// CountAPIKeys returns the number of API keys for an employee
func (db *DB) CountAPIKeys(ctx context.Context, employeeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM api_keys WHERE employee_id = $1`
	var count int
	err := db.conn.QueryRowContext(ctx, query, employeeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count API keys: %w", err)
	}
	return count, nil
}

// CreateAPIKey creates a new API key and returns the key ID and created_at.
// Returns ErrAPIKeyLimitExceeded if the employee already has MaxAPIKeysPerEmployee keys.
func (db *DB) CreateAPIKey(ctx context.Context, employeeID int64, keyHash, name string) (int64, time.Time, error) {
	count, err := db.CountAPIKeys(ctx, employeeID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if count >= MaxAPIKeysPerEmployee {
		return 0, time.Time{}, ErrAPIKeyLimitExceeded
	}

	query := `INSERT INTO api_keys (employee_id, key_hash, name) VALUES ($1, $2, $3) RETURNING id, created_at`

	var keyID int64
	var createdAt time.Time
	err = db.conn.QueryRowContext(ctx, query, employeeID, keyHash, name).Scan(&keyID, &createdAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to create API key: %w", err)
	}

	return keyID, createdAt, nil
}

// ListAPIKeys returns all API keys for an employee (without hashes)
func (db *DB) ListAPIKeys(ctx context.Context, employeeID int64) ([]models.APIKey, error) {
	query := `SELECT id, employee_id, name, created_at, last_used_at FROM api_keys WHERE employee_id = $1 ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var key models.APIKey
		if err := rows.Scan(&key.ID, &key.EmployeeID, &key.Name, &key.CreatedAt, &key.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// DeleteAPIKey deletes an API key
func (db *DB) DeleteAPIKey(ctx context.Context, employeeID, keyID int64) error {
	query := `DELETE FROM api_keys WHERE id = $1 AND employee_id = $2`

	result, err := db.conn.ExecContext(ctx, query, keyID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAPIKeyNotFound
	}

	return nil
}
