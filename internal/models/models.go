package models

import (
	"encoding/json"
	"time"
)

// Employee represents a tracked worker account.
// Reporting only reads employees (name joins); account management lives elsewhere.
type Employee struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  *string   `json:"lastName,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a billable unit of work, optionally owned by a client.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ClientID  *int64    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a customer that projects and activities can be billed against.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Screenshot is a capture taken by the desktop tracker while an activity ran.
// Reporting only needs the title for the by-screenshot facet.
type Screenshot struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Title      string    `json:"title"`
	CapturedAt time.Time `json:"captured_at"`
}

// ActivityRecord is an immutable tracked-time fact produced by the activity
// subsystem. The reporting engine never mutates records.
//
// ActivityOn is a DD/MM/YYYY calendar-date string and is authoritative for
// date-range filtering. It must never be empty or the literal "null"; records
// violating that are excluded from aggregation rather than failing it.
type ActivityRecord struct {
	ID               int64     `json:"id"`
	EmployeeID       int64     `json:"employee_id"`
	ProjectID        *int64    `json:"project_id,omitempty"`
	ClientID         *int64    `json:"client_id,omitempty"`
	IsInternal       bool      `json:"is_internal"`
	ConsumeTime      int64     `json:"consume_time"` // seconds, non-negative
	PerformanceScore *float64  `json:"performance_score,omitempty"`
	ActivityOn       string    `json:"activity_on"`
	ScreenshotIDs    []int64   `json:"screenshot_ids,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// APIKey represents an API key for authentication
type APIKey struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	KeyHash    string     `json:"-"` // Never expose the hash
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// SavedReport is the durable metadata row for a persisted report snapshot.
// The computed bundle itself lives out-of-band in blob storage under FileName.
//
// URL is a caller-chosen correlator. The system does not enforce uniqueness:
// two saves with the same url are both stored, and fetch returns the first
// match in insertion order. Rows are immutable once created.
type SavedReport struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"userId"`
	URL         string          `json:"url"`
	Name        string          `json:"name"`
	IncludeSS   bool            `json:"includeSS"`
	IncludeAL   bool            `json:"includeAL"`
	IncludePR   bool            `json:"includePR"`
	IncludeApps bool            `json:"includeApps"`
	Options     json.RawMessage `json:"options,omitempty"` // filter + grouping choice as submitted
	FileName    string          `json:"fileName"`          // blob key: "{userId}-{unixMilli}"
	CreatedAt   time.Time       `json:"createdAt"`
}
