package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// AuthenticatedRequest creates an HTTP request with employee authentication context
func AuthenticatedRequest(t *testing.T, method, url string, body interface{}, employeeID int64) *http.Request {
	t.Helper()

	var bodyReader *bytes.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyJSON)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	// Add employee ID to context (simulating auth middleware)
	return req.WithContext(auth.WithEmployeeID(req.Context(), employeeID))
}

// ParseJSONResponse decodes JSON response body into v
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}

// AssertStatus checks HTTP status code matches expected
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// CreateTestEmployee creates an employee in the database for testing
func CreateTestEmployee(t *testing.T, env *TestEnvironment, firstName, lastName, email string) *models.Employee {
	t.Helper()

	query := `
		INSERT INTO employees (first_name, last_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, first_name, last_name, email, created_at, updated_at
	`

	var emp models.Employee
	row := env.DB.QueryRow(env.Ctx, query, firstName, lastName, email)
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}

	return &emp
}

// CreateTestClient creates a client in the database for testing
func CreateTestClient(t *testing.T, env *TestEnvironment, name string) int64 {
	t.Helper()

	var id int64
	row := env.DB.QueryRow(env.Ctx, `INSERT INTO clients (name) VALUES ($1) RETURNING id`, name)
	if err := row.Scan(&id); err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}

	return id
}

// CreateTestProject creates a project in the database for testing.
// clientID may be nil for projects with no client.
func CreateTestProject(t *testing.T, env *TestEnvironment, name string, clientID *int64) int64 {
	t.Helper()

	var id int64
	row := env.DB.QueryRow(env.Ctx, `INSERT INTO projects (name, client_id) VALUES ($1, $2) RETURNING id`, name, clientID)
	if err := row.Scan(&id); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return id
}

// CreateTestScreenshot creates a screenshot row in the database for testing
func CreateTestScreenshot(t *testing.T, env *TestEnvironment, employeeID int64, title string) int64 {
	t.Helper()

	var id int64
	row := env.DB.QueryRow(env.Ctx,
		`INSERT INTO screenshots (employee_id, title) VALUES ($1, $2) RETURNING id`,
		employeeID, title)
	if err := row.Scan(&id); err != nil {
		t.Fatalf("failed to create test screenshot: %v", err)
	}

	return id
}

// TestActivity describes an activity row to seed for testing
type TestActivity struct {
	EmployeeID       int64
	ProjectID        *int64
	ClientID         *int64
	IsInternal       bool
	ConsumeTime      int64
	PerformanceScore *float64
	ActivityOn       string
	ScreenshotIDs    []int64
}

// CreateTestActivity inserts an activity row for testing and returns its id
func CreateTestActivity(t *testing.T, env *TestEnvironment, a TestActivity) int64 {
	t.Helper()

	rec, err := env.DB.InsertActivity(env.Ctx, models.ActivityRecord{
		EmployeeID:       a.EmployeeID,
		ProjectID:        a.ProjectID,
		ClientID:         a.ClientID,
		IsInternal:       a.IsInternal,
		ConsumeTime:      a.ConsumeTime,
		PerformanceScore: a.PerformanceScore,
		ActivityOn:       a.ActivityOn,
		ScreenshotIDs:    a.ScreenshotIDs,
	})
	if err != nil {
		t.Fatalf("failed to create test activity: %v", err)
	}

	return rec.ID
}

// CreateTestAPIKey creates an API key in the database for testing
func CreateTestAPIKey(t *testing.T, env *TestEnvironment, employeeID int64, keyHash, name string) int64 {
	t.Helper()

	query := `
		INSERT INTO api_keys (employee_id, key_hash, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`

	var id int64
	row := env.DB.QueryRow(env.Ctx, query, employeeID, keyHash, name)
	if err := row.Scan(&id); err != nil {
		t.Fatalf("failed to create test API key: %v", err)
	}

	return id
}

// Int64Ptr returns a pointer to v. Seed helpers take nullable ids as pointers.
func Int64Ptr(v int64) *int64 { return &v }

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
