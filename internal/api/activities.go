package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// ingestActivityRequest is one tracked-time fact posted by a tracker.
type ingestActivityRequest struct {
	ProjectID        *int64   `json:"project_id,omitempty"`
	ClientID         *int64   `json:"client_id,omitempty"`
	IsInternal       bool     `json:"is_internal"`
	ConsumeTime      int64    `json:"consume_time"`
	PerformanceScore *float64 `json:"performance_score,omitempty"`
	ActivityOn       string   `json:"activity_on"`
	ScreenshotIDs    []int64  `json:"screenshot_ids,omitempty"`
}

// handleIngestActivity records one activity for the authenticated employee.
// The date must be a well-formed DD/MM/YYYY string; ingest is the one place
// where malformed dates are rejected instead of tolerated.
func (s *Server) handleIngestActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	employeeID, ok := auth.GetEmployeeID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ingestActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := time.Parse("02/01/2006", req.ActivityOn); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid activity_on date, expected DD/MM/YYYY")
		return
	}
	if req.ConsumeTime < 0 {
		respondError(w, http.StatusBadRequest, "consume_time must be non-negative")
		return
	}

	rec, err := s.db.InsertActivity(r.Context(), models.ActivityRecord{
		EmployeeID:       employeeID,
		ProjectID:        req.ProjectID,
		ClientID:         req.ClientID,
		IsInternal:       req.IsInternal,
		ConsumeTime:      req.ConsumeTime,
		PerformanceScore: req.PerformanceScore,
		ActivityOn:       req.ActivityOn,
		ScreenshotIDs:    req.ScreenshotIDs,
	})
	if err != nil {
		log.Error("Failed to insert activity", "error", err, "employee_id", employeeID)
		respondError(w, http.StatusInternalServerError, "Failed to record activity")
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}
