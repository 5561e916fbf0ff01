package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/db"
	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/models"
	"github.com/clockwise-hq/clockwise-web/internal/report"
)

// handleGenerateReport computes an aggregation bundle for the posted filter.
//
// Id lists arrive as arrays of {"_id": n} objects; an absent list means the
// dimension is unconstrained while a present empty list matches nothing.
// Dates are DD/MM/YYYY, both bounds inclusive.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	var req report.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	filter := report.Filter{
		EmployeeIDs: report.IDs(req.Employees),
		ProjectIDs:  report.IDs(req.Projects),
		ClientIDs:   report.IDs(req.Clients),
		DateOne:     req.DateOne,
		DateTwo:     req.DateTwo,
	}

	bundle, err := s.engine.Generate(r.Context(), filter)
	if err != nil {
		if errors.Is(err, report.ErrInvalidDateRange) {
			respondError(w, http.StatusBadRequest, "Invalid date range")
			return
		}
		log.Error("Failed to generate report", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	respondJSON(w, http.StatusOK, bundle)
}

// handleSaveReport persists a generated bundle as a named snapshot. The
// payload goes to blob storage first; the metadata row only lands once the
// payload is durable.
func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	employeeID, ok := auth.GetEmployeeID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req report.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "Missing url")
		return
	}
	if req.Bundle == nil {
		respondError(w, http.StatusBadRequest, "Missing report payload")
		return
	}

	// The saving user is always the authenticated one; a userId in the body
	// is ignored.
	req.UserID = employeeID

	row, err := s.snapshots.Save(r.Context(), req)
	if err != nil {
		log.Error("Failed to save report", "error", err, "employee_id", employeeID)
		if errors.Is(err, report.ErrPayloadStorage) {
			respondError(w, http.StatusServiceUnavailable, "Report storage unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to save report")
		return
	}

	respondJSON(w, http.StatusCreated, row)
}

// fetchReportRequest is the body of a snapshot fetch.
type fetchReportRequest struct {
	URL string `json:"url"`
}

// handleFetchReport resolves a saved-report URL to its stored payload.
func (s *Server) handleFetchReport(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	var req fetchReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "Missing url")
		return
	}

	snap, err := s.snapshots.Fetch(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, db.ErrSavedReportNotFound) || errors.Is(err, report.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Error("Failed to fetch report", "error", err, "url", req.URL)
		respondError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// handleListSavedReports returns the caller's saved reports, newest first.
func (s *Server) handleListSavedReports(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	employeeID, ok := auth.GetEmployeeID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reports, err := s.db.ListSavedReports(r.Context(), employeeID)
	if err != nil {
		log.Error("Failed to list saved reports", "error", err, "employee_id", employeeID)
		respondError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if reports == nil {
		reports = []models.SavedReport{}
	}

	respondJSON(w, http.StatusOK, reports)
}
