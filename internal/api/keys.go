package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/db"
	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// CreateAPIKeyRequest is the request body for creating an API key
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKeyResponse is the response for creating an API key
type CreateAPIKeyResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"` // Only returned once
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// HandleCreateAPIKey creates a new API key for the authenticated employee
func HandleCreateAPIKey(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		employeeID, ok := auth.GetEmployeeID(ctx)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateAPIKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" {
			req.Name = "API Key"
		}

		apiKey, keyHash, err := auth.GenerateAPIKey()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate API key")
			return
		}

		keyID, createdAt, err := database.CreateAPIKey(ctx, employeeID, keyHash, req.Name)
		if err != nil {
			logger.Ctx(ctx).Error("Failed to create API key", "error", err, "employee_id", employeeID)
			respondError(w, http.StatusInternalServerError, "Failed to create API key")
			return
		}

		// Return response (key is only shown once)
		respondJSON(w, http.StatusOK, CreateAPIKeyResponse{
			ID:        keyID,
			Key:       apiKey,
			Name:      req.Name,
			CreatedAt: createdAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// HandleListAPIKeys lists all API keys for the authenticated employee
func HandleListAPIKeys(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		employeeID, ok := auth.GetEmployeeID(ctx)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		keys, err := database.ListAPIKeys(ctx, employeeID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to list API keys")
			return
		}

		// Return empty array if no keys
		if keys == nil {
			keys = []models.APIKey{}
		}

		respondJSON(w, http.StatusOK, keys)
	}
}

// HandleDeleteAPIKey deletes an API key
func HandleDeleteAPIKey(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		employeeID, ok := auth.GetEmployeeID(ctx)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		keyIDStr := chi.URLParam(r, "id")
		keyID, err := strconv.ParseInt(keyIDStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid key ID")
			return
		}

		if err := database.DeleteAPIKey(ctx, employeeID, keyID); err != nil {
			respondError(w, http.StatusNotFound, "API key not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
