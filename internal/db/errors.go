package db

import "errors"

// Sentinel errors for type-safe error checking
// Use errors.Is() instead of string comparison
var (
	// Employee errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnauthorized     = errors.New("unauthorized")

	// Saved report errors
	ErrSavedReportNotFound = errors.New("saved report not found")

	// API key errors
	ErrAPIKeyNotFound      = errors.New("API key not found")
	ErrAPIKeyLimitExceeded = errors.New("API key limit exceeded")
)
