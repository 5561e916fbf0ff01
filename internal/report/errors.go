package report

import "errors"

var (
	// ErrInvalidDateRange indicates a request date bound that does not parse
	// as DD/MM/YYYY or an end date earlier than the start date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrSnapshotNotFound indicates no saved report matches the requested URL,
	// or the metadata row exists but its blob is gone.
	ErrSnapshotNotFound = errors.New("saved report not found")

	// ErrPayloadStorage indicates the blob store rejected a payload write; no
	// metadata row exists for the attempt.
	ErrPayloadStorage = errors.New("report payload storage failed")
)
