package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// MetadataStore persists saved-report rows.
type MetadataStore interface {
	InsertSavedReport(ctx context.Context, r models.SavedReport) (*models.SavedReport, error)
	// FindSavedReportByURL returns the earliest-stored report for a URL, or
	// a not-found error. URLs are not unique; first match wins.
	FindSavedReportByURL(ctx context.Context, url string) (*models.SavedReport, error)
}

// BlobStore persists report payloads by object key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	NotFound(err error) bool
}

// SaveRequest names a generated bundle and ties it to the saving user.
type SaveRequest struct {
	UserID      int64           `json:"userId"`
	URL         string          `json:"url"`
	Name        string          `json:"name"`
	IncludeSS   bool            `json:"includeSS"`
	IncludeAL   bool            `json:"includeAL"`
	IncludePR   bool            `json:"includePR"`
	IncludeApps bool            `json:"includeApps"`
	Options     json.RawMessage `json:"options,omitempty"`
	Bundle      *Bundle         `json:"report"`
}

// Snapshot is a fetched saved report: its metadata row plus the stored
// payload exactly as it was written.
type Snapshot struct {
	Meta    models.SavedReport `json:"data"`
	Payload json.RawMessage    `json:"report"`
}

// Snapshots stores and retrieves saved report bundles. The payload lives in
// blob storage under a per-save key; the row in the database only points at
// it.
type Snapshots struct {
	DB    MetadataStore
	Blobs BlobStore

	// Now drives file-name generation. Nil means time.Now.
	Now func() time.Time
}

// Save writes the bundle payload to blob storage and then records the
// metadata row. The blob write goes first: a crash between the two leaves an
// orphaned object, never a row pointing at nothing.
func (s *Snapshots) Save(ctx context.Context, req SaveRequest) (*models.SavedReport, error) {
	if req.Bundle == nil {
		return nil, errors.New("save: missing report payload")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	fileName := fmt.Sprintf("%d-%d", req.UserID, now().UnixMilli())

	payload, err := json.Marshal(req.Bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal report payload: %w", err)
	}
	if err := s.Blobs.Put(ctx, objectKey(fileName), payload); err != nil {
		logger.Ctx(ctx).Error("report payload write failed", "file_name", fileName, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPayloadStorage, err)
	}

	row, err := s.DB.InsertSavedReport(ctx, models.SavedReport{
		UserID:      req.UserID,
		URL:         req.URL,
		Name:        req.Name,
		IncludeSS:   req.IncludeSS,
		IncludeAL:   req.IncludeAL,
		IncludePR:   req.IncludePR,
		IncludeApps: req.IncludeApps,
		Options:     req.Options,
		FileName:    fileName,
	})
	if err != nil {
		// The payload object is already durable. Leave it for the cleanup
		// job rather than attempting a delete that can also fail.
		logger.Ctx(ctx).Error("saved report row insert failed after blob write",
			"file_name", fileName, "error", err)
		return nil, fmt.Errorf("insert saved report: %w", err)
	}
	return row, nil
}

// Fetch resolves a URL to its stored payload. A URL with no row, or a row
// whose payload object is missing, both surface as ErrSnapshotNotFound.
func (s *Snapshots) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	row, err := s.DB.FindSavedReportByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	payload, err := s.Blobs.Get(ctx, objectKey(row.FileName))
	if err != nil {
		if s.Blobs.NotFound(err) {
			logger.Ctx(ctx).Warn("saved report payload missing",
				"report_id", row.ID, "file_name", row.FileName)
			return nil, fmt.Errorf("report %s: %w", row.ID, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("read report payload: %w", err)
	}

	return &Snapshot{Meta: *row, Payload: payload}, nil
}

func objectKey(fileName string) string {
	return "reports/" + fileName + ".json"
}
