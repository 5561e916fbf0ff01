package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

type fakeMetadata struct {
	rows      []models.SavedReport
	insertErr error
	calls     *[]string
}

func (f *fakeMetadata) InsertSavedReport(ctx context.Context, r models.SavedReport) (*models.SavedReport, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, "insert")
	}
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	r.ID = "row-1"
	r.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, r)
	return &r, nil
}

func (f *fakeMetadata) FindSavedReportByURL(ctx context.Context, url string) (*models.SavedReport, error) {
	for i := range f.rows {
		if f.rows[i].URL == url {
			return &f.rows[i], nil
		}
	}
	return nil, errors.New("saved report not found")
}

type fakeBlobs struct {
	objects map[string][]byte
	putErr  error
	calls   *[]string
}

var errFakeBlobMissing = errors.New("object not found")

func (f *fakeBlobs) Put(ctx context.Context, key string, data []byte) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "put")
	}
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errFakeBlobMissing
	}
	return data, nil
}

func (f *fakeBlobs) NotFound(err error) bool {
	return errors.Is(err, errFakeBlobMissing)
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestSnapshots_SaveWritesBlobBeforeRow(t *testing.T) {
	var calls []string
	meta := &fakeMetadata{calls: &calls}
	blobs := &fakeBlobs{calls: &calls}
	snaps := &Snapshots{DB: meta, Blobs: blobs, Now: fixedClock}

	row, err := snaps.Save(context.Background(), SaveRequest{
		UserID: 7,
		URL:    "q2-report",
		Name:   "Q2",
		Bundle: &Bundle{Total: []Totals{}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(calls) != 2 || calls[0] != "put" || calls[1] != "insert" {
		t.Errorf("call order: got %v, want [put insert]", calls)
	}

	wantFile := "7-1718452800000"
	if row.FileName != wantFile {
		t.Errorf("file name: got %q, want %q", row.FileName, wantFile)
	}
	if _, ok := blobs.objects["reports/"+wantFile+".json"]; !ok {
		t.Errorf("payload object missing, have %v", blobs.objects)
	}
}

func TestSnapshots_SaveBlobFailureWritesNoRow(t *testing.T) {
	meta := &fakeMetadata{}
	blobs := &fakeBlobs{putErr: errors.New("storage down")}
	snaps := &Snapshots{DB: meta, Blobs: blobs, Now: fixedClock}

	_, err := snaps.Save(context.Background(), SaveRequest{
		UserID: 7,
		URL:    "q2-report",
		Bundle: &Bundle{},
	})
	if !errors.Is(err, ErrPayloadStorage) {
		t.Fatalf("got %v, want ErrPayloadStorage", err)
	}
	if len(meta.rows) != 0 {
		t.Errorf("metadata row written despite blob failure: %+v", meta.rows)
	}
}

func TestSnapshots_SaveInsertFailureSurfaces(t *testing.T) {
	meta := &fakeMetadata{insertErr: errors.New("db down")}
	blobs := &fakeBlobs{}
	snaps := &Snapshots{DB: meta, Blobs: blobs, Now: fixedClock}

	_, err := snaps.Save(context.Background(), SaveRequest{UserID: 7, URL: "u", Bundle: &Bundle{}})
	if err == nil {
		t.Fatal("expected error")
	}
	// The orphaned payload object stays behind for the cleanup job.
	if len(blobs.objects) != 1 {
		t.Errorf("expected orphaned payload object, have %v", blobs.objects)
	}
}

func TestSnapshots_SaveRequiresPayload(t *testing.T) {
	snaps := &Snapshots{DB: &fakeMetadata{}, Blobs: &fakeBlobs{}, Now: fixedClock}
	if _, err := snaps.Save(context.Background(), SaveRequest{UserID: 7, URL: "u"}); err == nil {
		t.Error("expected error for missing payload")
	}
}

func TestSnapshots_FetchRoundtrip(t *testing.T) {
	meta := &fakeMetadata{}
	blobs := &fakeBlobs{}
	snaps := &Snapshots{DB: meta, Blobs: blobs, Now: fixedClock}

	avg := 70.0
	bundle := &Bundle{
		Total: []Totals{{ActCount: 3, TotalHours: 60, Internal: 1, External: 2, AvgPerformanceData: &avg}},
	}
	if _, err := snaps.Save(context.Background(), SaveRequest{UserID: 7, URL: "q2", Name: "Q2", Bundle: bundle}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := snaps.Fetch(context.Background(), "q2")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Meta.Name != "Q2" || snap.Meta.UserID != 7 {
		t.Errorf("meta: got %+v", snap.Meta)
	}

	var got Bundle
	if err := json.Unmarshal(snap.Payload, &got); err != nil {
		t.Fatalf("payload unmarshal: %v", err)
	}
	if len(got.Total) != 1 || got.Total[0].ActCount != 3 {
		t.Errorf("payload: got %+v", got)
	}
	if got.Total[0].AvgPerformanceData == nil || *got.Total[0].AvgPerformanceData != 70 {
		t.Errorf("avg did not survive the roundtrip: %+v", got.Total[0])
	}
}

func TestSnapshots_FetchMissingBlobIsNotFound(t *testing.T) {
	meta := &fakeMetadata{}
	blobs := &fakeBlobs{}
	snaps := &Snapshots{DB: meta, Blobs: blobs, Now: fixedClock}

	if _, err := snaps.Save(context.Background(), SaveRequest{UserID: 7, URL: "q2", Bundle: &Bundle{}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Simulate a reaped payload object.
	blobs.objects = map[string][]byte{}

	_, err := snaps.Fetch(context.Background(), "q2")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("got %v, want ErrSnapshotNotFound", err)
	}
}

func TestSnapshots_FetchUnknownURL(t *testing.T) {
	snaps := &Snapshots{DB: &fakeMetadata{}, Blobs: &fakeBlobs{}, Now: fixedClock}
	if _, err := snaps.Fetch(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown url")
	}
}
