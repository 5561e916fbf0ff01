package report

import (
	"testing"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

func float64Ptr(v float64) *float64 { return &v }

func TestRollupProjects_UnresolvedBucket(t *testing.T) {
	refs := map[int64]XRef{
		1: {ID: 1, Name: "Atlas"},
	}
	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(1), ConsumeTime: 10, ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 1, ProjectID: nil, ConsumeTime: 20, ActivityOn: "01/06/2024"},
		// Dangling reference: project 99 no longer exists.
		{ID: 3, EmployeeID: 2, ProjectID: int64Ptr(99), ConsumeTime: 30, ActivityOn: "01/06/2024"},
	}

	groups := rollupProjects(subset, refs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}

	// Named groups sort ahead of the unresolved bucket.
	if groups[0].ProjectName != "Atlas" || groups[0].Unresolved {
		t.Errorf("first group: got %+v, want Atlas", groups[0])
	}
	if groups[0].TotalHours != 10 || groups[0].ActCount != 1 {
		t.Errorf("Atlas totals: got %+v", groups[0].Totals)
	}

	// Null and dangling ids fold into one unresolved group.
	last := groups[1]
	if !last.Unresolved || last.ProjectName != "unresolved" || last.ProjectID != nil {
		t.Errorf("unresolved group: got %+v", last)
	}
	if last.ActCount != 2 || last.TotalHours != 50 {
		t.Errorf("unresolved totals: got %+v", last.Totals)
	}
}

func TestRollupClients_DistinctClientsNeverMerge(t *testing.T) {
	// Two clients sharing a display name must stay separate groups.
	refs := map[int64]XRef{
		1: {ID: 1, Name: "Acme"},
		2: {ID: 2, Name: "Acme"},
	}
	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ClientID: int64Ptr(1), ConsumeTime: 5, ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 1, ClientID: int64Ptr(2), ConsumeTime: 7, ActivityOn: "01/06/2024"},
	}

	groups := rollupClients(subset, refs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if *groups[0].ClientID != 1 || *groups[1].ClientID != 2 {
		t.Errorf("expected id tiebreak ordering, got %+v", groups)
	}
}

func TestRollupEmployees_Measures(t *testing.T) {
	refs := map[int64]EmployeeRef{
		1: {ID: 1, FirstName: "Ada", LastName: "Lovelace"},
		2: {ID: 2, FirstName: "Alan", LastName: "Turing"},
	}
	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, IsInternal: true, ConsumeTime: 100, PerformanceScore: float64Ptr(60), ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 1, IsInternal: false, ConsumeTime: 200, PerformanceScore: float64Ptr(80), ActivityOn: "02/06/2024"},
		{ID: 3, EmployeeID: 2, IsInternal: false, ConsumeTime: 50, ActivityOn: "01/06/2024"},
	}

	groups := rollupEmployees(subset, refs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	ada := groups[0]
	if ada.FirstName != "Ada" || ada.LastName != "Lovelace" {
		t.Errorf("name: got %q %q", ada.FirstName, ada.LastName)
	}
	if ada.Internal != 100 || ada.External != 200 || ada.ActCount != 2 || ada.TotalHours != 300 {
		t.Errorf("ada totals: got %+v", ada.Totals)
	}
	if ada.AvgPerformanceData == nil || *ada.AvgPerformanceData != 70 {
		t.Errorf("ada avg: got %v, want 70", ada.AvgPerformanceData)
	}

	// No performance samples: the average is absent, never zero.
	alan := groups[1]
	if alan.AvgPerformanceData != nil {
		t.Errorf("alan avg: got %v, want nil", *alan.AvgPerformanceData)
	}
}

func TestRollupDates_RawStringBuckets(t *testing.T) {
	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ConsumeTime: 1, ActivityOn: "2/06/2024"},
		{ID: 2, EmployeeID: 1, ConsumeTime: 2, ActivityOn: "02/06/2024"},
		{ID: 3, EmployeeID: 1, ConsumeTime: 4, ActivityOn: "01/06/2024"},
	}

	groups := rollupDates(subset)
	if len(groups) != 3 {
		t.Fatalf("two spellings of one day must stay distinct buckets, got %d groups", len(groups))
	}

	// Ordered by parsed date; same-day spellings tiebreak on the raw string.
	if groups[0].Date != "01/06/2024" {
		t.Errorf("first bucket: got %q", groups[0].Date)
	}
	if groups[1].Date != "02/06/2024" || groups[2].Date != "2/06/2024" {
		t.Errorf("same-day ordering: got %q, %q", groups[1].Date, groups[2].Date)
	}
}

func TestRollupEP_SkipsMissingDimensions(t *testing.T) {
	employees := map[int64]EmployeeRef{1: {ID: 1, FirstName: "Ada"}}
	projects := map[int64]XRef{10: {ID: 10, Name: "Atlas"}}
	clients := map[int64]XRef{20: {ID: 20, Name: "Acme"}}

	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(20), ConsumeTime: 10, ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 1, ProjectID: nil, ClientID: int64Ptr(20), ConsumeTime: 20, ActivityOn: "01/06/2024"},
		{ID: 3, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: nil, ConsumeTime: 30, ActivityOn: "01/06/2024"},
		{ID: 4, EmployeeID: 1, ProjectID: int64Ptr(99), ClientID: int64Ptr(20), ConsumeTime: 40, ActivityOn: "01/06/2024"},
	}

	groups := rollupEP(subset, employees, projects, clients)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}
	if len(groups[0].Projects) != 1 {
		t.Fatalf("expected 1 nested entry, got %+v", groups[0].Projects)
	}
	e := groups[0].Projects[0]
	if e.ProjectName != "Atlas" || e.ClientName != "Acme" || e.ActCount != 1 || e.TotalHours != 10 {
		t.Errorf("got %+v", e)
	}
}

func TestRollupEP_DistinctClientsStaySeparate(t *testing.T) {
	employees := map[int64]EmployeeRef{1: {ID: 1, FirstName: "Ada"}}
	projects := map[int64]XRef{10: {ID: 10, Name: "Atlas"}}
	clients := map[int64]XRef{20: {ID: 20, Name: "Acme"}, 21: {ID: 21, Name: "Globex"}}

	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(20), ConsumeTime: 10, ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(21), ConsumeTime: 20, ActivityOn: "01/06/2024"},
	}

	groups := rollupEP(subset, employees, projects, clients)
	if len(groups) != 1 {
		t.Fatalf("expected 1 employee group, got %d", len(groups))
	}
	entries := groups[0].Projects
	if len(entries) != 2 {
		t.Fatalf("same project with distinct clients must not merge, got %+v", entries)
	}
	if entries[0].ClientName != "Acme" || entries[1].ClientName != "Globex" {
		t.Errorf("nested ordering: got %+v", entries)
	}
}

func TestRollupScreenshots_GroupsByTitle(t *testing.T) {
	screenshots := map[int64]XRef{100: {ID: 100, Name: "desk"}, 101: {ID: 101, Name: "ide"}}

	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ConsumeTime: 10, ActivityOn: "01/06/2024", ScreenshotIDs: []int64{100, 101}},
		{ID: 2, EmployeeID: 1, ConsumeTime: 10, ActivityOn: "01/06/2024", ScreenshotIDs: []int64{100, 999}},
		// No screenshots: contributes to no bucket here.
		{ID: 3, EmployeeID: 2, ConsumeTime: 99, ActivityOn: "01/06/2024"},
	}

	groups := rollupScreenshots(subset, screenshots)
	if len(groups) != 2 {
		t.Fatalf("expected 2 title buckets, got %d: %+v", len(groups), groups)
	}
	desk := groups[0]
	if desk.Title != "desk" || desk.ActCount != 2 || desk.TotalHours != 20 {
		t.Errorf("desk bucket: got %+v (dangling id 999 must not count)", desk)
	}
	ide := groups[1]
	if ide.Title != "ide" || ide.ActCount != 1 || ide.TotalHours != 10 {
		t.Errorf("ide bucket: got %+v", ide)
	}
}

func TestRollupTotal_EmptySubset(t *testing.T) {
	total := rollupTotal(nil)
	if total == nil {
		t.Fatal("total must be a non-nil slice")
	}
	if len(total) != 0 {
		t.Errorf("empty subset must produce no total element, got %+v", total)
	}
}

func TestRollupTotal_SingleElement(t *testing.T) {
	subset := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, IsInternal: true, ConsumeTime: 10, PerformanceScore: float64Ptr(50), ActivityOn: "01/06/2024"},
		{ID: 2, EmployeeID: 2, ConsumeTime: 15, PerformanceScore: float64Ptr(90), ActivityOn: "01/06/2024"},
	}

	total := rollupTotal(subset)
	if len(total) != 1 {
		t.Fatalf("expected exactly one total element, got %d", len(total))
	}
	got := total[0]
	if got.Internal != 10 || got.External != 15 || got.ActCount != 2 || got.TotalHours != 25 {
		t.Errorf("got %+v", got)
	}
	if got.AvgPerformanceData == nil || *got.AvgPerformanceData != 70 {
		t.Errorf("avg: got %v, want 70", got.AvgPerformanceData)
	}
}
