package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

type fakeRecords struct {
	records []models.ActivityRecord
	err     error
	gotF    Filter
}

func (f *fakeRecords) FetchActivities(ctx context.Context, filter Filter) ([]models.ActivityRecord, error) {
	f.gotF = filter
	return f.records, f.err
}

type fakeRefs struct {
	projects    map[int64]XRef
	clients     map[int64]XRef
	employees   map[int64]EmployeeRef
	screenshots map[int64]XRef
	failOn      string
}

func (f *fakeRefs) ResolveProjects(ctx context.Context, ids []int64) (map[int64]XRef, error) {
	if f.failOn == "projects" {
		return nil, errors.New("boom")
	}
	return f.projects, nil
}

func (f *fakeRefs) ResolveClients(ctx context.Context, ids []int64) (map[int64]XRef, error) {
	if f.failOn == "clients" {
		return nil, errors.New("boom")
	}
	return f.clients, nil
}

func (f *fakeRefs) ResolveEmployees(ctx context.Context, ids []int64) (map[int64]EmployeeRef, error) {
	if f.failOn == "employees" {
		return nil, errors.New("boom")
	}
	return f.employees, nil
}

func (f *fakeRefs) ResolveScreenshots(ctx context.Context, ids []int64) (map[int64]XRef, error) {
	if f.failOn == "screenshots" {
		return nil, errors.New("boom")
	}
	return f.screenshots, nil
}

func testEngine(records []models.ActivityRecord, refs *fakeRefs) *Engine {
	return &Engine{
		Records: &fakeRecords{records: records},
		Refs:    refs,
		Now:     testNow,
	}
}

func fullRefs() *fakeRefs {
	return &fakeRefs{
		projects:    map[int64]XRef{10: {ID: 10, Name: "Atlas"}, 11: {ID: 11, Name: "Borealis"}},
		clients:     map[int64]XRef{20: {ID: 20, Name: "Acme"}, 21: {ID: 21, Name: "Globex"}},
		employees:   map[int64]EmployeeRef{1: {ID: 1, FirstName: "Ada", LastName: "Lovelace"}, 2: {ID: 2, FirstName: "Alan", LastName: "Turing"}},
		screenshots: map[int64]XRef{100: {ID: 100, Name: "desk"}},
	}
}

func TestGenerate_CrossFacetReconciliation(t *testing.T) {
	records := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(20), IsInternal: true, ConsumeTime: 10, PerformanceScore: float64Ptr(60), ActivityOn: "10/06/2024", ScreenshotIDs: []int64{100}},
		{ID: 2, EmployeeID: 1, ProjectID: int64Ptr(11), ClientID: int64Ptr(21), ConsumeTime: 20, PerformanceScore: float64Ptr(80), ActivityOn: "11/06/2024"},
		{ID: 3, EmployeeID: 2, ProjectID: nil, ClientID: nil, ConsumeTime: 30, ActivityOn: "11/06/2024"},
	}

	engine := testEngine(records, fullRefs())
	bundle, err := engine.Generate(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(bundle.Total) != 1 {
		t.Fatalf("total: got %d elements", len(bundle.Total))
	}
	total := bundle.Total[0]
	if total.ActCount != 3 || total.TotalHours != 60 || total.Internal != 10 || total.External != 50 {
		t.Errorf("total: got %+v", total)
	}
	if total.AvgPerformanceData == nil || *total.AvgPerformanceData != 70 {
		t.Errorf("total avg: got %v, want 70", total.AvgPerformanceData)
	}

	// Every single-dimension facet partitions the same subset, so the group
	// sums must reconcile with the grand total.
	sumProjects := int64(0)
	for _, g := range bundle.ByProjects {
		sumProjects += g.ActCount
	}
	sumClients := int64(0)
	for _, g := range bundle.ByClients {
		sumClients += g.ActCount
	}
	sumEmployees := int64(0)
	for _, g := range bundle.ByEmployees {
		sumEmployees += g.ActCount
	}
	sumDates := int64(0)
	for _, g := range bundle.ByDates {
		sumDates += g.ActCount
	}
	for name, sum := range map[string]int64{
		"byProjects": sumProjects, "byClients": sumClients,
		"byEmployees": sumEmployees, "byDates": sumDates,
	} {
		if sum != total.ActCount {
			t.Errorf("%s actCount sum %d does not reconcile with total %d", name, sum, total.ActCount)
		}
	}

	// byEP only covers records with both dimensions resolvable.
	epSum := int64(0)
	for _, g := range bundle.ByEP {
		for _, entry := range g.Projects {
			epSum += entry.ActCount
		}
	}
	if epSum != 2 {
		t.Errorf("byEP actCount sum: got %d, want 2", epSum)
	}
}

func TestGenerate_SingleDayBucketMatchesTotal(t *testing.T) {
	records := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(20), ConsumeTime: 3600, PerformanceScore: float64Ptr(80), ActivityOn: "01/01/2024"},
		{ID: 2, EmployeeID: 1, ProjectID: int64Ptr(10), ClientID: int64Ptr(20), IsInternal: true, ConsumeTime: 1800, PerformanceScore: float64Ptr(60), ActivityOn: "01/01/2024"},
	}

	engine := testEngine(records, fullRefs())
	bundle, err := engine.Generate(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(bundle.Total) != 1 {
		t.Fatalf("total: got %d elements", len(bundle.Total))
	}
	total := bundle.Total[0]
	if total.Internal != 1800 || total.External != 3600 || total.TotalHours != 5400 || total.ActCount != 2 {
		t.Errorf("total: got %+v", total)
	}
	if total.AvgPerformanceData == nil || *total.AvgPerformanceData != 70 {
		t.Errorf("total avg: got %v, want 70", total.AvgPerformanceData)
	}

	if len(bundle.ByDates) != 1 {
		t.Fatalf("byDates: got %d buckets", len(bundle.ByDates))
	}
	day := bundle.ByDates[0]
	if day.Date != "01/01/2024" {
		t.Errorf("byDates key: got %q", day.Date)
	}
	if day.Internal != total.Internal || day.External != total.External ||
		day.TotalHours != total.TotalHours || day.ActCount != total.ActCount {
		t.Errorf("byDates bucket %+v differs from total %+v", day.Totals, total)
	}
	if day.AvgPerformanceData == nil || *day.AvgPerformanceData != *total.AvgPerformanceData {
		t.Errorf("byDates avg: got %v, want %v", day.AvgPerformanceData, total.AvgPerformanceData)
	}
}

func TestGenerate_EmptySubset(t *testing.T) {
	engine := testEngine(nil, fullRefs())
	bundle, err := engine.Generate(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if bundle.Total == nil || len(bundle.Total) != 0 {
		t.Errorf("total must be present and empty, got %+v", bundle.Total)
	}
	if bundle.ByProjects == nil || bundle.ByClients == nil || bundle.ByEmployees == nil ||
		bundle.ByScreenshots == nil || bundle.ByEP == nil || bundle.ByDates == nil {
		t.Error("facet slices must be non-nil empty, not null")
	}
}

func TestGenerate_DroppedRecordsCounted(t *testing.T) {
	records := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ConsumeTime: 10, ActivityOn: "10/06/2024"},
		{ID: 2, EmployeeID: 1, ConsumeTime: 99, ActivityOn: "null"},
		{ID: 3, EmployeeID: 1, ConsumeTime: 99, ActivityOn: "not-a-date"},
	}

	engine := testEngine(records, fullRefs())
	bundle, err := engine.Generate(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if bundle.DroppedRecords != 2 {
		t.Errorf("dropped: got %d, want 2", bundle.DroppedRecords)
	}
	if len(bundle.Total) != 1 || bundle.Total[0].ActCount != 1 || bundle.Total[0].TotalHours != 10 {
		t.Errorf("dropped records leaked into totals: %+v", bundle.Total)
	}
}

func TestGenerate_InvalidDateRange(t *testing.T) {
	engine := testEngine(nil, fullRefs())
	_, err := engine.Generate(context.Background(), Filter{DateOne: "31/01/2024", DateTwo: "01/01/2024"})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("got %v, want ErrInvalidDateRange", err)
	}
}

func TestGenerate_RecordSourceError(t *testing.T) {
	engine := &Engine{
		Records: &fakeRecords{err: errors.New("db down")},
		Refs:    fullRefs(),
		Now:     testNow,
	}
	if _, err := engine.Generate(context.Background(), Filter{}); err == nil {
		t.Error("expected error when record source fails")
	}
}

func TestGenerate_ResolverErrorFailsWholeBundle(t *testing.T) {
	records := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ProjectID: int64Ptr(10), ActivityOn: "10/06/2024"},
	}

	for _, failOn := range []string{"projects", "clients", "employees", "screenshots"} {
		refs := fullRefs()
		refs.failOn = failOn
		engine := testEngine(records, refs)
		if _, err := engine.Generate(context.Background(), Filter{}); err == nil {
			t.Errorf("failOn=%s: expected error, got partial bundle", failOn)
		}
	}
}

func TestGenerate_FilterPassedThrough(t *testing.T) {
	records := &fakeRecords{}
	engine := &Engine{Records: records, Refs: fullRefs(), Now: testNow}

	filter := Filter{EmployeeIDs: []int64{1, 2}, ProjectIDs: []int64{}, DateOne: "01/06/2024"}
	if _, err := engine.Generate(context.Background(), filter); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(records.gotF.EmployeeIDs) != 2 {
		t.Errorf("employee ids not pushed down: %+v", records.gotF)
	}
	// Distinguishing empty from nil must survive the pushdown.
	if records.gotF.ProjectIDs == nil {
		t.Error("empty project set degraded to nil on pushdown")
	}
	if records.gotF.ClientIDs != nil {
		t.Error("absent client set became non-nil on pushdown")
	}
}

func TestGenerate_DefaultEndUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	records := []models.ActivityRecord{
		{ID: 1, EmployeeID: 1, ConsumeTime: 5, ActivityOn: "15/06/2024"},
		{ID: 2, EmployeeID: 1, ConsumeTime: 5, ActivityOn: "16/06/2024"},
	}
	engine := testEngine(records, fullRefs())
	engine.Now = func() time.Time { return fixed }

	bundle, err := engine.Generate(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(bundle.Total) != 1 || bundle.Total[0].ActCount != 1 {
		t.Errorf("future-dated record not excluded: %+v", bundle.Total)
	}
}
