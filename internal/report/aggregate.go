package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/models"
)

var tracer = otel.Tracer("github.com/clockwise-hq/clockwise-web/internal/report")

// RecordSource fetches the candidate activity records for one request.
// Implementations push the id-set constraints down to the store; the engine
// re-applies them anyway, so a source that over-fetches is still correct.
type RecordSource interface {
	FetchActivities(ctx context.Context, f Filter) ([]models.ActivityRecord, error)
}

// ReferenceResolver batch-resolves ids to display names. Ids that do not
// resolve are simply absent from the returned map.
type ReferenceResolver interface {
	ResolveProjects(ctx context.Context, ids []int64) (map[int64]XRef, error)
	ResolveClients(ctx context.Context, ids []int64) (map[int64]XRef, error)
	ResolveEmployees(ctx context.Context, ids []int64) (map[int64]EmployeeRef, error)
	ResolveScreenshots(ctx context.Context, ids []int64) (map[int64]XRef, error)
}

// Engine computes report bundles.
type Engine struct {
	Records RecordSource
	Refs    ReferenceResolver

	// Now is the clock used for the default end of the date window.
	// Nil means time.Now.
	Now func() time.Time
}

// Generate runs one aggregation: select the record subset, resolve the
// reference names it touches, and compute every facet over it in parallel.
// Any failure fails the whole bundle; there are no partial results.
func (e *Engine) Generate(ctx context.Context, f Filter) (*Bundle, error) {
	ctx, span := tracer.Start(ctx, "report.Generate")
	defer span.End()

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	pred, err := BuildPredicate(f, now())
	if err != nil {
		return nil, err
	}

	records, err := e.Records.FetchActivities(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	subset := make([]models.ActivityRecord, 0, len(records))
	var dropped int64
	for _, rec := range records {
		switch pred.Apply(rec) {
		case Keep:
			subset = append(subset, rec)
		case RejectBadDate:
			dropped++
			logger.Ctx(ctx).Warn("activity excluded: malformed date",
				"activity_id", rec.ID, "activity_on", rec.ActivityOn)
		}
	}
	span.SetAttributes(
		attribute.Int("report.subset_size", len(subset)),
		attribute.Int64("report.dropped_records", dropped),
	)

	refs, err := e.resolveReferences(ctx, subset)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{DroppedRecords: dropped}

	// Facets reduce the same immutable subset independently, so they run
	// concurrently. Each writes its own bundle field; the mutex covers the
	// writes rather than relying on field disjointness.
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	run := func(facet func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facet()
		}()
	}

	run(func() {
		groups := rollupProjects(subset, refs.projects)
		mu.Lock()
		bundle.ByProjects = groups
		mu.Unlock()
	})
	run(func() {
		groups := rollupClients(subset, refs.clients)
		mu.Lock()
		bundle.ByClients = groups
		mu.Unlock()
	})
	run(func() {
		groups := rollupEmployees(subset, refs.employees)
		mu.Lock()
		bundle.ByEmployees = groups
		mu.Unlock()
	})
	run(func() {
		groups := rollupScreenshots(subset, refs.screenshots)
		mu.Lock()
		bundle.ByScreenshots = groups
		mu.Unlock()
	})
	run(func() {
		groups := rollupEP(subset, refs.employees, refs.projects, refs.clients)
		mu.Lock()
		bundle.ByEP = groups
		mu.Unlock()
	})
	run(func() {
		groups := rollupDates(subset)
		mu.Lock()
		bundle.ByDates = groups
		mu.Unlock()
	})
	run(func() {
		total := rollupTotal(subset)
		mu.Lock()
		bundle.Total = total
		mu.Unlock()
	})
	wg.Wait()

	return bundle, nil
}

// resolvedRefs holds the name maps for every dimension the subset touches.
type resolvedRefs struct {
	projects    map[int64]XRef
	clients     map[int64]XRef
	employees   map[int64]EmployeeRef
	screenshots map[int64]XRef
}

// resolveReferences gathers the distinct ids present in the subset and looks
// each dimension up in one batch, the four lookups running concurrently.
// Any lookup failure fails the request.
func (e *Engine) resolveReferences(ctx context.Context, subset []models.ActivityRecord) (*resolvedRefs, error) {
	ctx, span := tracer.Start(ctx, "report.resolveReferences")
	defer span.End()

	var (
		projectIDs    = map[int64]struct{}{}
		clientIDs     = map[int64]struct{}{}
		employeeIDs   = map[int64]struct{}{}
		screenshotIDs = map[int64]struct{}{}
	)
	for _, rec := range subset {
		employeeIDs[rec.EmployeeID] = struct{}{}
		if rec.ProjectID != nil {
			projectIDs[*rec.ProjectID] = struct{}{}
		}
		if rec.ClientID != nil {
			clientIDs[*rec.ClientID] = struct{}{}
		}
		for _, id := range rec.ScreenshotIDs {
			screenshotIDs[id] = struct{}{}
		}
	}

	refs := &resolvedRefs{}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	errCh := make(chan error, 4)
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errCh <- fmt.Errorf("resolve %s: %w", name, err)
			}
		}()
	}

	run("projects", func() error {
		m, err := e.Refs.ResolveProjects(ctx, sortedKeys(projectIDs))
		if err != nil {
			return err
		}
		mu.Lock()
		refs.projects = m
		mu.Unlock()
		return nil
	})
	run("clients", func() error {
		m, err := e.Refs.ResolveClients(ctx, sortedKeys(clientIDs))
		if err != nil {
			return err
		}
		mu.Lock()
		refs.clients = m
		mu.Unlock()
		return nil
	})
	run("employees", func() error {
		m, err := e.Refs.ResolveEmployees(ctx, sortedKeys(employeeIDs))
		if err != nil {
			return err
		}
		mu.Lock()
		refs.employees = m
		mu.Unlock()
		return nil
	})
	run("screenshots", func() error {
		m, err := e.Refs.ResolveScreenshots(ctx, sortedKeys(screenshotIDs))
		if err != nil {
			return err
		}
		mu.Lock()
		refs.screenshots = m
		mu.Unlock()
		return nil
	})

	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return refs, nil
}

func sortedKeys(set map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// accumulator folds records into one group's measures. Performance scores are
// summed as decimals so the average does not drift with accumulation order.
type accumulator struct {
	internal  int64
	external  int64
	actCount  int64
	hours     int64
	perfSum   decimal.Decimal
	perfCount int64
}

func (a *accumulator) add(rec models.ActivityRecord) {
	a.actCount++
	if rec.IsInternal {
		a.internal += rec.ConsumeTime
	} else {
		a.external += rec.ConsumeTime
	}
	a.hours += rec.ConsumeTime
	if rec.PerformanceScore != nil {
		a.perfSum = a.perfSum.Add(decimal.NewFromFloat(*rec.PerformanceScore))
		a.perfCount++
	}
}

func (a *accumulator) totals() Totals {
	t := Totals{
		Internal:   a.internal,
		External:   a.external,
		ActCount:   a.actCount,
		TotalHours: a.hours,
	}
	if a.perfCount > 0 {
		avg := a.perfSum.Div(decimal.NewFromInt(a.perfCount)).InexactFloat64()
		t.AvgPerformanceData = &avg
	}
	return t
}
