package report

import (
	"fmt"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// dateLayout is the wire format for activity dates. Parsing with time.Parse is
// locale independent; Go accepts both padded ("01/02/2024") and unpadded
// ("1/2/2024") day and month fields, matching what the trackers have written
// historically.
const dateLayout = "02/01/2006"

// Filter holds the optional query parameters for one aggregation request.
//
// A nil id slice means the dimension is unconstrained; a non-nil empty slice
// means "match nothing". The two are semantically distinct and must be
// preserved through request decoding.
type Filter struct {
	EmployeeIDs []int64
	ProjectIDs  []int64
	ClientIDs   []int64
	DateOne     string // inclusive start, DD/MM/YYYY; empty means unbounded
	DateTwo     string // inclusive end, DD/MM/YYYY; empty means today
}

// Verdict is the outcome of testing one record against a predicate.
type Verdict int

const (
	// Keep admits the record into the working subset.
	Keep Verdict = iota
	// Reject excludes the record because a filter constraint failed.
	Reject
	// RejectBadDate excludes the record because its activity date is empty,
	// a null sentinel, or unparsable. Callers count these separately so the
	// loss is observable without failing the whole aggregation.
	RejectBadDate
)

// Predicate is a composed, per-request record filter. Build it once and apply
// it to every candidate record; it holds no mutable state and is safe for
// concurrent use.
type Predicate struct {
	keepEmployee func(int64) bool
	keepProject  func(*int64) bool
	keepClient   func(*int64) bool
	start        time.Time
	end          time.Time
}

// BuildPredicate translates a Filter into a single composed predicate.
//
// The date window is always enforced: DateOne defaults to the unix epoch
// (before any real record) and DateTwo to now's calendar date, both inclusive.
// Returns ErrInvalidDateRange when a caller-supplied bound does not parse or
// the bounds are inverted.
func BuildPredicate(f Filter, now time.Time) (*Predicate, error) {
	start := time.Unix(0, 0).UTC()
	if f.DateOne != "" {
		parsed, err := time.Parse(dateLayout, f.DateOne)
		if err != nil {
			return nil, fmt.Errorf("dateOne %q: %w", f.DateOne, ErrInvalidDateRange)
		}
		start = parsed
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if f.DateTwo != "" {
		parsed, err := time.Parse(dateLayout, f.DateTwo)
		if err != nil {
			return nil, fmt.Errorf("dateTwo %q: %w", f.DateTwo, ErrInvalidDateRange)
		}
		end = parsed
	}

	if end.Before(start) {
		return nil, fmt.Errorf("dateTwo %q before dateOne %q: %w", f.DateTwo, f.DateOne, ErrInvalidDateRange)
	}

	return &Predicate{
		keepEmployee: idSetPredicate(f.EmployeeIDs),
		keepProject:  nullableIDSetPredicate(f.ProjectIDs),
		keepClient:   nullableIDSetPredicate(f.ClientIDs),
		start:        start,
		end:          end,
	}, nil
}

// Apply tests one record. Constraint checks run before date parsing so an
// out-of-scope record with a mangled date is a plain Reject, not a RejectBadDate.
func (p *Predicate) Apply(rec models.ActivityRecord) Verdict {
	if !p.keepEmployee(rec.EmployeeID) {
		return Reject
	}
	if !p.keepProject(rec.ProjectID) {
		return Reject
	}
	if !p.keepClient(rec.ClientID) {
		return Reject
	}

	if rec.ActivityOn == "" || rec.ActivityOn == "null" {
		return RejectBadDate
	}
	day, err := time.Parse(dateLayout, rec.ActivityOn)
	if err != nil {
		return RejectBadDate
	}

	// Inclusive at both ends: a record dated exactly on either bound passes.
	if day.Before(p.start) || day.After(p.end) {
		return Reject
	}
	return Keep
}

// idSetPredicate returns a membership test for a non-nullable id column.
// nil set: unconstrained. Empty set: nothing matches.
func idSetPredicate(ids []int64) func(int64) bool {
	if ids == nil {
		return func(int64) bool { return true }
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id int64) bool {
		_, ok := set[id]
		return ok
	}
}

// nullableIDSetPredicate returns a membership test for a nullable foreign key.
// An absent (nil) filter must not exclude records whose foreign key is null;
// a present filter requires membership, which a null key can never satisfy.
func nullableIDSetPredicate(ids []int64) func(*int64) bool {
	if ids == nil {
		return func(*int64) bool { return true }
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id *int64) bool {
		if id == nil {
			return false
		}
		_, ok := set[*id]
		return ok
	}
}
