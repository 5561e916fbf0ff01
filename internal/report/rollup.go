package report

import (
	"sort"
	"time"

	"github.com/clockwise-hq/clockwise-web/internal/models"
)

// unresolvedName labels groups whose foreign key is null or points at a row
// that no longer exists. Both cases fold into the same bucket.
const unresolvedName = "unresolved"

// groupKey identifies a bucket keyed by a nullable foreign key. Unresolved
// ids collapse onto the zero key so a null ProjectID and a dangling one land
// in the same group.
type groupKey struct {
	id    int64
	valid bool
}

func projectKey(rec models.ActivityRecord, refs map[int64]XRef) groupKey {
	if rec.ProjectID == nil {
		return groupKey{}
	}
	if _, ok := refs[*rec.ProjectID]; !ok {
		return groupKey{}
	}
	return groupKey{id: *rec.ProjectID, valid: true}
}

func clientKey(rec models.ActivityRecord, refs map[int64]XRef) groupKey {
	if rec.ClientID == nil {
		return groupKey{}
	}
	if _, ok := refs[*rec.ClientID]; !ok {
		return groupKey{}
	}
	return groupKey{id: *rec.ClientID, valid: true}
}

func rollupProjects(subset []models.ActivityRecord, refs map[int64]XRef) []ProjectGroup {
	accs := map[groupKey]*accumulator{}
	for _, rec := range subset {
		key := projectKey(rec, refs)
		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{}
			accs[key] = acc
		}
		acc.add(rec)
	}

	groups := make([]ProjectGroup, 0, len(accs))
	for key, acc := range accs {
		g := ProjectGroup{Totals: acc.totals()}
		if key.valid {
			id := key.id
			g.ProjectID = &id
			g.ProjectName = refs[key.id].Name
		} else {
			g.ProjectName = unresolvedName
			g.Unresolved = true
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Unresolved != groups[j].Unresolved {
			return groups[j].Unresolved
		}
		if groups[i].ProjectName != groups[j].ProjectName {
			return groups[i].ProjectName < groups[j].ProjectName
		}
		return deref(groups[i].ProjectID) < deref(groups[j].ProjectID)
	})
	return groups
}

func rollupClients(subset []models.ActivityRecord, refs map[int64]XRef) []ClientGroup {
	accs := map[groupKey]*accumulator{}
	for _, rec := range subset {
		key := clientKey(rec, refs)
		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{}
			accs[key] = acc
		}
		acc.add(rec)
	}

	groups := make([]ClientGroup, 0, len(accs))
	for key, acc := range accs {
		g := ClientGroup{Totals: acc.totals()}
		if key.valid {
			id := key.id
			g.ClientID = &id
			g.ClientName = refs[key.id].Name
		} else {
			g.ClientName = unresolvedName
			g.Unresolved = true
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Unresolved != groups[j].Unresolved {
			return groups[j].Unresolved
		}
		if groups[i].ClientName != groups[j].ClientName {
			return groups[i].ClientName < groups[j].ClientName
		}
		return deref(groups[i].ClientID) < deref(groups[j].ClientID)
	})
	return groups
}

func rollupEmployees(subset []models.ActivityRecord, refs map[int64]EmployeeRef) []EmployeeGroup {
	accs := map[int64]*accumulator{}
	for _, rec := range subset {
		acc, ok := accs[rec.EmployeeID]
		if !ok {
			acc = &accumulator{}
			accs[rec.EmployeeID] = acc
		}
		acc.add(rec)
	}

	groups := make([]EmployeeGroup, 0, len(accs))
	for id, acc := range accs {
		g := EmployeeGroup{EmployeeID: id, Totals: acc.totals()}
		if ref, ok := refs[id]; ok {
			g.FirstName = ref.FirstName
			g.LastName = ref.LastName
		} else {
			g.FirstName = unresolvedName
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].EmployeeID < groups[j].EmployeeID })
	return groups
}

// rollupScreenshots buckets by resolved screenshot title. A record is folded
// into a bucket once per screenshot it references, so a record with two
// resolvable screenshots contributes twice and one with none contributes
// nowhere. Dangling screenshot ids are skipped.
func rollupScreenshots(subset []models.ActivityRecord, screenshots map[int64]XRef) []ScreenshotGroup {
	accs := map[string]*accumulator{}
	for _, rec := range subset {
		for _, id := range rec.ScreenshotIDs {
			ref, ok := screenshots[id]
			if !ok {
				continue
			}
			acc, ok := accs[ref.Name]
			if !ok {
				acc = &accumulator{}
				accs[ref.Name] = acc
			}
			acc.add(rec)
		}
	}

	groups := make([]ScreenshotGroup, 0, len(accs))
	for title, acc := range accs {
		groups = append(groups, ScreenshotGroup{Title: title, Totals: acc.totals()})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups
}

// rollupEP is the two-level rollup: first (employee, project, client) triples
// with full measures, then a regroup by employee alone, nesting each triple's
// rollup in project-name then client-name order. Records whose project or
// client does not resolve are skipped; the unresolved bucket exists only in
// the single-dimension facets.
func rollupEP(subset []models.ActivityRecord, employees map[int64]EmployeeRef, projects, clients map[int64]XRef) []EPGroup {
	type tripleKey struct {
		employeeID int64
		projectID  int64
		clientID   int64
	}
	accs := map[tripleKey]*accumulator{}
	for _, rec := range subset {
		if rec.ProjectID == nil || rec.ClientID == nil {
			continue
		}
		if _, ok := projects[*rec.ProjectID]; !ok {
			continue
		}
		if _, ok := clients[*rec.ClientID]; !ok {
			continue
		}
		key := tripleKey{rec.EmployeeID, *rec.ProjectID, *rec.ClientID}
		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{}
			accs[key] = acc
		}
		acc.add(rec)
	}

	byEmployee := map[int64][]EPEntry{}
	for key, acc := range accs {
		byEmployee[key.employeeID] = append(byEmployee[key.employeeID], EPEntry{
			ProjectID:   key.projectID,
			ProjectName: projects[key.projectID].Name,
			ClientID:    key.clientID,
			ClientName:  clients[key.clientID].Name,
			Totals:      acc.totals(),
		})
	}

	groups := make([]EPGroup, 0, len(byEmployee))
	for id, entries := range byEmployee {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].ProjectName != entries[j].ProjectName {
				return entries[i].ProjectName < entries[j].ProjectName
			}
			if entries[i].ClientName != entries[j].ClientName {
				return entries[i].ClientName < entries[j].ClientName
			}
			if entries[i].ProjectID != entries[j].ProjectID {
				return entries[i].ProjectID < entries[j].ProjectID
			}
			return entries[i].ClientID < entries[j].ClientID
		})
		groups = append(groups, EPGroup{
			EmployeeID:   id,
			EmployeeName: employeeName(id, employees),
			Projects:     entries,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].EmployeeID < groups[j].EmployeeID })
	return groups
}

// rollupDates buckets by the raw stored date string. Two spellings of the
// same day ("1/2/2024" and "01/02/2024") are distinct buckets; the sort order
// is by parsed date, raw string as tiebreak, so they still render adjacently.
func rollupDates(subset []models.ActivityRecord) []DateGroup {
	accs := map[string]*accumulator{}
	for _, rec := range subset {
		acc, ok := accs[rec.ActivityOn]
		if !ok {
			acc = &accumulator{}
			accs[rec.ActivityOn] = acc
		}
		acc.add(rec)
	}

	groups := make([]DateGroup, 0, len(accs))
	for date, acc := range accs {
		groups = append(groups, DateGroup{Date: date, Totals: acc.totals()})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, aerr := time.Parse(dateLayout, groups[i].Date)
		b, berr := time.Parse(dateLayout, groups[j].Date)
		if aerr == nil && berr == nil && !a.Equal(b) {
			return a.Before(b)
		}
		return groups[i].Date < groups[j].Date
	})
	return groups
}

// rollupTotal produces the grand total: one element, or none when the subset
// is empty.
func rollupTotal(subset []models.ActivityRecord) []Totals {
	if len(subset) == 0 {
		return []Totals{}
	}
	var acc accumulator
	for _, rec := range subset {
		acc.add(rec)
	}
	return []Totals{acc.totals()}
}

func employeeName(id int64, refs map[int64]EmployeeRef) string {
	if ref, ok := refs[id]; ok {
		return ref.DisplayName()
	}
	return unresolvedName
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
