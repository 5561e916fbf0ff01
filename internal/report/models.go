// Package report computes workforce activity aggregations. A request selects
// a subset of activity records by employee, project, client and date window,
// and the engine reduces that one subset along several independent dimensions
// (facets) in parallel, the way the dashboard renders them side by side.
package report

import "strings"

// IDRef is the wire shape of one entry in a request id list. The trackers
// send ids wrapped in objects rather than as bare integers.
type IDRef struct {
	ID int64 `json:"_id"`
}

// IDs unwraps a list of wrapped ids. A nil input stays nil so the
// absent-versus-empty distinction survives decoding.
func IDs(refs []IDRef) []int64 {
	if refs == nil {
		return nil
	}
	out := make([]int64, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

// Request is the body of an aggregation call. The id lists arrive under the
// dashboard's field names: employee filters come in as userIds.
type Request struct {
	Employees []IDRef `json:"userIds"`
	Projects  []IDRef `json:"projectIds"`
	Clients   []IDRef `json:"clientIds"`
	DateOne   string  `json:"dateOne,omitempty"`
	DateTwo   string  `json:"dateTwo,omitempty"`
	GroupBy   string  `json:"groupBy,omitempty"`
}

// Totals carries the measures every facet group reports.
//
// Internal sums consumed seconds over records flagged internal, External the
// complement, so TotalHours is always their sum. AvgPerformanceData is nil
// when the group holds no performance samples; it is never coerced to zero.
type Totals struct {
	Internal           int64    `json:"internal"`
	External           int64    `json:"external"`
	ActCount           int64    `json:"actCount"`
	TotalHours         int64    `json:"totalHours"`
	AvgPerformanceData *float64 `json:"avgPerformanceData"`
}

// ProjectGroup is one byProjects bucket. Unresolved covers records whose
// project id is null or refers to a project that no longer exists.
type ProjectGroup struct {
	ProjectID   *int64 `json:"projectId"`
	ProjectName string `json:"projectName"`
	Unresolved  bool   `json:"unresolved,omitempty"`
	Totals
}

// ClientGroup is one byClients bucket.
type ClientGroup struct {
	ClientID   *int64 `json:"clientId"`
	ClientName string `json:"clientName"`
	Unresolved bool   `json:"unresolved,omitempty"`
	Totals
}

// EmployeeGroup is one byEmployees bucket. The name parts stay separate so
// the dashboard can format them itself.
type EmployeeGroup struct {
	EmployeeID int64  `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Totals
}

// DateGroup is one byDates bucket, keyed by the raw stored date string.
type DateGroup struct {
	Date string `json:"date"`
	Totals
}

// EPEntry is one nested per-project rollup under an employee: one entry per
// (project, client) pair actually observed. Distinct clients on the same
// project stay separate entries.
type EPEntry struct {
	ProjectID   int64  `json:"projectId"`
	ProjectName string `json:"projectName"`
	ClientID    int64  `json:"clientId"`
	ClientName  string `json:"clientName"`
	Totals
}

// EPGroup is one byEP bucket: an employee with their ordered per-project
// rollups. Records without both a resolvable project and client are omitted
// here, unlike byProjects and byClients which surface them as unresolved
// groups.
type EPGroup struct {
	EmployeeID   int64     `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Projects     []EPEntry `json:"projects"`
}

// ScreenshotGroup is one byScreenshots bucket, keyed by screenshot title. A
// record contributes its measures once per screenshot it references, so this
// facet does not partition the subset; zero-screenshot records appear in no
// bucket here but stay in every other facet.
type ScreenshotGroup struct {
	Title string `json:"title"`
	Totals
}

// Bundle is the full aggregation result: every facet computed over the same
// record subset. Slices are always non-nil so clients see [] rather than null.
//
// Total is empty when the subset is empty and holds exactly one element
// otherwise; DroppedRecords counts in-scope records excluded for malformed
// dates.
type Bundle struct {
	ByProjects     []ProjectGroup    `json:"byProjects"`
	ByClients      []ClientGroup     `json:"byClients"`
	ByEmployees    []EmployeeGroup   `json:"byEmployees"`
	ByScreenshots  []ScreenshotGroup `json:"byScreenshots"`
	ByEP           []EPGroup         `json:"byEP"`
	ByDates        []DateGroup       `json:"byDates"`
	Total          []Totals          `json:"total"`
	DroppedRecords int64             `json:"droppedRecords,omitempty"`
}

// XRef is a resolved reference row: the display name for an id, as looked up
// in one batch per dimension.
type XRef struct {
	ID   int64
	Name string
}

// EmployeeRef is a resolved employee row. First and last name stay separate
// because byEmployees surfaces them as separate fields.
type EmployeeRef struct {
	ID        int64
	FirstName string
	LastName  string
}

// DisplayName joins the name parts for facets that render a single label.
func (e EmployeeRef) DisplayName() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if name == "" {
		return unresolvedName
	}
	return name
}
