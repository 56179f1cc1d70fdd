package appointments

import (
	"net/url"
	"strconv"
	"time"
)

// Filter defaults.
const (
	DefaultRange = "30"
	RangeAll     = "all"
	StatusAll    = "all"
)

// boundaryDays separates the live view from history: live lists everything
// from now-15d forward, history everything before it. Both views derive
// their cutoff from the same constant so the boundary stays complementary.
const boundaryDays = 15

// RangeOption is one entry of the range dropdown.
type RangeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RangeOptions mirrors the dashboard's range dropdown.
var RangeOptions = []RangeOption{
	{Value: "30", Label: "Past 30 Days"},
	{Value: "90", Label: "Past 90 Days"},
	{Value: "180", Label: "Past 6 Months"},
	{Value: "365", Label: "Past Year"},
	{Value: RangeAll, Label: "All Time"},
}

// StatusOption is one entry of the status dropdown. The filter value for
// cancelled uses the upstream spelling.
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatusOptions mirrors the dashboard's status dropdown.
var StatusOptions = []StatusOption{
	{Value: StatusAll, Label: "All Statuses"},
	{Value: "approved", Label: "Approved"},
	{Value: "pending", Label: "Pending"},
	{Value: "canceled", Label: "Cancelled"},
	{Value: "completed", Label: "Completed"},
}

// FilterState is the per-request filter/pagination state, parsed fresh from
// query parameters and never mutated in place: every change of filter
// produces a new value via the With* helpers.
type FilterState struct {
	Range      string `json:"range"`
	Page       int    `json:"page"`
	Status     string `json:"status"`
	UrgentOnly bool   `json:"urgentOnly"`
}

// ParseFilterState reads filter state from query parameters with explicit
// defaults: range "30" (unknown values fall back to 30 days, "all" disables
// the lower bound), page 1 clamped to at least 1, status "all", urgent set
// only by "1".
func ParseFilterState(q url.Values) FilterState {
	f := FilterState{
		Range:  DefaultRange,
		Page:   1,
		Status: StatusAll,
	}

	if raw := q.Get("range"); raw != "" {
		if raw == RangeAll {
			f.Range = RangeAll
		} else if _, err := strconv.Atoi(raw); err == nil {
			f.Range = raw
		}
	}
	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 1 {
			f.Page = page
		}
	}
	if raw := q.Get("status"); raw != "" && raw != StatusAll {
		f.Status = raw
	}
	f.UrgentOnly = q.Get("urgent") == "1"

	return f
}

// Values serializes the state back into query parameters. Defaults are
// omitted so generated links stay clean; ParseFilterState(f.Values())
// always reproduces f.
func (f FilterState) Values() url.Values {
	q := url.Values{}
	if f.Range != DefaultRange {
		q.Set("range", f.Range)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Status != StatusAll {
		q.Set("status", f.Status)
	}
	if f.UrgentOnly {
		q.Set("urgent", "1")
	}
	return q
}

// RangeDays returns the range in days and whether a lower bound applies.
func (f FilterState) RangeDays() (int, bool) {
	if f.Range == RangeAll {
		return 0, false
	}
	days, err := strconv.Atoi(f.Range)
	if err != nil || days <= 0 {
		return 30, true
	}
	return days, true
}

// StartDate returns the civil ISO lower bound implied by the range, if any.
func (f FilterState) StartDate(today time.Time) (string, bool) {
	days, ok := f.RangeDays()
	if !ok {
		return "", false
	}
	return today.AddDate(0, 0, -days).Format(civilDateLayout), true
}

// StatusFilter returns the remote status filter, or "" for no filter.
func (f FilterState) StatusFilter() string {
	if f.Status == StatusAll {
		return ""
	}
	return f.Status
}

// NextPage returns the state advanced one page.
func (f FilterState) NextPage() FilterState {
	f.Page++
	return f
}

// PrevPage returns the state moved back one page, clamped at 1.
func (f FilterState) PrevPage() FilterState {
	if f.Page > 1 {
		f.Page--
	}
	return f
}

// WithStatus returns the state filtered to status. Changing status always
// resets pagination.
func (f FilterState) WithStatus(status string) FilterState {
	f.Status = status
	if status == "" {
		f.Status = StatusAll
	}
	f.Page = 1
	return f
}

// WithRange returns the state with a new range window.
func (f FilterState) WithRange(rangeValue string) FilterState {
	f.Range = rangeValue
	return f
}

// ToggleUrgent flips urgent-only mode.
func (f FilterState) ToggleUrgent() FilterState {
	f.UrgentOnly = !f.UrgentOnly
	return f
}

// BoundaryDate returns the civil date now-15d that splits live from
// history.
func BoundaryDate(today time.Time) string {
	return today.AddDate(0, 0, -boundaryDays).Format(civilDateLayout)
}

// StatusLink is a navigable status filter option.
type StatusLink struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// RangeLink is a navigable range filter option.
type RangeLink struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Links is the set of navigation targets for the current state. Every link
// preserves all other active filters.
type Links struct {
	Self         string       `json:"self"`
	PrevPage     string       `json:"prevPage,omitempty"`
	NextPage     string       `json:"nextPage,omitempty"`
	UrgentToggle string       `json:"urgentToggle"`
	Statuses     []StatusLink `json:"statuses"`
	Ranges       []RangeLink  `json:"ranges"`
}

// BuildLinks generates the navigation targets for a view rooted at path.
// Prev is omitted on the first page; next is omitted when the remote source
// reports no further pages.
func BuildLinks(path string, f FilterState, hasNextPage bool) Links {
	links := Links{
		Self:         buildURL(path, f),
		UrgentToggle: buildURL(path, f.ToggleUrgent()),
	}
	if f.Page > 1 {
		links.PrevPage = buildURL(path, f.PrevPage())
	}
	if hasNextPage {
		links.NextPage = buildURL(path, f.NextPage())
	}
	for _, opt := range StatusOptions {
		links.Statuses = append(links.Statuses, StatusLink{
			Value:  opt.Value,
			Label:  opt.Label,
			URL:    buildURL(path, f.WithStatus(opt.Value)),
			Active: f.Status == opt.Value,
		})
	}
	for _, opt := range RangeOptions {
		links.Ranges = append(links.Ranges, RangeLink{
			Value:  opt.Value,
			Label:  opt.Label,
			URL:    buildURL(path, f.WithRange(opt.Value)),
			Active: f.Range == opt.Value,
		})
	}
	return links
}

func buildURL(path string, f FilterState) string {
	q := f.Values()
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
