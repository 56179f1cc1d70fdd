package appointments

import (
	"math"
	"sort"
	"time"
)

// Summary holds the sidebar counters for a set of appointments. Counters
// are always computed over the source set in its remote order, never over a
// display-reordered list, so pin ordering cannot change the numbers.
type Summary struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	InProgress     int     `json:"inProgress"`
	Cancelled      int     `json:"cancelled"`
	Revenue        float64 `json:"revenue"`
	CompletionRate int     `json:"completionRate"`
}

// Summarize computes counters over a source set.
func Summarize(list []Appointment) Summary {
	s := Summary{Total: len(list)}
	for _, a := range list {
		switch a.CanonicalStatus() {
		case StatusCompleted:
			s.Completed++
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusCancelled:
			s.Cancelled++
		}
		if a.Fee > 0 {
			s.Revenue += a.Fee
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// CountUrgent returns how many of the given pending appointments fall in
// the urgent window.
func CountUrgent(pending []Appointment, ref time.Time) int {
	n := 0
	for _, a := range pending {
		if IsUrgentPending(a, ref) {
			n++
		}
	}
	return n
}

// FilterUrgent returns the urgent subset of pending, preserving order.
func FilterUrgent(pending []Appointment, ref time.Time) []Appointment {
	out := make([]Appointment, 0, len(pending))
	for _, a := range pending {
		if IsUrgentPending(a, ref) {
			out = append(out, a)
		}
	}
	return out
}

// LiveView is the merged view model for the live appointments list.
type LiveView struct {
	Appointments []Appointment `json:"appointments"`
	Summary      Summary       `json:"summary"`
	UrgentCount  int           `json:"urgentCount"`
	UrgentOnly   bool          `json:"urgentOnly"`
}

// BuildLiveView merges the current page with the global pending set.
//
// In urgent-only mode the visible list is the urgent subset of the global
// pending set, bypassing pagination entirely. Otherwise the page is shown
// with its urgent items stable-partitioned to the front. The urgent badge
// always reflects the full cross-page count, independent of what renders.
func BuildLiveView(page, globalPending []Appointment, urgentOnly bool, ref time.Time) LiveView {
	view := LiveView{
		UrgentCount: CountUrgent(globalPending, ref),
		UrgentOnly:  urgentOnly,
	}

	if urgentOnly {
		urgent := FilterUrgent(globalPending, ref)
		view.Appointments = urgent
		view.Summary = Summarize(urgent)
		return view
	}

	view.Appointments = pinUrgentFirst(page, ref)
	view.Summary = Summarize(page)
	return view
}

// pinUrgentFirst bubbles the page's urgent items to the front. Order within
// the urgent and non-urgent partitions keeps the remote ordering.
func pinUrgentFirst(page []Appointment, ref time.Time) []Appointment {
	out := make([]Appointment, 0, len(page))
	var rest []Appointment
	for _, a := range page {
		if IsUrgentPending(a, ref) {
			out = append(out, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(out, rest...)
}

// HistoryView is the view model for the appointment history list.
type HistoryView struct {
	Appointments []Appointment `json:"appointments"`
	Summary      Summary       `json:"summary"`
}

// BuildHistoryView orders past appointments for review: resolved outcomes
// first (completed, then cancelled), then approved, in-progress, and
// pending/unknown. Ties break by descending date then descending time.
//
// Tie-breaking compares the raw date and time strings. Dates are ISO and
// sort correctly; time strings only sort correctly when one doctor sticks
// to a single clock format, which is the documented upstream constraint.
func BuildHistoryView(list []Appointment) HistoryView {
	summary := Summarize(list)

	ordered := make([]Appointment, len(list))
	copy(ordered, list)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := statusPriority(ordered[i]), statusPriority(ordered[j])
		if pi != pj {
			return pi < pj
		}
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date > ordered[j].Date
		}
		return ordered[i].Time > ordered[j].Time
	})

	return HistoryView{Appointments: ordered, Summary: summary}
}

func statusPriority(a Appointment) int {
	switch a.CanonicalStatus() {
	case StatusCompleted:
		return 1
	case StatusCancelled:
		return 2
	case StatusApproved:
		return 3
	case StatusInProgress:
		return 4
	default:
		return 5
	}
}
