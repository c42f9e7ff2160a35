package models

// Filter names a subset of tasks for display.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterActive       Filter = "active"
	FilterCompleted    Filter = "completed"
	FilterHighPriority Filter = "high-priority"
)

// Filters lists the known filters in tab order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted, FilterHighPriority}

// Match reports whether the task belongs to the filter. Unknown filters match everything.
func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterActive:
		return t.Status != StatusDone
	case FilterCompleted:
		return t.Status == StatusDone
	case FilterHighPriority:
		return t.Priority == PriorityHigh
	default:
		return true
	}
}

// Label returns the tab caption for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	case FilterHighPriority:
		return "High priority"
	default:
		return "All"
	}
}

// Stats holds aggregate counts over a task collection.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Active       int `json:"active"`
	InProgress   int `json:"inProgress"`
	NotStarted   int `json:"notStarted"`
	HighPriority int `json:"highPriority"`
}

// ComputeStats counts tasks by status and priority.
// HighPriority only counts tasks that are not done.
func ComputeStats(tasks []Task) Stats {
	var s Stats
	s.Total = len(tasks)
	for i := range tasks {
		switch tasks[i].Status {
		case StatusDone:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		case StatusNotStarted:
			s.NotStarted++
		}
		if tasks[i].Priority == PriorityHigh && tasks[i].Status != StatusDone {
			s.HighPriority++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}
