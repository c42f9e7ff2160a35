package models

import (
	"strings"
	"time"
)

// DateLayout is the format of Task.DueDate.
const DateLayout = "2006-01-02"

// Status is the progress state of a task.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Next returns the following status in the cycle
// not-started -> in-progress -> done -> not-started.
func (s Status) Next() Status {
	switch s {
	case StatusNotStarted:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusNotStarted
	}
}

// Text returns the human label for the status.
func (s Status) Text() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return "Not started"
	}
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Label returns the priority name with a leading capital.
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Task represents a single to-do item.
type Task struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     *string   `json:"dueDate"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy of the task that shares no memory with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// IsDone returns true if the task reached the final status.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// Due parses the due date. ok is false when there is no due date or it is malformed.
func (t *Task) Due() (time.Time, bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, *t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DueLabel formats the due date as MM/DD/YYYY, or "-" when there is none.
func (t *Task) DueLabel() string {
	due, ok := t.Due()
	if !ok {
		return "-"
	}
	return due.Format("01/02/2006")
}

// IsOverdue returns true if the task has a due date before today and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.IsDone() {
		return false
	}
	due, ok := t.Due()
	if !ok {
		return false
	}
	return due.Format(DateLayout) < now.Format(DateLayout)
}

// CloneTasks copies a task slice element by element. A nil input yields an empty, non-nil slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
