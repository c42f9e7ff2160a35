// Package tasks holds the in-memory task collection and notifies subscribers on every mutation.
package tasks

import (
	"strings"
	"time"

	"tasktracker/internal/models"
)

// Listener is invoked synchronously after every mutation with a snapshot of the full collection.
type Listener func(tasks []models.Task)

type subscription struct {
	id int
	fn Listener
}

// Store owns the task collection. It is not safe for concurrent use: callers run
// every operation from a single event loop.
type Store struct {
	tasks     []models.Task
	listeners []subscription
	nextSubID int
	seq       sequence
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks: []models.Task{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) commit() {
	// Copy the list so a listener that unsubscribes does not disturb iteration.
	listeners := append([]subscription(nil), s.listeners...)
	for _, sub := range listeners {
		sub.fn(models.CloneTasks(s.tasks))
	}
}

// AddTask creates a task from already validated input, appends it and notifies.
func (s *Store) AddTask(in models.TaskInput) models.Task {
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	var due *string
	if in.DueDate != "" {
		d := in.DueDate
		due = &d
	}

	task := models.Task{
		ID:          s.seq.next(),
		Text:        strings.TrimSpace(in.Text),
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusNotStarted,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   s.now().UTC(),
	}

	s.tasks = append(s.tasks, task)
	s.commit()

	return task.Clone()
}

// EditTask applies the present fields of u to the task with the given id.
// Unknown ids are ignored without notification. Invalid statuses are skipped.
func (s *Store) EditTask(id int64, u models.TaskUpdate) {
	task := s.find(id)
	if task == nil {
		return
	}

	if u.Text != nil {
		task.Text = strings.TrimSpace(*u.Text)
	}
	if u.Description != nil {
		task.Description = strings.TrimSpace(*u.Description)
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.DueDate != nil {
		if *u.DueDate == "" {
			task.DueDate = nil
		} else {
			due := *u.DueDate
			task.DueDate = &due
		}
	}
	if u.Status != nil && u.Status.Valid() {
		task.Status = *u.Status
	}

	s.commit()
}

// DeleteTask removes the task with the given id. Listeners are notified even if nothing was removed.
func (s *Store) DeleteTask(id int64) {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.commit()
}

// ToggleTask advances the task status one step in the status cycle.
func (s *Store) ToggleTask(id int64) {
	task := s.find(id)
	if task == nil {
		return
	}
	task.Status = task.Status.Next()
	s.commit()
}

// SetTaskStatus sets the status directly. Invalid statuses and unknown ids are ignored.
func (s *Store) SetTaskStatus(id int64, status models.Status) {
	if !status.Valid() {
		return
	}
	task := s.find(id)
	if task == nil {
		return
	}
	task.Status = status
	s.commit()
}

// SetTasks replaces the whole collection, typically with tasks loaded from storage.
func (s *Store) SetTasks(tasks []models.Task) {
	s.tasks = models.CloneTasks(tasks)
	for _, t := range s.tasks {
		s.seq.observe(t.ID)
	}
	s.commit()
}

// Tasks returns a snapshot of the collection.
func (s *Store) Tasks() []models.Task {
	return models.CloneTasks(s.tasks)
}

// FilteredTasks returns a snapshot of the tasks matching f.
func (s *Store) FilteredTasks(f models.Filter) []models.Task {
	out := make([]models.Task, 0, len(s.tasks))
	for i := range s.tasks {
		if f.Match(&s.tasks[i]) {
			out = append(out, s.tasks[i].Clone())
		}
	}
	return out
}

// Stats returns aggregate counts over the collection.
func (s *Store) Stats() models.Stats {
	return models.ComputeStats(s.tasks)
}

func (s *Store) find(id int64) *models.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}
