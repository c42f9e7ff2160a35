package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tasktracker/internal/controller"
	"tasktracker/internal/models"
)

// Tab is one filter tab of the home page.
type Tab struct {
	Filter models.Filter
	Label  string
	Active bool
}

// TaskRow is a task prepared for display.
type TaskRow struct {
	models.Task
	StatusLabel   string
	PriorityLabel string
	DueText       string
	Done          bool
	Overdue       bool
}

// HomeData holds data for the home page template.
type HomeData struct {
	Title  string
	Filter models.Filter
	Tabs   []Tab
	Tasks  []TaskRow
	Stats  models.Stats
	Alerts []string
}

func newTaskRows(tasks []models.Task, now time.Time) []TaskRow {
	rows := make([]TaskRow, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		rows = append(rows, TaskRow{
			Task:          t.Clone(),
			StatusLabel:   t.Status.Text(),
			PriorityLabel: t.Priority.Label(),
			DueText:       t.DueLabel(),
			Done:          t.IsDone(),
			Overdue:       t.IsOverdue(now),
		})
	}
	return rows
}

func newTabs(active models.Filter) []Tab {
	tabs := make([]Tab, 0, len(models.Filters))
	for _, f := range models.Filters {
		tabs = append(tabs, Tab{Filter: f, Label: f.Label(), Active: f == active})
	}
	return tabs
}

// Home renders the task list for the current filter with any pending alerts.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	var data HomeData
	h.dispatch(func() {
		data = HomeData{
			Title:  "Task Tracker",
			Filter: h.filter,
			Tabs:   newTabs(h.filter),
			Tasks:  newTaskRows(h.rendered, h.now()),
			Alerts: h.takeAlerts(),
		}
		if h.backend != nil {
			data.Stats = h.backend.State().Stats
		}
	})

	h.render(w, http.StatusOK, "home.html", data)
}

// FilterTasks switches the visible subset and returns to the list.
func (h *Handlers) FilterTasks(w http.ResponseWriter, r *http.Request) {
	filter := models.Filter(chi.URLParam(r, "filter"))
	h.dispatch(func() {
		if h.onFilter != nil {
			h.onFilter(filter)
		}
	})
	redirectHome(w, r)
}

// State returns the full collection, statistics and current filter as JSON.
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	var (
		state controller.State
		ready bool
	)
	h.dispatch(func() {
		if ready = h.backend != nil; ready {
			state = h.backend.State()
		}
	})
	if !ready {
		respondError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	h.respondJSON(w, http.StatusOK, state)
}
