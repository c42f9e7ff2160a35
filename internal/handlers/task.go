package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tasktracker/internal/models"
)

// FormData holds data for the task form template.
type FormData struct {
	Title      string
	Input      models.TaskInput
	Priorities []models.Priority
	Alerts     []string
}

func newFormData(in models.TaskInput, alerts []string) FormData {
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	return FormData{
		Title:      "New task",
		Input:      in,
		Priorities: []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh},
		Alerts:     alerts,
	}
}

// NewTaskForm shows the create form.
func (h *Handlers) NewTaskForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "task_form.html", newFormData(models.TaskInput{}, nil))
}

// CreateTask submits the create form. Invalid input keeps the form open with the alert.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	in := models.TaskInput{
		Text:        r.FormValue("text"),
		Description: r.FormValue("description"),
		Priority:    models.Priority(r.FormValue("priority")),
		DueDate:     r.FormValue("due_date"),
	}

	var (
		err    error
		alerts []string
	)
	h.dispatch(func() {
		if h.onAdd == nil {
			err = errors.New("presenter is not bound")
			return
		}
		if err = h.onAdd(in); err != nil {
			alerts = h.takeAlerts()
		}
	})

	if err != nil {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			h.respondServerError(w, err)
			return
		}
		h.render(w, http.StatusUnprocessableEntity, "task_form.html", newFormData(in, alerts))
		return
	}

	redirectHome(w, r)
}

// updateFromForm builds a partial update from the submitted form keys.
func updateFromForm(r *http.Request) (models.TaskUpdate, error) {
	var u models.TaskUpdate
	if err := r.ParseForm(); err != nil {
		return u, err
	}
	form := r.PostForm
	if form.Has("text") {
		v := form.Get("text")
		u.Text = &v
	}
	if form.Has("description") {
		v := form.Get("description")
		u.Description = &v
	}
	if form.Has("priority") {
		v := models.Priority(form.Get("priority"))
		u.Priority = &v
	}
	if form.Has("due_date") {
		v := form.Get("due_date")
		u.DueDate = &v
	}
	if form.Has("status") {
		v := models.Status(form.Get("status"))
		u.Status = &v
	}
	return u, nil
}

func findTask(tasks []models.Task, id int64) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// UpdateTask edits the present fields of a task. The body is either a form or a JSON object.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var u models.TaskUpdate
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err = json.NewDecoder(r.Body).Decode(&u)
	} else {
		u, err = updateFromForm(r)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		task    models.Task
		ready   bool
		found   bool
		editErr error
	)
	h.dispatch(func() {
		if ready = h.backend != nil && h.onEdit != nil; !ready {
			return
		}
		if _, found = findTask(h.backend.State().Tasks, id); !found {
			return
		}
		if editErr = h.onEdit(id, u); editErr != nil {
			h.takeAlerts()
			return
		}
		task, _ = findTask(h.backend.State().Tasks, id)
	})

	if !ready {
		respondError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if editErr != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": editErr.Error()})
		return
	}
	h.respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	h.dispatch(func() {
		if h.onDelete != nil {
			h.onDelete(id)
		}
	})

	w.WriteHeader(http.StatusOK)
}

// DeleteTaskForm deletes a task from the list page.
func (h *Handlers) DeleteTaskForm(w http.ResponseWriter, r *http.Request) {
	h.idIntent(w, r, func(id int64) {
		if h.onDelete != nil {
			h.onDelete(id)
		}
	})
}

// ToggleTask advances the task to its next status.
func (h *Handlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	h.idIntent(w, r, func(id int64) {
		if h.onToggle != nil {
			h.onToggle(id)
		}
	})
}

// ChangeStatus handles a click on the status badge.
func (h *Handlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	h.idIntent(w, r, func(id int64) {
		if h.onChangeStatus != nil {
			h.onChangeStatus(id)
		}
	})
}

func (h *Handlers) idIntent(w http.ResponseWriter, r *http.Request, fn func(id int64)) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	h.dispatch(func() { fn(id) })
	redirectHome(w, r)
}
