// Package handlers is the web presenter: it turns HTTP requests into task intents and
// renders the task list the coordinator hands back.
package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tasktracker/internal/controller"
	"tasktracker/internal/models"
)

// Backend exposes the application operations the web presenter needs beyond intents.
type Backend interface {
	State() controller.State
	ExportData() ([]byte, bool)
}

// Handlers holds the HTTP handlers and the presenter state. It implements controller.View.
//
// Every request that reads or changes tasks runs inside dispatch, which holds mu for the
// whole intent so the coordinator sees one intent at a time. View methods are only called
// from within an intent and assume mu is held.
type Handlers struct {
	mu        sync.Mutex
	backend   Backend
	templates *template.Template
	logger    *zap.Logger
	now       func() time.Time

	onAdd          func(models.TaskInput) error
	onEdit         func(int64, models.TaskUpdate) error
	onDelete       func(int64)
	onToggle       func(int64)
	onChangeStatus func(int64)
	onFilter       func(models.Filter)
	onImport       func([]byte) error

	rendered []models.Task
	filter   models.Filter
	alerts   []string
}

// New creates a new Handlers instance. Call Attach before serving requests.
func New(tmpl *template.Template, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		templates: tmpl,
		logger:    logger,
		now:       time.Now,
		rendered:  []models.Task{},
		filter:    models.FilterAll,
	}
}

// Attach sets the backend used for state, statistics and export.
func (h *Handlers) Attach(b Backend) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backend = b
}

func (h *Handlers) BindAddTask(fn func(models.TaskInput) error)          { h.onAdd = fn }
func (h *Handlers) BindEditTask(fn func(int64, models.TaskUpdate) error) { h.onEdit = fn }
func (h *Handlers) BindDeleteTask(fn func(int64))                        { h.onDelete = fn }
func (h *Handlers) BindToggleTask(fn func(int64))                        { h.onToggle = fn }
func (h *Handlers) BindChangeStatus(fn func(int64))                      { h.onChangeStatus = fn }
func (h *Handlers) BindFilterTasks(fn func(models.Filter))               { h.onFilter = fn }
func (h *Handlers) BindImportTasks(fn func([]byte) error)                { h.onImport = fn }

// DisplayTasks keeps the rendered list for the next page view.
func (h *Handlers) DisplayTasks(tasks []models.Task) {
	h.rendered = models.CloneTasks(tasks)
}

// UpdateFilterControls selects the active tab.
func (h *Handlers) UpdateFilterControls(f models.Filter) {
	h.filter = f
}

// Alert queues a flash message shown on the next page view.
func (h *Handlers) Alert(message string) {
	h.alerts = append(h.alerts, message)
}

// dispatch runs fn as a single intent.
func (h *Handlers) dispatch(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// takeAlerts returns and clears the queued flash messages. Callers hold mu.
func (h *Handlers) takeAlerts() []string {
	alerts := h.alerts
	h.alerts = nil
	return alerts
}

// parseID extracts and parses an integer ID from URL parameters.
func parseID(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	return strconv.ParseInt(idStr, 10, 64)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	w.Write([]byte(message))
}

func (h *Handlers) respondServerError(w http.ResponseWriter, err error) {
	h.logger.Error("internal server error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) respondJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func (h *Handlers) render(w http.ResponseWriter, code int, name string, data any) {
	if h.templates == nil {
		// For testing without templates
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ParseTemplates parses templates/*.html and templates/partials/*.html from fsys.
func ParseTemplates(fsys fs.FS) (*template.Template, error) {
	funcMap := template.FuncMap{
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}

	tmpl := template.New("").Funcs(funcMap)

	patterns := []string{
		"templates/*.html",
		"templates/partials/*.html",
	}

	for _, pattern := range patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			content, err := fs.ReadFile(fsys, match)
			if err != nil {
				return nil, fmt.Errorf("failed to read template %s: %w", match, err)
			}

			name := path.Base(match)
			if _, err := tmpl.New(name).Parse(string(content)); err != nil {
				return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
			}
		}
	}

	return tmpl, nil
}
