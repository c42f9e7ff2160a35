package handlers

import "github.com/go-chi/chi/v5"

// Routes registers the page and API routes on r.
func (h *Handlers) Routes(r chi.Router) {
	// Page routes
	r.Get("/", h.Home)
	r.Get("/tasks/new", h.NewTaskForm)
	r.Get("/filter/{filter}", h.FilterTasks)
	r.Post("/tasks", h.CreateTask)
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	r.Post("/tasks/{id}/status", h.ChangeStatus)
	r.Post("/tasks/{id}/delete", h.DeleteTaskForm)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// Task API routes
	r.Get("/api/state", h.State)
	r.Put("/api/tasks/{id}", h.UpdateTask)
	r.Delete("/api/tasks/{id}", h.DeleteTask)
}
