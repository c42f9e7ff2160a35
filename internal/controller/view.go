package controller

import "tasktracker/internal/models"

// View is the presenter contract. A presenter reports user intents through the bound
// handlers and renders whatever the Controller hands back. Handlers must be invoked from
// a single event loop; presenters with concurrent inputs serialize them.
type View interface {
	BindAddTask(handler func(models.TaskInput) error)
	BindEditTask(handler func(id int64, update models.TaskUpdate) error)
	BindDeleteTask(handler func(id int64))
	BindToggleTask(handler func(id int64))
	BindChangeStatus(handler func(id int64))
	BindFilterTasks(handler func(filter models.Filter))
	BindImportTasks(handler func(data []byte) error)

	// DisplayTasks fully re-renders the list. An empty slice shows the empty state.
	DisplayTasks(tasks []models.Task)
	UpdateFilterControls(filter models.Filter)
	Alert(message string)
}
