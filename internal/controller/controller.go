// Package controller coordinates the task store, persistence and a presenter.
package controller

import (
	"errors"

	"go.uber.org/zap"

	"tasktracker/internal/models"
	"tasktracker/internal/tasks"
)

// Persister saves and loads the whole task collection.
type Persister interface {
	SaveTasks(tasks []models.Task) bool
	GetTasks() []models.Task
	ImportTasks(data []byte) error
}

// State is a snapshot of what the Controller currently shows.
type State struct {
	Tasks  []models.Task `json:"tasks"`
	Stats  models.Stats  `json:"stats"`
	Filter models.Filter `json:"filter"`
}

// Controller turns presenter intents into store mutations. Every mutation is
// persisted and then re-rendered through the store subscription.
type Controller struct {
	tasks       *tasks.Store
	view        View
	persister   Persister
	logger      *zap.Logger
	filter      models.Filter
	unsubscribe func()
	// restoring suppresses the save while the store is loaded from the persister.
	restoring bool
}

// New binds the view, subscribes to the store, loads persisted tasks and renders them.
func New(store *tasks.Store, view View, persister Persister, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		tasks:     store,
		view:      view,
		persister: persister,
		logger:    logger,
		filter:    models.FilterAll,
	}

	view.BindAddTask(c.HandleAddTask)
	view.BindEditTask(c.HandleEditTask)
	view.BindDeleteTask(c.HandleDeleteTask)
	view.BindToggleTask(c.HandleToggleTask)
	view.BindChangeStatus(c.HandleToggleTask)
	view.BindFilterTasks(c.HandleFilterTasks)
	view.BindImportTasks(c.HandleImportTasks)

	c.unsubscribe = store.Subscribe(c.onTasksChanged)

	if saved := persister.GetTasks(); len(saved) > 0 {
		c.restore(saved)
		c.logger.Info("loaded saved tasks", zap.Int("count", len(saved)))
	}

	c.render()
	return c
}

// HandleAddTask validates the input and creates a task. Invalid input is reported to
// the user and leaves the store untouched.
func (c *Controller) HandleAddTask(in models.TaskInput) error {
	if err := in.Validate(); err != nil {
		c.reject(err)
		return err
	}
	task := c.tasks.AddTask(in)
	c.logger.Debug("task added", zap.Int64("id", task.ID))
	return nil
}

// HandleEditTask validates the present fields and applies them.
func (c *Controller) HandleEditTask(id int64, u models.TaskUpdate) error {
	if err := u.Validate(); err != nil {
		c.reject(err)
		return err
	}
	c.tasks.EditTask(id, u)
	c.logger.Debug("task edited", zap.Int64("id", id))
	return nil
}

func (c *Controller) HandleDeleteTask(id int64) {
	c.tasks.DeleteTask(id)
	c.logger.Debug("task deleted", zap.Int64("id", id))
}

// HandleToggleTask advances the task to its next status.
func (c *Controller) HandleToggleTask(id int64) {
	c.tasks.ToggleTask(id)
	c.logger.Debug("task toggled", zap.Int64("id", id))
}

// HandleFilterTasks switches the visible subset.
func (c *Controller) HandleFilterTasks(f models.Filter) {
	c.filter = f
	c.view.UpdateFilterControls(f)
	c.render()
}

// HandleImportTasks replaces the collection with imported data. The persister reports
// failures to the user; the store is only reloaded when the import was saved.
func (c *Controller) HandleImportTasks(data []byte) error {
	if err := c.persister.ImportTasks(data); err != nil {
		return err
	}
	c.restore(c.persister.GetTasks())
	return nil
}

// restore replaces the store contents with what the persister already holds.
// Loading never writes back, so records the persister could not read stay stored.
func (c *Controller) restore(saved []models.Task) {
	c.restoring = true
	defer func() { c.restoring = false }()
	c.tasks.SetTasks(saved)
}

// Filter returns the current filter.
func (c *Controller) Filter() models.Filter {
	return c.filter
}

// State returns the full collection, its statistics and the current filter.
func (c *Controller) State() State {
	return State{
		Tasks:  c.tasks.Tasks(),
		Stats:  c.tasks.Stats(),
		Filter: c.filter,
	}
}

// Close detaches the Controller from the store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Controller) onTasksChanged(all []models.Task) {
	if !c.restoring {
		c.persister.SaveTasks(all)
	}
	c.render()
}

func (c *Controller) render() {
	c.view.DisplayTasks(c.tasks.FilteredTasks(c.filter))
}

func (c *Controller) reject(err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.logger.Debug("rejected invalid input", zap.String("field", verr.Field))
		c.view.Alert(verr.Message)
		return
	}
	c.logger.Error("failed to validate input", zap.Error(err))
	c.view.Alert(err.Error())
}
