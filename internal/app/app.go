// Package app assembles the task tracker: storage, task store, coordinator and presenter.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/controller"
	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/store"
	"tasktracker/internal/tasks"
	"tasktracker/internal/terminal"
)

// App owns one running tracker. It is constructed once at startup and replaces
// any global access to the components.
type App struct {
	backend store.Store
	gateway *store.Gateway
	view    controller.View
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	tasks        *tasks.Store
	ctrl         *controller.Controller
	unsubMetrics func()
}

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	key     string
	now     func() time.Time
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the root logger. Components get named children.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics feeds task and storage metrics to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithStorageKey overrides the key tasks are stored under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithClock overrides the time source for new tasks and display.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New wires the components over backend and renders the saved tasks through view.
// The view also receives storage alerts.
func New(backend store.Store, view controller.View, opts ...Option) *App {
	o := options{
		logger: zap.NewNop(),
		key:    store.DefaultKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	gatewayOpts := []store.GatewayOption{
		store.WithKey(o.key),
		store.WithLogger(o.logger.Named("storage")),
		store.WithNotifier(view),
	}
	if o.metrics != nil {
		gatewayOpts = append(gatewayOpts, store.WithSaveObserver(o.metrics.ObserveSave))
	}

	a := &App{
		backend: backend,
		gateway: store.NewGateway(backend, gatewayOpts...),
		view:    view,
		metrics: o.metrics,
		logger:  o.logger,
		now:     o.now,
	}

	if !a.gateway.IsAvailable() {
		a.logger.Warn("storage not available, tasks will not be persisted")
	}

	a.start()
	a.logger.Info("task tracker initialized", zap.Int("tasks", len(a.tasks.Tasks())))
	return a
}

func (a *App) start() {
	a.tasks = tasks.NewStore(tasks.WithClock(a.now))
	if a.metrics != nil {
		a.unsubMetrics = a.tasks.Subscribe(a.metrics.ObserveTasks)
	}
	a.ctrl = controller.New(a.tasks, a.view, a.gateway, a.logger.Named("controller"))
}

func (a *App) stop() {
	a.ctrl.Close()
	if a.unsubMetrics != nil {
		a.unsubMetrics()
		a.unsubMetrics = nil
	}
}

// State returns the full collection, statistics and current filter.
func (a *App) State() controller.State {
	return a.ctrl.State()
}

// Controller returns the current coordinator. ClearAllData replaces it.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// Gateway returns the persistence gateway.
func (a *App) Gateway() *store.Gateway {
	return a.gateway
}

// DemoTasks are the sample tasks added by AddDemoTasks.
var DemoTasks = []models.TaskInput{
	{Text: "Learn MVC pattern", Description: "Understand Model-View-Controller architecture", Priority: models.PriorityHigh, DueDate: "2025-01-15"},
	{Text: "Implement CRUD operations", Description: "Create, Read, Update, Delete functionality", Priority: models.PriorityMedium, DueDate: "2025-01-20"},
	{Text: "Add localStorage persistence", Description: "Save tasks to browser storage", Priority: models.PriorityMedium, DueDate: "2025-01-22"},
	{Text: "Create responsive design", Description: "Make UI work on all devices", Priority: models.PriorityLow, DueDate: "2025-01-25"},
	{Text: "Document the code", Description: "Add comprehensive code comments", Priority: models.PriorityLow, DueDate: "2025-01-30"},
}

// AddDemoTasks adds DemoTasks through the coordinator and returns how many were added.
func (a *App) AddDemoTasks() int {
	added := 0
	for _, in := range DemoTasks {
		if err := a.ctrl.HandleAddTask(in); err != nil {
			a.logger.Warn("failed to add demo task", zap.String("text", in.Text), zap.Error(err))
			continue
		}
		added++
	}
	a.logger.Info("demo tasks added", zap.Int("count", added))
	return added
}

// ExportData returns the stored tasks as indented JSON.
func (a *App) ExportData() ([]byte, bool) {
	return a.gateway.ExportData()
}

// ExportTasks writes an export file into dir and returns its path.
func (a *App) ExportTasks(dir string) (string, bool) {
	return a.gateway.ExportToFile(dir)
}

// ImportTasks replaces the collection with data.
func (a *App) ImportTasks(data []byte) error {
	return a.ctrl.HandleImportTasks(data)
}

// ClearAllData removes the stored tasks and starts over with an empty collection.
func (a *App) ClearAllData() bool {
	if !a.gateway.ClearTasks() {
		return false
	}
	a.stop()
	a.start()
	a.view.UpdateFilterControls(a.ctrl.Filter())
	return true
}

// ShowState prints the task table, statistics and filter to w.
func (a *App) ShowState(w io.Writer) {
	state := a.State()
	fmt.Fprintln(w, terminal.RenderTitle("Current state"))
	fmt.Fprintln(w, terminal.RenderTasks(state.Tasks, a.now()))
	fmt.Fprintln(w, terminal.RenderStats(state.Stats))
	fmt.Fprintf(w, "Filter: %s\n", state.Filter.Label())
	fmt.Fprintf(w, "Storage: %d bytes\n", a.gateway.StorageSize())
}

// Close detaches the components and closes the backend.
func (a *App) Close() error {
	a.stop()
	return a.backend.Close()
}

// OpenBackend opens the SQLite store at cfg.Path. When it cannot be opened the tracker
// runs on an in-memory store and persistent is false.
func OpenBackend(cfg config.StorageConfig, logger *zap.Logger) (s store.Store, persistent bool) {
	quota := store.WithQuota(cfg.QuotaBytes)

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warn("failed to create data directory, tasks will not be persisted",
				zap.String("dir", dir), zap.Error(err))
			return store.NewMemoryStore(quota), false
		}
	}

	sqlite, err := store.NewSQLiteStore(cfg.Path, quota)
	if err != nil {
		logger.Warn("failed to open storage, tasks will not be persisted",
			zap.String("path", cfg.Path), zap.Error(err))
		return store.NewMemoryStore(quota), false
	}
	return sqlite, true
}
