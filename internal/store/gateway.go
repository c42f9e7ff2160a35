package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tasktracker/internal/models"
)

const (
	// DefaultKey is the key the task collection is stored under.
	DefaultKey = "mvc-todo-tasks"

	probeKey = "__storage_test__"
)

// Notifier shows a message to the user.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Alert(message string) { f(message) }

// Gateway persists the task collection as JSON under a single key of a Store.
// Failures are logged and reported as false or empty results; they never reach the caller as errors,
// except for ImportTasks which also returns the reason.
type Gateway struct {
	store    Store
	key      string
	logger   *zap.Logger
	notifier Notifier
	onSave   func(ok bool)
	now      func() time.Time
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithKey overrides DefaultKey.
func WithKey(key string) GatewayOption {
	return func(g *Gateway) {
		g.key = key
	}
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithNotifier sets where user-facing storage warnings go.
func WithNotifier(n Notifier) GatewayOption {
	return func(g *Gateway) {
		g.notifier = n
	}
}

// WithSaveObserver registers a callback that receives the outcome of every SaveTasks call.
func WithSaveObserver(fn func(ok bool)) GatewayOption {
	return func(g *Gateway) {
		g.onSave = fn
	}
}

// NewGateway creates a Gateway over s.
func NewGateway(s Store, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:    s,
		key:      DefaultKey,
		logger:   zap.NewNop(),
		notifier: NotifierFunc(func(string) {}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gateway operations are synchronous and never cancelled.
func (g *Gateway) ctx() context.Context {
	return context.Background()
}

// SaveTasks writes the collection. A full store alerts the user.
func (g *Gateway) SaveTasks(tasks []models.Task) bool {
	ok := g.saveTasks(tasks)
	if g.onSave != nil {
		g.onSave(ok)
	}
	return ok
}

func (g *Gateway) saveTasks(tasks []models.Task) bool {
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		g.logger.Error("failed to encode tasks", zap.Error(err))
		return false
	}

	if err := g.store.SetItem(g.ctx(), g.key, string(data)); err != nil {
		g.logger.Error("failed to save tasks", zap.Error(err), zap.Int("bytes", len(data)))
		if errors.Is(err, ErrQuotaExceeded) {
			g.notifier.Alert("Not enough space in local storage")
		}
		return false
	}

	g.logger.Debug("tasks saved", zap.Int("count", len(tasks)))
	return true
}

// GetTasks reads the collection. Absent, unreadable or corrupt data yields an empty collection.
func (g *Gateway) GetTasks() []models.Task {
	raw, ok, err := g.store.GetItem(g.ctx(), g.key)
	if err != nil {
		g.logger.Error("failed to load tasks", zap.Error(err))
		return []models.Task{}
	}
	if !ok || raw == "" {
		g.logger.Debug("no saved tasks")
		return []models.Task{}
	}

	tasks, err := decodeTasks([]byte(raw), func(index int, err error) {
		g.logger.Warn("skipping unreadable task record", zap.Int("index", index), zap.Error(err))
	})
	if err != nil {
		g.logger.Warn("corrupted data in storage, returning empty collection", zap.Error(err))
		return []models.Task{}
	}
	renumberDuplicates(tasks, func(index int, from, to int64) {
		g.logger.Warn("renumbered duplicate task id", zap.Int("index", index), zap.Int64("from", from), zap.Int64("to", to))
	})

	g.logger.Debug("tasks loaded", zap.Int("count", len(tasks)))
	return tasks
}

// ClearTasks removes the stored collection.
func (g *Gateway) ClearTasks() bool {
	if err := g.store.RemoveItem(g.ctx(), g.key); err != nil {
		g.logger.Error("failed to clear tasks", zap.Error(err))
		return false
	}
	g.logger.Info("all tasks cleared from storage")
	return true
}

// IsAvailable probes the store with a throwaway write.
func (g *Gateway) IsAvailable() bool {
	if err := g.store.SetItem(g.ctx(), probeKey, "test"); err != nil {
		g.logger.Warn("storage is not available", zap.Error(err))
		return false
	}
	if err := g.store.RemoveItem(g.ctx(), probeKey); err != nil {
		g.logger.Warn("storage is not available", zap.Error(err))
		return false
	}
	return true
}

// StorageSize returns the size in bytes of the stored collection, 0 if absent.
func (g *Gateway) StorageSize() int {
	raw, ok, err := g.store.GetItem(g.ctx(), g.key)
	if err != nil {
		g.logger.Error("failed to measure storage size", zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	return len(raw)
}

// ExportFilename names an export file after the given day.
func ExportFilename(now time.Time) string {
	return "tasks-" + now.Format(models.DateLayout) + ".json"
}

// ExportData returns the stored tasks as indented JSON. With nothing stored the user is told so
// and ok is false.
func (g *Gateway) ExportData() ([]byte, bool) {
	tasks := g.GetTasks()
	if len(tasks) == 0 {
		g.notifier.Alert("There are no tasks to export")
		return nil, false
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		g.logger.Error("failed to export tasks", zap.Error(err))
		return nil, false
	}
	return data, true
}

// ExportToFile writes the export into dir and returns the file path.
func (g *Gateway) ExportToFile(dir string) (string, bool) {
	data, ok := g.ExportData()
	if !ok {
		return "", false
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		g.logger.Error("failed to create export directory", zap.String("dir", dir), zap.Error(err))
		return "", false
	}

	path := filepath.Join(dir, ExportFilename(g.now().UTC()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		g.logger.Error("failed to export tasks", zap.String("path", path), zap.Error(err))
		return "", false
	}

	g.logger.Info("tasks exported", zap.String("path", path))
	return path, true
}

// ImportTasks validates data and replaces the stored collection with it. Nothing is written
// unless every record is valid.
func (g *Gateway) ImportTasks(data []byte) error {
	tasks, err := parseImport(data)
	if err == nil && !g.SaveTasks(tasks) {
		err = errors.New("failed to save imported tasks")
	}
	if err != nil {
		g.logger.Error("failed to import tasks", zap.Error(err))
		g.notifier.Alert(fmt.Sprintf("Error importing tasks: %v", err))
		return err
	}

	g.logger.Info("tasks imported", zap.Int("count", len(tasks)))
	return nil
}
