package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tasktracker/internal/config"
	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/store"
	"tasktracker/internal/terminal"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 18, 10, 0, 0, 0, time.UTC)
}

func setupApp(t *testing.T, backend store.Store, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	view := terminal.New(bytes.NewReader(nil), &out, terminal.WithQuietRender())
	a := New(backend, view, append([]Option{WithClock(fixedNow)}, opts...)...)
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func TestAddDemoTasks(t *testing.T) {
	a, _ := setupApp(t, store.NewMemoryStore())

	added := a.AddDemoTasks()

	assert.Equal(t, 5, added)
	state := a.State()
	require.Len(t, state.Tasks, 5)
	assert.Equal(t, "Learn MVC pattern", state.Tasks[0].Text)
	assert.Equal(t, models.Stats{Total: 5, Active: 5, NotStarted: 5, HighPriority: 1}, state.Stats)
	assert.Len(t, a.Gateway().GetTasks(), 5, "every add is persisted")
}

func TestReloadFromBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	first, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	a := New(first, terminal.New(bytes.NewReader(nil), &bytes.Buffer{}, terminal.WithQuietRender()))
	a.AddDemoTasks()
	a.Controller().HandleToggleTask(a.State().Tasks[0].ID)
	require.NoError(t, a.Close())

	second, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	b, _ := setupApp(t, second)

	state := b.State()
	require.Len(t, state.Tasks, 5)
	assert.Equal(t, models.StatusInProgress, state.Tasks[0].Status)
}

func TestExportTasks(t *testing.T) {
	a, out := setupApp(t, store.NewMemoryStore())
	dir := t.TempDir()

	_, ok := a.ExportTasks(dir)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "There are no tasks to export")

	a.AddDemoTasks()
	path, ok := a.ExportTasks(dir)

	require.True(t, ok)
	assert.Equal(t, "tasks-2025-01-18.json", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	b, _ := setupApp(t, store.NewMemoryStore())
	require.NoError(t, b.ImportTasks(data))
	assert.Equal(t, a.State().Tasks, b.State().Tasks)
}

func TestClearAllData(t *testing.T) {
	a, _ := setupApp(t, store.NewMemoryStore())
	a.AddDemoTasks()
	a.Controller().HandleFilterTasks(models.FilterCompleted)

	require.True(t, a.ClearAllData())

	state := a.State()
	assert.Empty(t, state.Tasks)
	assert.Equal(t, models.FilterAll, state.Filter)
	assert.Empty(t, a.Gateway().GetTasks())
	assert.Zero(t, a.Gateway().StorageSize())

	require.NoError(t, a.Controller().HandleAddTask(models.TaskInput{Text: "fresh"}))
	assert.Len(t, a.Gateway().GetTasks(), 1, "the rebuilt coordinator persists")
}

func TestShowState(t *testing.T) {
	a, _ := setupApp(t, store.NewMemoryStore())
	a.AddDemoTasks()
	var out bytes.Buffer

	a.ShowState(&out)

	assert.Contains(t, out.String(), "Current state")
	assert.Contains(t, out.String(), "Document the code")
	assert.Contains(t, out.String(), "5 total")
	assert.Contains(t, out.String(), "Filter: All")
}

func TestMetricsWiring(t *testing.T) {
	m := metrics.New()
	a, _ := setupApp(t, store.NewMemoryStore(store.WithQuota(300)), WithMetrics(m))

	a.AddDemoTasks()

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Tasks.WithLabelValues("not-started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageWrites.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StorageWrites.WithLabelValues("failed")), "writes past the quota fail")
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Changes))
}

type unavailableStore struct{ *store.MemoryStore }

func (unavailableStore) SetItem(context.Context, string, string) error {
	return store.ErrClosed
}

func TestNew_WarnsWhenStorageUnavailable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	a, _ := setupApp(t, unavailableStore{store.NewMemoryStore()}, WithLogger(zap.New(core)))

	assert.Equal(t, 1, logs.FilterMessage("storage not available, tasks will not be persisted").Len())
	require.NoError(t, a.Controller().HandleAddTask(models.TaskInput{Text: "memory only"}))
	assert.Len(t, a.State().Tasks, 1, "the tracker keeps working in memory")
}

func TestOpenBackend(t *testing.T) {
	logger := zap.NewNop()

	s, persistent := OpenBackend(config.StorageConfig{
		Path:       filepath.Join(t.TempDir(), "nested", "tasks.db"),
		QuotaBytes: store.DefaultQuotaBytes,
	}, logger)
	t.Cleanup(func() { s.Close() })
	assert.True(t, persistent)
	assert.IsType(t, &store.SQLiteStore{}, s)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	s, persistent = OpenBackend(config.StorageConfig{Path: filepath.Join(blocker, "tasks.db")}, logger)
	t.Cleanup(func() { s.Close() })
	assert.False(t, persistent)
	assert.IsType(t, &store.MemoryStore{}, s)
}
