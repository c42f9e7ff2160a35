package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/controller"
	"tasktracker/internal/models"
	"tasktracker/internal/store"
	"tasktracker/internal/tasks"
)

func setupTerminal(t *testing.T, input string) (*Terminal, *tasks.Store, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	term := New(strings.NewReader(input), &out)
	term.now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }

	gw := store.NewGateway(store.NewMemoryStore(), store.WithNotifier(term))
	ts := tasks.NewStore()
	ctrl := controller.New(ts, term, gw, nil)
	t.Cleanup(ctrl.Close)
	term.Attach(ctrl)
	return term, ts, &out
}

func TestExecute_Add(t *testing.T) {
	term, ts, out := setupTerminal(t, "")

	term.Execute("add Buy milk | two litres | high | 2025-01-20")

	got := ts.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Text)
	assert.Equal(t, "two litres", got[0].Description)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, "2025-01-20", *got[0].DueDate)
	assert.Contains(t, out.String(), "Buy milk")
	assert.Contains(t, out.String(), "01/20/2025")
}

func TestExecute_AddRejected(t *testing.T) {
	term, ts, out := setupTerminal(t, "")

	term.Execute("add   ")

	assert.Empty(t, ts.Tasks())
	assert.Contains(t, out.String(), "Please enter a task name")
}

func TestExecute_EditDeleteToggle(t *testing.T) {
	term, ts, out := setupTerminal(t, "")
	term.Execute("add draft")

	term.Execute("edit 1 text final")
	assert.Equal(t, "final", ts.Tasks()[0].Text)

	term.Execute("edit 1 priority high")
	assert.Equal(t, models.PriorityHigh, ts.Tasks()[0].Priority)

	term.Execute("edit 1 status done")
	assert.Equal(t, models.StatusDone, ts.Tasks()[0].Status)

	term.Execute("toggle 1")
	assert.Equal(t, models.StatusNotStarted, ts.Tasks()[0].Status)

	term.Execute("status 1")
	assert.Equal(t, models.StatusInProgress, ts.Tasks()[0].Status)

	term.Execute("edit 1 text")
	assert.Contains(t, out.String(), "Task name cannot be empty")
	assert.Equal(t, "final", ts.Tasks()[0].Text)

	term.Execute("edit 9 text ghost")
	assert.Contains(t, out.String(), "No task with id 9")

	term.Execute("delete 1")
	assert.Empty(t, ts.Tasks())
	assert.Contains(t, out.String(), emptyState)
}

func TestExecute_BadArguments(t *testing.T) {
	term, _, out := setupTerminal(t, "")

	term.Execute("toggle abc")
	term.Execute("edit x text y")
	term.Execute("launch")

	assert.Contains(t, out.String(), "A numeric task id is required")
	assert.Contains(t, out.String(), "Usage: edit")
	assert.Contains(t, out.String(), `Unknown command "launch"`)
}

func TestExecute_FilterAndStats(t *testing.T) {
	term, _, out := setupTerminal(t, "")
	term.Execute("add Buy milk | | high")
	term.Execute("add Walk dog")

	term.Execute("filter high-priority")

	require.Len(t, term.rendered, 1)
	assert.Equal(t, "Buy milk", term.rendered[0].Text)
	assert.Equal(t, models.FilterHighPriority, term.filter)

	out.Reset()
	term.Execute("stats")
	assert.Contains(t, out.String(), "2 total")
	assert.Contains(t, out.String(), "1 high priority")
}

func TestExecute_CreateForm(t *testing.T) {
	term, ts, out := setupTerminal(t, "")

	term.Execute("new")
	term.Execute("")
	assert.Contains(t, out.String(), "Please enter a task name", "empty name keeps the form open")
	require.NotNil(t, term.form)

	term.Execute("Write report")
	term.Execute("quarterly")
	term.Execute("")
	term.Execute("next week")
	assert.Contains(t, out.String(), "Due date must use the YYYY-MM-DD format")
	require.NotNil(t, term.form, "form reopens at the due date")

	term.Execute("2025-02-01")

	assert.Nil(t, term.form)
	got := ts.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "Write report", got[0].Text)
	assert.Equal(t, "quarterly", got[0].Description)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
}

func TestExecute_CreateFormCancel(t *testing.T) {
	term, ts, _ := setupTerminal(t, "")

	term.Execute("new")
	term.Execute("Half done")
	term.Execute("cancel")

	assert.Nil(t, term.form)
	assert.Empty(t, ts.Tasks())
}

func TestExecute_Import(t *testing.T) {
	term, ts, out := setupTerminal(t, "")
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":3,"text":"imported","completed":false}]`), 0600))

	term.Execute("import " + path)

	require.Len(t, ts.Tasks(), 1)
	assert.Equal(t, "imported", ts.Tasks()[0].Text)

	term.Execute("import " + filepath.Join(t.TempDir(), "missing.json"))
	assert.Contains(t, out.String(), "Error importing tasks")
}

func TestRun_ProcessesUntilQuit(t *testing.T) {
	term, ts, out := setupTerminal(t, "add first\nadd second\nquit\nadd never\n")

	err := term.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, ts.Tasks(), 2)
	assert.Contains(t, out.String(), "Task Tracker")
}

func TestRun_EndOfInput(t *testing.T) {
	term, ts, _ := setupTerminal(t, "add only\n")

	require.NoError(t, term.Run(context.Background()))
	assert.Len(t, ts.Tasks(), 1)
}

func TestRenderTasks(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	past := "2025-01-01"

	assert.Contains(t, RenderTasks(nil, now), emptyState)

	out := RenderTasks([]models.Task{
		{ID: 1, Text: "late", Status: models.StatusInProgress, Priority: models.PriorityHigh, DueDate: &past},
		{ID: 2, Text: "finished", Status: models.StatusDone, Priority: models.PriorityLow},
	}, now)

	assert.Contains(t, out, "late")
	assert.Contains(t, out, "01/01/2025 !")
	assert.Contains(t, out, "In progress")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Low")
}

func TestQuietRender_KeepsAlerts(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader(""), &out, WithQuietRender())
	ctrl := controller.New(tasks.NewStore(), term, store.NewGateway(store.NewMemoryStore()), nil)
	t.Cleanup(ctrl.Close)

	term.Execute("add quiet task")
	term.Execute("add")

	assert.NotContains(t, out.String(), "quiet task")
	assert.Contains(t, out.String(), "Please enter a task name")
	require.Len(t, term.rendered, 1)
}
