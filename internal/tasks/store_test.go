package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
)

func setupStore(t *testing.T) (*Store, *[][]models.Task) {
	t.Helper()
	fixed := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))

	var notifications [][]models.Task
	s.Subscribe(func(tasks []models.Task) {
		notifications = append(notifications, tasks)
	})
	return s, &notifications
}

func ptr[T any](v T) *T { return &v }

func TestAddTask_AppliesDefaultsAndTrims(t *testing.T) {
	s, notes := setupStore(t)

	task := s.AddTask(models.TaskInput{Text: "  Buy milk  ", Description: "  2 liters "})

	assert.NotZero(t, task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, "2 liters", task.Description)
	assert.Equal(t, models.StatusNotStarted, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), task.CreatedAt)

	require.Len(t, *notes, 1)
	assert.Equal(t, []models.Task{task}, (*notes)[0])
}

func TestAddTask_UniqueIDs(t *testing.T) {
	s, _ := setupStore(t)

	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		task := s.AddTask(models.TaskInput{Text: "task"})
		require.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
}

func TestAddTask_IDsStayAboveLoadedTasks(t *testing.T) {
	s, _ := setupStore(t)
	s.SetTasks([]models.Task{
		{ID: 1736935200123, Text: "legacy", Status: models.StatusDone, Priority: models.PriorityLow},
	})

	task := s.AddTask(models.TaskInput{Text: "new"})

	assert.Greater(t, task.ID, int64(1736935200123))
}

func TestAddTask_KeepsPriorityAndDueDate(t *testing.T) {
	s, _ := setupStore(t)

	task := s.AddTask(models.TaskInput{Text: "x", Priority: models.PriorityHigh, DueDate: "2025-02-01"})

	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-02-01", *task.DueDate)
}

func TestEditTask_PartialUpdate(t *testing.T) {
	s, notes := setupStore(t)
	task := s.AddTask(models.TaskInput{Text: "Original", Description: "desc", Priority: models.PriorityLow, DueDate: "2025-01-01"})

	s.EditTask(task.ID, models.TaskUpdate{Text: ptr("  Updated "), Priority: ptr(models.PriorityHigh)})

	got := s.Tasks()[0]
	assert.Equal(t, "Updated", got.Text)
	assert.Equal(t, "desc", got.Description, "absent fields are untouched")
	assert.Equal(t, models.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Len(t, *notes, 2)
}

func TestEditTask_ClearsDueDateAndIgnoresInvalidStatus(t *testing.T) {
	s, _ := setupStore(t)
	task := s.AddTask(models.TaskInput{Text: "x", DueDate: "2025-01-01"})

	s.EditTask(task.ID, models.TaskUpdate{DueDate: ptr(""), Status: ptr(models.Status("finished"))})

	got := s.Tasks()[0]
	assert.Nil(t, got.DueDate)
	assert.Equal(t, models.StatusNotStarted, got.Status)
}

func TestEditTask_MissingIDIsNoop(t *testing.T) {
	s, notes := setupStore(t)
	s.AddTask(models.TaskInput{Text: "keep"})
	before := s.Tasks()

	s.EditTask(999, models.TaskUpdate{Text: ptr("changed")})

	assert.Equal(t, before, s.Tasks())
	assert.Len(t, *notes, 1, "no notification for a missing id")
}

func TestDeleteTask(t *testing.T) {
	s, notes := setupStore(t)
	a := s.AddTask(models.TaskInput{Text: "a"})
	b := s.AddTask(models.TaskInput{Text: "b"})

	s.DeleteTask(a.ID)

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Len(t, *notes, 3)
}

func TestDeleteTask_MissingIDStillNotifies(t *testing.T) {
	s, notes := setupStore(t)
	s.AddTask(models.TaskInput{Text: "a"})

	s.DeleteTask(12345)

	assert.Len(t, s.Tasks(), 1)
	assert.Len(t, *notes, 2)
}

func TestToggleTask_ThreeCycle(t *testing.T) {
	s, _ := setupStore(t)
	task := s.AddTask(models.TaskInput{Text: "x"})

	expected := []models.Status{models.StatusInProgress, models.StatusDone, models.StatusNotStarted}
	for _, want := range expected {
		s.ToggleTask(task.ID)
		assert.Equal(t, want, s.Tasks()[0].Status)
	}
}

func TestToggleTask_MissingIDIsNoop(t *testing.T) {
	s, notes := setupStore(t)

	s.ToggleTask(42)

	assert.Empty(t, *notes)
}

func TestSetTaskStatus(t *testing.T) {
	s, notes := setupStore(t)
	task := s.AddTask(models.TaskInput{Text: "x"})

	s.SetTaskStatus(task.ID, models.StatusDone)
	assert.Equal(t, models.StatusDone, s.Tasks()[0].Status)

	s.SetTaskStatus(task.ID, models.Status("bogus"))
	assert.Equal(t, models.StatusDone, s.Tasks()[0].Status)

	s.SetTaskStatus(999, models.StatusInProgress)
	assert.Len(t, *notes, 2, "invalid status and missing id do not notify")
}

func TestSetTasks_ReplacesCollection(t *testing.T) {
	s, notes := setupStore(t)
	s.AddTask(models.TaskInput{Text: "old"})

	loaded := []models.Task{{ID: 7, Text: "loaded", Status: models.StatusDone, Priority: models.PriorityLow}}
	s.SetTasks(loaded)
	loaded[0].Text = "mutated after load"

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "loaded", got[0].Text)
	assert.Len(t, *notes, 2)
}

func TestTasks_ReturnsSnapshot(t *testing.T) {
	s, _ := setupStore(t)
	s.AddTask(models.TaskInput{Text: "x", DueDate: "2025-01-01"})

	snapshot := s.Tasks()
	snapshot[0].Text = "hacked"
	*snapshot[0].DueDate = "1999-01-01"

	got := s.Tasks()[0]
	assert.Equal(t, "x", got.Text)
	assert.Equal(t, "2025-01-01", *got.DueDate)
}

func TestFilteredTasks_ActiveAndCompletedPartition(t *testing.T) {
	s, _ := setupStore(t)
	for i := 0; i < 6; i++ {
		task := s.AddTask(models.TaskInput{Text: "t"})
		for j := 0; j < i%3; j++ {
			s.ToggleTask(task.ID)
		}
	}

	active := s.FilteredTasks(models.FilterActive)
	completed := s.FilteredTasks(models.FilterCompleted)

	seen := make(map[int64]int)
	for _, task := range append(active, completed...) {
		seen[task.ID]++
	}
	assert.Len(t, seen, len(s.Tasks()))
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %d appears in both views", id)
	}
}

func TestFilteredTasks_HighPriority(t *testing.T) {
	s, _ := setupStore(t)
	high := s.AddTask(models.TaskInput{Text: "h", Priority: models.PriorityHigh})
	s.AddTask(models.TaskInput{Text: "l", Priority: models.PriorityLow})
	s.SetTaskStatus(high.ID, models.StatusDone)

	got := s.FilteredTasks(models.FilterHighPriority)

	require.Len(t, got, 1)
	assert.Equal(t, high.ID, got[0].ID)
	assert.Len(t, s.FilteredTasks(models.FilterAll), 2)
}

func TestStats_BuyMilkScenario(t *testing.T) {
	s, _ := setupStore(t)

	s.AddTask(models.TaskInput{Text: "Buy milk", Priority: models.PriorityHigh})

	assert.Equal(t, models.Stats{
		Total:        1,
		Completed:    0,
		Active:       1,
		InProgress:   0,
		NotStarted:   1,
		HighPriority: 1,
	}, s.Stats())
}

func TestSubscribe_MultipleListenersAndUnsubscribe(t *testing.T) {
	s := NewStore()
	var order []string

	s.Subscribe(func([]models.Task) { order = append(order, "first") })
	unsubscribe := s.Subscribe(func([]models.Task) { order = append(order, "second") })

	s.AddTask(models.TaskInput{Text: "a"})
	assert.Equal(t, []string{"first", "second"}, order)

	unsubscribe()
	s.AddTask(models.TaskInput{Text: "b"})
	assert.Equal(t, []string{"first", "second", "first"}, order)
}

func TestSubscribe_ListenersGetIndependentSnapshots(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(tasks []models.Task) {
		tasks[0].Text = "changed by listener"
	})
	var seen string
	s.Subscribe(func(tasks []models.Task) {
		seen = tasks[0].Text
	})

	s.AddTask(models.TaskInput{Text: "original"})

	assert.Equal(t, "original", seen)
	assert.Equal(t, "original", s.Tasks()[0].Text)
}
