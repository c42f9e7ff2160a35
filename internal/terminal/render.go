package terminal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"tasktracker/internal/models"
)

var (
	// Title style - bold bright cyan
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const emptyState = "No tasks here yet. Type 'new' to create one."

// RenderTasks draws the tasks as a table, or the empty state.
func RenderTasks(tasks []models.Task, now time.Time) string {
	if len(tasks) == 0 {
		return dimStyle.Render(emptyState)
	}

	rows := make([][]string, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		check := "[ ]"
		if t.IsDone() {
			check = "[x]"
		}
		due := t.DueLabel()
		if t.IsOverdue(now) {
			due = overdueStyle.Render(due + " !")
		}
		desc := t.Description
		if desc == "" {
			desc = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			check,
			t.Text,
			statusStyles[t.Status].Render(t.Status.Text()),
			due,
			priorityStyles[t.Priority].Render(t.Priority.Label()),
			desc,
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "", "Name", "Status", "Due date", "Priority", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return tbl.Render()
}

// RenderTabs draws the filter tabs with the active one highlighted.
func RenderTabs(active models.Filter) string {
	tabs := make([]string, 0, len(models.Filters))
	for _, f := range models.Filters {
		if f == active {
			tabs = append(tabs, activeTabStyle.Render(f.Label()))
			continue
		}
		tabs = append(tabs, tabStyle.Render(f.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderStats draws the aggregate counts on one line.
func RenderStats(s models.Stats) string {
	parts := []string{
		fmt.Sprintf("%d total", s.Total),
		fmt.Sprintf("%d active", s.Active),
		fmt.Sprintf("%d in progress", s.InProgress),
		fmt.Sprintf("%d not started", s.NotStarted),
		fmt.Sprintf("%d done", s.Completed),
		fmt.Sprintf("%d high priority", s.HighPriority),
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

// RenderTitle draws a section title.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderAlert draws a user notice.
func RenderAlert(message string) string {
	return alertStyle.Render("! " + message)
}
