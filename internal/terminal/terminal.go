// Package terminal is a line-oriented presenter for the task tracker.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tasktracker/internal/controller"
	"tasktracker/internal/models"
)

// Backend exposes the application operations the terminal needs beyond intents.
type Backend interface {
	State() controller.State
}

// Terminal reads commands from an input stream and renders to an output stream.
// It implements controller.View. It is not safe for concurrent use.
type Terminal struct {
	in      io.Reader
	out     io.Writer
	backend Backend
	now     func() time.Time

	onAdd          func(models.TaskInput) error
	onEdit         func(int64, models.TaskUpdate) error
	onDelete       func(int64)
	onToggle       func(int64)
	onChangeStatus func(int64)
	onFilter       func(models.Filter)
	onImport       func([]byte) error

	rendered []models.Task
	filter   models.Filter
	form     *createForm
	quiet    bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithQuietRender stops list and tab redraws after each change. Alerts are still printed.
func WithQuietRender() Option {
	return func(t *Terminal) {
		t.quiet = true
	}
}

// New creates a terminal presenter over in and out.
func New(in io.Reader, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		in:       in,
		out:      out,
		now:      time.Now,
		rendered: []models.Task{},
		filter:   models.FilterAll,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach sets the backend used for statistics.
func (t *Terminal) Attach(b Backend) {
	t.backend = b
}

func (t *Terminal) BindAddTask(fn func(models.TaskInput) error)          { t.onAdd = fn }
func (t *Terminal) BindEditTask(fn func(int64, models.TaskUpdate) error) { t.onEdit = fn }
func (t *Terminal) BindDeleteTask(fn func(int64))                        { t.onDelete = fn }
func (t *Terminal) BindToggleTask(fn func(int64))                        { t.onToggle = fn }
func (t *Terminal) BindChangeStatus(fn func(int64))                      { t.onChangeStatus = fn }
func (t *Terminal) BindFilterTasks(fn func(models.Filter))               { t.onFilter = fn }
func (t *Terminal) BindImportTasks(fn func([]byte) error)                { t.onImport = fn }

// DisplayTasks redraws the list.
func (t *Terminal) DisplayTasks(tasks []models.Task) {
	t.rendered = models.CloneTasks(tasks)
	if t.quiet {
		return
	}
	fmt.Fprintln(t.out, RenderTasks(t.rendered, t.now()))
}

// UpdateFilterControls redraws the filter tabs.
func (t *Terminal) UpdateFilterControls(f models.Filter) {
	t.filter = f
	if t.quiet {
		return
	}
	fmt.Fprintln(t.out, RenderTabs(f))
}

// Alert prints a notice.
func (t *Terminal) Alert(message string) {
	fmt.Fprintln(t.out, RenderAlert(message))
}

// Run processes input lines until quit, end of input or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, RenderTitle("Task Tracker")+" - type 'help' for commands")
	t.prompt()

	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := t.Execute(scanner.Text()); quit {
			return nil
		}
		t.prompt()
	}
	return scanner.Err()
}

func (t *Terminal) prompt() {
	if t.form != nil {
		fmt.Fprint(t.out, t.form.prompt())
		return
	}
	fmt.Fprint(t.out, "> ")
}

// Execute runs a single input line and reports whether the user asked to quit.
func (t *Terminal) Execute(line string) bool {
	if t.form != nil {
		t.fillForm(line)
		return false
	}

	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
	case "new":
		t.form = &createForm{}
	case "add":
		t.add(rest)
	case "edit":
		t.edit(rest)
	case "delete", "rm":
		t.withID(rest, t.onDelete)
	case "toggle":
		t.withID(rest, t.onToggle)
	case "status":
		t.withID(rest, t.onChangeStatus)
	case "filter":
		if t.onFilter != nil {
			t.onFilter(models.Filter(strings.ToLower(rest)))
		}
	case "list", "ls":
		fmt.Fprintln(t.out, RenderTabs(t.filter))
		fmt.Fprintln(t.out, RenderTasks(t.rendered, t.now()))
	case "stats":
		t.stats()
	case "import":
		t.importFile(rest)
	case "help", "?":
		fmt.Fprint(t.out, helpText)
	case "quit", "exit", "q":
		return true
	default:
		t.Alert(fmt.Sprintf("Unknown command %q, type 'help' for the list", cmd))
	}
	return false
}

// add parses "text | description | priority | due".
func (t *Terminal) add(args string) {
	parts := strings.Split(args, "|")
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	in := models.TaskInput{
		Text:        field(0),
		Description: field(1),
		Priority:    models.Priority(strings.ToLower(field(2))),
		DueDate:     field(3),
	}
	if t.onAdd != nil {
		t.onAdd(in)
	}
}

// edit parses "<id> <field> <value>". An empty value for due clears the due date.
func (t *Terminal) edit(args string) {
	idStr, rest, _ := strings.Cut(args, " ")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		t.Alert("Usage: edit <id> <text|description|priority|due|status> <value>")
		return
	}

	field, value, _ := strings.Cut(strings.TrimSpace(rest), " ")
	value = strings.TrimSpace(value)

	var u models.TaskUpdate
	switch strings.ToLower(field) {
	case "text", "name":
		u.Text = &value
	case "description", "desc":
		u.Description = &value
	case "priority":
		p := models.Priority(strings.ToLower(value))
		u.Priority = &p
	case "due", "date":
		u.DueDate = &value
	case "status":
		s := models.Status(strings.ToLower(value))
		u.Status = &s
	default:
		t.Alert("Usage: edit <id> <text|description|priority|due|status> <value>")
		return
	}

	if !t.exists(id) {
		t.Alert(fmt.Sprintf("No task with id %d", id))
		return
	}
	if t.onEdit != nil {
		t.onEdit(id, u)
	}
}

func (t *Terminal) withID(arg string, fn func(int64)) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		t.Alert("A numeric task id is required")
		return
	}
	if fn != nil {
		fn(id)
	}
}

func (t *Terminal) exists(id int64) bool {
	if t.backend == nil {
		return true
	}
	for _, task := range t.backend.State().Tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}

func (t *Terminal) importFile(path string) {
	if path == "" {
		t.Alert("Usage: import <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Alert(fmt.Sprintf("Error importing tasks: %v", err))
		return
	}
	if t.onImport != nil {
		t.onImport(data)
	}
}

func (t *Terminal) stats() {
	if t.backend == nil {
		return
	}
	fmt.Fprintln(t.out, RenderStats(t.backend.State().Stats))
}

// fillForm stores one answer of the create form and submits it after the last field.
// Invalid input reopens the form at the offending field.
func (t *Terminal) fillForm(line string) {
	if strings.EqualFold(strings.TrimSpace(line), "cancel") {
		t.form = nil
		fmt.Fprintln(t.out, dimStyle.Render("Cancelled."))
		return
	}

	if t.form.step == stepText && strings.TrimSpace(line) == "" {
		t.Alert("Please enter a task name")
		return
	}

	if !t.form.set(line) {
		return
	}

	in := t.form.input
	if t.onAdd == nil {
		t.form = nil
		return
	}
	err := t.onAdd(in)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		t.form.reopen(verr.Field)
		return
	}
	t.form = nil
}

const helpText = `Commands:
  new                                       open the create form ('cancel' aborts it)
  add <text>[ | description[ | priority[ | due]]]
  edit <id> <text|description|priority|due|status> <value>
  delete <id>                               delete a task
  toggle <id>                               advance the status
  status <id>                               advance the status
  filter <all|active|completed|high-priority>
  list                                      show the current list
  stats                                     show statistics
  import <file>                             replace all tasks with an export file
  help                                      show this help
  quit                                      leave
`
