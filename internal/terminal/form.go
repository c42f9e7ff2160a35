package terminal

import (
	"strings"

	"tasktracker/internal/models"
)

type formStep int

const (
	stepText formStep = iota
	stepDescription
	stepPriority
	stepDueDate
	stepDone
)

// createForm collects the fields of a new task one prompt at a time.
type createForm struct {
	step  formStep
	input models.TaskInput
}

func (f *createForm) prompt() string {
	switch f.step {
	case stepText:
		return "Task name: "
	case stepDescription:
		return "Description: "
	case stepPriority:
		return "Priority (low/medium/high) [medium]: "
	default:
		return "Due date (YYYY-MM-DD) []: "
	}
}

// set stores the answer for the current step and reports whether the form is complete.
func (f *createForm) set(answer string) bool {
	answer = strings.TrimSpace(answer)
	switch f.step {
	case stepText:
		f.input.Text = answer
	case stepDescription:
		f.input.Description = answer
	case stepPriority:
		if answer == "" {
			answer = string(models.PriorityMedium)
		}
		f.input.Priority = models.Priority(strings.ToLower(answer))
	case stepDueDate:
		f.input.DueDate = answer
	}
	f.step++
	return f.step == stepDone
}

// reopen moves back to the step that holds field.
func (f *createForm) reopen(field string) {
	switch field {
	case "Description":
		f.step = stepDescription
	case "Priority":
		f.step = stepPriority
	case "DueDate":
		f.step = stepDueDate
	default:
		f.step = stepText
	}
}
