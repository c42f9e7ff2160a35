package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTextLength        = 200
	MaxDescriptionLength = 500
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank rejects strings that are empty once surrounding whitespace is removed.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError is a user input problem. Message is meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TaskInput is the data submitted to create a task.
type TaskInput struct {
	Text        string   `json:"text" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"max=500"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// Validate checks the input and returns a *ValidationError for the first invalid field.
func (in *TaskInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{
		Field:   fe.Field(),
		Message: message(fe.Field(), fe.Tag(), false),
	}
}

// TaskUpdate carries a partial edit. Nil fields are left untouched.
type TaskUpdate struct {
	Text        *string   `json:"text,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"` // empty string clears the due date
	Status      *Status   `json:"status,omitempty"`
}

// IsEmpty returns true if the update carries no field.
func (u *TaskUpdate) IsEmpty() bool {
	return u.Text == nil && u.Description == nil && u.Priority == nil && u.DueDate == nil && u.Status == nil
}

// Validate applies the TaskInput rules to the fields that are present.
func (u *TaskUpdate) Validate() error {
	checks := []struct {
		field string
		value *string
		tag   string
	}{
		{"Text", u.Text, "notblank,max=200"},
		{"Description", u.Description, "max=500"},
		{"Priority", (*string)(u.Priority), "oneof=low medium high"},
		{"DueDate", u.DueDate, "omitempty,datetime=2006-01-02"},
		{"Status", (*string)(u.Status), "oneof=not-started in-progress done"},
	}

	for _, c := range checks {
		if c.value == nil {
			continue
		}
		err := validate.Var(*c.value, c.tag)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		return &ValidationError{
			Field:   c.field,
			Message: message(c.field, fieldErrs[0].Tag(), true),
		}
	}
	return nil
}

func message(field, tag string, edit bool) string {
	switch field {
	case "Text":
		if tag == "notblank" {
			if edit {
				return "Task name cannot be empty"
			}
			return "Please enter a task name"
		}
		return "Task name is too long (max 200 characters)"
	case "Description":
		return "Description is too long (max 500 characters)"
	case "Priority":
		return "Priority must be 'low', 'medium', or 'high'"
	case "DueDate":
		return "Due date must use the YYYY-MM-DD format"
	case "Status":
		return "Status must be 'not-started', 'in-progress', or 'done'"
	default:
		return field + " is invalid"
	}
}
