package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasktracker/internal/models"
)

var (
	// ErrCorruptData means the stored value is not a JSON array.
	ErrCorruptData = errors.New("stored tasks are not an array")

	// ErrImportNotArray means imported data is not a JSON array.
	ErrImportNotArray = errors.New("data must be an array")

	// ErrImportSchema means an imported record lacks a required field.
	ErrImportSchema = errors.New("invalid task structure")
)

var errBlankText = errors.New("blank text")

// recordID reads an id written either as a JSON number or as a numeric string.
type recordID int64

func (id *recordID) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid task id %s", data)
		}
		n = int64(f)
	}
	*id = recordID(n)
	return nil
}

// recordTime reads RFC 3339 timestamps and bare dates. Anything else becomes
// the zero time instead of failing the whole record.
type recordTime time.Time

func (t *recordTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = recordTime{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = recordTime(parsed)
			return nil
		}
	}
	*t = recordTime{}
	return nil
}

// taskRecord is the persisted shape of a task. It also accepts the legacy shape that
// carried a boolean "completed" instead of "status".
type taskRecord struct {
	ID          recordID        `json:"id"`
	Text        string          `json:"text"`
	Description string          `json:"description"`
	Status      *models.Status  `json:"status"`
	Completed   *bool           `json:"completed"`
	Priority    models.Priority `json:"priority"`
	DueDate     *string         `json:"dueDate"`
	CreatedAt   recordTime      `json:"createdAt"`
}

// task converts the record, translating a legacy "completed" flag when "status" is absent.
func (r *taskRecord) task() models.Task {
	status := models.StatusNotStarted
	switch {
	case r.Status != nil:
		if r.Status.Valid() {
			status = *r.Status
		}
	case r.Completed != nil && *r.Completed:
		status = models.StatusDone
	}

	priority := r.Priority
	if !priority.Valid() {
		priority = models.PriorityMedium
	}

	var due *string
	if r.DueDate != nil && *r.DueDate != "" {
		d := *r.DueDate
		due = &d
	}

	return models.Task{
		ID:          int64(r.ID),
		Text:        r.Text,
		Description: r.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   time.Time(r.CreatedAt),
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeTasks parses a stored collection. It fails only when data is not an array;
// elements that cannot be read as a task are reported through skip and left out.
func decodeTasks(data []byte, skip func(index int, err error)) ([]models.Task, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	tasks := make([]models.Task, 0, len(raws))
	for i, raw := range raws {
		if isNull(raw) {
			skip(i, errors.New("null record"))
			continue
		}
		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skip(i, err)
			continue
		}
		if strings.TrimSpace(rec.Text) == "" {
			skip(i, errBlankText)
			continue
		}
		tasks = append(tasks, rec.task())
	}
	return tasks, nil
}

// renumberDuplicates gives every repeated id after its first occurrence a fresh id
// above the current maximum. renumbered is called once per changed task.
func renumberDuplicates(tasks []models.Task, renumbered func(index int, from, to int64)) {
	var maxID int64
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	seen := make(map[int64]bool, len(tasks))
	for i := range tasks {
		if !seen[tasks[i].ID] {
			seen[tasks[i].ID] = true
			continue
		}
		maxID++
		renumbered(i, tasks[i].ID, maxID)
		tasks[i].ID = maxID
		seen[maxID] = true
	}
}

// parseImport validates imported data as a whole. Every record needs "id", non-blank "text"
// and either the legacy "completed" flag or a "status"; one bad record rejects the import.
func parseImport(data []byte) ([]models.Task, error) {
	if isNull(data) {
		return nil, ErrImportNotArray
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, ErrImportNotArray
	}

	tasks := make([]models.Task, 0, len(raws))
	seen := make(map[int64]bool, len(raws))
	for i, raw := range raws {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrImportSchema, i)
		}

		for _, required := range []string{"id", "text"} {
			if _, ok := fields[required]; !ok {
				return nil, fmt.Errorf("%w: record %d is missing %q", ErrImportSchema, i, required)
			}
		}
		_, hasCompleted := fields["completed"]
		_, hasStatus := fields["status"]
		if !hasCompleted && !hasStatus {
			return nil, fmt.Errorf("%w: record %d is missing \"completed\" or \"status\"", ErrImportSchema, i)
		}

		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrImportSchema, i, err)
		}
		if strings.TrimSpace(rec.Text) == "" {
			return nil, fmt.Errorf("%w: record %d has blank text", ErrImportSchema, i)
		}
		id := int64(rec.ID)
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrImportSchema, id)
		}
		seen[id] = true

		tasks = append(tasks, rec.task())
	}
	return tasks, nil
}
