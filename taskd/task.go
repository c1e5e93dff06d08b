package taskd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mrusme/taskflow/todo"
)

// DateFormat is the timestamp layout of the taskwarrior JSON format.
const DateFormat = "20060102T150405Z"

// Namespace seeds the name-based uuids of exported tasks, so exporting the
// same task twice yields the same uuid.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mrusme/taskflow"))

type Task struct {
	Description string    `json:"description"`
	Entry       string    `json:"entry"`
	Modified    string    `json:"modified,omitempty"`
	Scheduled   string    `json:"scheduled,omitempty"`
	Due         string    `json:"due,omitempty"`
	End         string    `json:"end,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Project     string    `json:"project,omitempty"`
	Status      string    `json:"status"`
	UUID        uuid.UUID `json:"uuid"`
	Tags        []string  `json:"tags,omitempty"`
}

func format(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// FromTodo converts a task into its taskwarrior representation.
func FromTodo(t todo.Task) Task {
	tw := Task{
		Description: t.Title,
		Entry:       format(t.CreatedAt),
		Modified:    format(t.CreatedAt),
		Project:     t.Space,
		Status:      "pending",
		UUID:        uuid.NewSHA1(Namespace, []byte(t.ID)),
		Tags:        t.Tags,
	}
	if t.IsPriority {
		tw.Priority = "H"
	}
	if t.DueDate != nil {
		tw.Due = format(*t.DueDate)
		if t.StartTime != "" && !t.IsAllDay {
			if s, err := todo.At(*t.DueDate, t.StartTime); err == nil {
				tw.Scheduled = format(s)
			}
		}
	}
	if t.Completed {
		tw.Status = "completed"
		if t.CompletedAt != nil {
			tw.End = format(*t.CompletedAt)
			tw.Modified = tw.End
		}
	}
	return tw
}

func FromTodos(tasks []todo.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromTodo(t))
	}
	return out
}

func (t *Task) String() string {
	j, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("{\"error\": \"%s\"}", err)
	}
	return string(j)
}
