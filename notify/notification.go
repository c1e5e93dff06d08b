package notify

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeReminder  Type = "reminder"
	TypeDue       Type = "due"
	TypeSystem    Type = "system"
	TypeCompleted Type = "completed"
)

// Notification is a user facing alert. TaskID is a weak reference: the task
// may have been deleted since.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	Read    bool      `json:"read"`
	Type    Type      `json:"type"`
	TaskID  string    `json:"taskId,omitempty"`
}

func New(typ Type, title, message string, now time.Time) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Title:   title,
		Message: message,
		Time:    now,
		Type:    typ,
	}
}

// ForTask returns a copy of n referencing the task with the given id.
func (n Notification) ForTask(taskID string) Notification {
	n.TaskID = taskID
	return n
}

// Sink accepts notifications produced by the rest of the application.
type Sink interface {
	Add(n Notification)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(Notification) {}
