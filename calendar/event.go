package calendar

import (
	"strings"
	"time"

	"github.com/mrusme/taskflow/todo"
)

// TaskPrefix marks events generated from tasks. Those events are owned by
// Sync and rewritten on every run.
const TaskPrefix = "todo-"

const (
	ColorPriority = "bg-red-500"
	ColorTask     = "bg-blue-500"
)

// Event is an entry of the "calendarEvents" collection.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"startTime,omitempty"`
	EndTime      string    `json:"endTime,omitempty"`
	IsAllDay     bool      `json:"isAllDay,omitempty"`
	Color        string    `json:"color,omitempty"`
	Reminder     bool      `json:"reminder,omitempty"`
	ReminderTime int       `json:"reminderTime,omitempty"`
	IsTask       bool      `json:"isTask,omitempty"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	RRule        string    `json:"rrule,omitempty"`
}

func IsTaskEvent(id string) bool {
	return strings.HasPrefix(id, TaskPrefix)
}

// TaskID returns the id of the task an event was generated from.
func TaskID(eventID string) (string, bool) {
	if !IsTaskEvent(eventID) {
		return "", false
	}
	return strings.TrimPrefix(eventID, TaskPrefix), true
}

// FromTask projects a dated task onto its calendar event.
func FromTask(t todo.Task) Event {
	color := ColorTask
	if t.IsPriority {
		color = ColorPriority
	}
	return Event{
		ID:           TaskPrefix + t.ID,
		Title:        t.Title,
		Date:         *t.DueDate,
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		IsAllDay:     t.IsAllDay,
		Color:        color,
		Reminder:     t.Reminder,
		ReminderTime: t.ReminderTime,
		IsTask:       true,
	}
}
