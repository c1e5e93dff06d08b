package todo

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrBlankTitle  = errors.New("task title must not be blank")
	ErrBlankTag    = errors.New("tag must not be blank")
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTime = errors.New("time of day must be HH:MM")
)

// Task is a single to-do item. The JSON layout is the one persisted under the
// "todos" key.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Tags         []string   `json:"tags"`
	IsPriority   bool       `json:"isPriority"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	IsAllDay     bool       `json:"isAllDay,omitempty"`
	StartTime    string     `json:"startTime,omitempty"`
	EndTime      string     `json:"endTime,omitempty"`
	Reminder     bool       `json:"reminder,omitempty"`
	ReminderTime int        `json:"reminderTime,omitempty"`
	Space        string     `json:"space,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Draft carries the user input for a new task.
type Draft struct {
	Title        string
	Tags         []string
	DueDate      *time.Time
	IsAllDay     bool
	StartTime    string
	EndTime      string
	Space        string
	Reminder     bool
	ReminderTime int
	IsPriority   bool
}

// ScheduleUpdate is an edit coming back from a calendar event. Zero values
// leave the corresponding task field unchanged.
type ScheduleUpdate struct {
	Date         *time.Time
	StartTime    string
	EndTime      string
	IsAllDay     *bool
	Reminder     *bool
	ReminderTime int
}

func (t Task) clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return c
}

// HasTag reports whether the task carries tag, compared exactly.
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// normalizeSchedule enforces the relations between the date fields: times
// only exist on a dated, timed task and the reminder lead only on a task with
// reminders on.
func (t *Task) normalizeSchedule() {
	if t.DueDate == nil {
		t.IsAllDay = false
		t.StartTime = ""
		t.EndTime = ""
	}
	if t.IsAllDay {
		t.StartTime = ""
		t.EndTime = ""
	}
	if !t.Reminder {
		t.ReminderTime = 0
	}
}

func normalizeSpace(space string) string {
	space = strings.TrimSpace(space)
	if space == SpaceAll {
		return ""
	}
	return space
}

func uniqueTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		dup := false
		for _, existing := range out {
			if existing == tag {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, tag)
		}
	}
	return out
}
