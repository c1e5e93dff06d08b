package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"go.uber.org/zap"
)

var (
	ErrBlankTitle = errors.New("event title must not be blank")
	ErrTaskEvent  = errors.New("event is generated from a task")
	ErrNotFound   = errors.New("event not found")
)

// Tasks is the part of the task store the calendar writes back into.
type Tasks interface {
	Create(d todo.Draft) (todo.Task, error)
	ApplySchedule(id string, u todo.ScheduleUpdate) (todo.Task, error)
}

// Calendar keeps the "calendarEvents" collection: freestanding events plus
// one generated event per open, dated task.
type Calendar struct {
	st    store.Storage
	tasks Tasks
	sink  notify.Sink
	clock clock.Clock
	log   *zap.Logger
}

func New(st store.Storage, tasks Tasks, sink notify.Sink, clk clock.Clock, log *zap.Logger) *Calendar {
	if sink == nil {
		sink = notify.Discard
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Calendar{st: st, tasks: tasks, sink: sink, clock: clk, log: log}
}

// Events returns the stored events. A malformed collection reads as empty.
func (c *Calendar) Events() []Event {
	var events []Event
	if _, err := store.GetJSON(c.st, store.KeyCalendarEvents, &events); err != nil {
		c.log.Error("failed to load calendar events", zap.Error(err))
		return []Event{}
	}
	if events == nil {
		return []Event{}
	}
	return events
}

// Sync regenerates the task events from the persisted task list and keeps
// every freestanding event as is. Without a task list nothing is written.
func (c *Calendar) Sync() error {
	var tasks []todo.Task
	ok, err := store.GetJSON(c.st, store.KeyTodos, &tasks)
	if err != nil {
		c.log.Error("skipping calendar sync", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	events := []Event{}
	for _, e := range c.Events() {
		if !IsTaskEvent(e.ID) {
			events = append(events, e)
		}
	}

	synced := 0
	for _, t := range tasks {
		if t.DueDate == nil || t.Completed {
			continue
		}
		events = append(events, FromTask(t))
		synced++
	}

	if err := store.SetJSON(c.st, store.KeyCalendarEvents, events); err != nil {
		return fmt.Errorf("failed to persist calendar events: %w", err)
	}

	c.log.Debug("calendar synchronized", zap.Int("tasks", synced))
	c.sink.Add(notify.New(notify.TypeSystem, "Calendar Synchronized",
		fmt.Sprintf("%d tasks synchronized with calendar", synced), c.clock.Now()))
	return nil
}

// AddEvent stores a freestanding event under a fresh id.
func (c *Calendar) AddEvent(e Event) (Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return Event{}, ErrBlankTitle
	}
	for _, hhmm := range []string{e.StartTime, e.EndTime} {
		if hhmm == "" {
			continue
		}
		if _, _, err := todo.ParseTimeOfDay(hhmm); err != nil {
			return Event{}, err
		}
	}
	if e.IsAllDay {
		e.StartTime, e.EndTime = "", ""
	}
	e.ID = uuid.NewString()
	e.IsTask = false

	events := append(c.Events(), e)
	if err := store.SetJSON(c.st, store.KeyCalendarEvents, events); err != nil {
		return Event{}, fmt.Errorf("failed to persist calendar events: %w", err)
	}
	return e, nil
}

// RemoveEvent deletes a freestanding event. Task events go away with their
// task.
func (c *Calendar) RemoveEvent(id string) error {
	if IsTaskEvent(id) {
		return ErrTaskEvent
	}
	events := c.Events()
	for i, e := range events {
		if e.ID == id {
			events = append(events[:i:i], events[i+1:]...)
			return store.SetJSON(c.st, store.KeyCalendarEvents, events)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// UpdateTaskFromEvent applies schedule edits made on a task event to its
// task. It reports false for freestanding events and vanished tasks.
func (c *Calendar) UpdateTaskFromEvent(eventID string, u todo.ScheduleUpdate) (bool, error) {
	taskID, ok := TaskID(eventID)
	if !ok {
		return false, nil
	}
	if _, err := c.tasks.ApplySchedule(taskID, u); err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateTaskFromEvent turns an event into a new task in the upcoming space.
func (c *Calendar) CreateTaskFromEvent(e Event) (todo.Task, error) {
	date := e.Date
	t, err := c.tasks.Create(todo.Draft{
		Title:        e.Title,
		Tags:         []string{"Calendar"},
		DueDate:      &date,
		IsAllDay:     e.IsAllDay,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Space:        todo.SpaceUpcoming,
		Reminder:     e.Reminder,
		ReminderTime: e.ReminderTime,
	})
	if err != nil {
		return todo.Task{}, err
	}

	c.sink.Add(notify.New(notify.TypeSystem, "Task Created from Calendar",
		fmt.Sprintf("%q has been added to your tasks", e.Title), c.clock.Now()).ForTask(t.ID))
	return t, nil
}
