package todo

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/events"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/store"
	"go.uber.org/zap"
)

// Syncer is re-run after every committed mutation.
type Syncer interface {
	Sync() error
}

type ChangeOp string

const (
	OpCreated  ChangeOp = "created"
	OpUpdated  ChangeOp = "updated"
	OpDeleted  ChangeOp = "deleted"
	OpReloaded ChangeOp = "reloaded"
)

// Change is published on Store.Updated after a mutation was persisted.
type Change struct {
	Op     ChangeOp
	TaskID string
}

// Store owns the task list. Every mutation writes the whole list to storage,
// then publishes a Change, then runs the calendar syncer, in that order.
type Store struct {
	mu     sync.Mutex
	st     store.Storage
	sink   notify.Sink
	clock  clock.Clock
	log    *zap.Logger
	syncer Syncer
	tasks  []Task

	Updated events.Topic[Change]
}

func NewStore(st store.Storage, sink notify.Sink, clk clock.Clock, log *zap.Logger) *Store {
	if sink == nil {
		sink = notify.Discard
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{st: st, sink: sink, clock: clk, log: log}
	s.tasks = s.load()
	return s
}

// SetSyncer installs the component run after each mutation.
func (s *Store) SetSyncer(sy Syncer) {
	s.mu.Lock()
	s.syncer = sy
	s.mu.Unlock()
}

func (s *Store) load() []Task {
	var tasks []Task
	ok, err := store.GetJSON(s.st, store.KeyTodos, &tasks)
	if err != nil {
		s.log.Error("failed to load tasks", zap.Error(err))
		return []Task{}
	}
	if !ok || tasks == nil {
		return []Task{}
	}
	for i := range tasks {
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
	}
	return tasks
}

// Reload replaces the in-memory list with what is currently persisted.
func (s *Store) Reload() {
	s.mu.Lock()
	s.tasks = s.load()
	s.mu.Unlock()
	s.Updated.Publish(Change{Op: OpReloaded})
}

func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i].clone(), true
	}
	return Task{}, false
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// newID derives an id from the creation instant, bumping it until it is
// unused.
func (s *Store) newID(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if s.index(id) < 0 {
			return id
		}
		ms++
	}
}

// commit persists tasks and makes them current. Must be called with s.mu
// held.
func (s *Store) commit(tasks []Task) error {
	if err := store.SetJSON(s.st, store.KeyTodos, tasks); err != nil {
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	s.tasks = tasks
	return nil
}

// afterCommit runs the post-write side effects. Must be called without s.mu
// held.
func (s *Store) afterCommit(change Change, notes ...notify.Notification) {
	s.Updated.Publish(change)

	s.mu.Lock()
	sy := s.syncer
	s.mu.Unlock()
	if sy != nil {
		if err := sy.Sync(); err != nil {
			s.log.Error("calendar sync failed", zap.String("task", change.TaskID), zap.Error(err))
		}
	}

	for _, n := range notes {
		s.sink.Add(n)
	}
}

func (s *Store) Create(d Draft) (Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Task{}, ErrBlankTitle
	}

	t := Task{
		Title:        title,
		Tags:         uniqueTags(d.Tags),
		IsPriority:   d.IsPriority,
		IsAllDay:     d.IsAllDay,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		Reminder:     d.Reminder,
		ReminderTime: d.ReminderTime,
		Space:        normalizeSpace(d.Space),
	}
	if d.DueDate != nil {
		due := *d.DueDate
		t.DueDate = &due
	}
	t.normalizeSchedule()
	if err := validateTimes(t); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	now := s.clock.Now()
	t.ID = s.newID(now)
	t.CreatedAt = now

	tasks := append(s.snapshot(), t)
	if err := s.commit(tasks); err != nil {
		s.mu.Unlock()
		return Task{}, err
	}
	s.mu.Unlock()

	s.log.Debug("task created", zap.String("task", t.ID))
	s.afterCommit(Change{Op: OpCreated, TaskID: t.ID},
		notify.New(notify.TypeSystem, "New Task Created",
			fmt.Sprintf("You've added %q to your tasks", t.Title), now).ForTask(t.ID))

	return t.clone(), nil
}

func (s *Store) snapshot() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// update applies fn to a copy of the task and commits the result. fn returns
// the notifications to emit, and may return an error to abort without any
// mutation.
func (s *Store) update(id string, fn func(t *Task, now time.Time) ([]notify.Notification, error)) (Task, error) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.clock.Now()
	t := s.tasks[i].clone()
	notes, err := fn(&t, now)
	if err != nil {
		s.mu.Unlock()
		return Task{}, err
	}

	tasks := s.snapshot()
	tasks[i] = t
	if err := s.commit(tasks); err != nil {
		s.mu.Unlock()
		return Task{}, err
	}
	s.mu.Unlock()

	s.afterCommit(Change{Op: OpUpdated, TaskID: id}, notes...)
	return t.clone(), nil
}

func (s *Store) Rename(id, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrBlankTitle
	}
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		t.Title = title
		return nil, nil
	})
}

// AddTag appends tag unless the task already carries it.
func (s *Store) AddTag(id, tag string) (Task, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Task{}, ErrBlankTag
	}
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		if !t.HasTag(tag) {
			t.Tags = append(t.Tags, tag)
		}
		return nil, nil
	})
}

func (s *Store) RemoveTag(id, tag string) (Task, error) {
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		kept := []string{}
		for _, existing := range t.Tags {
			if existing != tag {
				kept = append(kept, existing)
			}
		}
		t.Tags = kept
		return nil, nil
	})
}

func (s *Store) SetSpace(id, space string) (Task, error) {
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		t.Space = normalizeSpace(space)
		return nil, nil
	})
}

// SetReminder turns the reminder on or off. minutes is the lead time before
// the due date and is only kept while the reminder is on.
func (s *Store) SetReminder(id string, enabled bool, minutes int) (Task, error) {
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		t.Reminder = enabled
		t.ReminderTime = minutes
		t.normalizeSchedule()
		return nil, nil
	})
}

func (s *Store) ToggleComplete(id string) (Task, error) {
	return s.update(id, func(t *Task, now time.Time) ([]notify.Notification, error) {
		t.Completed = !t.Completed
		if !t.Completed {
			t.CompletedAt = nil
			return nil, nil
		}
		at := now
		t.CompletedAt = &at
		return []notify.Notification{
			notify.New(notify.TypeCompleted, "Task Completed",
				fmt.Sprintf("You've completed %q", t.Title), now).ForTask(t.ID),
		}, nil
	})
}

func (s *Store) TogglePriority(id string) (Task, error) {
	return s.update(id, func(t *Task, now time.Time) ([]notify.Notification, error) {
		t.IsPriority = !t.IsPriority
		if !t.IsPriority {
			return nil, nil
		}
		return []notify.Notification{
			notify.New(notify.TypeSystem, "Priority Task",
				fmt.Sprintf("%q has been marked as priority", t.Title), now).ForTask(t.ID),
		}, nil
	})
}

// SetDueDate sets or, with a nil date, clears the due date.
func (s *Store) SetDueDate(id string, date *time.Time) (Task, error) {
	return s.update(id, func(t *Task, now time.Time) ([]notify.Notification, error) {
		var notes []notify.Notification
		if date != nil && (t.DueDate == nil || !t.DueDate.Equal(*date)) {
			notes = append(notes, notify.New(notify.TypeDue, "Due Date Set",
				fmt.Sprintf("%q is due on %s", t.Title, date.Format("Jan 02, 2006")), now).ForTask(t.ID))
		}
		if date == nil {
			t.DueDate = nil
		} else {
			d := *date
			t.DueDate = &d
		}
		t.normalizeSchedule()
		return notes, nil
	})
}

// SetTimeWindow switches the task between all-day and a start/end window.
func (s *Store) SetTimeWindow(id string, allDay bool, start, end string) (Task, error) {
	return s.update(id, func(t *Task, now time.Time) ([]notify.Notification, error) {
		t.IsAllDay = allDay
		t.StartTime = start
		t.EndTime = end
		t.normalizeSchedule()
		if err := validateTimes(*t); err != nil {
			return nil, err
		}
		return []notify.Notification{
			notify.New(notify.TypeSystem, "Task Time Updated",
				fmt.Sprintf("Time settings updated for %q", t.Title), now).ForTask(t.ID),
		}, nil
	})
}

// ApplySchedule copies the schedule edits of a calendar event back onto its
// task.
func (s *Store) ApplySchedule(id string, u ScheduleUpdate) (Task, error) {
	return s.update(id, func(t *Task, _ time.Time) ([]notify.Notification, error) {
		if u.Date != nil {
			d := *u.Date
			t.DueDate = &d
		}
		if u.StartTime != "" {
			t.StartTime = u.StartTime
		}
		if u.EndTime != "" {
			t.EndTime = u.EndTime
		}
		if u.IsAllDay != nil {
			t.IsAllDay = *u.IsAllDay
		}
		if u.Reminder != nil {
			t.Reminder = *u.Reminder
		}
		if u.ReminderTime != 0 {
			t.ReminderTime = u.ReminderTime
		}
		t.normalizeSchedule()
		return nil, validateTimes(*t)
	})
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.tasks[i]
	now := s.clock.Now()

	tasks := make([]Task, 0, len(s.tasks)-1)
	tasks = append(tasks, s.tasks[:i]...)
	tasks = append(tasks, s.tasks[i+1:]...)
	if err := s.commit(tasks); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.afterCommit(Change{Op: OpDeleted, TaskID: id},
		notify.New(notify.TypeSystem, "Task Deleted",
			fmt.Sprintf("%q has been deleted", removed.Title), now))
	return nil
}

func validateTimes(t Task) error {
	for _, hhmm := range []string{t.StartTime, t.EndTime} {
		if hhmm == "" {
			continue
		}
		if _, _, err := ParseTimeOfDay(hhmm); err != nil {
			return err
		}
	}
	return nil
}
