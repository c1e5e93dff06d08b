package todo

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type recordingSink struct {
	notes []notify.Notification
}

func (r *recordingSink) Add(n notify.Notification) { r.notes = append(r.notes, n) }

type syncerFunc func() error

func (f syncerFunc) Sync() error { return f() }

func newTestStore(t *testing.T) (*Store, *store.Memory, *recordingSink, *clock.Fake) {
	t.Helper()
	st := store.NewMemory()
	sink := &recordingSink{}
	clk := clock.NewFake(testNow)
	return NewStore(st, sink, clk, nil), st, sink, clk
}

func persisted(t *testing.T, st store.Storage) []Task {
	t.Helper()
	var tasks []Task
	_, err := store.GetJSON(st, store.KeyTodos, &tasks)
	require.NoError(t, err)
	return tasks
}

func TestCreate_RejectsBlankTitle(t *testing.T) {
	s, st, sink, _ := newTestStore(t)

	_, err := s.Create(Draft{Title: "   "})

	assert.True(t, errors.Is(err, ErrBlankTitle))
	assert.Empty(t, s.List())
	_, ok, _ := st.Get(store.KeyTodos)
	assert.False(t, ok)
	assert.Empty(t, sink.notes)
}

func TestCreate_AssignsFieldsAndPersists(t *testing.T) {
	s, st, sink, _ := newTestStore(t)
	due := testNow.Add(48 * time.Hour)

	task, err := s.Create(Draft{
		Title:        "  Ship release ",
		Tags:         []string{"Work", "Team", "Work", " "},
		DueDate:      &due,
		StartTime:    "09:00",
		EndTime:      "10:00",
		Space:        "all",
		Reminder:     false,
		ReminderTime: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ship release", task.Title)
	assert.Equal(t, []string{"Work", "Team"}, task.Tags)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Equal(t, "1792054800000", task.ID)
	assert.False(t, task.Completed)
	assert.Empty(t, task.Space)
	assert.Zero(t, task.ReminderTime)
	assert.Equal(t, "09:00", task.StartTime)

	saved := persisted(t, st)
	require.Len(t, saved, 1)
	assert.Equal(t, task.ID, saved[0].ID)

	require.Len(t, sink.notes, 1)
	assert.Equal(t, "New Task Created", sink.notes[0].Title)
	assert.Equal(t, task.ID, sink.notes[0].TaskID)
}

func TestCreate_AllDayDropsTimes(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	due := testNow

	task, err := s.Create(Draft{Title: "Holiday", DueDate: &due, IsAllDay: true, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.True(t, task.IsAllDay)
	assert.Empty(t, task.StartTime)
	assert.Empty(t, task.EndTime)

	undated, err := s.Create(Draft{Title: "Someday", IsAllDay: true, StartTime: "09:00"})
	require.NoError(t, err)
	assert.False(t, undated.IsAllDay)
	assert.Empty(t, undated.StartTime)
}

func TestCreate_InvalidTime(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	due := testNow

	_, err := s.Create(Draft{Title: "Meeting", DueDate: &due, StartTime: "9am"})
	assert.True(t, errors.Is(err, ErrInvalidTime))
	assert.Empty(t, s.List())
}

func TestCreate_UniqueIDsWithinSameMillisecond(t *testing.T) {
	s, _, _, _ := newTestStore(t)

	a, err := s.Create(Draft{Title: "a"})
	require.NoError(t, err)
	b, err := s.Create(Draft{Title: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestToggleComplete_RoundTrip(t *testing.T) {
	s, st, sink, clk := newTestStore(t)
	task, err := s.Create(Draft{Title: "Write report"})
	require.NoError(t, err)
	sink.notes = nil

	clk.Advance(time.Hour)
	done, err := s.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow.Add(time.Hour), *done.CompletedAt)
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeCompleted, sink.notes[0].Type)

	undone, err := s.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)
	assert.Len(t, sink.notes, 1)

	saved := persisted(t, st)
	assert.Equal(t, task.Completed, saved[0].Completed)
	assert.Nil(t, saved[0].CompletedAt)
}

func TestTogglePriority_NotifiesOnlyWhenSet(t *testing.T) {
	s, _, sink, _ := newTestStore(t)
	task, _ := s.Create(Draft{Title: "Pay rent"})
	sink.notes = nil

	on, err := s.TogglePriority(task.ID)
	require.NoError(t, err)
	assert.True(t, on.IsPriority)

	off, err := s.TogglePriority(task.ID)
	require.NoError(t, err)
	assert.False(t, off.IsPriority)

	require.Len(t, sink.notes, 1)
	assert.Equal(t, "Priority Task", sink.notes[0].Title)
}

func TestSetDueDate(t *testing.T) {
	s, _, sink, _ := newTestStore(t)
	task, _ := s.Create(Draft{Title: "Dentist"})
	sink.notes = nil
	due := time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)

	updated, err := s.SetDueDate(task.ID, &due)
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, due, *updated.DueDate)
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeDue, sink.notes[0].Type)
	assert.Equal(t, `"Dentist" is due on Oct 20, 2026`, sink.notes[0].Message)

	_, err = s.SetDueDate(task.ID, &due)
	require.NoError(t, err)
	assert.Len(t, sink.notes, 1)

	cleared, err := s.SetDueDate(task.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
}

func TestSetTimeWindow(t *testing.T) {
	s, _, sink, _ := newTestStore(t)
	due := testNow
	task, _ := s.Create(Draft{Title: "Standup", DueDate: &due})
	sink.notes = nil

	timed, err := s.SetTimeWindow(task.ID, false, "09:30", "09:45")
	require.NoError(t, err)
	assert.Equal(t, "09:30", timed.StartTime)
	assert.Equal(t, "09:45", timed.EndTime)

	allDay, err := s.SetTimeWindow(task.ID, true, "09:30", "09:45")
	require.NoError(t, err)
	assert.True(t, allDay.IsAllDay)
	assert.Empty(t, allDay.StartTime)
	assert.Empty(t, allDay.EndTime)
	assert.Len(t, sink.notes, 2)

	_, err = s.SetTimeWindow(task.ID, false, "25:00", "")
	assert.True(t, errors.Is(err, ErrInvalidTime))
	got, _ := s.Get(task.ID)
	assert.True(t, got.IsAllDay)
}

func TestTagsSpaceAndReminder(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	task, _ := s.Create(Draft{Title: "Plan offsite", Tags: []string{"Work"}})

	task, err := s.AddTag(task.ID, "Team")
	require.NoError(t, err)
	task, err = s.AddTag(task.ID, "Team")
	require.NoError(t, err)
	assert.Equal(t, []string{"Work", "Team"}, task.Tags)

	_, err = s.AddTag(task.ID, " ")
	assert.True(t, errors.Is(err, ErrBlankTag))

	task, err = s.RemoveTag(task.ID, "Work")
	require.NoError(t, err)
	assert.Equal(t, []string{"Team"}, task.Tags)

	task, err = s.SetSpace(task.ID, "1700000000000")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", task.Space)

	task, err = s.SetReminder(task.ID, true, 15)
	require.NoError(t, err)
	assert.True(t, task.Reminder)
	assert.Equal(t, 15, task.ReminderTime)

	task, err = s.SetReminder(task.ID, false, 15)
	require.NoError(t, err)
	assert.Zero(t, task.ReminderTime)

	task, err = s.Rename(task.ID, "Plan team offsite")
	require.NoError(t, err)
	assert.Equal(t, "Plan team offsite", task.Title)

	_, err = s.Rename(task.ID, "")
	assert.True(t, errors.Is(err, ErrBlankTitle))
}

func TestDelete(t *testing.T) {
	s, st, sink, _ := newTestStore(t)
	a, _ := s.Create(Draft{Title: "keep"})
	b, _ := s.Create(Draft{Title: "drop"})
	sink.notes = nil

	require.NoError(t, s.Delete(b.ID))

	saved := persisted(t, st)
	require.Len(t, saved, 1)
	assert.Equal(t, a.ID, saved[0].ID)
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeSystem, sink.notes[0].Type)
	assert.Equal(t, `"drop" has been deleted`, sink.notes[0].Message)

	err := s.Delete(b.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Len(t, sink.notes, 1)
}

func TestUnknownIDIsNotFound(t *testing.T) {
	s, _, _, _ := newTestStore(t)

	_, err := s.ToggleComplete("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMutation_SideEffectOrder(t *testing.T) {
	s, st, _, _ := newTestStore(t)
	var order []string

	s.Updated.Subscribe(func(c Change) {
		order = append(order, "broadcast")
		saved := persisted(t, st)
		assert.Len(t, saved, 1, "listeners must observe persisted state")
	})
	s.SetSyncer(syncerFunc(func() error {
		order = append(order, "sync")
		saved := persisted(t, st)
		assert.Len(t, saved, 1)
		return nil
	}))

	_, err := s.Create(Draft{Title: "ordered"})
	require.NoError(t, err)

	assert.Equal(t, []string{"broadcast", "sync"}, order)
}

func TestApplySchedule(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	due := testNow
	task, _ := s.Create(Draft{Title: "Review", DueDate: &due, StartTime: "09:00", EndTime: "10:00", Reminder: true, ReminderTime: 30})

	moved := time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)
	updated, err := s.ApplySchedule(task.ID, ScheduleUpdate{Date: &moved, EndTime: "11:00"})
	require.NoError(t, err)
	assert.Equal(t, moved, *updated.DueDate)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, "11:00", updated.EndTime)
	assert.Equal(t, 30, updated.ReminderTime)

	allDay := true
	updated, err = s.ApplySchedule(task.ID, ScheduleUpdate{IsAllDay: &allDay})
	require.NoError(t, err)
	assert.True(t, updated.IsAllDay)
	assert.Empty(t, updated.StartTime)
}

func TestLoad_MalformedTodosStartEmpty(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyTodos, "[{broken"))

	s := NewStore(st, nil, clock.NewFake(testNow), nil)
	assert.Empty(t, s.List())

	_, err := s.Create(Draft{Title: "fresh"})
	require.NoError(t, err)
	assert.Len(t, persisted(t, st), 1)
}

func TestReload(t *testing.T) {
	s, st, _, _ := newTestStore(t)
	raw, err := json.Marshal([]Task{{ID: "1", Title: "from elsewhere", CreatedAt: testNow}})
	require.NoError(t, err)
	require.NoError(t, st.Set(store.KeyTodos, string(raw)))

	var changes []Change
	s.Updated.Subscribe(func(c Change) { changes = append(changes, c) })
	s.Reload()

	tasks := s.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, "from elsewhere", tasks[0].Title)
	assert.Equal(t, []string{}, tasks[0].Tags)
	assert.Equal(t, []Change{{Op: OpReloaded}}, changes)
}
