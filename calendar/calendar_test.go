package calendar

import (
	"testing"
	"time"

	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type recordingSink struct {
	notes []notify.Notification
}

func (r *recordingSink) Add(n notify.Notification) { r.notes = append(r.notes, n) }

func (r *recordingSink) titles() []string {
	var out []string
	for _, n := range r.notes {
		out = append(out, n.Title)
	}
	return out
}

func newTestCalendar(t *testing.T) (*Calendar, *todo.Store, *store.Memory, *recordingSink) {
	t.Helper()
	st := store.NewMemory()
	sink := &recordingSink{}
	clk := clock.NewFake(testNow)
	tasks := todo.NewStore(st, sink, clk, nil)
	cal := New(st, tasks, sink, clk, nil)
	tasks.SetSyncer(cal)
	return cal, tasks, st, sink
}

func day(offset int) *time.Time {
	t := testNow.AddDate(0, 0, offset)
	return &t
}

func eventIDs(events []Event) []string {
	ids := []string{}
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestSync_WithoutTodosWritesNothing(t *testing.T) {
	cal, _, st, sink := newTestCalendar(t)

	require.NoError(t, cal.Sync())

	_, ok, _ := st.Get(store.KeyCalendarEvents)
	assert.False(t, ok)
	assert.Empty(t, sink.notes)
}

func TestSync_ProjectsOpenDatedTasks(t *testing.T) {
	cal, tasks, _, sink := newTestCalendar(t)

	plain, err := tasks.Create(todo.Draft{Title: "Write report", DueDate: day(2), StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)
	_, err = tasks.Create(todo.Draft{Title: "No date"})
	require.NoError(t, err)
	starred, err := tasks.Create(todo.Draft{Title: "Ship", DueDate: day(3), IsAllDay: true, IsPriority: true})
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{
		ID:        "todo-" + plain.ID,
		Title:     "Write report",
		Date:      *day(2),
		StartTime: "10:00",
		EndTime:   "11:00",
		Color:     ColorTask,
		IsTask:    true,
	}, events[0])
	assert.Equal(t, "todo-"+starred.ID, events[1].ID)
	assert.Equal(t, ColorPriority, events[1].Color)
	assert.True(t, events[1].IsAllDay)

	// Sync runs before the store emits its own notification.
	titles := sink.titles()
	require.GreaterOrEqual(t, len(titles), 2)
	assert.Equal(t, []string{"Calendar Synchronized", "New Task Created"}, titles[len(titles)-2:])
	synced := sink.notes[len(sink.notes)-2]
	assert.Equal(t, "2 tasks synchronized with calendar", synced.Message)
	assert.Equal(t, notify.TypeSystem, synced.Type)
}

func TestSync_Idempotent(t *testing.T) {
	cal, tasks, st, _ := newTestCalendar(t)
	_, err := tasks.Create(todo.Draft{Title: "A", DueDate: day(1)})
	require.NoError(t, err)
	_, err = cal.AddEvent(Event{Title: "Lunch", Date: *day(1), StartTime: "12:00"})
	require.NoError(t, err)

	require.NoError(t, cal.Sync())
	first, _, _ := st.Get(store.KeyCalendarEvents)
	require.NoError(t, cal.Sync())
	second, _, _ := st.Get(store.KeyCalendarEvents)

	assert.Equal(t, first, second)
}

func TestSync_FollowsTaskLifecycle(t *testing.T) {
	cal, tasks, _, _ := newTestCalendar(t)
	lunch, err := cal.AddEvent(Event{Title: "Lunch", Date: *day(1), StartTime: "12:00"})
	require.NoError(t, err)
	task, err := tasks.Create(todo.Draft{Title: "A", DueDate: day(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{lunch.ID, "todo-" + task.ID}, eventIDs(cal.Events()))

	_, err = tasks.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lunch.ID}, eventIDs(cal.Events()))

	_, err = tasks.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lunch.ID, "todo-" + task.ID}, eventIDs(cal.Events()))

	require.NoError(t, tasks.Delete(task.ID))
	assert.Equal(t, []string{lunch.ID}, eventIDs(cal.Events()))
}

func TestSync_MalformedEventsAreReplaced(t *testing.T) {
	cal, tasks, st, _ := newTestCalendar(t)
	require.NoError(t, st.Set(store.KeyCalendarEvents, "{not json"))

	task, err := tasks.Create(todo.Draft{Title: "A", DueDate: day(1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"todo-" + task.ID}, eventIDs(cal.Events()))
}

func TestSync_MalformedTodosSkipped(t *testing.T) {
	cal, _, st, sink := newTestCalendar(t)
	require.NoError(t, st.Set(store.KeyTodos, "[oops"))
	require.NoError(t, st.Set(store.KeyCalendarEvents, `[{"id":"x","title":"Keep","date":"2026-10-16T00:00:00Z"}]`))

	require.NoError(t, cal.Sync())

	assert.Equal(t, []string{"x"}, eventIDs(cal.Events()))
	assert.Empty(t, sink.notes)
}

func TestAddAndRemoveEvent(t *testing.T) {
	cal, _, _, _ := newTestCalendar(t)

	_, err := cal.AddEvent(Event{Title: "  "})
	assert.ErrorIs(t, err, ErrBlankTitle)
	_, err = cal.AddEvent(Event{Title: "Bad", StartTime: "9am"})
	assert.ErrorIs(t, err, todo.ErrInvalidTime)

	e, err := cal.AddEvent(Event{Title: "Offsite", Date: *day(4), IsAllDay: true, StartTime: "09:00"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, IsTaskEvent(e.ID))
	assert.Empty(t, e.StartTime)

	assert.ErrorIs(t, cal.RemoveEvent("todo-1"), ErrTaskEvent)
	assert.ErrorIs(t, cal.RemoveEvent("missing"), ErrNotFound)
	require.NoError(t, cal.RemoveEvent(e.ID))
	assert.Empty(t, cal.Events())
}

func TestUpdateTaskFromEvent(t *testing.T) {
	cal, tasks, _, _ := newTestCalendar(t)
	task, err := tasks.Create(todo.Draft{Title: "A", DueDate: day(1)})
	require.NoError(t, err)

	allDay := true
	ok, err := cal.UpdateTaskFromEvent("todo-"+task.ID, todo.ScheduleUpdate{Date: day(5), IsAllDay: &allDay})
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := tasks.Get(task.ID)
	assert.Equal(t, *day(5), *got.DueDate)
	assert.True(t, got.IsAllDay)
	assert.Equal(t, *day(5), cal.Events()[0].Date)

	ok, err = cal.UpdateTaskFromEvent("lunch", todo.ScheduleUpdate{Date: day(2)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cal.UpdateTaskFromEvent("todo-404", todo.ScheduleUpdate{Date: day(2)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateTaskFromEvent(t *testing.T) {
	cal, tasks, _, sink := newTestCalendar(t)

	task, err := cal.CreateTaskFromEvent(Event{
		Title:     "Dentist",
		Date:      *day(6),
		StartTime: "15:00",
		EndTime:   "16:00",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Calendar"}, task.Tags)
	assert.Equal(t, todo.SpaceUpcoming, task.Space)
	assert.Equal(t, "15:00", task.StartTime)
	assert.Len(t, tasks.List(), 1)
	assert.Equal(t, []string{"todo-" + task.ID}, eventIDs(cal.Events()))

	last := sink.notes[len(sink.notes)-1]
	assert.Equal(t, "Task Created from Calendar", last.Title)
	assert.Equal(t, `"Dentist" has been added to your tasks`, last.Message)
	assert.Equal(t, task.ID, last.TaskID)

	_, err = cal.CreateTaskFromEvent(Event{Title: ""})
	assert.ErrorIs(t, err, todo.ErrBlankTitle)
}
