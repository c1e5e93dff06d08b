package reminder

import (
	"context"
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

type taskList []todo.Task

func (l taskList) List() []todo.Task { return l }

type recordingSink struct {
	notes []notify.Notification
}

func (r *recordingSink) Add(n notify.Notification) { r.notes = append(r.notes, n) }

func due(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func newScanner(tasks taskList) (*Scanner, *recordingSink, *clock.Fake, *store.Memory) {
	sink := &recordingSink{}
	clk := clock.NewFake(testNow)
	ledger := store.NewMemory()
	return New(tasks, ledger, sink, clk, nil), sink, clk, ledger
}

func TestScan_DueSoonFiresOnceWithinCooldown(t *testing.T) {
	s, sink, clk, ledger := newScanner(taskList{
		{ID: "1", Title: "Submit timesheet", DueDate: due(45 * time.Minute)},
	})

	assert.Equal(t, 1, s.Scan())
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeDue, sink.notes[0].Type)
	assert.Equal(t, "1", sink.notes[0].TaskID)
	assert.Equal(t, "due-soon-1-1792054800000", sink.notes[0].ID)

	marker, ok, _ := ledger.Get("notified-due-soon-1")
	assert.True(t, ok)
	assert.Equal(t, "1792054800000", marker)

	clk.Advance(30 * time.Second)
	assert.Equal(t, 0, s.Scan())

	for i := 0; i < 40; i++ {
		clk.Advance(time.Minute)
		s.Scan()
	}
	assert.Len(t, sink.notes, 1)
}

func TestScan_DueSoonRefiresAfterCooldown(t *testing.T) {
	s, sink, clk, ledger := newScanner(taskList{
		{ID: "1", Title: "Late train", DueDate: due(50 * time.Minute)},
	})
	// A firing from more than an hour ago does not suppress.
	require.NoError(t, ledger.Set("notified-due-soon-1", "1792050000000"))

	assert.Equal(t, 1, s.Scan())
	clk.Advance(61 * time.Minute)
	// Now past the due instant: nothing more to say.
	assert.Equal(t, 0, s.Scan())
	assert.Len(t, sink.notes, 1)
}

func TestScan_DueSoonBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		task  todo.Task
		fires bool
	}{
		{"exactly sixty minutes", todo.Task{ID: "a", DueDate: due(60 * time.Minute)}, true},
		{"sixty one minutes", todo.Task{ID: "b", DueDate: due(61 * time.Minute)}, false},
		{"due now", todo.Task{ID: "c", DueDate: due(0)}, false},
		{"overdue", todo.Task{ID: "d", DueDate: due(-time.Minute)}, false},
		{"completed", todo.Task{ID: "e", DueDate: due(10 * time.Minute), Completed: true}, false},
		{"undated", todo.Task{ID: "f"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sink, _, _ := newScanner(taskList{tt.task})
			s.Scan()
			assert.Equal(t, tt.fires, len(sink.notes) == 1)
		})
	}
}

func TestScan_DueSoonRequiresToday(t *testing.T) {
	s, sink, clk, _ := newScanner(taskList{
		{ID: "1", Title: "Midnight deploy", DueDate: due(15*time.Hour + 30*time.Minute)},
	})
	clk.Set(testNow.Add(14*time.Hour + 45*time.Minute))

	assert.Equal(t, 0, s.Scan())
	assert.Empty(t, sink.notes)
}

func TestScan_Reminder(t *testing.T) {
	task := todo.Task{
		ID:           "7",
		Title:        "Conference talk",
		DueDate:      due(48 * time.Hour),
		Reminder:     true,
		ReminderTime: 24 * 60,
	}
	s, sink, clk, ledger := newScanner(taskList{task})

	clk.Set(testNow.Add(24*time.Hour - time.Minute))
	assert.Equal(t, 0, s.Scan(), "before the reminder instant")

	clk.Set(testNow.Add(24*time.Hour + 2*time.Minute))
	assert.Equal(t, 1, s.Scan())
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeReminder, sink.notes[0].Type)
	assert.Equal(t, `"Conference talk" is due on Oct 17`, sink.notes[0].Message)
	_, ok, _ := ledger.Get("notified-reminder-7")
	assert.True(t, ok)

	clk.Advance(time.Minute)
	assert.Equal(t, 0, s.Scan(), "still inside cooldown")

	clk.Set(testNow.Add(24*time.Hour + 5*time.Minute))
	assert.Equal(t, 0, s.Scan(), "outside the lookback window")
}

func TestScan_ReminderExactInstantAndWindowEdge(t *testing.T) {
	task := todo.Task{ID: "8", DueDate: due(72 * time.Hour), Reminder: true, ReminderTime: 600}
	instant := testNow.Add(72*time.Hour - 600*time.Minute)

	s, sink, clk, _ := newScanner(taskList{task})
	clk.Set(instant)
	assert.Equal(t, 1, s.Scan())

	s, sink, clk, _ = newScanner(taskList{task})
	clk.Set(instant.Add(ReminderLookback))
	assert.Equal(t, 0, s.Scan())
	assert.Empty(t, sink.notes)
}

func TestScan_ReminderSkippedWhenDueToday(t *testing.T) {
	s, sink, clk, _ := newScanner(taskList{
		{ID: "9", DueDate: due(5 * time.Hour), Reminder: true, ReminderTime: 120},
	})
	clk.Set(testNow.Add(3 * time.Hour))

	assert.Equal(t, 0, s.Scan())
	assert.Empty(t, sink.notes)
}

func TestScan_ReminderWithoutDueDateNeverFires(t *testing.T) {
	s, sink, _, _ := newScanner(taskList{
		{ID: "10", Reminder: true, ReminderTime: 30},
	})
	assert.Equal(t, 0, s.Scan())
	assert.Empty(t, sink.notes)
}

func TestScan_MalformedMarkerIsIgnored(t *testing.T) {
	s, sink, _, ledger := newScanner(taskList{
		{ID: "1", DueDate: due(10 * time.Minute)},
	})
	require.NoError(t, ledger.Set("notified-due-soon-1", "yesterday"))

	assert.Equal(t, 1, s.Scan())
	assert.Len(t, sink.notes, 1)
}

func TestRun_ScansImmediatelyAndStops(t *testing.T) {
	s, sink, _, _ := newScanner(taskList{
		{ID: "1", DueDate: due(10 * time.Minute)},
	})
	s.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return s.ledgerHas("notified-due-soon-1") }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Len(t, sink.notes, 1)
}

func (s *Scanner) ledgerHas(key string) bool {
	_, ok, _ := s.ledger.Get(key)
	return ok
}

func TestTick_RefreshPicksUpTasksPersistedElsewhere(t *testing.T) {
	st := store.NewMemory()
	clk := clock.NewFake(testNow)
	watched := todo.NewStore(st, nil, clk, nil)
	sink := &recordingSink{}
	s := New(watched, st, sink, clk, nil)

	refreshes := 0
	s.Refresh = func() {
		refreshes++
		watched.Reload()
	}

	other := todo.NewStore(st, nil, clk, nil)
	created, err := other.Create(todo.Draft{Title: "Call back", DueDate: due(30 * time.Minute)})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	s.tick()

	assert.Equal(t, 1, refreshes)
	require.Len(t, sink.notes, 1)
	assert.Equal(t, notify.TypeDue, sink.notes[0].Type)
	assert.Equal(t, created.ID, sink.notes[0].TaskID)
}

func TestTick_WithoutRefreshKeepsSnapshot(t *testing.T) {
	st := store.NewMemory()
	clk := clock.NewFake(testNow)
	watched := todo.NewStore(st, nil, clk, nil)
	sink := &recordingSink{}
	s := New(watched, st, sink, clk, nil)

	other := todo.NewStore(st, nil, clk, nil)
	_, err := other.Create(todo.Draft{Title: "Call back", DueDate: due(30 * time.Minute)})
	require.NoError(t, err)

	s.tick()
	assert.Empty(t, sink.notes)
}
