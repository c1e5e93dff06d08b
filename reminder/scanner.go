package reminder

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"go.uber.org/zap"
)

const (
	DefaultInterval = time.Minute

	// A task is due soon when its due instant lies within this window ahead.
	DueSoonWindow   = 60 * time.Minute
	DueSoonCooldown = 60 * time.Minute

	// Reminder instants up to this far in the past still fire, which covers
	// the polling granularity.
	ReminderLookback = 5 * time.Minute
	ReminderCooldown = 12 * time.Hour
)

type TaskSource interface {
	List() []todo.Task
}

// Scanner polls the task list for due-soon tasks and reminders. The time of
// each firing is kept in storage so the same condition does not fire again
// within its cooldown.
type Scanner struct {
	tasks  TaskSource
	ledger store.Storage
	sink   notify.Sink
	clock  clock.Clock
	log    *zap.Logger

	Interval time.Duration
	// Refresh, when set, runs before every scan of Run so the task list
	// reflects what other processes persisted.
	Refresh func()
}

func New(tasks TaskSource, ledger store.Storage, sink notify.Sink, clk clock.Clock, log *zap.Logger) *Scanner {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		tasks:    tasks,
		ledger:   ledger,
		sink:     sink,
		clock:    clk,
		log:      log,
		Interval: DefaultInterval,
	}
}

// Run scans immediately and then on every tick until ctx is done.
func (s *Scanner) Run(ctx context.Context) error {
	s.tick()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scanner) tick() {
	if s.Refresh != nil {
		s.Refresh()
	}
	if n := s.Scan(); n > 0 {
		s.log.Debug("notifications fired", zap.Int("count", n))
	}
}

// Scan checks every open, dated task once and returns the number of
// notifications emitted.
func (s *Scanner) Scan() int {
	now := s.clock.Now()
	fired := 0

	for _, t := range s.tasks.List() {
		if t.Completed || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		today := clock.SameDay(due, now)

		if until := due.Sub(now); today && until > 0 && until <= DueSoonWindow {
			n := notify.New(notify.TypeDue, "Task Due Soon",
				fmt.Sprintf("%q is due in less than an hour", t.Title), now).ForTask(t.ID)
			n.ID = fmt.Sprintf("due-soon-%s-%d", t.ID, now.UnixMilli())
			if s.fire(store.PrefixDueSoonMarker+t.ID, DueSoonCooldown, now, n) {
				fired++
			}
		}

		if t.Reminder && t.ReminderTime > 0 && !today {
			at := due.Add(-time.Duration(t.ReminderTime) * time.Minute)
			if !at.After(now) && at.After(now.Add(-ReminderLookback)) {
				n := notify.New(notify.TypeReminder, "Task Reminder",
					fmt.Sprintf("%q is due on %s", t.Title, due.In(now.Location()).Format("Jan 02")), now).ForTask(t.ID)
				n.ID = fmt.Sprintf("reminder-%s-%d", t.ID, now.UnixMilli())
				if s.fire(store.PrefixReminderMarker+t.ID, ReminderCooldown, now, n) {
					fired++
				}
			}
		}
	}

	return fired
}

func (s *Scanner) fire(key string, cooldown time.Duration, now time.Time, n notify.Notification) bool {
	if last, ok := s.lastFired(key); ok && now.Sub(last) <= cooldown {
		return false
	}

	s.sink.Add(n)
	if err := s.ledger.Set(key, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		s.log.Error("failed to record notification marker", zap.String("key", key), zap.Error(err))
	}
	s.log.Debug("notification fired", zap.String("key", key), zap.String("task", n.TaskID))
	return true
}

func (s *Scanner) lastFired(key string) (time.Time, bool) {
	raw, ok, err := s.ledger.Get(key)
	if err != nil {
		s.log.Error("failed to read notification marker", zap.String("key", key), zap.Error(err))
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.log.Warn("ignoring malformed notification marker", zap.String("key", key), zap.String("value", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
