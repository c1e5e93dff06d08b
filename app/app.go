// Package app wires the components of taskflow around one storage backend.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mrusme/taskflow/calendar"
	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/config"
	"github.com/mrusme/taskflow/dav"
	"github.com/mrusme/taskflow/events"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/reminder"
	"github.com/mrusme/taskflow/settings"
	"github.com/mrusme/taskflow/space"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"go.uber.org/zap"
)

var ErrCalDAVDisabled = errors.New("no CalDAV endpoint configured")

// State is the explicit application state shared by all commands.
type State struct {
	Config  *config.Config
	Log     *zap.Logger
	Storage store.Storage
	Clock   clock.Clock

	Notifications *notify.Center
	Tasks         *todo.Store
	Calendar      *calendar.Calendar
	Settings      *settings.Settings
	Spaces        *space.Registry
	Reminders     *reminder.Scanner

	closer io.Closer
}

// OpenStorage picks the backend: redis when a storage URL is configured,
// the buntdb file otherwise. A shared file is only held open for the duration
// of each operation, which long-running processes need so they neither miss
// nor overwrite the writes of other invocations.
func OpenStorage(cfg *config.Config, shared bool) (store.Storage, io.Closer, error) {
	if cfg.StorageURL != "" {
		r, err := store.OpenRedis(cfg.StorageURL, cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	}
	if shared {
		db, err := store.OpenShared(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
		}
		return db, db, nil
	}
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
	}
	return db, db, nil
}

// Open builds the state from configuration for a short-lived command.
func Open(cfg *config.Config, player notify.Player, log *zap.Logger) (*State, error) {
	return open(cfg, player, log, false)
}

// OpenShared builds the state for a long-running process that shares the
// storage with other invocations.
func OpenShared(cfg *config.Config, player notify.Player, log *zap.Logger) (*State, error) {
	return open(cfg, player, log, true)
}

func open(cfg *config.Config, player notify.Player, log *zap.Logger, shared bool) (*State, error) {
	st, closer, err := OpenStorage(cfg, shared)
	if err != nil {
		return nil, err
	}
	s := New(st, clock.Real{}, player, log)
	s.Config = cfg
	s.closer = closer
	s.Reminders.Interval = cfg.ReminderInterval
	return s, nil
}

// New wires every component on top of st. The notification center is the
// sink of all producers and the calendar is the task store's syncer.
func New(st store.Storage, clk clock.Clock, player notify.Player, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		Config:  config.Default(),
		Log:     log,
		Storage: st,
		Clock:   clk,
	}

	s.Notifications = notify.NewCenter(st, player, log.Named("notify"))
	s.Tasks = todo.NewStore(st, s.Notifications, clk, log.Named("todo"))
	s.Calendar = calendar.New(st, s.Tasks, s.Notifications, clk, log.Named("calendar"))
	s.Tasks.SetSyncer(s.Calendar)
	s.Settings = settings.New(st, log.Named("settings"))
	s.Spaces = space.NewRegistry(st, s.Tasks, s.Settings, clk, log.Named("space"))
	s.Reminders = reminder.New(s.Tasks, st, s.Notifications, clk, log.Named("reminder"))

	s.Tasks.Updated.Subscribe(func(c todo.Change) {
		s.Log.Debug("tasks changed", zap.String("op", string(c.Op)), zap.String("task", c.TaskID))
	})
	// An empty key means storage was cleared.
	s.Settings.Changed.Subscribe(func(c events.StorageChange) {
		if c.Key == "" {
			s.Refresh()
		}
	})
	return s
}

func (s *State) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Reset clears storage. The in-memory state follows through the settings
// change broadcast.
func (s *State) Reset() error {
	return s.Settings.Reset()
}

// Refresh rereads the task list and the notification preferences from
// storage.
func (s *State) Refresh() {
	s.Tasks.Reload()
	s.Notifications.Reload()
}

// Watch runs the reminder scanner until ctx is done, refreshing from storage
// before every scan.
func (s *State) Watch(ctx context.Context) error {
	s.Reminders.Refresh = s.Refresh
	s.Log.Info("watching for reminders", zap.Duration("interval", s.Reminders.Interval))
	return s.Reminders.Run(ctx)
}

func (s *State) caldav(ctx context.Context) (*dav.DAV, string, error) {
	c := s.Config.CalDAV
	if c.Endpoint == "" {
		return nil, "", ErrCalDAVDisabled
	}
	d, err := dav.New(ctx, c.Endpoint, c.Username, c.Password, s.Log.Named("dav"))
	if err != nil {
		return nil, "", err
	}
	path, err := d.Resolve(c.Calendar)
	if err != nil {
		return nil, "", err
	}
	return d, path, nil
}

// Publish uploads every open, dated task to the configured CalDAV
// calendar.
func (s *State) Publish(ctx context.Context) (int, error) {
	d, path, err := s.caldav(ctx)
	if err != nil {
		return 0, err
	}

	var xs []calendar.Export
	for _, t := range s.Tasks.List() {
		if t.Completed || t.DueDate == nil {
			continue
		}
		x, err := calendar.ExportTask(t)
		if err != nil {
			return 0, err
		}
		xs = append(xs, x)
	}
	return d.Publish(ctx, path, s.Clock.Now(), xs...)
}

// Pull imports the events of the configured CalDAV calendar as
// freestanding events.
func (s *State) Pull(ctx context.Context) (int, error) {
	d, path, err := s.caldav(ctx)
	if err != nil {
		return 0, err
	}
	cals, err := d.Pull(ctx, path)
	if err != nil {
		return 0, err
	}
	return s.Calendar.ImportCalendars(cals, time.Local)
}
