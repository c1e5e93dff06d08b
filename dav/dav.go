package dav

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/mrusme/taskflow/calendar"
	"go.uber.org/zap"
)

// DAV talks to a CalDAV server: it publishes task events and pulls remote
// events into the local calendar.
type DAV struct {
	httpClient webdav.HTTPClient
	cdClient   *caldav.Client
	log        *zap.Logger

	endpoint string
	username string
	password string

	calendarHomeSet string
	calendars       []caldav.Calendar
}

func New(ctx context.Context, endpoint, username, password string, log *zap.Logger) (*DAV, error) {
	var err error

	if log == nil {
		log = zap.NewNop()
	}

	dav := &DAV{
		endpoint: endpoint,
		username: username,
		password: password,
		log:      log,
	}

	dav.httpClient = webdav.HTTPClientWithBasicAuth(nil, dav.username, dav.password)
	dav.cdClient, err = caldav.NewClient(dav.httpClient, dav.endpoint)
	if err != nil {
		return nil, err
	}

	dav.calendarHomeSet, err =
		dav.cdClient.FindCalendarHomeSet(ctx, fmt.Sprintf("principals/%s", dav.username))
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	dav.calendars, err = dav.cdClient.FindCalendars(ctx, dav.calendarHomeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	return dav, nil
}

func (dav *DAV) CalendarPaths() []string {
	var paths []string

	for _, cal := range dav.calendars {
		paths = append(paths, cal.Path)
	}

	return paths
}

// Resolve picks the calendar by name or path. An empty name selects the
// first calendar of the home set.
func (dav *DAV) Resolve(name string) (string, error) {
	if len(dav.calendars) == 0 {
		return "", fmt.Errorf("no calendars under %s", dav.calendarHomeSet)
	}
	if name == "" {
		return dav.calendars[0].Path, nil
	}
	for _, cal := range dav.calendars {
		if cal.Name == name || strings.Trim(cal.Path, "/") == strings.Trim(name, "/") {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("calendar %q not found", name)
}

// ObjectPath is where an export is stored inside a calendar collection.
func ObjectPath(calendarPath, uid string) string {
	return path.Join(calendarPath, uid+".ics")
}

// Publish uploads one calendar object per export.
func (dav *DAV) Publish(ctx context.Context, calendarPath string, now time.Time, xs ...calendar.Export) (int, error) {
	published := 0
	for _, x := range xs {
		p := ObjectPath(calendarPath, x.UID)
		if _, err := dav.cdClient.PutCalendarObject(ctx, p, calendar.EventCalendar(now, x)); err != nil {
			return published, fmt.Errorf("failed to publish %s: %w", p, err)
		}
		dav.log.Debug("published calendar object", zap.String("path", p))
		published++
	}
	return published, nil
}

// Pull fetches every event of a calendar collection.
func (dav *DAV) Pull(ctx context.Context, calendarPath string) ([]*ical.Calendar, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name: ical.CompEvent,
			}},
		},
	}

	objs, err := dav.cdClient.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", calendarPath, err)
	}

	cals := make([]*ical.Calendar, 0, len(objs))
	for i := range objs {
		if objs[i].Data != nil {
			cals = append(cals, objs[i].Data)
		}
	}
	dav.log.Debug("pulled calendar objects",
		zap.String("calendar", calendarPath), zap.Int("objects", len(cals)))
	return cals, nil
}
