package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/todo"
)

const ProductID = "-//TaskFlow//Calendar Export//EN"

type Provider string

const (
	Google  Provider = "google"
	Outlook Provider = "outlook"
	Apple   Provider = "apple"
	ICal    Provider = "ical"
)

var (
	ErrNoDueDate       = errors.New("task has no due date")
	ErrUnknownProvider = errors.New("unknown calendar provider")
)

// Export is a single event handed off to an external calendar.
type Export struct {
	UID         string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	IsAllDay    bool
}

// ExportTask builds the hand-off for a dated task. All-day tasks span their
// day, timed tasks start at their start time (or the due instant) and end
// at their end time or one hour later.
func ExportTask(t todo.Task) (Export, error) {
	if t.DueDate == nil {
		return Export{}, ErrNoDueDate
	}
	x := Export{
		UID:         TaskPrefix + t.ID,
		Title:       t.Title,
		Description: "Task from TaskFlow: " + t.Title,
		IsAllDay:    t.IsAllDay,
	}
	x.Start, x.End = Event{
		Date:      *t.DueDate,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		IsAllDay:  t.IsAllDay,
	}.span(*t.DueDate)
	return x, nil
}

// ExportOccurrence builds the hand-off for one agenda entry.
func ExportOccurrence(o Occurrence) Export {
	return Export{
		UID:         o.ID + "-" + o.StartsAt.UTC().Format("20060102T150405Z"),
		Title:       o.Title,
		Description: o.Description,
		Location:    o.Location,
		Start:       o.StartsAt,
		End:         o.EndsAt,
		IsAllDay:    o.IsAllDay,
	}
}

func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (x Export) compactDates() (string, string) {
	if x.IsAllDay {
		return x.Start.Format("20060102"), x.End.Format("20060102")
	}
	const layout = "20060102T150405Z"
	return x.Start.UTC().Format(layout), x.End.UTC().Format(layout)
}

// URL returns the link that opens the event in the given provider. Apple
// has no web composer and gets the Google link.
func (x Export) URL(p Provider, now time.Time) (string, error) {
	title := encodeURIComponent(x.Title)
	details := encodeURIComponent(x.Description)
	location := encodeURIComponent(x.Location)

	switch p {
	case Google, Apple:
		start, end := x.compactDates()
		return fmt.Sprintf(
			"https://calendar.google.com/calendar/render?action=TEMPLATE&text=%s&dates=%s/%s&details=%s&location=%s",
			title, start, end, details, location), nil
	case Outlook:
		const iso = "2006-01-02T15:04:05.000Z"
		return fmt.Sprintf(
			"https://outlook.live.com/calendar/0/deeplink/compose?subject=%s&startdt=%s&enddt=%s&body=%s&location=%s&allday=%t",
			title, x.Start.UTC().Format(iso), x.End.UTC().Format(iso), details, location, x.IsAllDay), nil
	case ICal:
		b, err := x.ICS(now)
		if err != nil {
			return "", err
		}
		return "data:text/calendar;charset=utf-8," + encodeURIComponent(string(b)), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownProvider, p)
}

// Component renders the export as a VEVENT.
func (x Export) Component(now time.Time) *ical.Component {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, x.UID)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetText(ical.PropSummary, x.Title)
	if x.IsAllDay {
		ev.Props.SetDate(ical.PropDateTimeStart, clock.StartOfDay(x.Start))
		ev.Props.SetDate(ical.PropDateTimeEnd, clock.StartOfDay(x.End))
		ev.Props.SetText("X-MICROSOFT-CDO-ALLDAYEVENT", "TRUE")
	} else {
		ev.Props.SetDateTime(ical.PropDateTimeStart, x.Start.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeEnd, x.End.UTC())
	}
	if x.Description != "" {
		ev.Props.SetText(ical.PropDescription, x.Description)
	}
	if x.Location != "" {
		ev.Props.SetText(ical.PropLocation, x.Location)
	}
	return ev.Component
}

// EventCalendar wraps exports into a VCALENDAR.
func EventCalendar(now time.Time, xs ...Export) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	for _, x := range xs {
		cal.Children = append(cal.Children, x.Component(now))
	}
	return cal
}

// ICS encodes a single export as an .ics document.
func (x Export) ICS(now time.Time) ([]byte, error) {
	return ICS(now, x)
}

func ICS(now time.Time, xs ...Export) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(EventCalendar(now, xs...)); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
