package calendar

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/mrusme/taskflow/store"
	"go.uber.org/zap"
)

func propValue(ev *ical.Event, name string) string {
	prop := ev.Props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}

func propText(ev *ical.Event, name string) string {
	s, err := ev.Props.Text(name)
	if err != nil {
		return propValue(ev, name)
	}
	return s
}

// eventFromICal maps a VEVENT onto a freestanding event.
func eventFromICal(ev *ical.Event, loc *time.Location) (Event, error) {
	uid := propValue(ev, ical.PropUID)
	if uid == "" {
		return Event{}, errors.New("event without UID")
	}
	start, err := ev.DateTimeStart(loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", uid, err)
	}

	e := Event{
		ID:          uid,
		Title:       propText(ev, ical.PropSummary),
		Description: propText(ev, ical.PropDescription),
		Location:    propText(ev, ical.PropLocation),
		RRule:       propValue(ev, ical.PropRecurrenceRule),
	}

	if p := ev.Props.Get(ical.PropDateTimeStart); p != nil && p.ValueType() == ical.ValueDate {
		e.IsAllDay = true
		e.Date = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		return e, nil
	}

	start = start.In(loc)
	e.Date = start
	e.StartTime = start.Format("15:04")
	if end, err := ev.DateTimeEnd(loc); err == nil && !end.IsZero() && end.After(start) {
		end = end.In(loc)
		if end.YearDay() == start.YearDay() && end.Year() == start.Year() {
			e.EndTime = end.Format("15:04")
		}
	}
	return e, nil
}

// Import reads an iCalendar stream and upserts its events.
func (c *Calendar) Import(r io.Reader, loc *time.Location) (int, error) {
	var cals []*ical.Calendar
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		} else if err != nil {
			return 0, fmt.Errorf("failed to decode calendar: %w", err)
		}
		cals = append(cals, cal)
	}
	return c.ImportCalendars(cals, loc)
}

// ImportCalendars upserts the events of the given calendars as freestanding
// events, keyed by UID. Events carrying a task UID are skipped since Sync
// owns them.
func (c *Calendar) ImportCalendars(cals []*ical.Calendar, loc *time.Location) (int, error) {
	byID := map[string]int{}
	events := c.Events()
	for i, e := range events {
		byID[e.ID] = i
	}

	imported := 0
	for _, cal := range cals {
		for _, ev := range cal.Events() {
			e, err := eventFromICal(&ev, loc)
			if err != nil {
				c.log.Warn("skipping calendar entry", zap.Error(err))
				continue
			}
			if IsTaskEvent(e.ID) {
				continue
			}
			if i, ok := byID[e.ID]; ok {
				events[i] = e
			} else {
				byID[e.ID] = len(events)
				events = append(events, e)
			}
			imported++
		}
	}

	if imported == 0 {
		return 0, nil
	}
	if err := store.SetJSON(c.st, store.KeyCalendarEvents, events); err != nil {
		return imported, fmt.Errorf("failed to persist calendar events: %w", err)
	}
	return imported, nil
}
