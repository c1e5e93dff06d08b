package calendar

import (
	"sort"
	"time"

	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/todo"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Occurrence is one appearance of an event inside an agenda window.
type Occurrence struct {
	Event
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// span returns when an event starting on day begins and ends. All-day
// events cover the whole day, timed events without an end last an hour.
func (e Event) span(day time.Time) (time.Time, time.Time) {
	if e.IsAllDay || e.StartTime == "" {
		start := clock.StartOfDay(day)
		if e.IsAllDay {
			return start, start.AddDate(0, 0, 1)
		}
		start = day
		return start, start.Add(time.Hour)
	}
	start, err := todo.At(day, e.StartTime)
	if err != nil {
		return day, day.Add(time.Hour)
	}
	end := start.Add(time.Hour)
	if e.EndTime != "" {
		if t, err := todo.At(day, e.EndTime); err == nil && t.After(start) {
			end = t
		}
	}
	return start, end
}

// Agenda lists every occurrence whose start falls in [start, end), with
// recurring events expanded by their RRULE.
func (c *Calendar) Agenda(start, end time.Time) []Occurrence {
	var occs []Occurrence
	for _, e := range c.Events() {
		for _, day := range c.days(e, start, end) {
			s, en := e.span(day)
			if s.Before(start) || !s.Before(end) {
				continue
			}
			occs = append(occs, Occurrence{Event: e, StartsAt: s, EndsAt: en})
		}
	}

	sort.SliceStable(occs, func(i, j int) bool {
		a, b := occs[i], occs[j]
		if clock.SameDay(a.StartsAt, b.StartsAt) && a.IsAllDay != b.IsAllDay {
			return a.IsAllDay
		}
		return a.StartsAt.Before(b.StartsAt)
	})
	return occs
}

// days returns the dates on which an event occurs. Unparsable rules fall
// back to the single stored date.
func (c *Calendar) days(e Event, start, end time.Time) []time.Time {
	if e.RRule == "" {
		return []time.Time{e.Date}
	}
	rr, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		c.log.Warn("ignoring invalid recurrence rule",
			zap.String("event", e.ID), zap.String("rrule", e.RRule), zap.Error(err))
		return []time.Time{e.Date}
	}
	rr.DTStart(e.Date)
	// Occurrences are matched by day, so widen the window to whole days.
	return rr.Between(clock.StartOfDay(start).AddDate(0, 0, -1), end, true)
}

// On returns the events of a single day: all-day events first, then by
// start time.
func (c *Calendar) On(day time.Time) []Event {
	from := clock.StartOfDay(day)
	occs := c.Agenda(from, from.AddDate(0, 0, 1))
	events := make([]Event, 0, len(occs))
	for _, o := range occs {
		events = append(events, o.Event)
	}
	return events
}
