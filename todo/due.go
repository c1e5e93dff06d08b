package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseTimeOfDay validates an "HH:MM" string.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour(), t.Minute(), nil
}

// At returns day's calendar date at the given "HH:MM" in day's location.
func At(day time.Time, hhmm string) (time.Time, error) {
	h, m, err := ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, day.Location()), nil
}

// ParseDue turns user input into a due date. Besides anything dateparse
// understands, "today", "tomorrow" and "in N days" are accepted; those
// resolve to midnight of the respective day.
func ParseDue(input string, now time.Time) (time.Time, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch in {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(in, "in %d %s", &n, &unit); err == nil {
		switch unit {
		case "day", "days":
			return today.AddDate(0, 0, n), nil
		case "week", "weeks":
			return today.AddDate(0, 0, n*7), nil
		case "month", "months":
			return today.AddDate(0, n, 0), nil
		}
	}

	t, err := dateparse.ParseIn(input, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized due date %q: %w", input, err)
	}
	return t, nil
}
