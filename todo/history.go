package todo

import (
	"sort"
	"time"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

const day = 24 * time.Hour

func (p Period) window() time.Duration {
	switch p {
	case PeriodToday:
		return day
	case PeriodWeek:
		return 7 * day
	case PeriodMonth:
		return 30 * day
	}
	return 0
}

// finishedAt is when a completed task was done, falling back to its creation
// for records written before completion times were kept.
func finishedAt(t Task) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}

// History lists completed tasks finished within the period before now.
func History(tasks []Task, period Period, newestFirst bool, now time.Time) []Task {
	window := period.window()
	out := []Task{}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		if window > 0 && now.Sub(finishedAt(t)) >= window {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := finishedAt(out[i]), finishedAt(out[j])
		if newestFirst {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out
}
