package todo

import (
	"sort"
	"time"

	"github.com/mrusme/taskflow/clock"
)

// Stats is the dashboard summary of the task list.
type Stats struct {
	Total             int    `json:"total"`
	Completed         int    `json:"completed"`
	CompletedThisWeek int    `json:"completedThisWeek"`
	Pending           int    `json:"pending"`
	DueToday          int    `json:"dueToday"`
	Overdue           int    `json:"overdue"`
	UpcomingWeek      int    `json:"upcomingWeek"`
	Progress          int    `json:"progress"`
	DailyProgress     [7]int `json:"dailyProgress"`
	Priority          []Task `json:"priority"`
	Upcoming          []Task `json:"upcoming"`
	PriorityShare     int    `json:"priorityShare"`
}

const topN = 3

func Summarize(tasks []Task, now time.Time) Stats {
	var s Stats
	s.Total = len(tasks)
	today := clock.StartOfDay(now)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	nextWeek := now.AddDate(0, 0, 7)
	priorityCount := 0

	for _, t := range tasks {
		if t.IsPriority {
			priorityCount++
		}
		if t.Completed {
			s.Completed++
			if !finishedAt(t).Before(weekStart) {
				s.CompletedThisWeek++
			}
			continue
		}
		s.Pending++
		if t.DueDate == nil {
			continue
		}
		if clock.SameDay(*t.DueDate, now) {
			s.DueToday++
		}
		if t.DueDate.Before(now) {
			s.Overdue++
		}
		if !t.DueDate.Before(now) && !t.DueDate.After(nextWeek) {
			s.UpcomingWeek++
		}
	}

	if s.Total > 0 {
		s.Progress = roundPercent(s.Completed, s.Total)
		s.PriorityShare = roundPercent(priorityCount, s.Total)
	}

	// Oldest day first, today last; 20 points per completion.
	for offset := 0; offset < 7; offset++ {
		start := today.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 1)
		n := 0
		for _, t := range tasks {
			if !t.Completed {
				continue
			}
			at := finishedAt(t)
			if !at.Before(start) && at.Before(end) {
				n++
			}
		}
		s.DailyProgress[6-offset] = min(100, n*20)
	}

	s.Priority = topByDue(tasks, func(t Task) bool { return t.IsPriority && !t.Completed })
	s.Upcoming = topByDue(tasks, func(t Task) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.After(now)
	})
	return s
}

func roundPercent(part, total int) int {
	return (part*100 + total/2) / total
}

// topByDue picks the first few matching tasks ordered by due date; undated
// tasks keep their place after the dated ones.
func topByDue(tasks []Task, keep func(Task) bool) []Task {
	out := []Task{}
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
