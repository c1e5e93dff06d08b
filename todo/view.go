package todo

import (
	"sort"
	"strings"
	"time"

	"github.com/mrusme/taskflow/clock"
)

// Built-in space ids.
const (
	SpaceAll       = "all"
	SpaceImportant = "important"
	SpaceUpcoming  = "upcoming"
	SpaceToday     = "today"
	SpaceTeam      = "team"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type FilterType string

const (
	FilterAll        FilterType = "all"
	FilterCompleted  FilterType = "completed"
	FilterIncomplete FilterType = "incomplete"
	FilterPriority   FilterType = "priority"
)

// InSpace reports whether t belongs to the space with the given id at the
// instant now. Any id that is not a built-in is matched against Task.Space.
func InSpace(t Task, space string, now time.Time) bool {
	switch space {
	case SpaceAll, "":
		return true
	case SpaceImportant:
		return t.IsPriority
	case SpaceToday:
		return t.DueDate != nil && clock.SameDay(*t.DueDate, now)
	case SpaceUpcoming:
		// Tomorrow is not upcoming: only the day after tomorrow onwards.
		if t.Completed || t.DueDate == nil {
			return false
		}
		boundary := clock.StartOfDay(now).AddDate(0, 0, 2)
		return !t.DueDate.Before(boundary)
	case SpaceTeam:
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), "team") {
				return true
			}
		}
		return false
	default:
		return t.Space == space
	}
}

func Filter(tasks []Task, space string, now time.Time) []Task {
	out := []Task{}
	for _, t := range tasks {
		if InSpace(t, space, now) {
			out = append(out, t)
		}
	}
	return out
}

func Count(tasks []Task, space string, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if InSpace(t, space, now) {
			n++
		}
	}
	return n
}

// Sort returns a copy of tasks ordered by creation time. Tasks created at the
// same instant keep their relative order.
func Sort(tasks []Task, order SortOrder) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func ApplyFilterType(tasks []Task, ft FilterType) []Task {
	out := []Task{}
	for _, t := range tasks {
		switch ft {
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		case FilterIncomplete:
			if t.Completed {
				continue
			}
		case FilterPriority:
			if !t.IsPriority {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// View is what the task list displays: sorted, narrowed to a space, then to
// the completion filter.
func View(tasks []Task, space string, order SortOrder, ft FilterType, now time.Time) []Task {
	return ApplyFilterType(Filter(Sort(tasks, order), space, now), ft)
}
