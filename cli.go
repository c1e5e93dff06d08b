package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrusme/taskflow/calendar"
	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/notify"
	"github.com/mrusme/taskflow/todo"
)

var (
	styleID       = lipgloss.NewStyle().Faint(true)
	styleDone     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	stylePriority = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleTag      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleDue      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleOverdue  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleHeading  = lipgloss.NewStyle().Bold(true).Underline(true)
	styleToast    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// tailwind color classes mapped to terminal colors.
var tailwindColors = map[string]string{
	"red": "9", "green": "10", "yellow": "11", "blue": "12",
	"purple": "13", "pink": "13", "indigo": "4", "teal": "6",
	"orange": "208", "cyan": "14",
}

func colorOf(class string) lipgloss.Color {
	for name, c := range tailwindColors {
		if strings.Contains(class, "-"+name+"-") {
			return lipgloss.Color(c)
		}
	}
	return lipgloss.Color("7")
}

var templateFuncs = template.FuncMap{
	"Style": func() lipgloss.Style {
		return lipgloss.NewStyle()
	},
	"Color": func(color string) lipgloss.Color {
		return lipgloss.Color(color)
	},
	"ColorOf": colorOf,
	"FormatDate": func(t *time.Time, frmt string) string {
		if t == nil {
			return ""
		}
		return t.Format(frmt)
	},
	"SplitByDate": func(tasks []todo.Task) map[string][]todo.Task {
		var byDate map[string][]todo.Task = make(map[string][]todo.Task)

		for i := 0; i < len(tasks); i++ {
			date := ""
			if tasks[i].DueDate != nil {
				date = tasks[i].DueDate.Format("2006-01-02")
			}
			byDate[date] = append(byDate[date], tasks[i])
		}

		return byDate
	},
}

// output renders v as JSON, through the user's template or with the plain
// printer, in that order of preference.
func output(v any, plain func(w io.Writer)) error {
	if outputJSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	if len(tmplPath) > 0 {
		t, err := template.New("taskflow").Funcs(templateFuncs).ParseFiles(tmplPath)
		if err != nil {
			return fmt.Errorf("failed to parse template: %w", err)
		}
		return t.ExecuteTemplate(os.Stdout, path.Base(tmplPath), v)
	}

	plain(os.Stdout)
	return nil
}

func scheduleText(t todo.Task) string {
	if t.DueDate == nil {
		return ""
	}
	s := t.DueDate.Format("Jan 02")
	switch {
	case t.IsAllDay:
		s += " all day"
	case t.StartTime != "" && t.EndTime != "":
		s += " " + t.StartTime + "-" + t.EndTime
	case t.StartTime != "":
		s += " " + t.StartTime
	}
	if t.Reminder {
		s += fmt.Sprintf(" (remind %dm before)", t.ReminderTime)
	}
	return s
}

func printTask(w io.Writer, t todo.Task, now time.Time) {
	check := "[ ]"
	title := t.Title
	if t.Completed {
		check = "[x]"
		title = styleDone.Render(title)
	}
	star := " "
	if t.IsPriority {
		star = stylePriority.Render("*")
	}

	line := fmt.Sprintf("%s %s %s  %s", check, star, styleID.Render(t.ID), title)
	if due := scheduleText(t); due != "" {
		style := styleDue
		if !t.Completed && t.DueDate.Before(clock.StartOfDay(now)) {
			style = styleOverdue
		}
		line += "  " + style.Render(due)
	}
	for _, tag := range t.Tags {
		line += " " + styleTag.Render("#"+tag)
	}
	if t.Space != "" {
		line += " " + styleID.Render("@"+t.Space)
	}
	fmt.Fprintln(w, line)
}

func printTasks(w io.Writer, tasks []todo.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	for _, t := range tasks {
		printTask(w, t, now)
	}
}

func printEvent(w io.Writer, e calendar.Event, when string) {
	title := lipgloss.NewStyle().Foreground(colorOf(e.Color)).Render(e.Title)
	if e.IsAllDay {
		when = "all day    "
	}
	fmt.Fprintf(w, "%s  %s  %s\n", when, title, styleID.Render(e.ID))
}

func printToast(w io.Writer, n notify.Notification) {
	fmt.Fprintf(w, "%s %s\n", styleToast.Render(n.Title+":"), n.Message)
}

// getStartEndByArgs turns "today", "tomorrow", "in N days" or "next N
// weeks" into a window. "in" covers the single day, "next" everything from
// today up to it.
func getStartEndByArgs(args []string, today time.Time) (time.Time, time.Time, error) {
	var sT time.Time
	var eT time.Time

	if len(args) == 0 {
		sT, eT = getStartEndForDate(today)
		return sT, eT, nil
	}

	firstArg := strings.ToLower(args[0])
	switch firstArg {
	case "today":
		sT, eT = getStartEndForDate(today)
	case "tomorrow":
		sT, eT = getStartEndForDate(today.AddDate(0, 0, 1))
	case "week":
		sT, _ = getStartEndForDate(today)
		_, eT = getStartEndForDate(today.AddDate(0, 0, 6))
	case "in", "next":
		if len(args) != 3 {
			return sT, eT, fmt.Errorf("usage: %s N days|weeks|months|years", firstArg)
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return sT, eT, fmt.Errorf("invalid number %q", args[1])
		}
		switch strings.ToLower(args[2]) {
		case "day", "days":
			sT, eT = getStartEndForDate(today.AddDate(0, 0, i))
		case "week", "weeks":
			sT, eT = getStartEndForDate(today.AddDate(0, 0, i*7))
		case "month", "months":
			sT, eT = getStartEndForDate(today.AddDate(0, i, 0))
		case "year", "years":
			sT, eT = getStartEndForDate(today.AddDate(i, 0, 0))
		default:
			return sT, eT, fmt.Errorf("unknown unit %q", args[2])
		}
		if firstArg == "next" {
			sT, _ = getStartEndForDate(today)
		}
	default:
		day, err := todo.ParseDue(strings.Join(args, " "), today)
		if err != nil {
			return sT, eT, err
		}
		sT, eT = getStartEndForDate(day)
	}

	return sT, eT, nil
}

// getStartEndForDate returns the half-open window [00:00, next 00:00).
func getStartEndForDate(t time.Time) (time.Time, time.Time) {
	sT := clock.StartOfDay(t)
	return sT, sT.AddDate(0, 0, 1)
}
