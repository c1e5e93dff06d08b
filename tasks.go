package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mrusme/taskflow/calendar"
	"github.com/mrusme/taskflow/taskd"
	"github.com/mrusme/taskflow/todo"
	"github.com/spf13/cobra"
)

func printResult(t todo.Task) error {
	return output(t, func(w io.Writer) {
		printTask(w, t, state.Clock.Now())
	})
}

func parseDueArg(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := todo.ParseDue(s, state.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func newAddCmd() *cobra.Command {
	var (
		due      string
		start    string
		end      string
		allDay   bool
		tags     []string
		priority bool
		space    string
		remind   int
	)

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDueArg(due)
			if err != nil {
				return err
			}
			if space == "" {
				space = state.Settings.ActiveSpace()
			}
			t, err := state.Tasks.Create(todo.Draft{
				Title:        strings.Join(args, " "),
				Tags:         tags,
				DueDate:      dueDate,
				IsAllDay:     allDay,
				StartTime:    start,
				EndTime:      end,
				Space:        space,
				Reminder:     remind > 0,
				ReminderTime: remind,
				IsPriority:   priority,
			})
			if err != nil {
				return err
			}
			return printResult(t)
		},
	}

	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (today, tomorrow, in 3 days, 2026-10-20, ...)")
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "End time HH:MM")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day task")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().BoolVarP(&priority, "priority", "p", false, "Mark as priority")
	cmd.Flags().StringVarP(&space, "space", "s", "", "Space id (defaults to the active space)")
	cmd.Flags().IntVar(&remind, "remind", 0, "Remind N minutes before the due date")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		space  string
		filter string
		order  string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks of a space",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if space == "" {
				space = state.Settings.ActiveSpace()
			}
			ft := state.Settings.FilterType()
			if filter != "" {
				ft = todo.FilterType(filter)
			}
			so := state.Settings.SortOrder()
			if order != "" {
				so = todo.SortOrder(order)
			}

			now := state.Clock.Now()
			tasks := todo.View(state.Tasks.List(), space, so, ft, now)
			return output(tasks, func(w io.Writer) {
				printTasks(w, tasks, now)
			})
		},
	}

	cmd.Flags().StringVarP(&space, "space", "s", "", "Space id (defaults to the active space)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all, completed, incomplete or priority")
	cmd.Flags().StringVar(&order, "sort", "", "asc or desc by creation time")
	return cmd
}

// newTaskCmd builds the commands that take a task id and apply one
// mutation.
func newTaskCmd(use, short string, nargs int, fn func(id string, args []string) (todo.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := fn(args[0], args[1:])
			if err != nil {
				return err
			}
			return printResult(t)
		},
	}
}

func newDoneCmd() *cobra.Command {
	return newTaskCmd("done ID", "Toggle a task between open and completed", 1,
		func(id string, _ []string) (todo.Task, error) {
			return state.Tasks.ToggleComplete(id)
		})
}

func newStarCmd() *cobra.Command {
	return newTaskCmd("star ID", "Toggle the priority flag", 1,
		func(id string, _ []string) (todo.Task, error) {
			return state.Tasks.TogglePriority(id)
		})
}

func newDueCmd() *cobra.Command {
	return newTaskCmd("due ID DATE|none", "Set or clear the due date", 2,
		func(id string, args []string) (todo.Task, error) {
			in := strings.Join(args, " ")
			if in == "none" {
				return state.Tasks.SetDueDate(id, nil)
			}
			d, err := parseDueArg(in)
			if err != nil {
				return todo.Task{}, err
			}
			return state.Tasks.SetDueDate(id, d)
		})
}

func newTimeCmd() *cobra.Command {
	var (
		start  string
		end    string
		allDay bool
	)
	cmd := newTaskCmd("time ID", "Set the time window of a dated task", 1,
		func(id string, _ []string) (todo.Task, error) {
			return state.Tasks.SetTimeWindow(id, allDay, start, end)
		})
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "End time HH:MM")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day task")
	return cmd
}

func newRemindCmd() *cobra.Command {
	return newTaskCmd("remind ID MINUTES|off", "Set how long before the due date to remind", 2,
		func(id string, args []string) (todo.Task, error) {
			if args[0] == "off" {
				return state.Tasks.SetReminder(id, false, 0)
			}
			m, err := strconv.Atoi(args[0])
			if err != nil || m <= 0 {
				return todo.Task{}, fmt.Errorf("invalid number of minutes %q", args[0])
			}
			return state.Tasks.SetReminder(id, true, m)
		})
}

func newRenameCmd() *cobra.Command {
	return newTaskCmd("rename ID TITLE...", "Change the title of a task", 2,
		func(id string, args []string) (todo.Task, error) {
			return state.Tasks.Rename(id, strings.Join(args, " "))
		})
}

func newTagCmd() *cobra.Command {
	var remove bool
	cmd := newTaskCmd("tag ID TAG", "Add a tag to a task", 2,
		func(id string, args []string) (todo.Task, error) {
			tag := strings.Join(args, " ")
			if remove {
				return state.Tasks.RemoveTag(id, tag)
			}
			return state.Tasks.AddTag(id, tag)
		})
	cmd.Flags().BoolVarP(&remove, "remove", "r", false, "Remove the tag instead")
	return cmd
}

func newMoveCmd() *cobra.Command {
	return newTaskCmd("move ID SPACE", "Move a task into a space", 2,
		func(id string, args []string) (todo.Task, error) {
			return state.Tasks.SetSpace(id, args[0])
		})
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.Tasks.Delete(args[0])
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var (
		period      string
		oldestFirst bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := state.Clock.Now()
			tasks := todo.History(state.Tasks.List(), todo.Period(period), !oldestFirst, now)
			return output(tasks, func(w io.Writer) {
				printTasks(w, tasks, now)
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "all", "all, today, week or month")
	cmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "Oldest completion first")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := state.Clock.Now()
			st := todo.Summarize(state.Tasks.List(), now)
			return output(st, func(w io.Writer) {
				fmt.Fprintf(w, "Hello %s\n\n", state.Settings.Profile().Username)
				fmt.Fprintf(w, "%d%% done  (%d of %d tasks)\n", st.Progress, st.Completed, st.Total)
				fmt.Fprintf(w, "pending %d  due today %d  overdue %d  next 7 days %d  done this week %d\n",
					st.Pending, st.DueToday, st.Overdue, st.UpcomingWeek, st.CompletedThisWeek)
				fmt.Fprintf(w, "priority share %d%%\n", st.PriorityShare)

				days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
				for i, p := range st.DailyProgress {
					fmt.Fprintf(w, "  %s %-10s %3d%%\n", days[i], strings.Repeat("#", p/10), p)
				}

				if len(st.Priority) > 0 {
					fmt.Fprintln(w, "\n"+styleHeading.Render("Priority"))
					printTasks(w, st.Priority, now)
				}
				if len(st.Upcoming) > 0 {
					fmt.Fprintln(w, "\n"+styleHeading.Render("Upcoming"))
					printTasks(w, st.Upcoming, now)
				}
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as taskwarrior JSON or iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := state.Tasks.List()
			switch format {
			case "taskwarrior":
				outputJSON = true
				return output(taskd.FromTodos(tasks), nil)
			case "ics":
				var xs []calendar.Export
				for _, t := range tasks {
					if x, err := calendar.ExportTask(t); err == nil && !t.Completed {
						xs = append(xs, x)
					}
				}
				b, err := calendar.ICS(state.Clock.Now(), xs...)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return fmt.Errorf("unknown export format %q", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "taskwarrior", "taskwarrior or ics")
	return cmd
}

func newHandoffCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "handoff ID",
		Short: "Print a link that adds a task to an external calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := state.Tasks.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", todo.ErrNotFound, args[0])
			}
			x, err := calendar.ExportTask(t)
			if err != nil {
				return err
			}
			u, err := x.URL(calendar.Provider(provider), state.Clock.Now())
			if err != nil {
				return err
			}
			return output(map[string]string{"provider": provider, "url": u}, func(w io.Writer) {
				fmt.Fprintln(w, u)
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "google", "google, outlook, apple or ical")
	return cmd
}
