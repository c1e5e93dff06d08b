package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mrusme/taskflow/calendar"
	"github.com/mrusme/taskflow/todo"
	"github.com/spf13/cobra"
)

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Calendar events generated from tasks plus your own events",
	}
	cmd.AddCommand(
		newCalendarSyncCmd(),
		newCalendarAgendaCmd(),
		newCalendarDayCmd(),
		newCalendarAddCmd(),
		newCalendarRmCmd(),
		newCalendarEditCmd(),
		newCalendarToTaskCmd(),
		newCalendarImportCmd(),
		newCalendarPublishCmd(),
		newCalendarPullCmd(),
	)
	return cmd
}

func newCalendarSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Regenerate the task events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.Calendar.Sync()
		},
	}
}

func newCalendarAgendaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agenda [today|tomorrow|week|in N days|next N weeks|DATE]",
		Short: "List event occurrences, recurring events expanded",
		RunE: func(cmd *cobra.Command, args []string) error {
			sT, eT, err := getStartEndByArgs(args, state.Clock.Now())
			if err != nil {
				return err
			}
			occs := state.Calendar.Agenda(sT, eT)
			return output(occs, func(w io.Writer) {
				if len(occs) == 0 {
					fmt.Fprintln(w, "No events")
					return
				}
				var last string
				for _, o := range occs {
					if d := o.StartsAt.Format("Mon, Jan 02"); d != last {
						fmt.Fprintln(w, styleHeading.Render(d))
						last = d
					}
					printEvent(w, o.Event, o.StartsAt.Format("15:04")+"-"+o.EndsAt.Format("15:04"))
				}
			})
		},
	}
}

func newCalendarDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [DATE]",
		Short: "List the events of one day, all-day events first",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := state.Clock.Now()
			if len(args) > 0 {
				d, err := todo.ParseDue(strings.Join(args, " "), day)
				if err != nil {
					return err
				}
				day = d
			}
			events := state.Calendar.On(day)
			return output(events, func(w io.Writer) {
				fmt.Fprintln(w, styleHeading.Render(day.Format("Monday, Jan 02")))
				for _, e := range events {
					when := "           "
					if e.StartTime != "" {
						when = fmt.Sprintf("%-5s-%-5s", e.StartTime, e.EndTime)
					}
					printEvent(w, e, when)
				}
			})
		},
	}
}

type eventFlags struct {
	date   string
	start  string
	end    string
	allDay bool
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date (today, tomorrow, 2026-10-20, ...)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&f.end, "end", "", "End time HH:MM")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "All-day event")
}

func newCalendarAddCmd() *cobra.Command {
	var (
		f           eventFlags
		color       string
		description string
		location    string
		rrule       string
	)
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add an event that is not a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := state.Clock.Now()
			if f.date != "" {
				d, err := todo.ParseDue(f.date, date)
				if err != nil {
					return err
				}
				date = d
			}
			e, err := state.Calendar.AddEvent(calendar.Event{
				Title:       strings.Join(args, " "),
				Date:        date,
				StartTime:   f.start,
				EndTime:     f.end,
				IsAllDay:    f.allDay,
				Color:       color,
				Description: description,
				Location:    location,
				RRule:       rrule,
			})
			if err != nil {
				return err
			}
			return output(e, func(w io.Writer) {
				printEvent(w, e, e.Date.Format("Jan 02"))
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&color, "color", "bg-green-500", "Color class")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&location, "location", "", "Location")
	cmd.Flags().StringVar(&rrule, "rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;COUNT=4")
	return cmd
}

func newCalendarRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm EVENT-ID",
		Short: "Remove an event that is not a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.Calendar.RemoveEvent(args[0])
		},
	}
}

func newCalendarEditCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "edit EVENT-ID",
		Short: "Reschedule the task behind a task event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := todo.ScheduleUpdate{StartTime: f.start, EndTime: f.end}
			if f.date != "" {
				d, err := todo.ParseDue(f.date, state.Clock.Now())
				if err != nil {
					return err
				}
				u.Date = &d
			}
			if cmd.Flags().Changed("all-day") {
				u.IsAllDay = &f.allDay
			}
			ok, err := state.Calendar.UpdateTaskFromEvent(args[0], u)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not an event of an existing task", args[0])
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCalendarToTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "task EVENT-ID",
		Short: "Create a task from an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range state.Calendar.Events() {
				if e.ID == args[0] {
					t, err := state.Calendar.CreateTaskFromEvent(e)
					if err != nil {
						return err
					}
					return printResult(t)
				}
			}
			return fmt.Errorf("%w: %s", calendar.ErrNotFound, args[0])
		},
	}
}

func newCalendarImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.ics",
		Short: "Import events from an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := state.Calendar.Import(f, time.Local)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d events imported\n", n)
			return nil
		},
	}
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newCalendarPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload open, dated tasks to the CalDAV calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			n, err := state.Publish(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tasks published\n", n)
			return nil
		},
	}
}

func newCalendarPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Import the events of the CalDAV calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			n, err := state.Pull(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d events imported\n", n)
			return nil
		},
	}
}
