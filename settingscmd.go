package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/mrusme/taskflow/settings"
	"github.com/mrusme/taskflow/todo"
	"github.com/spf13/cobra"
)

// newValueCmd builds a command that prints a setting or, given an
// argument, changes it.
func newValueCmd(use, short string, get func() string, set func(string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := set(args[0]); err != nil {
					return err
				}
			}
			v := get()
			return output(v, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}
}

func newSortCmd() *cobra.Command {
	return newValueCmd("sort [asc|desc]", "Show or set the task sort order",
		func() string { return string(state.Settings.SortOrder()) },
		func(v string) error { return state.Settings.SetSortOrder(todo.SortOrder(v)) })
}

func newFilterCmd() *cobra.Command {
	return newValueCmd("filter [all|completed|incomplete|priority]", "Show or set the task filter",
		func() string { return string(state.Settings.FilterType()) },
		func(v string) error { return state.Settings.SetFilterType(todo.FilterType(v)) })
}

func newThemeCmd() *cobra.Command {
	return newValueCmd("theme [light|dark|system]", "Show or set the theme",
		func() string { return string(state.Settings.Theme()) },
		func(v string) error { return state.Settings.SetTheme(settings.Theme(v)) })
}

func newProfileCmd() *cobra.Command {
	var name, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the user name and avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("name") {
				if err := state.Settings.SetUsername(name); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("avatar") {
				if err := state.Settings.SetAvatar(avatar); err != nil {
					return err
				}
			}
			p := state.Settings.Profile()
			return output(p, func(w io.Writer) {
				fmt.Fprintln(w, p.Username)
				if p.Avatar != "" {
					fmt.Fprintln(w, styleID.Render(p.Avatar))
				}
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "User name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar image URL or data URL, empty to remove")
	return cmd
}

func newBackgroundCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "background [GRADIENT|URL]",
		Short: "Show, set or reset the app background",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case reset:
				if err := state.Settings.ResetBackground(); err != nil {
					return err
				}
			case len(args) == 1:
				if err := state.Settings.SetBackground(args[0]); err != nil {
					return err
				}
			}
			bg, _ := state.Settings.Background()
			return output(bg, func(w io.Writer) {
				if bg == "" {
					fmt.Fprintln(w, "default background")
					return
				}
				fmt.Fprintln(w, bg)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Back to the default background")
	return cmd
}

func newIntegrationsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "List integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := state.Settings.Integrations(settings.Category(category))
			return output(list, func(w io.Writer) {
				for _, in := range list {
					status := styleID.Render("not connected")
					if in.Connected {
						status = styleToast.Render("connected")
					}
					fmt.Fprintf(w, "%-16s %-14s %s  %s\n", in.ID, in.Category, status, in.Description)
				}
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "productivity, communication or calendar")

	connect := &cobra.Command{
		Use:   "connect ID",
		Short: "Connect an integration and print its authorization URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := state.Settings.Connect(args[0])
			if err != nil {
				return err
			}
			return output(in, func(w io.Writer) {
				fmt.Fprintf(w, "%s connected. Authorize at %s\n", in.Name, in.AuthURL)
			})
		},
	}

	disconnect := &cobra.Command{
		Use:   "disconnect ID",
		Short: "Disconnect an integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := state.Settings.Disconnect(args[0])
			return err
		},
	}

	cmd.AddCommand(connect, disconnect)
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tasks, events and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete everything without --yes")
			}
			return state.Reset()
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}
