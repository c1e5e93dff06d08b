package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrusme/taskflow/space"
	"github.com/mrusme/taskflow/todo"
	"github.com/spf13/cobra"
)

func printSpaces(w io.Writer, spaces []space.Space, active string) {
	for _, s := range spaces {
		marker := " "
		if s.ID == active {
			marker = ">"
		}
		name := lipgloss.NewStyle().Foreground(colorOf(s.Color)).Render(s.Name)
		fmt.Fprintf(w, "%s %-28s %3d  %s\n", marker, name, s.Count, styleID.Render(s.ID))
	}
}

func newSpacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "List and manage spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spaces := state.Spaces.List()
			return output(spaces, func(w io.Writer) {
				printSpaces(w, spaces, state.Settings.ActiveSpace())
			})
		},
	}

	var order string
	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find spaces by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spaces := state.Spaces.Search(strings.Join(args, " "), todo.SortOrder(order))
			return output(spaces, func(w io.Writer) {
				printSpaces(w, spaces, state.Settings.ActiveSpace())
			})
		},
	}
	search.Flags().StringVar(&order, "sort", "asc", "asc or desc by name")

	var icon, color string
	create := &cobra.Command{
		Use:   "create NAME...",
		Short: "Create a custom space",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := state.Spaces.Create(strings.Join(args, " "), icon, color)
			if err != nil {
				return err
			}
			return output(s, func(w io.Writer) {
				fmt.Fprintf(w, "Space %q has been created (%s)\n", s.Name, s.ID)
			})
		},
	}
	create.Flags().StringVar(&icon, "icon", space.DefaultIcon, "Icon: "+strings.Join(space.Icons, ", "))
	create.Flags().StringVar(&color, "color", space.DefaultColor, "Color: "+strings.Join(space.Colors, ", "))

	rename := &cobra.Command{
		Use:   "rename ID NAME...",
		Short: "Rename a custom space",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := state.Spaces.Rename(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return output(s, func(w io.Writer) {
				fmt.Fprintln(w, "Space name has been updated")
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a custom space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.Spaces.Delete(args[0])
		},
	}

	use := &cobra.Command{
		Use:   "use ID",
		Short: "Make a space the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := state.Spaces.Get(args[0]); !ok {
				return fmt.Errorf("%w: %s", space.ErrNotFound, args[0])
			}
			return state.Settings.SetActiveSpace(args[0])
		},
	}

	cmd.AddCommand(search, create, rename, rm, use)
	return cmd
}
