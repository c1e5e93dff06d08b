package main

import (
	"fmt"
	"io"

	"github.com/mrusme/taskflow/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications [on|off]",
		Short: "Show or switch notifications",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				on, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				if err := state.Notifications.SetNotificationsEnabled(on); err != nil {
					return err
				}
			}
			status := map[string]bool{
				"notificationsEnabled": state.Notifications.Enabled(),
				"soundEnabled":         state.Notifications.SoundEnabled(),
			}
			return output(status, func(w io.Writer) {
				fmt.Fprintf(w, "notifications %s, sound %s\n",
					onOff(status["notificationsEnabled"]), onOff(status["soundEnabled"]))
			})
		},
	}

	sound := &cobra.Command{
		Use:   "sound on|off",
		Short: "Switch the notification tone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return state.Notifications.SetSoundEnabled(on)
		},
	}

	cmd.AddCommand(sound)
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "watch",
		Short:       "Stay in the foreground and deliver due-soon and reminder notifications",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStorage: storageShared},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			if outputJSON {
				state.Notifications.Added.Subscribe(func(n notify.Notification) {
					if err := output(n, nil); err != nil {
						log.Error("failed to print notification", zap.Error(err))
					}
				})
			}

			return state.Watch(ctx)
		},
	}
}
