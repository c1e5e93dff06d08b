package main

import (
	"fmt"
	"os"

	"github.com/mrusme/taskflow/app"
	"github.com/mrusme/taskflow/config"
	"github.com/mrusme/taskflow/logger"
	"github.com/mrusme/taskflow/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Commands annotated with storageShared run for long and share the database
// with other invocations.
const (
	annotationStorage = "storage"
	storageShared     = "shared"
)

var (
	outputJSON bool
	tmplPath   string
	dbPath     string
	storageURL string
	debug      bool
	quiet      bool

	state *app.State
	log   *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "Tasks, spaces, reminders and a calendar for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&outputJSON, "json", "j", false, "Output JSON")
	flags.StringVar(&tmplPath, "template", "", "Template file for output (TASKFLOW_TEMPLATE)")
	flags.StringVar(&dbPath, "database", "", "Local database file (TASKFLOW_DB)")
	flags.StringVar(&storageURL, "storage-url", "", "redis:// URL to use instead of the local database (TASKFLOW_STORAGE_URL)")
	flags.BoolVar(&debug, "debug", false, "Debug logging (TASKFLOW_DEBUG)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print notifications")

	rootCmd.AddCommand(
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newStarCmd(),
		newDueCmd(),
		newTimeCmd(),
		newRemindCmd(),
		newRenameCmd(),
		newTagCmd(),
		newMoveCmd(),
		newRmCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newExportCmd(),
		newHandoffCmd(),
		newCalendarCmd(),
		newSpacesCmd(),
		newNotificationsCmd(),
		newWatchCmd(),
		newSortCmd(),
		newFilterCmd(),
		newProfileCmd(),
		newBackgroundCmd(),
		newThemeCmd(),
		newIntegrationsCmd(),
		newResetCmd(),
	)

	return rootCmd
}

// setup loads the configuration, applies flag overrides and opens the app
// state every command works on.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("database") {
		cfg.Database = dbPath
	}
	if flags.Changed("storage-url") {
		cfg.StorageURL = storageURL
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if tmplPath == "" {
		tmplPath = cfg.Template
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logger.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	open := app.Open
	if cmd.Annotations[annotationStorage] == storageShared {
		open = app.OpenShared
	}
	state, err = open(cfg, notify.Bell{W: os.Stderr}, log)
	if err != nil {
		return err
	}

	if !quiet && !outputJSON {
		state.Notifications.Added.Subscribe(func(n notify.Notification) {
			printToast(os.Stderr, n)
		})
	}
	return nil
}

func teardown() error {
	var err error
	if state != nil {
		err = state.Close()
	}
	_ = logger.Sync(log)
	return err
}
