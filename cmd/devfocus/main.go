package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dukerupert/devfocus/internal/backup"
	"github.com/dukerupert/devfocus/internal/tracker"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devfocus",
		Short:         "devfocus: focused time tracking with points and levels",
		Long:          "devfocus tracks time spent on tasks and subtasks, scores completed work and keeps per-category experience.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "path to config file (default: user config dir)")
	cmd.PersistentFlags().Bool("json", false, "print results as JSON")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newSubtaskCmd())
	cmd.AddCommand(newCategoryCmd())
	cmd.AddCommand(newMetricsCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newBackupCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devfocus %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	switch tracker.KindOf(err) {
	case tracker.KindNone:
		return 0
	case tracker.KindValidation:
		return 2
	case tracker.KindNotFound:
		return 3
	case tracker.KindConflict:
		return 4
	case tracker.KindStoreUnavailable:
		return 5
	}
	switch {
	case errors.Is(err, backup.ErrNotFound):
		return 3
	case errors.Is(err, backup.ErrNoPassphrase), errors.Is(err, backup.ErrDestExists), errors.Is(err, backup.ErrDecrypt):
		return 2
	}
	return 1
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(execute(newRootCmd()))
}
