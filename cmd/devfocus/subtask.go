package main

import (
	"fmt"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/spf13/cobra"
)

func newSubtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Subtask and time session commands",
	}

	cmd.AddCommand(newSubtaskAddCmd())
	cmd.AddCommand(newSubtaskDeleteCmd())
	cmd.AddCommand(newSubtaskShowCmd())
	cmd.AddCommand(newSubtaskStartCmd())
	cmd.AddCommand(newSubtaskPauseCmd())
	cmd.AddCommand(newSubtaskResumeCmd())
	cmd.AddCommand(newSubtaskCompleteCmd())
	cmd.AddCommand(newSubtaskHeartbeatCmd())
	return cmd
}

func newSubtaskAddCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtaskAdd(cmd, args[0], args[1], category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category name or id")
	return cmd
}

func runSubtaskAdd(cmd *cobra.Command, taskID, title, category string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var categoryID *string
	if category != "" {
		c, err := a.resolveCategory(category)
		if err != nil {
			return err
		}
		categoryID = &c.ID
	}

	sub, err := a.svc.CreateSubtask(taskID, title, categoryID)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(cmd.OutOrStdout(), sub)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created subtask %s\n", sub.ID)
	return nil
}

func newSubtaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <subtask-id>",
		Short: "Delete a subtask and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteSubtask(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted subtask %s\n", args[0])
			return nil
		},
	}
}

func newSubtaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <subtask-id>",
		Short: "Show a subtask with its active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ws, err := a.svc.GetSubtaskWithSession(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, ws)
			}
			fmt.Fprintf(out, "Subtask:  %s\n", ws.Subtask.ID)
			fmt.Fprintf(out, "Title:    %s\n", ws.Subtask.Title)
			fmt.Fprintf(out, "Status:   %s\n", ws.Subtask.Status)
			fmt.Fprintf(out, "Total:    %s\n", formatSeconds(ws.Subtask.TotalTimeSeconds))
			if ws.Session != nil {
				printSession(cmd, ws.Session)
			}
			return nil
		},
	}
}

func printSession(cmd *cobra.Command, s *model.TimeSession) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:  %s\n", s.ID)
	fmt.Fprintf(out, "Started:  %s\n", formatTime(&s.StartedAt))
	if s.PausedAt != nil {
		fmt.Fprintf(out, "Paused:   %s\n", formatTime(s.PausedAt))
	}
	fmt.Fprintf(out, "Recorded: %s\n", formatSeconds(s.DurationSeconds))
}

// sessionCmd builds the commands that act on a subtask's session and print it.
func sessionCmd(use, short string, withElapsed bool, fn func(a *app, id string, elapsed int64) (*model.TimeSession, error)) *cobra.Command {
	var elapsed int64

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := fn(a, args[0], elapsed)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), session)
			}
			printSession(cmd, session)
			return nil
		},
	}

	if withElapsed {
		cmd.Flags().Int64Var(&elapsed, "elapsed", 0, "seconds worked in the session so far")
		cmd.MarkFlagRequired("elapsed")
	}
	return cmd
}

func newSubtaskStartCmd() *cobra.Command {
	return sessionCmd("start <subtask-id>", "Start working on a subtask", false,
		func(a *app, id string, _ int64) (*model.TimeSession, error) {
			return a.svc.StartSubtask(id)
		})
}

func newSubtaskPauseCmd() *cobra.Command {
	return sessionCmd("pause <subtask-id>", "Pause the running session", true,
		func(a *app, id string, elapsed int64) (*model.TimeSession, error) {
			return a.svc.PauseSubtask(id, elapsed)
		})
}

func newSubtaskResumeCmd() *cobra.Command {
	return sessionCmd("resume <subtask-id>", "Resume a paused session", false,
		func(a *app, id string, _ int64) (*model.TimeSession, error) {
			return a.svc.ResumeSubtask(id)
		})
}

func newSubtaskHeartbeatCmd() *cobra.Command {
	return sessionCmd("heartbeat <subtask-id>", "Record elapsed time without changing state", true,
		func(a *app, id string, elapsed int64) (*model.TimeSession, error) {
			return a.svc.RecordElapsed(id, elapsed)
		})
}

func newSubtaskCompleteCmd() *cobra.Command {
	var elapsed int64

	cmd := &cobra.Command{
		Use:   "complete <subtask-id>",
		Short: "Complete a subtask, scoring points and category XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.CompleteSubtask(args[0], elapsed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Completed %q in %s: +%d points, +%d XP\n",
				res.Subtask.Title, formatSeconds(res.TimeSpentSeconds), res.PointsEarned, res.XPGained)
			if res.Category != nil && res.Experience != nil {
				fmt.Fprintf(out, "%s: level %d (%d XP)\n", res.Category.Name, res.Experience.Level, res.Experience.TotalXP)
				if res.LeveledUp {
					fmt.Fprintf(out, "Level up! %s reached level %d\n", res.Category.Name, res.Experience.Level)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&elapsed, "elapsed", 0, "total seconds worked in the session")
	cmd.MarkFlagRequired("elapsed")
	return cmd
}
