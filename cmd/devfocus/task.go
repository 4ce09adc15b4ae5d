package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskMetricsCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			return runTaskCreate(cmd, args[0], desc)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "task description")
	return cmd
}

func runTaskCreate(cmd *cobra.Command, title string, description *string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.svc.CreateTask(title, description)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.json {
		return printJSON(out, task)
	}
	fmt.Fprintf(out, "Created task %s\n", task.ID)
	return nil
}

func newTaskListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their active subtask",
		Long:  "Lists tasks newest first. Each task shows the subtask currently in progress, if any.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, status)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (todo, in_progress, done)")
	return cmd
}

func runTaskList(cmd *cobra.Command, status string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.svc.ListTasksWithActiveSubtasks(status)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.json {
		return printJSON(out, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tACTIVE SUBTASK\tSESSION")
	for _, t := range tasks {
		active, session := "-", "-"
		if t.ActiveSubtask != nil {
			active = t.ActiveSubtask.Title
			if t.ActiveSubtask.CurrentSessionSeconds != nil {
				session = formatSeconds(*t.ActiveSubtask.CurrentSessionSeconds)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(t.ID), t.Title, t.Status, active, session)
	}
	return w.Flush()
}

func newTaskShowCmd() *cobra.Command {
	var withSessions bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskShow(cmd, args[0], withSessions)
		},
	}

	cmd.Flags().BoolVar(&withSessions, "sessions", false, "include each subtask's active session")
	return cmd
}

func runTaskShow(cmd *cobra.Command, taskID string, withSessions bool) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if withSessions {
		detail, err := a.svc.GetTaskWithSubtasksAndSessions(taskID)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(out, detail)
		}
		printTaskHeader(cmd, detail.Task.ID, detail.Title, string(detail.Status), detail.Description)
		w := newTable(out)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTOTAL\tSESSION")
		for _, s := range detail.Subtasks {
			session := "-"
			if s.Session != nil {
				session = formatSeconds(s.Session.DurationSeconds)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(s.Subtask.ID), s.Subtask.Title, s.Subtask.Status,
				formatSeconds(s.Subtask.TotalTimeSeconds), session)
		}
		return w.Flush()
	}

	detail, err := a.svc.GetTaskWithSubtasks(taskID)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(out, detail)
	}
	printTaskHeader(cmd, detail.ID, detail.Title, string(detail.Status), detail.Description)
	if len(detail.Subtasks) == 0 {
		fmt.Fprintln(out, "No subtasks.")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCATEGORY\tTOTAL")
	for _, s := range detail.Subtasks {
		category := "-"
		if s.Category != nil {
			category = s.Category.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(s.ID), s.Title, s.Status, category, formatSeconds(s.TotalTimeSeconds))
	}
	return w.Flush()
}

func printTaskHeader(cmd *cobra.Command, id, title, status string, description *string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Task:        %s\n", id)
	fmt.Fprintf(out, "Title:       %s\n", title)
	fmt.Fprintf(out, "Status:      %s\n", status)
	if description != nil {
		fmt.Fprintf(out, "Description: %s\n", *description)
	}
	fmt.Fprintln(out)
}

func newTaskStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status (todo, in_progress, done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.svc.UpdateTaskStatus(args[0], args[1])
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), task)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", task.ID, task.Status)
			return nil
		},
	}
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task with its subtasks and sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteTask(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func newTaskMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <task-id>",
		Short: "Show time, points and efficiency for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.svc.GetTaskMetrics(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, m)
			}
			fmt.Fprintf(out, "Task:             %s\n", m.TaskTitle)
			fmt.Fprintf(out, "Total time:       %s\n", formatSeconds(m.TotalTimeSeconds))
			fmt.Fprintf(out, "Points:           %d (complexity bonus %d)\n", m.TotalPoints, m.ComplexityBonus)
			fmt.Fprintf(out, "Subtasks:         %d/%d done\n", m.SubtasksCompleted, m.SubtasksTotal)
			fmt.Fprintf(out, "Avg per subtask:  %s\n", formatSeconds(int64(m.AverageTimePerSubtask)))
			fmt.Fprintf(out, "Efficiency:       %.0f%%\n", m.EfficiencyRate)
			fmt.Fprintf(out, "Completed:        %s\n", formatTime(m.CompletedAt))
			return nil
		},
	}
}
