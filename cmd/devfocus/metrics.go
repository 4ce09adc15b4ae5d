package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show points and completions across all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.svc.GetGeneralMetrics()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, m)
			}
			fmt.Fprintf(out, "Total points:        %d\n", m.TotalPoints)
			fmt.Fprintf(out, "Today:               %d\n", m.PointsToday)
			fmt.Fprintf(out, "Last 7 days:         %d\n", m.PointsThisWeek)
			fmt.Fprintf(out, "Tasks completed:     %d\n", m.TotalTasksCompleted)
			fmt.Fprintf(out, "Subtasks completed:  %d\n", m.TotalSubtasksCompleted)
			fmt.Fprintf(out, "Avg completion time: %s\n", formatSeconds(int64(m.AverageCompletionTimeSeconds)))
			if m.BestDay != nil {
				fmt.Fprintf(out, "Best day:            %s (%d points)\n", m.BestDay.Date, m.BestDay.Points)
			}
			fmt.Fprintln(out)

			w := newTable(out)
			fmt.Fprintln(w, "DATE\tPOINTS\tSUBTASKS")
			for _, d := range m.PointsLast7Days {
				fmt.Fprintf(w, "%s\t%d\t%d\n", d.Date, d.Points, d.SubtasksCompleted)
			}
			return w.Flush()
		},
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show overall level, title and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.svc.GetUserProfile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, p)
			}
			fmt.Fprintf(out, "%s, level %d\n", p.Title, p.Level)
			fmt.Fprintf(out, "XP:             %d (%d to next level, %.0f%%)\n", p.TotalXP, p.XPForNextLevel, p.ProgressPercent)
			fmt.Fprintf(out, "Current streak: %d days\n", p.CurrentStreak)
			fmt.Fprintf(out, "Longest streak: %d days\n", p.LongestStreak)
			if p.StreakBonusPercent > 0 {
				fmt.Fprintf(out, "Streak bonus:   %d%%\n", p.StreakBonusPercent)
			}
			if p.LastWorkDate != nil {
				fmt.Fprintf(out, "Last worked:    %s\n", *p.LastWorkDate)
			}
			return nil
		},
	}
}
