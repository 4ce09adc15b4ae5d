package main

import (
	"fmt"
	"strings"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/tracker"
	"github.com/spf13/cobra"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Category and experience commands",
	}

	cmd.AddCommand(newCategoryCreateCmd())
	cmd.AddCommand(newCategoryListCmd())
	cmd.AddCommand(newCategoryXPCmd())
	cmd.AddCommand(newCategoryStatsCmd())
	cmd.AddCommand(newCategoryDeleteCmd())
	return cmd
}

// resolveCategory accepts either a category id or its name.
func (a *app) resolveCategory(ref string) (*model.Category, error) {
	categories, err := a.svc.ListCategories()
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(strings.TrimSpace(ref))
	for i := range categories {
		if categories[i].ID == ref || categories[i].Name == name {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("%w: category %q", tracker.ErrNotFound, ref)
}

func newCategoryCreateCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.svc.CreateCategory(args[0], color)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "#3b82f6", "hex color, #rgb or #rrggbb")
	return cmd
}

func newCategoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := a.svc.ListCategories()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, categories)
			}
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories found.")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(c.ID), c.Name, c.Color)
			}
			return w.Flush()
		},
	}
}

func newCategoryXPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "xp <category>",
		Short: "Show experience for one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.resolveCategory(args[0])
			if err != nil {
				return err
			}
			exp, err := a.svc.GetCategoryExperience(c.ID)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), exp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: level %d, %d XP\n", c.Name, exp.Level, exp.TotalXP)
			return nil
		},
	}
}

func newCategoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level progress for every category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.svc.GetAllCategoryStats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, stats)
			}
			if len(stats) == 0 {
				fmt.Fprintln(out, "No categories found.")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, "CATEGORY\tLEVEL\tXP\tTO NEXT\tPROGRESS")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0f%%\n", s.Category.Name, s.Level, s.TotalXP, s.XPForNextLevel, s.ProgressPercent)
			}
			return w.Flush()
		},
	}
}

func newCategoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category; its subtasks become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.resolveCategory(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteCategory(c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", c.Name)
			return nil
		},
	}
}
