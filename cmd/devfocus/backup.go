package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukerupert/devfocus/internal/backup"
	"github.com/dukerupert/devfocus/internal/config"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted database backups",
		Long:  "Backups are encrypted with the passphrase from the " + config.EnvBackupPassphrase + " environment variable.",
	}

	cmd.AddCommand(newBackupRunCmd())
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	cmd.AddCommand(newBackupScheduleCmd())
	return cmd
}

func (a *app) backupManager() *backup.Manager {
	return backup.NewManager(
		backup.Config{Dir: a.cfg.Backup.Dir, Retention: *a.cfg.Backup.Retention},
		a.svc,
		a.logger,
	)
}

func newBackupRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Take a backup now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.backupManager().RunNow(cmd.Context(), a.cfg.Backup.Passphrase)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup %s written to %s (%d bytes)\n", b.ID, b.Path, b.SizeBytes)
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			backups, err := a.backupManager().List(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.json {
				return printJSON(out, backups)
			}
			if len(backups) == 0 {
				fmt.Fprintln(out, "No backups found.")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, "ID\tSTATUS\tSIZE\tCREATED\tFILE")
			for _, b := range backups {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", b.ID, b.Status, b.SizeBytes, formatTime(&b.CreatedAt), b.Filename)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of backups to list (0 for all)")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-id> <dest-path>",
		Short: "Decrypt a backup into a new database file",
		Long:  "Restores never overwrite an existing file. Point db_path at the restored file to use it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.backupManager().Restore(cmd.Context(), args[0], a.cfg.Backup.Passphrase, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newBackupScheduleCmd() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run backups on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if spec == "" {
				spec = a.cfg.Backup.Schedule
			}
			if spec == "" {
				return fmt.Errorf("no backup schedule: set backup.schedule or pass --spec")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := backup.NewScheduler(a.backupManager(), a.cfg.Backup.Passphrase, a.logger)
			if _, err := sched.Schedule(ctx, spec); err != nil {
				return err
			}
			sched.Start()
			for _, e := range sched.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "Next backup at %s\n", e.Next.Local().Format("2006-01-02 15:04"))
			}

			<-ctx.Done()
			a.logger.Info("stopping backup scheduler")
			sched.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "spec", "", "cron expression (default: backup.schedule from config)")
	return cmd
}
