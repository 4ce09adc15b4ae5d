package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dukerupert/devfocus/internal/config"
	"github.com/dukerupert/devfocus/internal/database"
	"github.com/dukerupert/devfocus/internal/logging"
	"github.com/dukerupert/devfocus/internal/tracker"
	"github.com/spf13/cobra"
)

// app is what a command needs to run: resolved config, an open database and the
// tracker service over it.
type app struct {
	cfg    *config.Config
	svc    *tracker.Service
	logger *slog.Logger
	json   bool
}

func openApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	asJSON, _ := cmd.Flags().GetBool("json")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Resolve(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if err := cfg.SetLogLevel(logLevel); err != nil {
			return nil, fmt.Errorf("%w: --log-level: %v", tracker.ErrValidation, err)
		}
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrStoreUnavailable, err)
	}
	logger.Debug("database opened", "path", cfg.DBPath)

	svc := tracker.New(db,
		tracker.WithLogger(logger),
		tracker.WithMaxElapsed(cfg.Tracker.MaxElapsedSeconds),
	)
	return &app{cfg: cfg, svc: svc, logger: logger, json: asJSON}, nil
}

func (a *app) Close() {
	if err := a.svc.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}
