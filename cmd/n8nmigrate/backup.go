package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/n8nmigrate/internal/prompt"
	"github.com/dukex/n8nmigrate/pkg/migration"
	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"
)

func newBackupCommand() *cli.Command {
	return &cli.Command{
		Name:    "backup",
		Aliases: []string{"b"},
		Usage:   "Save every workflow of a project into a timestamped backup directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression; repeat the backup until interrupted (requires --server)",
				Sources: cli.EnvVars("N8NMIGRATE_BACKUP_SCHEDULE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg := migration.SessionConfig{Action: migration.ActionBackup}

			if expr := command.String("schedule"); expr != "" {
				return runScheduledBackup(ctx, command, expr, cfg)
			}

			return runSession(ctx, command, cfg, newPrompter(command))
		},
	}
}

func runScheduledBackup(ctx context.Context, command *cli.Command, expr string, cfg migration.SessionConfig) error {
	if command.String("server") == "" {
		return errors.New("--schedule requires --server")
	}

	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	logger := a.logger.With("schedule", expr)
	scheduler := cron.New(cron.WithChain(scheduleWrappers(logger)...))

	_, err = scheduler.AddFunc(expr, func() {
		logger.InfoContext(ctx, "Starting scheduled backup")

		if err := a.runSession(ctx, command, cfg, prompt.NonInteractive{}); err != nil {
			logger.ErrorContext(ctx, "Scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	scheduler.Start()

	for _, entry := range scheduler.Entries() {
		logger.InfoContext(ctx, "Backup scheduled", "next_run", entry.Next)
	}

	<-ctx.Done()

	logger.InfoContext(ctx, "Stopping scheduler")
	<-scheduler.Stop().Done()

	return nil
}

// scheduleWrappers keep one scheduled backup running at a time; a tick that fires
// while the previous backup is still running is skipped.
func scheduleWrappers(logger *slog.Logger) []cron.JobWrapper {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))

	return []cron.JobWrapper{
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	}
}
