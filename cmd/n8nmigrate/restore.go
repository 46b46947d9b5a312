package main

import (
	"context"

	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/migration"
	cli "github.com/urfave/cli/v3"
)

func newRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:    "restore",
		Aliases: []string{"r"},
		Usage:   "Recreate a backup on a server for a target environment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backup",
				Usage: "Backup directory name under the data dir (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Target environment: production or development (prompted when omitted)",
				Sources: cli.EnvVars("N8NMIGRATE_ENV"),
			},
			&cli.StringFlag{
				Name:  "new-project",
				Usage: "Create a project with this name and restore into it",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			creds, err := config.LoadCredentials(command.String("credentials"))
			if err != nil {
				return err
			}

			return runSession(ctx, command, migration.SessionConfig{
				Action:      migration.ActionRestore,
				Credentials: creds,
				Backup:      command.String("backup"),
				Environment: command.String("env"),
				NewProject:  command.String("new-project"),
			}, newPrompter(command))
		},
	}
}
