package main

import (
	"context"

	"github.com/dukex/n8nmigrate/internal/prompt"
	"github.com/dukex/n8nmigrate/pkg/migration"
	cli "github.com/urfave/cli/v3"
)

func newCleanupCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete the workflows, credentials and project this tool created on a server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			var prompter migration.Prompter = newPrompter(command)
			if command.Bool("yes") {
				prompter = prompt.AutoConfirm{Prompter: newPrompter(command)}
			}

			return runSession(ctx, command, migration.SessionConfig{Action: migration.ActionCleanup}, prompter)
		},
	}
}
