package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/schema"
	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "n8nmigrate",
		Usage:                 "Back up, restore and clean up n8n workflows across instances and environments",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "servers",
				Usage:   "Path to the servers registry",
				Value:   config.DefaultServersPath,
				Sources: cli.EnvVars("N8NMIGRATE_SERVERS"),
			},
			&cli.StringFlag{
				Name:    "credentials",
				Usage:   "Path to the credentials and replacements configuration",
				Value:   config.DefaultCredentialsPath,
				Sources: cli.EnvVars("N8NMIGRATE_CREDENTIALS"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory backups are written to and read from",
				Value:   backup.DefaultRoot,
				Sources: cli.EnvVars("N8NMIGRATE_DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "schemas-dir",
				Usage:   "Directory of cached credential schemas",
				Value:   schema.DefaultDir,
				Sources: cli.EnvVars("N8NMIGRATE_SCHEMAS_DIR"),
			},
			&cli.StringFlag{
				Name:    "ledger-url",
				Usage:   "Resource ledger: a JSON file path, or postgres://, sqlite3://, redis:// URL",
				Value:   ledger.DefaultPath,
				Sources: cli.EnvVars("N8NMIGRATE_LEDGER_URL"),
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Server key from the registry (prompted when omitted)",
				Sources: cli.EnvVars("N8NMIGRATE_SERVER"),
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Project id or name (prompted when omitted)",
				Sources: cli.EnvVars("N8NMIGRATE_PROJECT"),
			},
			&cli.BoolFlag{
				Name:    "non-interactive",
				Usage:   "Fail instead of prompting for missing choices",
				Sources: cli.EnvVars("N8NMIGRATE_NON_INTERACTIVE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "otel-endpoint",
				Usage:   "OTLP/HTTP endpoint for traces (disabled when empty)",
				Sources: cli.EnvVars("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
			},
		},
		Commands: []*cli.Command{
			newBackupCommand(),
			newRestoreCommand(),
			newCleanupCommand(),
			newSchemasCommand(),
			newServersCommand(),
			newLedgerCommand(),
		},
	}
}
