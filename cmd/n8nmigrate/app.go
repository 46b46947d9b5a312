package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukex/n8nmigrate/internal/prompt"
	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/cmd"
	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/log"
	"github.com/dukex/n8nmigrate/pkg/migration"
	"github.com/dukex/n8nmigrate/pkg/otelhelper"
	"github.com/dukex/n8nmigrate/pkg/schema"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

// app holds what every subcommand shares.
type app struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	shutdown otelhelper.Shutdown
	ledger   ledger.Store
	backups  *backup.Store
	schemas  *schema.Store
}

func newApp(ctx context.Context, command *cli.Command) (*app, error) {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("n8nmigrate")

	tracer, shutdown, err := otelhelper.NewTracer(ctx, "n8nmigrate", command.String("otel-endpoint"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	store, err := cmd.NewLedger(ctx, logger, command.String("ledger-url"))
	if err != nil {
		_ = shutdown(ctx)

		return nil, err
	}

	return &app{
		logger:   logger,
		tracer:   tracer,
		shutdown: shutdown,
		ledger:   store,
		backups:  backup.NewStore(logger, command.String("data-dir")),
		schemas:  schema.NewStore(logger, command.String("schemas-dir")),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.ledger.Close(ctx); err != nil {
		a.logger.ErrorContext(ctx, "Failed to close ledger", "error", err)
	}

	if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.ErrorContext(ctx, "Failed to flush traces", "error", err)
	}
}

func (a *app) connector() migration.Connector {
	return cmd.NewConnector(cmd.Dependencies{
		Logger:  a.logger,
		Tracer:  a.tracer,
		Ledger:  a.ledger,
		Backups: a.backups,
		Schemas: a.schemas,
	})
}

func newPrompter(command *cli.Command) prompt.Prompter {
	if command.Bool("non-interactive") {
		return prompt.NonInteractive{}
	}

	return prompt.NewTerminal(os.Stdin, os.Stdout)
}

func loadServers(command *cli.Command) (*config.Servers, error) {
	servers, err := config.LoadServers(command.String("servers"))
	if err != nil {
		return nil, fmt.Errorf("%w (copy servers.yaml.example to servers.yaml and configure your servers)", err)
	}

	return servers, nil
}

// selectServer resolves --server or asks for one.
func selectServer(ctx context.Context, command *cli.Command, servers *config.Servers) (*config.Server, error) {
	if key := command.String("server"); key != "" {
		return servers.Get(key)
	}

	list := servers.List()

	options := make([]string, len(list))
	for i, server := range list {
		options[i] = server.Label()
	}

	choice, err := newPrompter(command).Select(ctx, "Select Server", options)
	if err != nil {
		return nil, err
	}

	return list[choice], nil
}

// runSession drives one interactive operation and prints its report.
func runSession(ctx context.Context, command *cli.Command, cfg migration.SessionConfig, prompter migration.Prompter) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return a.runSession(ctx, command, cfg, prompter)
}

func (a *app) runSession(ctx context.Context, command *cli.Command, cfg migration.SessionConfig, prompter migration.Prompter) error {
	servers, err := loadServers(command)
	if err != nil {
		return err
	}

	cfg.Servers = servers
	cfg.Server = command.String("server")
	cfg.Project = command.String("project")

	report, err := migration.NewSession(a.logger, cfg, prompter, a.connector()).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(command.Root().Writer, prompt.RenderReport(report))

	return nil
}
