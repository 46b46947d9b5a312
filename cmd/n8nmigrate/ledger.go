package main

import (
	"context"
	"fmt"

	"github.com/dukex/n8nmigrate/internal/prompt"
	cli "github.com/urfave/cli/v3"
)

func newLedgerCommand() *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect the resources this tool created",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print tracked resources, for --server or every instance",
				Action: showLedger,
			},
		},
	}
}

func showLedger(ctx context.Context, command *cli.Command) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	var instances []string

	if key := command.String("server"); key != "" {
		servers, err := loadServers(command)
		if err != nil {
			return err
		}

		server, err := servers.Get(key)
		if err != nil {
			return err
		}

		instances = []string{server.BaseURL()}
	} else if instances, err = a.ledger.Instances(ctx); err != nil {
		return err
	}

	out := command.Root().Writer

	if len(instances) == 0 {
		fmt.Fprintln(out, "No tracked resources.")

		return nil
	}

	for _, instance := range instances {
		set, err := a.ledger.ListFor(ctx, instance)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, prompt.RenderTracked(instance, set))
	}

	return nil
}
