package main

import (
	"context"
	"fmt"

	"github.com/dukex/n8nmigrate/pkg/n8n"
	cli "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const checkConcurrency = 4

func newServersCommand() *cli.Command {
	return &cli.Command{
		Name:  "servers",
		Usage: "Inspect the servers registry",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List configured servers",
				Action: listServers,
			},
			{
				Name:   "check",
				Usage:  "Test the connection to every configured server",
				Action: checkServers,
			},
		},
	}
}

func listServers(_ context.Context, command *cli.Command) error {
	servers, err := loadServers(command)
	if err != nil {
		return err
	}

	out := command.Root().Writer
	for _, server := range servers.List() {
		projects := "no"
		if server.SupportsProjects {
			projects = "yes"
		}

		fmt.Fprintf(out, "%-16s %-32s %s (projects: %s)\n", server.Key, server.Name, server.BaseURL(), projects)
	}

	return nil
}

// checkServers pings every server concurrently. The check is read-only.
func checkServers(ctx context.Context, command *cli.Command) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	servers, err := loadServers(command)
	if err != nil {
		return err
	}

	list := servers.List()
	results := make([]error, len(list))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(checkConcurrency)

	for i, server := range list {
		group.Go(func() error {
			client := n8n.NewClient(a.logger, server.BaseURL(), server.APIKey)
			results[i] = client.Ping(groupCtx)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	out := command.Root().Writer
	failed := 0

	for i, server := range list {
		if results[i] != nil {
			failed++

			fmt.Fprintf(out, "FAIL %s: %v\n", server.Label(), results[i])

			continue
		}

		fmt.Fprintf(out, "OK   %s\n", server.Label())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d servers unreachable", failed, len(list))
	}

	return nil
}
