package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/n8n"
	"github.com/dukex/n8nmigrate/pkg/schema"
	cli "github.com/urfave/cli/v3"
)

func newSchemasCommand() *cli.Command {
	return &cli.Command{
		Name:  "schemas",
		Usage: "Download credential schemas and check credentials.yaml against them",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Fetch credential-type schemas from a server into the schemas dir",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Additional credential type to download (repeatable)",
					},
				},
				Action: downloadSchemas,
			},
			{
				Name:      "example",
				Usage:     "Print a credentials.yaml example for cached schemas",
				ArgsUsage: "[type...]",
				Action:    exampleSchemas,
			},
			{
				Name:   "validate",
				Usage:  "Validate configured credential data against cached schemas",
				Action: validateSchemas,
			},
		},
	}
}

func downloadSchemas(ctx context.Context, command *cli.Command) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	servers, err := loadServers(command)
	if err != nil {
		return err
	}

	server, err := selectServer(ctx, command, servers)
	if err != nil {
		return err
	}

	types := append([]string{}, models.KnownCredentialTypes...)
	for _, extra := range command.StringSlice("type") {
		if !contains(types, extra) {
			types = append(types, extra)
		}
	}

	client := n8n.NewClient(a.logger, server.BaseURL(), server.APIKey)
	report := a.schemas.Download(ctx, client, types)

	out := command.Root().Writer
	for _, saved := range report.Saved {
		fmt.Fprintf(out, "saved %s\n", saved)
	}

	for _, credentialType := range types {
		if failure, failed := report.Failed[credentialType]; failed {
			fmt.Fprintf(out, "failed %s: %v\n", credentialType, failure)
		}
	}

	if len(report.Saved) == 0 {
		return errors.New("no schema could be downloaded")
	}

	return nil
}

func exampleSchemas(ctx context.Context, command *cli.Command) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	types := command.Args().Slice()
	if len(types) == 0 {
		if types, err = a.schemas.List(); err != nil {
			return err
		}
	}

	if len(types) == 0 {
		return fmt.Errorf("no cached schemas in %s; run `schemas download` first", a.schemas.Dir())
	}

	out := command.Root().Writer

	for _, credentialType := range types {
		raw, err := a.schemas.Load(credentialType)
		if err != nil {
			return err
		}

		example, err := schema.Example(raw, credentialType)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "# %s\n%s\n", credentialType, example)
	}

	return nil
}

func validateSchemas(ctx context.Context, command *cli.Command) error {
	a, err := newApp(ctx, command)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	creds, err := config.LoadCredentials(command.String("credentials"))
	if err != nil {
		return err
	}

	out := command.Root().Writer
	invalid := 0

	for _, envKey := range creds.Environments.Keys() {
		env, _ := creds.Environments.Get(envKey)

		for _, def := range env.Definitions() {
			label := envKey + "." + def.Key

			raw, err := a.schemas.Load(def.Type)
			if errors.Is(err, schema.ErrSchemaNotFound) {
				fmt.Fprintf(out, "skip %s: no cached schema for %s\n", label, def.Type)

				continue
			} else if err != nil {
				return err
			}

			if err := schema.Validate(label, raw, def.Data); err != nil {
				invalid++

				fmt.Fprintf(out, "invalid %v\n", err)

				continue
			}

			fmt.Fprintf(out, "ok %s\n", label)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d credentials failed validation", invalid)
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
