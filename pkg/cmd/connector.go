package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/migration"
	"github.com/dukex/n8nmigrate/pkg/n8n"
	"github.com/dukex/n8nmigrate/pkg/schema"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the long-lived collaborators shared by every engine of a run.
type Dependencies struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Ledger  ledger.Store
	Backups *backup.Store
	Schemas *schema.Store
	Client  []n8n.Option
}

// NewConnector returns a migration.Connector that talks to the selected server
// through the n8n REST client.
func NewConnector(deps Dependencies) migration.Connector {
	return func(_ context.Context, server *config.Server) (*migration.Engine, error) {
		client := n8n.NewClient(deps.Logger, server.BaseURL(), server.APIKey, deps.Client...)

		opts := []migration.Option{}
		if deps.Tracer != nil {
			opts = append(opts, migration.WithTracer(deps.Tracer))
		}

		if deps.Schemas != nil {
			opts = append(opts, migration.WithSchemas(deps.Schemas))
		}

		return migration.NewEngine(deps.Logger, server, client, deps.Ledger, deps.Backups, opts...), nil
	}
}
