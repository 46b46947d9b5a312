package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/n8nmigrate/pkg/ledger/sqlbase"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the ledger in PostgreSQL.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to databaseURL and migrates the ledger schema.
func NewPostgresStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	store, err := openSQLStore(ctx, logger, db, sqlbase.Postgres, postgresMigrations())
	if err != nil {
		return nil, err
	}

	return &PostgresStore{sqlStore: store}, nil
}

func postgresMigrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE ledger_resources (
				instance_url TEXT NOT NULL,
				kind VARCHAR(32) NOT NULL CHECK (kind IN ('workflows', 'credentials', 'projects')),
				remote_id TEXT NOT NULL,
				name TEXT NOT NULL,
				recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (instance_url, kind, remote_id)
			);

			CREATE INDEX idx_ledger_resources_instance ON ledger_resources(instance_url);
		`,
	}
}
