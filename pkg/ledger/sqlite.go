package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/n8nmigrate/pkg/ledger/sqlbase"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ledger in a local SQLite database.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens (creating if needed) the database at path. Both
// "sqlite://" and "sqlite3://" prefixes are accepted.
func NewSQLiteStore(ctx context.Context, logger *slog.Logger, path string) (*SQLiteStore, error) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "sqlite3://"), "sqlite://")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	store, err := openSQLStore(ctx, logger, db, sqlbase.SQLite, sqliteMigrations())
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{sqlStore: store}, nil
}

func sqliteMigrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE ledger_resources (
				instance_url TEXT NOT NULL,
				kind TEXT NOT NULL CHECK (kind IN ('workflows', 'credentials', 'projects')),
				remote_id TEXT NOT NULL,
				name TEXT NOT NULL,
				recorded_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (instance_url, kind, remote_id)
			);

			CREATE INDEX idx_ledger_resources_instance ON ledger_resources(instance_url);
		`,
	}
}
