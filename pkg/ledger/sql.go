package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/n8nmigrate/pkg/ledger/sqlbase"
	"github.com/dukex/n8nmigrate/pkg/models"
)

// sqlStore is the ledger over a ledger_resources table; the postgres and sqlite
// stores differ only in driver, dialect and migrations.
type sqlStore struct {
	db      *sql.DB
	dialect sqlbase.Dialect
	logger  *slog.Logger
}

func openSQLStore(ctx context.Context, logger *slog.Logger, db *sql.DB, dialect sqlbase.Dialect, migrations map[int]string) (*sqlStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := sqlbase.NewMigrationManager(logger, db, dialect, migrations).RunMigrations(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &sqlStore{db: db, dialect: dialect, logger: logger}, nil
}

// bind rewrites "?" markers into the dialect's placeholders.
func (s *sqlStore) bind(query string) string {
	var b strings.Builder

	n := 0

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.Placeholder(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func (s *sqlStore) Record(ctx context.Context, instanceURL string, kind models.ResourceKind, id, name string) error {
	instance, err := checkArgs("record", instanceURL, kind, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.bind(`
		INSERT INTO ledger_resources (instance_url, kind, remote_id, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (instance_url, kind, remote_id) DO UPDATE SET name = excluded.name
	`), instance, string(kind), id, name)
	if err != nil {
		return &Error{Op: "record", Instance: instance, Err: err}
	}

	s.logger.DebugContext(ctx, "Recorded resource", "instance", instance, "kind", kind, "id", id, "name", name)

	return nil
}

func (s *sqlStore) Forget(ctx context.Context, instanceURL string, kind models.ResourceKind, id string) error {
	instance, err := checkArgs("forget", instanceURL, kind, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.bind(`
		DELETE FROM ledger_resources WHERE instance_url = ? AND kind = ? AND remote_id = ?
	`), instance, string(kind), id)
	if err != nil {
		return &Error{Op: "forget", Instance: instance, Err: err}
	}

	s.logger.DebugContext(ctx, "Forgot resource", "instance", instance, "kind", kind, "id", id)

	return nil
}

func (s *sqlStore) ListFor(ctx context.Context, instanceURL string) (*models.ResourceSet, error) {
	instance := NormalizeInstance(instanceURL)

	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT kind, remote_id, name FROM ledger_resources WHERE instance_url = ?
	`), instance)
	if err != nil {
		return nil, &Error{Op: "list", Instance: instance, Err: err}
	}
	defer rows.Close()

	set := models.NewResourceSet()

	for rows.Next() {
		var kind, id, name string
		if err := rows.Scan(&kind, &id, &name); err != nil {
			return nil, &Error{Op: "list", Instance: instance, Err: err}
		}

		if entries := set.Of(models.ResourceKind(kind)); entries != nil {
			entries[id] = name
		}
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list", Instance: instance, Err: err}
	}

	return set, nil
}

func (s *sqlStore) Instances(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT instance_url FROM ledger_resources ORDER BY instance_url`)
	if err != nil {
		return nil, &Error{Op: "instances", Err: err}
	}
	defer rows.Close()

	var instances []string

	for rows.Next() {
		var instance string
		if err := rows.Scan(&instance); err != nil {
			return nil, &Error{Op: "instances", Err: err}
		}

		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "instances", Err: err}
	}

	return instances, nil
}

func (s *sqlStore) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
