//go:build integration

package ledger_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/log"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("n8nmigrate_test"),
		postgres.WithUsername("n8nmigrate"),
		postgres.WithPassword("n8nmigrate"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return databaseURL
}

func dropLedger(t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"ledger_resources", "schema_migrations"} {
		_, err = db.ExecContext(t.Context(), "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func TestPostgresStore(t *testing.T) {
	databaseURL := startPostgres(t)

	runStoreContract(t, func(t *testing.T) ledger.Store {
		t.Helper()

		dropLedger(t, databaseURL)

		store, err := ledger.NewPostgresStore(t.Context(), log.Discard(), databaseURL)
		require.NoError(t, err)

		t.Cleanup(func() {
			require.NoError(t, store.Close(context.Background()))
		})

		return store
	})
}

func TestRedisStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	db := 0

	runStoreContract(t, func(t *testing.T) ledger.Store {
		t.Helper()

		// A fresh logical database per subtest keeps them isolated.
		db++

		store, err := ledger.NewRedisStore(t.Context(), log.Discard(), fmt.Sprintf("redis://%s/%d", endpoint, db))
		require.NoError(t, err)

		t.Cleanup(func() {
			require.NoError(t, store.Close(context.Background()))
		})

		return store
	})
}
