package ledger_test

import (
	"testing"

	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	prodURL = "https://n8n.example.com"
	devURL  = "http://localhost:5678"
)

// runStoreContract exercises the behaviour every ledger backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Helper()

	t.Run("empty instance lists empty sets", func(t *testing.T) {
		store := newStore(t)

		set, err := store.ListFor(t.Context(), prodURL)
		require.NoError(t, err)
		assert.True(t, set.Empty())
		assert.NotNil(t, set.Workflows)
		assert.NotNil(t, set.Credentials)
		assert.NotNil(t, set.Projects)
	})

	t.Run("record is scoped to its instance", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		require.NoError(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "wf-1", "Orders"))
		require.NoError(t, store.Record(ctx, prodURL, models.ResourceCredentials, "cred-1", "Slack Token Prod"))
		require.NoError(t, store.Record(ctx, devURL, models.ResourceProjects, "proj-1", "Sandbox"))

		prod, err := store.ListFor(ctx, prodURL+"/")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"wf-1": "Orders"}, prod.Workflows)
		assert.Equal(t, map[string]string{"cred-1": "Slack Token Prod"}, prod.Credentials)
		assert.Empty(t, prod.Projects)

		dev, err := store.ListFor(ctx, devURL)
		require.NoError(t, err)
		assert.Empty(t, dev.Workflows)
		assert.Empty(t, dev.Credentials)
		assert.Equal(t, map[string]string{"proj-1": "Sandbox"}, dev.Projects)

		instances, err := store.Instances(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{devURL, prodURL}, instances)
	})

	t.Run("record overwrites the name", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		require.NoError(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "wf-1", "Old"))
		require.NoError(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "wf-1", "New"))

		set, err := store.ListFor(ctx, prodURL)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"wf-1": "New"}, set.Workflows)
	})

	t.Run("forget removes only that id", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		require.NoError(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "wf-1", "A"))
		require.NoError(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "wf-2", "B"))
		require.NoError(t, store.Record(ctx, devURL, models.ResourceWorkflows, "wf-1", "A"))

		require.NoError(t, store.Forget(ctx, prodURL, models.ResourceWorkflows, "wf-1"))

		prod, err := store.ListFor(ctx, prodURL)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"wf-2": "B"}, prod.Workflows)

		dev, err := store.ListFor(ctx, devURL)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"wf-1": "A"}, dev.Workflows)

		require.NoError(t, store.Forget(ctx, prodURL, models.ResourceWorkflows, "missing"))
		require.NoError(t, store.Forget(ctx, "https://unknown.example.com", models.ResourceCredentials, "x"))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		require.ErrorIs(t, store.Record(ctx, "", models.ResourceWorkflows, "1", "a"), ledger.ErrInstanceRequired)
		require.ErrorIs(t, store.Record(ctx, prodURL, models.ResourceKind("tags"), "1", "a"), ledger.ErrInvalidKind)
		require.ErrorIs(t, store.Record(ctx, prodURL, models.ResourceWorkflows, "", "a"), ledger.ErrIDRequired)
		require.ErrorIs(t, store.Forget(ctx, prodURL, models.ResourceKind("tags"), "1"), ledger.ErrInvalidKind)
	})
}
