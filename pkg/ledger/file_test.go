package ledger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/log"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	runStoreContract(t, func(t *testing.T) ledger.Store {
		t.Helper()

		return ledger.NewFileStore(log.Discard(), filepath.Join(t.TempDir(), ledger.DefaultPath))
	})
}

func TestFileStore_DocumentLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "resource_mapping.json")
	store := ledger.NewFileStore(log.Discard(), "file://"+path)
	assert.Equal(t, path, store.Path())

	require.NoError(t, store.Record(t.Context(), prodURL+"/", models.ResourceCredentials, "c1", "Slack Token Prod"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal(body, &doc))

	assert.Equal(t, map[string]map[string]map[string]string{
		prodURL: {
			"workflows":   {},
			"credentials": {"c1": "Slack Token Prod"},
			"projects":    {},
		},
	}, doc)
}

func TestFileStore_ReadsExistingDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resource_mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "http://localhost:5678": {
    "workflows": {"1": "Orders"},
    "credentials": {}
  }
}`), 0o600))

	store := ledger.NewFileStore(log.Discard(), path)

	set, err := store.ListFor(t.Context(), "http://localhost:5678")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Orders"}, set.Workflows)
	assert.Empty(t, set.Projects)
}

func TestFileStore_FoldsTrailingSlashKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resource_mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "http://n8n.local/": {
    "workflows": {"w1": "Flow"},
    "credentials": {"c1": "Token Dev"},
    "projects": {}
  },
  "http://n8n.local": {
    "workflows": {"w2": "Other"}
  }
}`), 0o600))

	store := ledger.NewFileStore(log.Discard(), path)

	set, err := store.ListFor(t.Context(), "http://n8n.local/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"w1": "Flow", "w2": "Other"}, set.Workflows)
	assert.Equal(t, map[string]string{"c1": "Token Dev"}, set.Credentials)

	require.NoError(t, store.Forget(t.Context(), "http://n8n.local", models.ResourceWorkflows, "w1"))

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal(body, &doc))

	assert.Equal(t, map[string]map[string]map[string]string{
		"http://n8n.local": {
			"workflows":   {"w2": "Other"},
			"credentials": {"c1": "Token Dev"},
			"projects":    {},
		},
	}, doc)
}

func TestFileStore_CorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resource_mapping.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := ledger.NewFileStore(log.Discard(), path)

	_, err := store.ListFor(t.Context(), prodURL)
	require.Error(t, err)

	var ledgerErr *ledger.Error
	require.ErrorAs(t, err, &ledgerErr)
	assert.Equal(t, "list", ledgerErr.Op)

	require.Error(t, store.Record(t.Context(), prodURL, models.ResourceWorkflows, "1", "a"))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(body), "a failed record must not clobber the document")
}
