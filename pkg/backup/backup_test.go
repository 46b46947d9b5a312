package backup_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/log"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) *models.Workflow {
	t.Helper()

	var wf models.Workflow
	require.NoError(t, json.Unmarshal([]byte(doc), &wf))

	return &wf
}

func fixedClock(t time.Time) backup.Option {
	return backup.WithClock(func() time.Time { return t })
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Prod Server (EU)", "Prod_Server_EU"},
		{"  my-server_1  ", "my-server_1"},
		{`a/b\c:d`, "abcd"},
		{"Café Ops", "Café_Ops"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backup.Sanitize(tt.in), tt.in)
	}
}

func TestStore_SaveWritesVerbatimDocuments(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	store := backup.NewStore(log.Discard(), root, fixedClock(at))

	raw := `{"name":"Orders / Sync","id":"wf1","nodes":[],"zeta":1,"alpha":{"big":12345678901234567890}}`

	info, err := store.Save(t.Context(), "Prod Server", "My Project", []*models.Workflow{decode(t, raw)})
	require.NoError(t, err)

	assert.Equal(t, "backup_Prod_Server_My_Project_20250304_050607", info.Name)
	assert.Equal(t, 1, info.Workflows)
	assert.Empty(t, info.Failures)

	body, err := os.ReadFile(filepath.Join(root, info.Name, "workflows", "Orders__Sync_wf1.json"))
	require.NoError(t, err)

	assert.Equal(t, `{
  "name": "Orders / Sync",
  "id": "wf1",
  "nodes": [],
  "zeta": 1,
  "alpha": {
    "big": 12345678901234567890
  }
}
`, string(body))
}

func TestStore_SaveNeverOverwritesBackupOfSameSecond(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	store := backup.NewStore(log.Discard(), root, fixedClock(at))

	first, err := store.Save(t.Context(), "prod", "team", []*models.Workflow{decode(t, `{"id":"1","name":"a","nodes":[]}`)})
	require.NoError(t, err)

	second, err := store.Save(t.Context(), "prod", "team", []*models.Workflow{decode(t, `{"id":"2","name":"b","nodes":[]}`)})
	require.NoError(t, err)

	assert.Equal(t, "backup_prod_team_20250304_050607", first.Name)
	assert.Equal(t, "backup_prod_team_20250304_050608", second.Name)

	backups, err := store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, first.Name, backups[0].Name)
	assert.Equal(t, 1, backups[0].Workflows)
	assert.Equal(t, second.Name, backups[1].Name)
}

func TestStore_SaveSkipsInvalidWorkflows(t *testing.T) {
	t.Parallel()

	store := backup.NewStore(log.Discard(), t.TempDir())

	info, err := store.Save(t.Context(), "s", "p", []*models.Workflow{
		{ID: "1", Name: "ok"},
		{ID: "", Name: "no id"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, info.Workflows)
	require.Len(t, info.Failures, 1)
	assert.ErrorIs(t, info.Failures[0], models.ErrWorkflowIDRequired)
}

func TestStore_ListOldestFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)

	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		store := backup.NewStore(log.Discard(), root, fixedClock(base.Add(offset)))
		_, err := store.Save(t.Context(), "srv", "default", []*models.Workflow{{ID: "1", Name: "a"}})
		require.NoError(t, err)
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "not_a_backup"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "backup_file.txt"), nil, 0o600))

	backups, err := backup.NewStore(log.Discard(), root).List(t.Context())
	require.NoError(t, err)
	require.Len(t, backups, 3)

	assert.Equal(t, "backup_srv_default_20250101_120000", backups[0].Name)
	assert.Equal(t, "backup_srv_default_20250101_130000", backups[1].Name)
	assert.Equal(t, "backup_srv_default_20250101_140000", backups[2].Name)
	assert.Equal(t, 1, backups[2].Workflows)
}

func TestStore_ListMissingRoot(t *testing.T) {
	t.Parallel()

	backups, err := backup.NewStore(log.Discard(), filepath.Join(t.TempDir(), "absent")).List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestStore_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "backup_x", "workflows")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	files := []struct {
		name    string
		content string
	}{
		{"b_2.json", `{"id":"2","name":"b","nodes":[]}`},
		{"a_1.json", `{"id":"1","name":"a","nodes":[]}`},
		{"broken.json", `{"id":`},
		{"noname.json", `{"id":"3"}`},
		{"dup_1.json", `{"id":"1","name":"dup","nodes":[]}`},
		{"ignored.txt", `{"id":"9","name":"txt"}`},
	}

	for _, file := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file.name), []byte(file.content), 0o600))
	}

	workflows, err := backup.NewStore(log.Discard(), root).Load(t.Context(), "backup_x")
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "1", workflows[0].ID)
	assert.Equal(t, "a", workflows[0].Name)
	assert.Equal(t, "2", workflows[1].ID)
}

func TestStore_LoadKeepsDefaultSettings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "backup_defaults", "workflows")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	doc := `{"id":"7","name":"Nightly","nodes":[],"settings":{"saveManualExecutions":"DEFAULT","saveExecutionProgress":"DEFAULT"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Nightly_7.json"), []byte(doc), 0o600))

	workflows, err := backup.NewStore(log.Discard(), root).Load(t.Context(), "backup_defaults")
	require.NoError(t, err)
	require.Len(t, workflows, 1)

	settings, err := json.Marshal(workflows[0].Payload().Settings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"saveManualExecutions":"DEFAULT","saveExecutionProgress":"DEFAULT"}`, string(settings))
}

func TestStore_LoadErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "backup_empty", "workflows"), 0o750))

	store := backup.NewStore(log.Discard(), root)

	_, err := store.Load(t.Context(), "backup_missing")
	require.ErrorIs(t, err, backup.ErrBackupNotFound)

	_, err = store.Load(t.Context(), "../etc")
	require.ErrorIs(t, err, backup.ErrBackupNotFound)

	_, err = store.Load(t.Context(), "backup_empty")
	require.ErrorIs(t, err, backup.ErrNoWorkflows)
}
