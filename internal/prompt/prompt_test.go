package prompt

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/migration"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, model tea.Model, msgs ...tea.Msg) tea.Model {
	t.Helper()

	for _, msg := range msgs {
		model, _ = model.Update(msg)
	}

	return model
}

func TestSelectModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keys    []tea.Msg
		want    int
		wantErr error
	}{
		{name: "first by default", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, want: 0},
		{name: "move down", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}}, want: 2},
		{name: "escape cancels", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}}, want: -1, wantErr: ErrCancelled},
		{name: "ctrl+c cancels", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyCtrlC}}, want: -1, wantErr: ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msgs := append([]tea.Msg{tea.WindowSizeMsg{Width: 80, Height: 24}}, tt.keys...)
			model := send(t, newSelectModel("Select Server", []string{"Prod (prod)", "Dev (dev)", "Local (local)"}), msgs...)

			selected, ok := model.(selectModel)
			require.True(t, ok)

			got, err := selected.result()
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSelectModel_View(t *testing.T) {
	t.Parallel()

	view := newSelectModel("Select Project", []string{"Team (ID: p-1)"}).View()
	assert.Contains(t, view, "Select Project")
	assert.Contains(t, view, "Team (ID: p-1)")
}

func TestConfirmModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		keys  []tea.Msg
		want  bool
	}{
		{name: "yes confirms", input: "yes", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, want: true},
		{name: "case insensitive", input: "YES", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, want: true},
		{name: "y is not enough", input: "y", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}},
		{name: "no", input: "no", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}},
		{name: "escape", input: "yes", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msgs := append([]tea.Msg{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.input)}}, tt.keys...)
			model := send(t, newConfirmModel("Delete 3 workflows?"), msgs...)

			confirm, ok := model.(confirmModel)
			require.True(t, ok)
			assert.Equal(t, tt.want, confirm.confirmed())
		})
	}
}

func TestNonInteractive(t *testing.T) {
	t.Parallel()

	_, err := NonInteractive{}.Select(context.Background(), "Select Backup", []string{"a"})
	require.ErrorIs(t, err, ErrInteractionRequired)
	assert.Contains(t, err.Error(), "Select Backup")

	confirmed, err := AutoConfirm{Prompter: NonInteractive{}}.Confirm(context.Background(), "sure?")
	require.NoError(t, err)
	assert.True(t, confirmed)
}

func TestRenderReport(t *testing.T) {
	t.Parallel()

	report := &migration.Report{
		RunID:       "run-1",
		Action:      migration.ActionRestore,
		Server:      "Dev Instance (dev)",
		Project:     models.Project{ID: "p-1", Name: "Team"},
		Environment: "development",
		Backup:      &backup.Info{Name: "backup_Prod_Team_20260314_093000"},
		Workflows:   migration.Counts{Created: 4, Failed: 1},
		Credentials: migration.Counts{Created: 2},
		Warnings:    []string{"W1: credential_missing in Notify"},
		Failures: []migration.Failure{
			{Kind: models.ResourceWorkflows, Name: "Broken", Err: errors.New("400 bad request")},
		},
	}

	out := RenderReport(report)

	assert.Contains(t, out, "Restore complete")
	assert.Contains(t, out, "Dev Instance (dev)")
	assert.Contains(t, out, "backup_Prod_Team_20260314_093000")
	assert.Contains(t, out, "workflows")
	assert.Contains(t, out, "credentials")
	assert.Contains(t, out, "W1: credential_missing in Notify")
	assert.Contains(t, out, `workflows "Broken": 400 bad request`)
	assert.NotContains(t, out, "No failures.")
}

func TestRenderReport_Cancelled(t *testing.T) {
	t.Parallel()

	out := RenderReport(&migration.Report{Action: migration.ActionCleanup, Cancelled: true})
	assert.Contains(t, out, "Cleanup cancelled")
	assert.Contains(t, out, "Operation cancelled.")
}

func TestRenderTracked(t *testing.T) {
	t.Parallel()

	set := models.NewResourceSet()
	assert.Contains(t, RenderTracked("https://n8n.example.com", set), "nothing tracked")

	set.Workflows["w-1"] = "Order Sync"
	set.Credentials["c-1"] = "Slack Token Dev"

	out := RenderTracked("https://n8n.example.com", set)
	assert.Contains(t, out, "Order Sync")
	assert.Contains(t, out, "Slack Token Dev")
	assert.Contains(t, out, "c-1")
}
