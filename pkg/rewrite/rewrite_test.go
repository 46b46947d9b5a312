package rewrite_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/rewrite"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) *models.Workflow {
	t.Helper()

	var wf models.Workflow
	require.NoError(t, json.Unmarshal([]byte(doc), &wf))

	return &wf
}

func encode(t *testing.T, v any) map[string]any {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	return out
}

func TestRewrite_Golden(t *testing.T) {
	t.Parallel()

	doc, err := os.ReadFile(filepath.Join("testdata", "order_sync.json"))
	require.NoError(t, err)

	credentials := rewrite.NewCredentialMapping()
	credentials.Add("orders_db", "101")

	payload, result, err := rewrite.Rewrite(decode(t, string(doc)), rewrite.EnvironmentContext{
		Replacements: map[string]string{"db.dev.internal": "db.prod.internal"},
		Credentials:  credentials,
		Workflows:    map[string]string{"wf-1": "wf-9"},
		Postfix:      "Prod",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.LiteralsReplaced)
	assert.Equal(t, 1, result.CredentialsResolved)
	assert.Equal(t, 1, result.WorkflowsRemapped)

	out, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "order_sync", append(out, '\n'))
}

func TestRewrite_PayloadHasOnlyCreateFields(t *testing.T) {
	t.Parallel()

	payload, _, err := rewrite.Rewrite(decode(t, `{
		"id": "1", "name": "a", "active": true, "versionId": "v", "tags": [], "pinData": {},
		"nodes": [], "connections": {}, "settings": {}
	}`), rewrite.EnvironmentContext{})
	require.NoError(t, err)

	got := encode(t, payload)

	assert.Len(t, got, 4)
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "nodes")
	assert.Contains(t, got, "connections")
	assert.Contains(t, got, "settings")
}

func TestRewrite_LiteralReplacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		table  map[string]string
		want   string
		warned bool
	}{
		{
			name:  "absent literal untouched",
			value: "https://api.example.com",
			table: map[string]string{"https://dev.example.com": "https://prod.example.com"},
			want:  "https://api.example.com",
		},
		{
			name:  "longest literal wins",
			value: "chat -100200 and -100",
			table: map[string]string{"-100": "-900", "-100200": "-555"},
			want:  "chat -555 and -900",
		},
		{
			name:  "no cascading",
			value: "alpha-token",
			table: map[string]string{"alpha-token": "beta-token", "beta-token": "gamma-token"},
			want:  "beta-token",
		},
		{
			name:  "values are matched escaped",
			value: `say "hello" \ bye`,
			table: map[string]string{`"hello" \`: `"bonjour" /`},
			want:  `say "bonjour" / bye`,
		},
		{
			name:   "broken document keeps original",
			value:  "x",
			table:  map[string]string{"true": "yes"},
			want:   "x",
			warned: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := &models.Workflow{
				ID:   "1",
				Name: "literals",
				Nodes: []*models.Node{{
					Name:       "Set",
					Type:       "n8n-nodes-base.set",
					Parameters: map[string]any{"value": tt.value, "keep": true},
				}},
			}

			payload, result, err := rewrite.Rewrite(def, rewrite.EnvironmentContext{Replacements: tt.table})
			require.NoError(t, err)

			assert.Equal(t, tt.want, payload.Nodes[0].Parameters["value"])
			assert.Equal(t, true, payload.Nodes[0].Parameters["keep"])

			if tt.warned {
				require.Len(t, result.Warnings, 1)
				assert.Equal(t, rewrite.WarningLiteralReplacement, result.Warnings[0].Kind)
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestRewrite_SettingsDefaults(t *testing.T) {
	t.Parallel()

	payload, _, err := rewrite.Rewrite(decode(t, `{
		"id": "1", "name": "a", "nodes": [],
		"settings": {"executionTimeout": 60, "saveManualExecutions": false, "timezone": "Europe/Berlin"}
	}`), rewrite.EnvironmentContext{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"executionTimeout":       float64(60),
		"saveManualExecutions":   false,
		"saveExecutionProgress":  true,
		"saveDataErrorExecution": "all",
		"errorWorkflow":          "",
		"timezone":               "Europe/Berlin",
	}, encode(t, payload)["settings"])
}

func TestRewrite_SettingsKeepExplicitDefaultStrings(t *testing.T) {
	t.Parallel()

	def := decode(t, `{
		"id": "1", "name": "a", "nodes": [],
		"settings": {"saveManualExecutions": "DEFAULT", "saveExecutionProgress": "DEFAULT"}
	}`)

	payload, _, err := rewrite.Rewrite(def, rewrite.EnvironmentContext{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"executionTimeout":       float64(3600),
		"saveManualExecutions":   "DEFAULT",
		"saveExecutionProgress":  "DEFAULT",
		"saveDataErrorExecution": "all",
		"errorWorkflow":          "",
	}, encode(t, payload)["settings"])

	original, err := json.Marshal(def.Settings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"saveManualExecutions":"DEFAULT","saveExecutionProgress":"DEFAULT"}`, string(original))
}

func TestRewrite_Credentials(t *testing.T) {
	t.Parallel()

	mapping := rewrite.NewCredentialMapping()
	mapping.Add("my_postgres_db", "cred-pg")
	mapping.Add("Slack Token", "cred-slack")

	def := decode(t, `{
		"id": "1", "name": "a",
		"nodes": [
			{"name": "DB", "type": "n8n-nodes-base.postgres", "credentials": {"postgres": {"id": "old", "name": "My Postgres DB Prod"}}},
			{"name": "Chat", "type": "n8n-nodes-base.slack", "credentials": {"slackApi": {"id": "old", "name": "Slack Token"}}},
			{"name": "Mail", "type": "n8n-nodes-base.gmail", "credentials": {"gmailOAuth2": {"id": "keep", "name": "Gmail Prod"}}}
		]
	}`)

	payload, result, err := rewrite.Rewrite(def, rewrite.EnvironmentContext{Credentials: mapping})
	require.NoError(t, err)

	assert.Equal(t, "cred-pg", payload.Nodes[0].Credentials["postgres"].ID)
	assert.Equal(t, "cred-slack", payload.Nodes[1].Credentials["slackApi"].ID)
	assert.Equal(t, "keep", payload.Nodes[2].Credentials["gmailOAuth2"].ID)
	assert.Equal(t, "Gmail Prod", payload.Nodes[2].Credentials["gmailOAuth2"].Name)

	assert.Equal(t, 2, result.CredentialsResolved)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, rewrite.WarningCredentialMissing, result.Warnings[0].Kind)
	assert.Equal(t, "Mail", result.Warnings[0].Node)

	assert.Equal(t, "old", def.Nodes[0].Credentials["postgres"].ID, "input must not be mutated")
}

func TestRewrite_SubWorkflowRemap(t *testing.T) {
	t.Parallel()

	def := decode(t, `{
		"id": "W2", "name": "caller",
		"nodes": [
			{"name": "plain", "type": "n8n-nodes-base.executeWorkflow", "parameters": {"workflowId": "W1"}},
			{"name": "tool", "type": "@n8n/n8n-nodes-langchain.toolWorkflow",
			 "parameters": {"workflowId": {"__rl": true, "value": "W1", "mode": "list", "cachedResultName": "Helper Prod"}}},
			{"name": "outside", "type": "n8n-nodes-base.executeWorkflow", "parameters": {"workflowId": "W7"}}
		]
	}`)

	payload, result, err := rewrite.Rewrite(def, rewrite.EnvironmentContext{Workflows: map[string]string{"W1": "N1"}})
	require.NoError(t, err)

	id, ok := payload.Nodes[0].WorkflowReference()
	require.True(t, ok)
	assert.Equal(t, "N1", id)

	id, _ = payload.Nodes[1].WorkflowReference()
	assert.Equal(t, "N1", id)

	name, ok := payload.Nodes[1].CachedWorkflowName()
	require.True(t, ok)
	assert.Equal(t, "Helper", name)

	id, _ = payload.Nodes[2].WorkflowReference()
	assert.Equal(t, "W7", id)

	assert.Equal(t, 2, result.WorkflowsRemapped)

	original, _ := def.Nodes[1].WorkflowReference()
	assert.Equal(t, "W1", original)
}

func TestRewrite_NilWorkflow(t *testing.T) {
	t.Parallel()

	_, _, err := rewrite.Rewrite(nil, rewrite.EnvironmentContext{})
	require.Error(t, err)
}
