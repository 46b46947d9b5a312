package schema

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukex/n8nmigrate/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const telegramSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["accessToken"],
  "properties": {
    "accessToken": {"type": "string", "description": "Bot token from BotFather"},
    "baseUrl": {"type": "string"},
    "retries": {"type": "number"},
    "debug": {"type": "boolean"},
    "scopes": {"type": "array"},
    "extra": {"type": "object"},
    "mode": {"enum": ["a", "b"], "type": "null"}
  }
}`

type fakeFetcher map[string]string

func (f fakeFetcher) CredentialSchema(_ context.Context, credentialType string) (json.RawMessage, error) {
	body, ok := f[credentialType]
	if !ok {
		return nil, errors.New("404 not found")
	}

	return json.RawMessage(body), nil
}

func TestStore_SaveLoadList(t *testing.T) {
	t.Parallel()

	store := NewStore(log.Discard(), filepath.Join(t.TempDir(), DefaultDir))

	types, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, types)

	require.NoError(t, store.Save("postgres", json.RawMessage(`{"type":"object"}`)))
	require.NoError(t, store.Save("openAiApi", json.RawMessage(`{"type":"object"}`)))

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "postgres.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"type\": \"object\"\n}\n", string(raw))

	loaded, err := store.Load("postgres")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(loaded))

	types, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"openAiApi", "postgres"}, types)

	_, err = store.Load("slackApi")
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	assert.Error(t, store.Save("broken", json.RawMessage(`{`)))
}

func TestStore_Download(t *testing.T) {
	t.Parallel()

	store := NewStore(log.Discard(), t.TempDir())
	fetcher := fakeFetcher{"telegramApi": telegramSchema, "postgres": `{"type":"object"}`}

	report := store.Download(context.Background(), fetcher, []string{"telegramApi", "missingApi", "postgres"})

	assert.Equal(t, []string{"telegramApi", "postgres"}, report.Saved)
	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed, "missingApi")

	types, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"postgres", "telegramApi"}, types)
}

func TestExample(t *testing.T) {
	t.Parallel()

	out, err := Example([]byte(telegramSchema), "telegramApi")
	require.NoError(t, err)

	assert.Contains(t, string(out), "# Bot token from BotFather\n")

	var doc struct {
		Environments map[string]struct {
			Name        string `yaml:"name"`
			Postfix     string `yaml:"postfix"`
			Credentials map[string]struct {
				Type string         `yaml:"type"`
				Name string         `yaml:"name"`
				Data map[string]any `yaml:"data"`
			} `yaml:"credentials"`
		} `yaml:"environments"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	require.Len(t, doc.Environments, 2)
	assert.Equal(t, "Production Environment", doc.Environments["production"].Name)
	assert.Equal(t, "Prod", doc.Environments["production"].Postfix)
	assert.Equal(t, "Development Environment", doc.Environments["development"].Name)
	assert.Equal(t, "Dev", doc.Environments["development"].Postfix)

	credential := doc.Environments["development"].Credentials["telegramapi"]
	assert.Equal(t, "telegramApi", credential.Type)
	assert.Equal(t, "Example telegramApi Credential", credential.Name)
	assert.Equal(t, map[string]any{
		"accessToken": "example_string_value",
		"baseUrl":     "example_string_value",
		"retries":     0,
		"debug":       false,
		"scopes":      []any{},
		"extra":       map[string]any{},
		"mode":        "example_value",
	}, credential.Data)
}

func TestExample_KeepsPropertyOrder(t *testing.T) {
	t.Parallel()

	out, err := Example([]byte(`{"properties":{"zeta":{},"alpha":{},"mid":{}}}`), "x")
	require.NoError(t, err)

	text := string(out)
	zeta := strings.Index(text, "zeta:")
	alpha := strings.Index(text, "alpha:")
	mid := strings.Index(text, "mid:")

	assert.True(t, zeta < alpha && alpha < mid, text)
}

func TestExample_InvalidSchema(t *testing.T) {
	t.Parallel()

	_, err := Example([]byte(`["not", "an", "object"]`), "x")
	assert.Error(t, err)

	out, err := Example([]byte(`{"type":"object"}`), "empty")
	require.NoError(t, err)
	assert.Contains(t, string(out), "data: {}")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     map[string]any
		problems int
	}{
		{name: "valid", data: map[string]any{"accessToken": "123:abc", "retries": 3}},
		{name: "missing required", data: map[string]any{"baseUrl": "https://api.telegram.org"}, problems: 1},
		{name: "nil data", data: nil, problems: 1},
		{name: "wrong type and unknown field", data: map[string]any{"accessToken": 5, "bogus": true}, problems: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate("Telegram Bot", []byte(telegramSchema), tt.data)
			if tt.problems == 0 {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrInvalidCredential)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "Telegram Bot", validationErr.Credential)
			assert.Len(t, validationErr.Problems, tt.problems)
		})
	}
}

func TestValidate_BrokenSchema(t *testing.T) {
	t.Parallel()

	err := Validate("x", []byte(`{`), map[string]any{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}
