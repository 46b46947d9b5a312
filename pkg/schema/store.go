// Package schema manages n8n credential-type JSON schemas: downloading them,
// rendering credentials.yaml examples and validating configured credential data.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is where downloaded schemas are cached.
const DefaultDir = "credential_schemas"

// ErrSchemaNotFound indicates no cached schema exists for a credential type.
var ErrSchemaNotFound = errors.New("credential schema not found")

// Store caches one <type>.json file per credential type.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(logger *slog.Logger, dir string) *Store {
	return &Store{dir: dir, logger: logger.With("module", "credential_schemas")}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(credentialType string) string {
	return filepath.Join(s.dir, filepath.Base(credentialType)+".json")
}

// Save writes the schema indented.
func (s *Store) Save(credentialType string, schema json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, schema, "", "  "); err != nil {
		return fmt.Errorf("schema for %s is not valid JSON: %w", credentialType, err)
	}

	indented.WriteByte('\n')

	return os.WriteFile(s.path(credentialType), indented.Bytes(), 0o600)
}

// Load returns the cached schema of credentialType.
func (s *Store) Load(credentialType string) (json.RawMessage, error) {
	body, err := os.ReadFile(s.path(credentialType))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, credentialType)
		}

		return nil, fmt.Errorf("failed to read schema for %s: %w", credentialType, err)
	}

	return body, nil
}

// List returns the cached credential types, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", s.dir, err)
	}

	types := []string{}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			types = append(types, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}

	sort.Strings(types)

	return types, nil
}

// Fetcher downloads the schema of a credential type.
type Fetcher interface {
	CredentialSchema(ctx context.Context, credentialType string) (json.RawMessage, error)
}

// DownloadReport lists which types were cached and which failed.
type DownloadReport struct {
	Saved  []string
	Failed map[string]error
}

// Download fetches and caches every type, continuing past failures.
func (s *Store) Download(ctx context.Context, fetcher Fetcher, types []string) *DownloadReport {
	report := &DownloadReport{Failed: map[string]error{}}

	for _, credentialType := range types {
		schema, err := fetcher.CredentialSchema(ctx, credentialType)
		if err == nil {
			err = s.Save(credentialType, schema)
		}

		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to download schema", "type", credentialType, "error", err)
			report.Failed[credentialType] = err

			continue
		}

		s.logger.InfoContext(ctx, "Saved schema", "type", credentialType)
		report.Saved = append(report.Saved, credentialType)
	}

	return report
}
