package ledger

import (
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
	"sync"

	"github.com/dukex/n8nmigrate/pkg/models"
)

type document map[string]*models.ResourceSet

// FileStore keeps the ledger in one JSON document keyed by instance URL. Each
// mutation reads, modifies and rewrites the whole document.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store backed by path; a "file://" prefix is accepted.
func NewFileStore(logger *slog.Logger, path string) *FileStore {
	return &FileStore{
		path:   strings.TrimPrefix(path, "file://"),
		logger: logger,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Record(ctx context.Context, instanceURL string, kind models.ResourceKind, id, name string) error {
	instance, err := checkArgs("record", instanceURL, kind, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return &Error{Op: "record", Instance: instance, Err: err}
	}

	set, ok := doc[instance]
	if !ok || set == nil {
		set = models.NewResourceSet()
		doc[instance] = set
	}

	set.Of(kind)[id] = name

	if err := s.write(doc); err != nil {
		return &Error{Op: "record", Instance: instance, Err: err}
	}

	s.logger.DebugContext(ctx, "Recorded resource", "instance", instance, "kind", kind, "id", id, "name", name)

	return nil
}

func (s *FileStore) Forget(ctx context.Context, instanceURL string, kind models.ResourceKind, id string) error {
	instance, err := checkArgs("forget", instanceURL, kind, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return &Error{Op: "forget", Instance: instance, Err: err}
	}

	set, ok := doc[instance]
	if !ok || set == nil {
		return nil
	}

	entries := set.Of(kind)
	if _, tracked := entries[id]; !tracked {
		return nil
	}

	delete(entries, id)

	if err := s.write(doc); err != nil {
		return &Error{Op: "forget", Instance: instance, Err: err}
	}

	s.logger.DebugContext(ctx, "Forgot resource", "instance", instance, "kind", kind, "id", id)

	return nil
}

func (s *FileStore) ListFor(_ context.Context, instanceURL string) (*models.ResourceSet, error) {
	instance := NormalizeInstance(instanceURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, &Error{Op: "list", Instance: instance, Err: err}
	}

	out := models.NewResourceSet()

	if set, ok := doc[instance]; ok && set != nil {
		for _, kind := range models.ResourceKinds {
			for id, name := range set.Of(kind) {
				out.Of(kind)[id] = name
			}
		}
	}

	return out, nil
}

func (s *FileStore) Instances(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, &Error{Op: "instances", Err: err}
	}

	instances := make([]string, 0, len(doc))

	for instance, set := range doc {
		if set != nil && !set.Empty() {
			instances = append(instances, instance)
		}
	}

	sort.Strings(instances)

	return instances, nil
}

func (s *FileStore) Close(_ context.Context) error {
	return nil
}

func (s *FileStore) read() (document, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	doc := document{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	return doc.normalized(), nil
}

// normalized folds instance keys written with trailing slashes into their
// normalized form, merging the sets of keys that collide.
func (d document) normalized() document {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make(document, len(d))

	for _, key := range keys {
		set := d[key]
		if set == nil {
			continue
		}

		instance := NormalizeInstance(key)
		if instance == "" {
			continue
		}

		merged, ok := out[instance]
		if !ok {
			merged = models.NewResourceSet()
			out[instance] = merged
		}

		for _, kind := range models.ResourceKinds {
			for id, name := range set.Of(kind) {
				merged.Of(kind)[id] = name
			}
		}
	}

	return out
}

// write replaces the document through a temporary file so a crash never leaves it truncated.
func (s *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to write ledger: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to sync ledger: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to close ledger: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}
