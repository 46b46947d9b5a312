// Package backup stores workflow snapshots on disk, one directory per run:
// <root>/backup_<server>_<project>_<YYYYmmdd_HHMMSS>/workflows/<name>_<id>.json.
package backup

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
	"time"
	"unicode"

	"github.com/dukex/n8nmigrate/pkg/models"
)

const (
	// DefaultRoot is the data directory backups are written under.
	DefaultRoot = "data"

	dirPrefix       = "backup_"
	workflowsDir    = "workflows"
	timestampLayout = "20060102_150405"

	maxReserveAttempts = 60
)

var (
	// ErrBackupNotFound indicates no backup directory has the given name.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrNoWorkflows indicates a backup holds no loadable workflow.
	ErrNoWorkflows = errors.New("no workflows found in backup")
)

// Info describes one backup directory.
type Info struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Workflows int
	// Failures lists workflows that could not be written.
	Failures []error
}

// Store manages the backup directories under root.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used to name backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(logger *slog.Logger, root string, opts ...Option) *Store {
	store := &Store{
		root:   root,
		logger: logger.With("module", "backup"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) Root() string {
	return s.root
}

// Sanitize keeps letters, digits, spaces, dashes and underscores, then turns spaces
// into underscores.
func Sanitize(value string) string {
	var b strings.Builder

	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// DirName is the directory name of a backup taken at t.
func DirName(server, project string, t time.Time) string {
	return fmt.Sprintf("%s%s_%s_%s", dirPrefix, Sanitize(server), Sanitize(project), t.Format(timestampLayout))
}

// FileName is the file a workflow is stored in.
func FileName(wf *models.Workflow) string {
	name := Sanitize(wf.Name)
	if name == "" {
		name = "workflow"
	}

	return fmt.Sprintf("%s_%s.json", name, Sanitize(wf.ID))
}

// Save writes every workflow verbatim into a new timestamped backup directory. A
// workflow that cannot be written is logged and listed in Info.Failures.
func (s *Store) Save(ctx context.Context, server, project string, workflows []*models.Workflow) (*Info, error) {
	name, createdAt, err := s.reserve(server, project, s.now())
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, name)

	if err := os.MkdirAll(filepath.Join(dir, workflowsDir), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}

	info := &Info{Name: name, Path: dir, CreatedAt: createdAt}

	for _, wf := range workflows {
		if err := s.saveWorkflow(dir, wf); err != nil {
			s.logger.ErrorContext(ctx, "Failed to save workflow", "workflow_id", wf.ID, "name", wf.Name, "error", err)
			info.Failures = append(info.Failures, err)

			continue
		}

		info.Workflows++
	}

	s.logger.InfoContext(ctx, "Backup written", "path", dir, "workflows", info.Workflows, "failed", len(info.Failures))

	return info, nil
}

// reserve creates the backup directory for a run at t. Names carry second
// resolution, so a run colliding with an existing backup moves to the next free second.
func (s *Store) reserve(server, project string, t time.Time) (string, time.Time, error) {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create backup root %s: %w", s.root, err)
	}

	for range maxReserveAttempts {
		name := DirName(server, project, t)

		err := os.Mkdir(filepath.Join(s.root, name), 0o750)
		if err == nil {
			return name, t, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return "", time.Time{}, fmt.Errorf("failed to create backup directory %s: %w", name, err)
		}

		t = t.Add(time.Second)
	}

	return "", time.Time{}, fmt.Errorf("failed to create backup directory: %d names taken after %s", maxReserveAttempts, DirName(server, project, t))
}

func (s *Store) saveWorkflow(dir string, wf *models.Workflow) error {
	if err := wf.Validate(); err != nil {
		return fmt.Errorf("workflow %q: %w", wf.ID, err)
	}

	doc, err := wf.Document()
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", wf.ID, err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, doc, "", "  "); err != nil {
		return fmt.Errorf("failed to indent workflow %s: %w", wf.ID, err)
	}

	indented.WriteByte('\n')

	path := filepath.Join(dir, workflowsDir, FileName(wf))
	if err := os.WriteFile(path, indented.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// List returns the backups under root, oldest first.
func (s *Store) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Info{}, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", s.root, err)
	}

	backups := []Info{}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}

		dir := filepath.Join(s.root, entry.Name())
		files, _ := filepath.Glob(filepath.Join(dir, workflowsDir, "*.json"))

		backups = append(backups, Info{
			Name:      entry.Name(),
			Path:      dir,
			CreatedAt: createdAt(entry),
			Workflows: len(files),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.Before(backups[j].CreatedAt)
		}

		return backups[i].Name < backups[j].Name
	})

	return backups, nil
}

// createdAt reads the timestamp suffix of the directory name, falling back to its mtime.
func createdAt(entry fs.DirEntry) time.Time {
	name := entry.Name()
	if len(name) > len(timestampLayout) {
		if t, err := time.ParseInLocation(timestampLayout, name[len(name)-len(timestampLayout):], time.Local); err == nil {
			return t
		}
	}

	if info, err := entry.Info(); err == nil {
		return info.ModTime()
	}

	return time.Time{}
}

// Load reads the workflows of a backup in file name order. Files that do not hold a
// valid workflow are logged and skipped.
func (s *Store) Load(ctx context.Context, name string) ([]*models.Workflow, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: %q", ErrBackupNotFound, name)
	}

	dir := filepath.Join(s.root, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrBackupNotFound, name)
	}

	files, err := filepath.Glob(filepath.Join(dir, workflowsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows of %s: %w", name, err)
	}

	sort.Strings(files)

	workflows := make([]*models.Workflow, 0, len(files))
	seen := map[string]string{}

	for _, file := range files {
		wf, err := readWorkflow(file)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable workflow file", "file", filepath.Base(file), "error", err)

			continue
		}

		if previous, dup := seen[wf.ID]; dup {
			s.logger.WarnContext(ctx, "Skipping duplicate workflow id", "file", filepath.Base(file), "workflow_id", wf.ID, "kept", previous)

			continue
		}

		seen[wf.ID] = filepath.Base(file)
		workflows = append(workflows, wf)
	}

	if len(workflows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWorkflows, name)
	}

	return workflows, nil
}

func readWorkflow(path string) (*models.Workflow, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wf models.Workflow
	if err := json.Unmarshal(body, &wf); err != nil {
		return nil, err
	}

	if err := wf.Validate(); err != nil {
		return nil, err
	}

	return &wf, nil
}
