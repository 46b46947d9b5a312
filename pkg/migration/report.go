package migration

import (
	"fmt"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/models"
)

// Action is the operation a session performs once a project is selected.
type Action string

const (
	ActionBackup  Action = "backup"
	ActionRestore Action = "restore"
	ActionCleanup Action = "cleanup"
)

// ParseAction accepts the CLI spelling of an action.
func ParseAction(value string) (Action, error) {
	switch Action(value) {
	case ActionBackup, ActionRestore, ActionCleanup:
		return Action(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, value)
	}
}

// Counts aggregates the outcome of one resource kind.
type Counts struct {
	Created int
	Failed  int
	Deleted int
}

// Failure is one per-item error that did not stop the run.
type Failure struct {
	Kind models.ResourceKind
	Name string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s %q: %v", f.Kind, f.Name, f.Err)
}

// Report is the summary of one operation.
type Report struct {
	RunID       string
	Action      Action
	Server      string
	Project     models.Project
	Environment string

	// Backup is set by backup (the directory written) and restore (the one read).
	Backup *backup.Info

	Workflows   Counts
	Credentials Counts
	Projects    Counts

	// Cancelled is set when cleanup was not confirmed.
	Cancelled bool

	Warnings []string
	Failures []Failure
}

func newReport(runID string, action Action, server string, project models.Project) *Report {
	return &Report{RunID: runID, Action: action, Server: server, Project: project}
}

// Of returns the counters of kind.
func (r *Report) Of(kind models.ResourceKind) *Counts {
	switch kind {
	case models.ResourceCredentials:
		return &r.Credentials
	case models.ResourceProjects:
		return &r.Projects
	default:
		return &r.Workflows
	}
}

func (r *Report) fail(kind models.ResourceKind, name string, err error) {
	r.Of(kind).Failed++
	r.Failures = append(r.Failures, Failure{Kind: kind, Name: name, Err: err})
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
