// Package migration orchestrates backup, restore and cleanup of n8n workflows and
// credentials against one configured instance.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/ledger"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/otelhelper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Remote is the n8n API surface the engine needs. *n8n.Client satisfies it.
type Remote interface {
	Ping(ctx context.Context) error
	Projects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Workflows(ctx context.Context, projectID string) ([]*models.Workflow, error)
	CreateWorkflow(ctx context.Context, payload *models.WorkflowPayload) (*models.Workflow, error)
	TransferWorkflow(ctx context.Context, id, projectID string) error
	DeleteWorkflow(ctx context.Context, id string) error
	CreateCredential(ctx context.Context, payload *models.CredentialPayload) (*models.Credential, error)
	DeleteCredential(ctx context.Context, id string) error
}

// BackupStore persists workflow snapshots. *backup.Store satisfies it.
type BackupStore interface {
	Save(ctx context.Context, server, project string, workflows []*models.Workflow) (*backup.Info, error)
	List(ctx context.Context) ([]backup.Info, error)
	Load(ctx context.Context, name string) ([]*models.Workflow, error)
}

// SchemaSource returns cached credential-type schemas. *schema.Store satisfies it.
type SchemaSource interface {
	Load(credentialType string) (json.RawMessage, error)
}

// Engine runs migration operations against a single server.
type Engine struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	server  *config.Server
	remote  Remote
	ledger  ledger.Store
	backups BackupStore
	schemas SchemaSource
	runID   string
}

type Option func(*Engine)

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithSchemas enables validation of credential data before it is created.
func WithSchemas(schemas SchemaSource) Option {
	return func(e *Engine) {
		e.schemas = schemas
	}
}

func NewEngine(
	logger *slog.Logger,
	server *config.Server,
	remote Remote,
	store ledger.Store,
	backups BackupStore,
	opts ...Option,
) *Engine {
	runID := uuid.NewString()

	engine := &Engine{
		logger:  logger.With("module", "migration", "server", server.Key, "run_id", runID),
		tracer:  otelhelper.NoopTracer(),
		server:  server,
		remote:  remote,
		ledger:  store,
		backups: backups,
		runID:   runID,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

func (e *Engine) Server() *config.Server {
	return e.server
}

func (e *Engine) RunID() string {
	return e.runID
}

func (e *Engine) instance() string {
	return e.server.BaseURL()
}

// nolint:spancheck // callers end the span
func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String(otelhelper.RunIDKey, e.runID),
		attribute.String(otelhelper.InstanceKey, e.instance()),
	)

	return otelhelper.StartSpan(ctx, e.tracer, name, attrs...)
}

// Connect checks the instance answers authenticated requests.
func (e *Engine) Connect(ctx context.Context) error {
	ctx, span := e.startSpan(ctx, "migration.connect")
	defer span.End()

	if err := e.remote.Ping(ctx); err != nil {
		otelhelper.SetError(span, err)

		return &Error{Op: "connect", Server: e.server.Label(), Err: fmt.Errorf("%w: %w", ErrConnectionFailed, err)}
	}

	e.logger.InfoContext(ctx, "Connection successful", "url", e.instance())

	return nil
}

// Projects lists the projects a migration can target. Servers without project
// support expose only the synthetic default project.
func (e *Engine) Projects(ctx context.Context) ([]models.Project, error) {
	if !e.server.SupportsProjects {
		return []models.Project{models.DefaultProject()}, nil
	}

	projects, err := e.remote.Projects(ctx)
	if err != nil {
		return nil, &Error{Op: "list projects", Server: e.server.Label(), Err: err}
	}

	if len(projects) == 0 {
		return nil, &Error{Op: "list projects", Server: e.server.Label(), Err: ErrNoProjects}
	}

	return projects, nil
}

// CreateProject creates a project and records it so cleanup can remove it.
func (e *Engine) CreateProject(ctx context.Context, name string) (models.Project, error) {
	ctx, span := e.startSpan(ctx, "migration.create_project")
	defer span.End()

	if !e.server.SupportsProjects {
		return models.Project{}, &Error{Op: "create project", Server: e.server.Label(), Err: ErrProjectsUnsupported}
	}

	project, err := e.remote.CreateProject(ctx, name)
	if err != nil {
		otelhelper.SetError(span, err)

		return models.Project{}, &Error{Op: "create project", Server: e.server.Label(), Err: err}
	}

	if project.Name == "" {
		project.Name = name
	}

	span.SetAttributes(attribute.String(otelhelper.ProjectIDKey, project.ID))

	if err := e.ledger.Record(ctx, e.instance(), models.ResourceProjects, project.ID, project.Name); err != nil {
		e.logger.ErrorContext(ctx, "Failed to record project", "project_id", project.ID, "error", err)
	}

	e.logger.InfoContext(ctx, "Created project", "project_id", project.ID, "name", project.Name)

	return *project, nil
}
