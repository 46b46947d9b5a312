package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/graph"
	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/otelhelper"
	"github.com/dukex/n8nmigrate/pkg/rewrite"
	"github.com/dukex/n8nmigrate/pkg/schema"
	"go.opentelemetry.io/otel/attribute"
)

// RestoreRequest selects what to restore and where.
type RestoreRequest struct {
	Project     models.Project
	Backup      string
	Environment string
	Credentials *config.Credentials
}

// Restore recreates a backup on the engine's server for one environment. Cycles in
// the sub-workflow graph and a missing environment abort before anything is created;
// per-item failures are counted and skipped.
func (e *Engine) Restore(ctx context.Context, req RestoreRequest) (*Report, error) {
	ctx, span := e.startSpan(ctx, "migration.restore",
		attribute.String(otelhelper.OperationKey, string(ActionRestore)),
		attribute.String(otelhelper.ProjectIDKey, req.Project.ID),
		attribute.String(otelhelper.EnvironmentKey, req.Environment),
	)
	defer span.End()

	fail := func(err error) (*Report, error) {
		otelhelper.SetError(span, err)

		return nil, &Error{Op: "restore", Server: e.server.Label(), Err: err}
	}

	if req.Credentials == nil {
		return fail(fmt.Errorf("%w: credentials configuration is required", config.ErrInvalidConfig))
	}

	workflows, err := e.backups.Load(ctx, req.Backup)
	if err != nil {
		return fail(err)
	}

	deps := graph.Build(workflows)

	order, err := graph.Order(deps)
	if err != nil {
		return fail(err)
	}

	env, err := req.Credentials.Environment(req.Environment)
	if err != nil {
		return fail(err)
	}

	report := newReport(e.runID, ActionRestore, e.server.Label(), req.Project)
	report.Environment = env.Key

	for _, ref := range deps.External() {
		e.logger.WarnContext(ctx, "Sub-workflow reference outside the backup", "workflow_id", ref)
		report.warn("sub-workflow %q is not part of backup %s; references to it are left unchanged", ref, req.Backup)
	}

	e.logger.InfoContext(ctx, "Restoring backup",
		"backup", req.Backup,
		"environment", env.Key,
		"project", req.Project.Name,
		"workflows", len(order),
	)

	credentials := e.createCredentials(ctx, req.Credentials, env, report)
	e.logger.DebugContext(ctx, "Credential mapping ready", "keys", credentials.Len())

	envCtx := rewrite.EnvironmentContext{
		Replacements: req.Credentials.ReplacementTable(env.Key),
		Credentials:  credentials,
		Workflows:    map[string]string{},
		Postfix:      env.Postfix,
	}

	byID := make(map[string]*models.Workflow, len(workflows))
	for _, wf := range workflows {
		if _, seen := byID[wf.ID]; !seen {
			byID[wf.ID] = wf
		}
	}

	for _, id := range order {
		e.restoreWorkflow(ctx, byID[id], req.Project, envCtx, report)
	}

	e.logger.InfoContext(ctx, "Restore complete",
		"credentials_created", report.Credentials.Created,
		"credentials_failed", report.Credentials.Failed,
		"workflows_created", report.Workflows.Created,
		"workflows_failed", report.Workflows.Failed,
	)

	return report, nil
}

func (e *Engine) createCredentials(
	ctx context.Context,
	creds *config.Credentials,
	env *config.Environment,
	report *Report,
) *rewrite.CredentialMapping {
	mapping := rewrite.NewCredentialMapping()
	postfixes := creds.Postfixes()

	for _, def := range env.Definitions() {
		name := models.CredentialDisplayName(def.Name, postfixes, env.Postfix)

		id, err := e.createCredential(ctx, def, name, report)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to create credential", "credential", name, "error", err)
			report.fail(models.ResourceCredentials, name, err)

			continue
		}

		mapping.Add(def.Key, id)
		mapping.Add(def.Name, id)

		report.Credentials.Created++
	}

	return mapping
}

func (e *Engine) createCredential(
	ctx context.Context,
	def *config.CredentialDefinition,
	name string,
	report *Report,
) (string, error) {
	ctx, span := e.startSpan(ctx, "migration.create_credential",
		attribute.String(otelhelper.CredentialKey, def.Key),
	)
	defer span.End()

	e.validateCredential(ctx, def, name, report)

	created, err := e.remote.CreateCredential(ctx, &models.CredentialPayload{
		Name: name,
		Type: def.Type,
		Data: def.Data,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return "", err
	}

	e.record(ctx, models.ResourceCredentials, created.ID, name, report)
	e.logger.InfoContext(ctx, "Created credential", "credential", name, "id", created.ID)

	return created.ID, nil
}

// validateCredential checks data against a cached schema. Violations only warn:
// the instance is the authority on what it accepts.
func (e *Engine) validateCredential(ctx context.Context, def *config.CredentialDefinition, name string, report *Report) {
	if e.schemas == nil {
		return
	}

	raw, err := e.schemas.Load(def.Type)
	if err != nil {
		if !errors.Is(err, schema.ErrSchemaNotFound) {
			e.logger.WarnContext(ctx, "Failed to read credential schema", "type", def.Type, "error", err)
		}

		return
	}

	if err := schema.Validate(name, raw, def.Data); err != nil {
		e.logger.WarnContext(ctx, "Credential data does not match schema", "credential", name, "error", err)
		report.warn("%v", err)
	}
}

func (e *Engine) restoreWorkflow(
	ctx context.Context,
	wf *models.Workflow,
	project models.Project,
	envCtx rewrite.EnvironmentContext,
	report *Report,
) {
	ctx, span := e.startSpan(ctx, "migration.restore_workflow",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
	)
	defer span.End()

	logger := e.logger.With("workflow_id", wf.ID, "workflow", wf.Name)

	payload, result, err := rewrite.Rewrite(wf, envCtx)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Failed to rewrite workflow", "error", err)
		report.fail(models.ResourceWorkflows, wf.Name, err)

		return
	}

	for _, warning := range result.Warnings {
		logger.WarnContext(ctx, "Rewrite warning", "kind", warning.Kind, "node", warning.Node, "message", warning.Message)
		report.warn("%s: %s", wf.Name, warning)
	}

	created, err := e.remote.CreateWorkflow(ctx, payload)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Failed to create workflow", "error", err)
		report.fail(models.ResourceWorkflows, wf.Name, err)

		return
	}

	if e.server.SupportsProjects && !project.IsDefault() {
		if err := e.remote.TransferWorkflow(ctx, created.ID, project.ID); err != nil {
			otelhelper.SetError(span, err)
			logger.ErrorContext(ctx, "Failed to transfer workflow, rolling back", "new_id", created.ID, "error", err)
			e.rollbackWorkflow(ctx, created.ID, payload.Name, report)
			report.fail(models.ResourceWorkflows, wf.Name, fmt.Errorf("transfer to project %s: %w", project.Name, err))

			return
		}
	}

	envCtx.Workflows[wf.ID] = created.ID
	e.record(ctx, models.ResourceWorkflows, created.ID, payload.Name, report)

	span.SetAttributes(attribute.String("n8nmigrate.workflow.new_id", created.ID))
	logger.InfoContext(ctx, "Created workflow", "new_id", created.ID)

	report.Workflows.Created++
}

// rollbackWorkflow deletes a workflow that could not be placed in its project. When
// the delete fails too, the orphan is tracked so cleanup can remove it later.
func (e *Engine) rollbackWorkflow(ctx context.Context, id, name string, report *Report) {
	err := e.remote.DeleteWorkflow(ctx, id)
	if err == nil {
		return
	}

	e.logger.ErrorContext(ctx, "Failed to delete orphaned workflow", "id", id, "error", err)
	report.warn("workflow %q (%s) left outside its project; run cleanup to remove it", name, id)
	e.record(ctx, models.ResourceWorkflows, id, name, report)
}

func (e *Engine) record(ctx context.Context, kind models.ResourceKind, id, name string, report *Report) {
	if err := e.ledger.Record(ctx, e.instance(), kind, id, name); err != nil {
		e.logger.ErrorContext(ctx, "Failed to record resource", "kind", kind, "id", id, "error", err)
		report.warn("%s %q (%s) created but not tracked: %v", kind, name, id, err)
	}
}
