package migration

import (
	"context"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/n8n"
	"github.com/dukex/n8nmigrate/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

// Tracked returns what the ledger holds for the engine's server.
func (e *Engine) Tracked(ctx context.Context) (*models.ResourceSet, error) {
	set, err := e.ledger.ListFor(ctx, e.instance())
	if err != nil {
		return nil, &Error{Op: "list tracked resources", Server: e.server.Label(), Err: err}
	}

	return set, nil
}

// Cleanup deletes the resources this tool created on the server: workflows, then
// credentials, then project when it is tracked. Ledger entries are dropped only once
// the remote delete succeeded; a resource already gone remotely counts as deleted.
func (e *Engine) Cleanup(ctx context.Context, project models.Project) (*Report, error) {
	ctx, span := e.startSpan(ctx, "migration.cleanup",
		attribute.String(otelhelper.OperationKey, string(ActionCleanup)),
		attribute.String(otelhelper.ProjectIDKey, project.ID),
	)
	defer span.End()

	set, err := e.Tracked(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	report := newReport(e.runID, ActionCleanup, e.server.Label(), project)

	if set.Empty() {
		e.logger.InfoContext(ctx, "No tracked resources for this instance")
		report.warn("no tracked resources found for %s", e.instance())

		return report, nil
	}

	for _, res := range set.Sorted(models.ResourceWorkflows) {
		e.remove(ctx, res, e.remote.DeleteWorkflow, report)
	}

	for _, res := range set.Sorted(models.ResourceCredentials) {
		e.remove(ctx, res, e.remote.DeleteCredential, report)
	}

	if !project.IsDefault() {
		if name, ok := set.Projects[project.ID]; ok {
			e.remove(ctx, models.TrackedResource{Kind: models.ResourceProjects, ID: project.ID, Name: name}, e.remote.DeleteProject, report)
		}
	}

	e.logger.InfoContext(ctx, "Cleanup complete",
		"workflows_deleted", report.Workflows.Deleted,
		"workflows_failed", report.Workflows.Failed,
		"credentials_deleted", report.Credentials.Deleted,
		"credentials_failed", report.Credentials.Failed,
	)

	return report, nil
}

func (e *Engine) remove(
	ctx context.Context,
	res models.TrackedResource,
	del func(ctx context.Context, id string) error,
	report *Report,
) {
	ctx, span := e.startSpan(ctx, "migration.delete_"+string(res.Kind),
		attribute.String("n8nmigrate.resource.id", res.ID),
	)
	defer span.End()

	if err := del(ctx, res.ID); err != nil {
		if !n8n.IsNotFound(err) {
			otelhelper.SetError(span, err)
			e.logger.ErrorContext(ctx, "Failed to delete resource", "kind", res.Kind, "id", res.ID, "name", res.Name, "error", err)
			report.fail(res.Kind, res.Name, err)

			return
		}

		e.logger.InfoContext(ctx, "Resource already gone", "kind", res.Kind, "id", res.ID)
	}

	if err := e.ledger.Forget(ctx, e.instance(), res.Kind, res.ID); err != nil {
		e.logger.ErrorContext(ctx, "Failed to untrack resource", "kind", res.Kind, "id", res.ID, "error", err)
		report.warn("%s %q (%s) deleted but still tracked: %v", res.Kind, res.Name, res.ID, err)
	}

	e.logger.InfoContext(ctx, "Deleted resource", "kind", res.Kind, "id", res.ID, "name", res.Name)
	report.Of(res.Kind).Deleted++
}
