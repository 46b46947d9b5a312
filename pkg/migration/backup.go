package migration

import (
	"context"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/dukex/n8nmigrate/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

// Backup fetches every workflow of project and stores them verbatim.
func (e *Engine) Backup(ctx context.Context, project models.Project) (*Report, error) {
	ctx, span := e.startSpan(ctx, "migration.backup",
		attribute.String(otelhelper.OperationKey, string(ActionBackup)),
		attribute.String(otelhelper.ProjectIDKey, project.ID),
	)
	defer span.End()

	report := newReport(e.runID, ActionBackup, e.server.Label(), project)

	workflows, err := e.remote.Workflows(ctx, project.ID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, &Error{Op: "backup", Server: e.server.Label(), Err: err}
	}

	if len(workflows) == 0 {
		e.logger.WarnContext(ctx, "No workflows to back up", "project", project.Name)
		report.warn("no workflows found in project %q", project.Name)

		return report, nil
	}

	info, err := e.backups.Save(ctx, e.server.Name, project.Name, workflows)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, &Error{Op: "backup", Server: e.server.Label(), Err: err}
	}

	report.Backup = info
	report.Workflows.Created = info.Workflows

	for _, failure := range info.Failures {
		report.fail(models.ResourceWorkflows, info.Name, failure)
	}

	span.SetAttributes(attribute.Int("n8nmigrate.backup.workflows", info.Workflows))

	return report, nil
}
