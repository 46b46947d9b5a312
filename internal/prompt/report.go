package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dukex/n8nmigrate/pkg/migration"
	"github.com/dukex/n8nmigrate/pkg/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
)

// RenderReport formats the summary printed after an operation.
func RenderReport(report *migration.Report) string {
	var b strings.Builder

	status := "complete"
	if report.Cancelled {
		status = "cancelled"
	}

	fmt.Fprintf(&b, "%s\n", headingStyle.Render(fmt.Sprintf("%s %s", titleCase(string(report.Action)), status)))
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("server: %s • project: %s • run: %s", report.Server, report.Project.Name, report.RunID)))

	if report.Environment != "" {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("environment: "+report.Environment))
	}

	if report.Backup != nil {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("backup: "+report.Backup.Name))
	}

	if report.Cancelled {
		fmt.Fprintf(&b, "\n%s\n", errorStyle.Render("Operation cancelled."))

		return b.String()
	}

	counts := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Resource", "Created", "Failed", "Deleted")

	for _, kind := range models.ResourceKinds {
		c := report.Of(kind)
		counts.Row(string(kind), strconv.Itoa(c.Created), strconv.Itoa(c.Failed), strconv.Itoa(c.Deleted))
	}

	fmt.Fprintf(&b, "\n%s\n", counts.Render())

	for _, warning := range report.Warnings {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("warning:"), warning)
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(&b, "%s %s\n", errorStyle.Render("failed:"), failure)
	}

	if len(report.Failures) == 0 {
		fmt.Fprintf(&b, "%s\n", okStyle.Render("No failures."))
	}

	return b.String()
}

// RenderTracked lists the ledger entries of one instance.
func RenderTracked(instance string, set *models.ResourceSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headingStyle.Render(instance))

	if set.Empty() {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("nothing tracked"))

		return b.String()
	}

	rows := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Kind", "ID", "Name")

	for _, kind := range models.ResourceKinds {
		for _, res := range set.Sorted(kind) {
			rows.Row(string(res.Kind), res.ID, res.Name)
		}
	}

	fmt.Fprintf(&b, "%s\n", rows.Render())

	return b.String()
}

func titleCase(value string) string {
	if value == "" {
		return value
	}

	return strings.ToUpper(value[:1]) + value[1:]
}
