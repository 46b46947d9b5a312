// Package rewrite turns a source workflow definition into a payload for the target
// environment: environment literals, credential ids and sub-workflow ids are swapped
// and missing settings are defaulted.
package rewrite

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/n8nmigrate/pkg/models"
)

// EnvironmentContext carries everything the rewrite needs about the target.
type EnvironmentContext struct {
	// Replacements maps a literal of another environment to the target's literal.
	Replacements map[string]string
	Credentials  *CredentialMapping
	// Workflows maps source workflow ids to ids created on the target.
	Workflows map[string]string
	Postfix   string
}

// WarningKind classifies a non-fatal rewrite problem.
type WarningKind string

const (
	WarningLiteralReplacement WarningKind = "literal_replacement"
	WarningCredentialMissing  WarningKind = "credential_missing"
)

type Warning struct {
	Kind    WarningKind
	Node    string
	Message string
}

func (w Warning) String() string {
	if w.Node == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}

	return fmt.Sprintf("%s: node %q: %s", w.Kind, w.Node, w.Message)
}

// Result reports what the rewrite changed and what it could not resolve.
type Result struct {
	LiteralsReplaced    bool
	CredentialsResolved int
	WorkflowsRemapped   int
	Warnings            []Warning
}

func (r *Result) warn(kind WarningKind, node, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)})
}

// Rewrite produces the create payload of def for the target environment. def is
// never mutated. Unresolvable credentials and unparsable literal replacements only
// produce warnings.
func Rewrite(def *models.Workflow, env EnvironmentContext) (*models.WorkflowPayload, *Result, error) {
	if def == nil {
		return nil, nil, fmt.Errorf("rewrite: nil workflow")
	}

	result := &Result{}

	wf, err := replaceLiterals(def, env.Replacements, result)
	if err != nil {
		return nil, nil, err
	}

	wf.Settings.ApplyDefaults()

	for _, node := range wf.Nodes {
		if node == nil {
			continue
		}

		resolveCredentials(node, env.Credentials, result)
		remapWorkflow(node, env.Workflows, result)
	}

	return wf.Payload(), result, nil
}

// replaceLiterals returns a deep copy of def with the replacement table applied to
// its serialized form.
func replaceLiterals(def *models.Workflow, table map[string]string, result *Result) (*models.Workflow, error) {
	doc, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("rewrite: encode workflow %q: %w", def.ID, err)
	}

	if len(table) > 0 {
		replaced := newReplacer(table).Replace(string(doc))
		if replaced != string(doc) {
			var wf models.Workflow

			err := json.Unmarshal([]byte(replaced), &wf)
			if err == nil {
				result.LiteralsReplaced = true

				return &wf, nil
			}

			result.warn(WarningLiteralReplacement, "", "replaced document no longer parses, keeping original literals: %v", err)
		}
	}

	var wf models.Workflow
	if err := json.Unmarshal(doc, &wf); err != nil {
		return nil, fmt.Errorf("rewrite: copy workflow %q: %w", def.ID, err)
	}

	return &wf, nil
}

func resolveCredentials(node *models.Node, mapping *CredentialMapping, result *Result) {
	for _, credentialType := range slices.Sorted(maps.Keys(node.Credentials)) {
		ref := node.Credentials[credentialType]
		if ref == nil {
			continue
		}

		id, _, ok := mapping.Resolve(ref.Name)
		if !ok {
			result.warn(WarningCredentialMissing, node.Name, "no created credential matches %s %q", credentialType, ref.Name)

			continue
		}

		ref.ID = id
		result.CredentialsResolved++
	}
}

func remapWorkflow(node *models.Node, mapping map[string]string, result *Result) {
	oldID, ok := node.WorkflowReference()
	if !ok {
		return
	}

	newID, ok := mapping[oldID]
	if !ok {
		return
	}

	node.SetWorkflowReference(newID)

	if cached, ok := node.CachedWorkflowName(); ok {
		if words := strings.Fields(cached); len(words) > 0 {
			node.SetCachedWorkflowName(words[0])
		}
	}

	result.WorkflowsRemapped++
}
