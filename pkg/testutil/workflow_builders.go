// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/n8nmigrate/pkg/models"
)

// Document is the raw JSON shape of a workflow before decoding.
type Document map[string]any

// NewWorkflow builds a workflow that can be overridden. The result is decoded from
// JSON so it behaves exactly like one read from the API or a backup. A workflow
// left without nodes gets a manual trigger.
func NewWorkflow(id string, overrides ...func(Document)) *models.Workflow {
	doc := Document{
		"id":          id,
		"name":        id,
		"active":      false,
		"nodes":       []any{},
		"connections": map[string]any{},
	}

	for _, override := range overrides {
		override(doc)
	}

	if nodes, _ := doc["nodes"].([]any); len(nodes) == 0 {
		doc["nodes"] = []any{Node("Start", "n8n-nodes-base.manualTrigger", nil)}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal workflow %s: %v", id, err))
	}

	var wf models.Workflow
	if err := json.Unmarshal(raw, &wf); err != nil {
		panic(fmt.Sprintf("testutil: decode workflow %s: %v", id, err))
	}

	return &wf
}

// Node returns a node document.
func Node(name, nodeType string, parameters map[string]any) map[string]any {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return map[string]any{
		"name":        name,
		"type":        nodeType,
		"typeVersion": 1,
		"position":    []int{0, 0},
		"parameters":  parameters,
	}
}

func WithName(name string) func(Document) {
	return func(d Document) {
		d["name"] = name
	}
}

func WithSettings(settings map[string]any) func(Document) {
	return func(d Document) {
		d["settings"] = settings
	}
}

// WithNode appends node to the workflow.
func WithNode(node map[string]any) func(Document) {
	return func(d Document) {
		nodes, _ := d["nodes"].([]any)
		d["nodes"] = append(nodes, node)
	}
}

// WithExecuteWorkflow adds an Execute Workflow node calling callee by plain id.
func WithExecuteWorkflow(name, callee string) func(Document) {
	return WithNode(Node(name, models.NodeTypeExecuteWorkflow, map[string]any{"workflowId": callee}))
}

// WithToolWorkflow adds an AI tool node calling callee through a resource locator.
func WithToolWorkflow(name, callee, cachedName string) func(Document) {
	return WithNode(Node(name, models.NodeTypeToolWorkflow, map[string]any{
		"workflowId": map[string]any{
			"__rl":             true,
			"value":            callee,
			"mode":             "list",
			"cachedResultName": cachedName,
		},
	}))
}

// WithCredentialNode adds a node that uses the credential named credName.
func WithCredentialNode(name, nodeType, credentialType, credName string, parameters map[string]any) func(Document) {
	node := Node(name, nodeType, parameters)
	node["credentials"] = map[string]any{
		credentialType: map[string]any{"id": "old-" + credentialType, "name": credName},
	}

	return WithNode(node)
}
