package models

import (
	"encoding/json"
	"fmt"
)

// Node types that invoke another workflow by id.
const (
	NodeTypeExecuteWorkflow = "n8n-nodes-base.executeWorkflow"
	NodeTypeToolWorkflow    = "@n8n/n8n-nodes-langchain.toolWorkflow"
)

const (
	workflowIDParameter = "workflowId"
	refValueKey         = "value"
	refCachedNameKey    = "cachedResultName"
)

// CredentialRef is a node's reference to a credential of a given credential type.
type CredentialRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Node is one step of a workflow. Only the fields the migration needs are typed;
// everything else (id, position, typeVersion, webhookId, ...) passes through as-is.
type Node struct {
	Name        string
	Type        string
	Credentials map[string]*CredentialRef
	Parameters  map[string]any

	extra map[string]json.RawMessage
}

func (n *Node) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("decode node: %w", err)
	}

	var decoded Node

	if err := takeField(fields, "name", &decoded.Name); err != nil {
		return err
	}

	if err := takeField(fields, "type", &decoded.Type); err != nil {
		return err
	}

	if err := takeField(fields, "credentials", &decoded.Credentials); err != nil {
		return err
	}

	// Parameters are free-form; a malformed value is kept raw rather than failing the node.
	if raw, ok := fields["parameters"]; ok {
		var params map[string]any
		if decodeNumbers(raw, &params) == nil {
			decoded.Parameters = params

			delete(fields, "parameters")
		}
	}

	decoded.extra = fields
	*n = decoded

	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	fields := cloneFields(n.extra)

	if err := putField(fields, "name", n.Name); err != nil {
		return nil, err
	}

	if err := putField(fields, "type", n.Type); err != nil {
		return nil, err
	}

	if n.Parameters != nil {
		if err := putField(fields, "parameters", n.Parameters); err != nil {
			return nil, err
		}
	} else if _, ok := fields["parameters"]; !ok {
		fields["parameters"] = json.RawMessage("{}")
	}

	if len(n.Credentials) > 0 {
		if err := putField(fields, "credentials", n.Credentials); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

// InvokesWorkflow reports whether the node type can call a sub-workflow.
func (n *Node) InvokesWorkflow() bool {
	return n.Type == NodeTypeExecuteWorkflow || n.Type == NodeTypeToolWorkflow
}

// WorkflowReference returns the id of the sub-workflow this node invokes. The id is
// either the bare string parameter or the "value" member of the resource-locator object.
func (n *Node) WorkflowReference() (string, bool) {
	if !n.InvokesWorkflow() || n.Parameters == nil {
		return "", false
	}

	switch ref := n.Parameters[workflowIDParameter].(type) {
	case string:
		return ref, ref != ""
	case map[string]any:
		id, ok := ref[refValueKey].(string)

		return id, ok && id != ""
	default:
		return "", false
	}
}

// SetWorkflowReference replaces the referenced id keeping the parameter's shape.
func (n *Node) SetWorkflowReference(id string) bool {
	if _, ok := n.WorkflowReference(); !ok {
		return false
	}

	switch ref := n.Parameters[workflowIDParameter].(type) {
	case string:
		n.Parameters[workflowIDParameter] = id
	case map[string]any:
		ref[refValueKey] = id
	}

	return true
}

// CachedWorkflowName returns the display name cached in the object-shaped reference.
func (n *Node) CachedWorkflowName() (string, bool) {
	ref, ok := n.Parameters[workflowIDParameter].(map[string]any)
	if !ok {
		return "", false
	}

	name, ok := ref[refCachedNameKey].(string)

	return name, ok
}

// SetCachedWorkflowName overwrites the cached display name of an object-shaped reference.
func (n *Node) SetCachedWorkflowName(name string) {
	if ref, ok := n.Parameters[workflowIDParameter].(map[string]any); ok {
		if _, exists := ref[refCachedNameKey]; exists {
			ref[refCachedNameKey] = name
		}
	}
}
