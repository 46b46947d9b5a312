// Package models defines the workflow, credential and ledger shapes exchanged with an n8n instance.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrWorkflowIDRequired   = errors.New("workflow id is required")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
)

// Workflow is a workflow definition as served by the n8n public API. The document
// it was decoded from is retained so that backups stay byte-for-byte faithful.
type Workflow struct {
	ID          string
	Name        string
	Nodes       []*Node
	Connections json.RawMessage
	Settings    Settings

	extra map[string]json.RawMessage
	raw   json.RawMessage
}

func (w *Workflow) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("decode workflow: %w", err)
	}

	decoded := Workflow{raw: append(json.RawMessage(nil), data...)}

	if err := takeField(fields, "id", &decoded.ID); err != nil {
		return err
	}

	if err := takeField(fields, "name", &decoded.Name); err != nil {
		return err
	}

	if err := takeField(fields, "nodes", &decoded.Nodes); err != nil {
		return err
	}

	if err := takeField(fields, "settings", &decoded.Settings); err != nil {
		return err
	}

	if raw, ok := fields["connections"]; ok {
		decoded.Connections = raw

		delete(fields, "connections")
	}

	decoded.extra = fields
	*w = decoded

	return nil
}

// MarshalJSON encodes the typed fields over the pass-through ones.
func (w Workflow) MarshalJSON() ([]byte, error) {
	fields := cloneFields(w.extra)

	if err := putField(fields, "id", w.ID); err != nil {
		return nil, err
	}

	if err := putField(fields, "name", w.Name); err != nil {
		return nil, err
	}

	nodes := w.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}

	if err := putField(fields, "nodes", nodes); err != nil {
		return nil, err
	}

	fields["connections"] = w.connections()

	if err := putField(fields, "settings", w.Settings); err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

// Raw returns the document the workflow was decoded from, or nil for workflows built in code.
func (w *Workflow) Raw() json.RawMessage {
	return w.raw
}

// Document returns the raw document when one exists and a fresh encoding otherwise.
func (w *Workflow) Document() ([]byte, error) {
	if len(w.raw) > 0 {
		return w.raw, nil
	}

	return json.Marshal(w)
}

// Validate enforces the invariant that persisted workflows carry an id and a name.
func (w *Workflow) Validate() error {
	if w.ID == "" {
		return ErrWorkflowIDRequired
	}

	if w.Name == "" {
		return ErrWorkflowNameRequired
	}

	return nil
}

// Payload builds the body accepted by POST /workflows.
func (w *Workflow) Payload() *WorkflowPayload {
	nodes := w.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}

	return &WorkflowPayload{
		Name:        w.Name,
		Nodes:       nodes,
		Connections: w.connections(),
		Settings:    w.Settings.clone(),
	}
}

func (w *Workflow) connections() json.RawMessage {
	trimmed := bytes.TrimSpace(w.Connections)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}

	return w.Connections
}

// WorkflowPayload is the create-workflow request body: exactly name, nodes, connections, settings.
type WorkflowPayload struct {
	Name        string          `json:"name"`
	Nodes       []*Node         `json:"nodes"`
	Connections json.RawMessage `json:"connections"`
	Settings    Settings        `json:"settings"`
}

// WorkflowList is one page of GET /workflows.
type WorkflowList struct {
	Data       []*Workflow `json:"data"`
	NextCursor *string     `json:"nextCursor"`
}
