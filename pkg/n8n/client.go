// Package n8n is a client for the n8n public REST API (/api/v1).
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/n8nmigrate/pkg/models"
)

const (
	// APIKeyHeader carries the instance API key.
	APIKeyHeader = "X-N8N-API-KEY"

	apiPrefix             = "/api/v1"
	defaultTimeoutSeconds = 30
	defaultPageSize       = 100
	maxErrorBody          = 64 << 10
)

// Client talks to one n8n instance.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPageSize sets the limit used when listing workflows and projects.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewClient returns a client for the instance at baseURL.
func NewClient(logger *slog.Logger, baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: defaultTimeoutSeconds * time.Second,
		},
		logger: logger.With("module", "n8n_client"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL is the instance URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping lists a single workflow to prove the URL and API key work.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{"limit": {"1"}}

	return c.do(ctx, http.MethodGet, "/workflows", query, nil, nil)
}

// Projects lists the instance's projects. Instances whose license lacks projects
// answer 403; that is reported as no projects rather than an error.
func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project

	cursor := ""

	for {
		query := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var page models.ProjectList

		err := c.do(ctx, http.MethodGet, "/projects", query, nil, &page)
		if err != nil {
			if IsStatus(err, http.StatusForbidden) {
				c.logger.WarnContext(ctx, "Projects are not available on this instance", "error", err)

				return []models.Project{}, nil
			}

			return nil, err
		}

		projects = append(projects, page.Data...)

		if page.NextCursor == nil || *page.NextCursor == "" {
			return projects, nil
		}

		cursor = *page.NextCursor
	}
}

// CreateProject creates a team project.
func (c *Client) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, map[string]string{"name": name}, &project); err != nil {
		return nil, err
	}

	if project.ID == "" {
		return nil, fmt.Errorf("%w: created project has no id", ErrUnexpectedResponse)
	}

	if project.Name == "" {
		project.Name = name
	}

	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil)
}

// Workflows returns every workflow of projectID (all workflows when empty),
// following nextCursor until the last page.
func (c *Client) Workflows(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	var workflows []*models.Workflow

	cursor := ""

	for {
		query := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
		if projectID != "" {
			query.Set("projectId", projectID)
		}

		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var page models.WorkflowList
		if err := c.do(ctx, http.MethodGet, "/workflows", query, nil, &page); err != nil {
			return nil, err
		}

		workflows = append(workflows, page.Data...)

		if page.NextCursor == nil || *page.NextCursor == "" {
			return workflows, nil
		}

		cursor = *page.NextCursor
	}
}

// CreateWorkflow submits a rewritten workflow and returns the created one.
func (c *Client) CreateWorkflow(ctx context.Context, payload *models.WorkflowPayload) (*models.Workflow, error) {
	var created models.Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows", nil, payload, &created); err != nil {
		return nil, err
	}

	if created.ID == "" {
		return nil, fmt.Errorf("%w: created workflow has no id", ErrUnexpectedResponse)
	}

	return &created, nil
}

// TransferWorkflow moves a workflow into projectID.
func (c *Client) TransferWorkflow(ctx context.Context, id, projectID string) error {
	body := map[string]string{"destinationProjectId": projectID}

	return c.do(ctx, http.MethodPut, "/workflows/"+url.PathEscape(id)+"/transfer", nil, body, nil)
}

func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workflows/"+url.PathEscape(id), nil, nil, nil)
}

// CreateCredential creates a credential and returns its id and final name.
func (c *Client) CreateCredential(ctx context.Context, payload *models.CredentialPayload) (*models.Credential, error) {
	var created models.Credential
	if err := c.do(ctx, http.MethodPost, "/credentials", nil, payload, &created); err != nil {
		return nil, err
	}

	if created.ID == "" {
		return nil, fmt.Errorf("%w: created credential has no id", ErrUnexpectedResponse)
	}

	return &created, nil
}

func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/credentials/"+url.PathEscape(id), nil, nil, nil)
}

// CredentialSchema returns the JSON schema of a credential type.
func (c *Client) CredentialSchema(ctx context.Context, credentialType string) (json.RawMessage, error) {
	var schema json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/credentials/schema/"+url.PathEscape(credentialType), nil, nil, &schema); err != nil {
		return nil, err
	}

	return schema, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}

	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		return fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	c.logger.DebugContext(ctx, "n8n request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return newAPIError(method, apiPrefix+path, resp.StatusCode, payload)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnexpectedResponse, method, path, err)
	}

	return nil
}
