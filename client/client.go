// Package client provides a Go client for the dialog hub's operator HTTP
// API.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//
//	types, err := c.ListWorkflowTypes(ctx)
//	st, err := c.StartWorkflow(ctx, "user-service.create-user", nil)
//	for !st.Finished() {
//	    st, err = c.ContinueWorkflow(ctx, st.WorkflowID, answer(st.Prompt))
//	}
//
// Errors returned by the hub wrap the matching dialog sentinel, so
// errors.Is(err, dialog.ErrWorkflowNotFound) works on the client side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xraph/dialog/api"
	"github.com/xraph/dialog/dwp"
	"github.com/xraph/dialog/hub"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Client calls a dialog hub over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the hub at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports hub liveness and its connection count.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWorkflowTypes returns the catalogue, optionally restricted to
// namespaces.
func (c *Client) ListWorkflowTypes(ctx context.Context, namespaces ...string) ([]prompt.WorkflowType, error) {
	path := "/v1/workflow-types"
	if len(namespaces) > 0 {
		q := url.Values{"namespace": namespaces}
		path += "?" + q.Encode()
	}
	var out []prompt.WorkflowType
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartWorkflow starts the namespaced workflow type with input, which is
// marshalled to JSON. A nil input sends no input.
func (c *Client) StartWorkflow(ctx context.Context, typeID string, input any) (*workflow.State, error) {
	req := api.StartWorkflowRequest{TypeID: typeID}
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("marshal input for %q: %w", typeID, err)
		}
		req.Input = raw
	}
	var st workflow.State
	if err := c.do(ctx, http.MethodPost, "/v1/workflows", req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// PickUpWorkflow returns the current state of a workflow without
// advancing it.
func (c *Client) PickUpWorkflow(ctx context.Context, workflowID string) (*workflow.State, error) {
	var st workflow.State
	if err := c.do(ctx, http.MethodGet, "/v1/workflows/"+url.PathEscape(workflowID), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ContinueWorkflow answers the workflow's current prompt.
func (c *Client) ContinueWorkflow(ctx context.Context, workflowID string, response prompt.Response) (*workflow.State, error) {
	var st workflow.State
	path := "/v1/workflows/" + url.PathEscape(workflowID) + "/continue"
	if err := c.do(ctx, http.MethodPost, path, api.ContinueWorkflowRequest{Response: response}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Connections lists the worker connections the hub holds.
func (c *Client) Connections(ctx context.Context) ([]hub.ConnectionInfo, error) {
	var out []hub.ConnectionInfo
	if err := c.do(ctx, http.MethodGet, "/v1/connections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("hub request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error response into an error wrapping the dialog
// sentinel named by its reason.
func decodeError(resp *http.Response) error {
	var d dwp.ErrorDetail
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &d); err != nil || d.Message == "" {
		d.Message = strings.TrimSpace(string(data))
		if d.Message == "" {
			d.Message = resp.Status
		}
	}
	d.Code = resp.StatusCode
	return dwp.ErrorFromDetail(&d)
}
