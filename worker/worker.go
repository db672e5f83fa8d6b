// Package worker defines the connection abstraction the hub routes through.
//
// A [Conn] is anything that can list, start, pick up and continue workflows:
// an in-process [Local] adapter over a workflow registry, or a remote worker
// reached over the Dialog Wire Protocol (see dwp.RemoteWorker). The hub never
// knows which kind it is talking to.
package worker

import (
	"context"
	"encoding/json"

	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Conn is one worker connection as seen by the hub. Workflow ids crossing
// this interface are local to the worker; the hub adds and strips namespaces.
type Conn interface {
	// ListWorkflowTypes returns the workflow types the worker can start.
	ListWorkflowTypes(ctx context.Context) ([]prompt.WorkflowType, error)

	// StartWorkflow starts a workflow of the given local type id.
	StartWorkflow(ctx context.Context, typeID string, input json.RawMessage) (*workflow.State, error)

	// PickUpWorkflow returns the current state of a workflow without
	// advancing it.
	PickUpWorkflow(ctx context.Context, workflowID string) (*workflow.State, error)

	// ContinueWorkflow submits an answer and returns the next state.
	ContinueWorkflow(ctx context.Context, workflowID string, response prompt.Response) (*workflow.State, error)
}

// Compile-time interface check.
var _ Conn = (*Local)(nil)

// Local adapts an in-process workflow registry to Conn.
type Local struct {
	registry *workflow.Registry
}

// NewLocal returns a Conn that delegates to r.
func NewLocal(r *workflow.Registry) *Local {
	return &Local{registry: r}
}

// Registry returns the wrapped registry.
func (l *Local) Registry() *workflow.Registry { return l.registry }

// ListWorkflowTypes implements Conn.
func (l *Local) ListWorkflowTypes(ctx context.Context) ([]prompt.WorkflowType, error) {
	return l.registry.ListWorkflowTypes(ctx)
}

// StartWorkflow implements Conn.
func (l *Local) StartWorkflow(ctx context.Context, typeID string, input json.RawMessage) (*workflow.State, error) {
	return l.registry.Start(ctx, typeID, input)
}

// PickUpWorkflow implements Conn.
func (l *Local) PickUpWorkflow(ctx context.Context, workflowID string) (*workflow.State, error) {
	return l.registry.PickUp(ctx, workflowID)
}

// ContinueWorkflow implements Conn.
func (l *Local) ContinueWorkflow(ctx context.Context, workflowID string, response prompt.Response) (*workflow.State, error) {
	return l.registry.Continue(ctx, workflowID, response)
}
