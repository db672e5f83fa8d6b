// Package ext defines the extension system for Dialog.
// Extensions are notified of lifecycle events (workflow started, field
// accepted, worker connected, etc.) and can react to them: logging,
// metrics, auditing.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Workflow lifecycle hooks
// ──────────────────────────────────────────────────

// WorkflowStarted is called when a workflow's procedure is launched.
type WorkflowStarted interface {
	OnWorkflowStarted(ctx context.Context, wf *workflow.Workflow) error
}

// FieldAccepted is called when an answer passes normalization and
// validation. crumbs are the breadcrumbs it appended.
type FieldAccepted interface {
	OnFieldAccepted(ctx context.Context, wf *workflow.Workflow, crumbs []prompt.Breadcrumb) error
}

// FieldRejected is called when an answer fails normalization or
// validation and the field is asked again.
type FieldRejected interface {
	OnFieldRejected(ctx context.Context, wf *workflow.Workflow, reason error) error
}

// WorkflowCompleted is called after a procedure returns without error.
type WorkflowCompleted interface {
	OnWorkflowCompleted(ctx context.Context, wf *workflow.Workflow, elapsed time.Duration) error
}

// WorkflowFailed is called after a procedure returns an error or panics.
type WorkflowFailed interface {
	OnWorkflowFailed(ctx context.Context, wf *workflow.Workflow, err error) error
}

// ──────────────────────────────────────────────────
// Worker connection hooks
// ──────────────────────────────────────────────────

// WorkerConnected is called when the hub accepts a worker connection.
type WorkerConnected interface {
	OnWorkerConnected(ctx context.Context, connID, namespace string) error
}

// WorkerDisconnected is called when the hub drops a worker connection.
// orphaned is the number of workflows that became unreachable.
type WorkerDisconnected interface {
	OnWorkerDisconnected(ctx context.Context, connID, namespace string, orphaned int) error
}

// ──────────────────────────────────────────────────
// Other hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
