package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type workflowStartedEntry struct {
	name string
	hook WorkflowStarted
}

type fieldAcceptedEntry struct {
	name string
	hook FieldAccepted
}

type fieldRejectedEntry struct {
	name string
	hook FieldRejected
}

type workflowCompletedEntry struct {
	name string
	hook WorkflowCompleted
}

type workflowFailedEntry struct {
	name string
	hook WorkflowFailed
}

type workerConnectedEntry struct {
	name string
	hook WorkerConnected
}

type workerDisconnectedEntry struct {
	name string
	hook WorkerDisconnected
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
//
// Register all extensions before emitting; Register is not safe to call
// concurrently with the emit methods.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	workflowStarted    []workflowStartedEntry
	fieldAccepted      []fieldAcceptedEntry
	fieldRejected      []fieldRejectedEntry
	workflowCompleted  []workflowCompletedEntry
	workflowFailed     []workflowFailedEntry
	workerConnected    []workerConnectedEntry
	workerDisconnected []workerDisconnectedEntry
	shutdown           []shutdownEntry
}

var _ workflow.Emitter = (*Registry)(nil)

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(WorkflowStarted); ok {
		r.workflowStarted = append(r.workflowStarted, workflowStartedEntry{name, h})
	}
	if h, ok := e.(FieldAccepted); ok {
		r.fieldAccepted = append(r.fieldAccepted, fieldAcceptedEntry{name, h})
	}
	if h, ok := e.(FieldRejected); ok {
		r.fieldRejected = append(r.fieldRejected, fieldRejectedEntry{name, h})
	}
	if h, ok := e.(WorkflowCompleted); ok {
		r.workflowCompleted = append(r.workflowCompleted, workflowCompletedEntry{name, h})
	}
	if h, ok := e.(WorkflowFailed); ok {
		r.workflowFailed = append(r.workflowFailed, workflowFailedEntry{name, h})
	}
	if h, ok := e.(WorkerConnected); ok {
		r.workerConnected = append(r.workerConnected, workerConnectedEntry{name, h})
	}
	if h, ok := e.(WorkerDisconnected); ok {
		r.workerDisconnected = append(r.workerDisconnected, workerDisconnectedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Workflow event emitters
// ──────────────────────────────────────────────────

// EmitWorkflowStarted notifies all extensions that implement WorkflowStarted.
func (r *Registry) EmitWorkflowStarted(ctx context.Context, wf *workflow.Workflow) {
	for _, e := range r.workflowStarted {
		if err := e.hook.OnWorkflowStarted(ctx, wf); err != nil {
			r.logHookError("OnWorkflowStarted", e.name, err)
		}
	}
}

// EmitFieldAccepted notifies all extensions that implement FieldAccepted.
func (r *Registry) EmitFieldAccepted(ctx context.Context, wf *workflow.Workflow, crumbs []prompt.Breadcrumb) {
	for _, e := range r.fieldAccepted {
		if err := e.hook.OnFieldAccepted(ctx, wf, crumbs); err != nil {
			r.logHookError("OnFieldAccepted", e.name, err)
		}
	}
}

// EmitFieldRejected notifies all extensions that implement FieldRejected.
func (r *Registry) EmitFieldRejected(ctx context.Context, wf *workflow.Workflow, reason error) {
	for _, e := range r.fieldRejected {
		if err := e.hook.OnFieldRejected(ctx, wf, reason); err != nil {
			r.logHookError("OnFieldRejected", e.name, err)
		}
	}
}

// EmitWorkflowCompleted notifies all extensions that implement WorkflowCompleted.
func (r *Registry) EmitWorkflowCompleted(ctx context.Context, wf *workflow.Workflow, elapsed time.Duration) {
	for _, e := range r.workflowCompleted {
		if err := e.hook.OnWorkflowCompleted(ctx, wf, elapsed); err != nil {
			r.logHookError("OnWorkflowCompleted", e.name, err)
		}
	}
}

// EmitWorkflowFailed notifies all extensions that implement WorkflowFailed.
func (r *Registry) EmitWorkflowFailed(ctx context.Context, wf *workflow.Workflow, runErr error) {
	for _, e := range r.workflowFailed {
		if err := e.hook.OnWorkflowFailed(ctx, wf, runErr); err != nil {
			r.logHookError("OnWorkflowFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Worker event emitters
// ──────────────────────────────────────────────────

// EmitWorkerConnected notifies all extensions that implement WorkerConnected.
func (r *Registry) EmitWorkerConnected(ctx context.Context, connID, namespace string) {
	for _, e := range r.workerConnected {
		if err := e.hook.OnWorkerConnected(ctx, connID, namespace); err != nil {
			r.logHookError("OnWorkerConnected", e.name, err)
		}
	}
}

// EmitWorkerDisconnected notifies all extensions that implement WorkerDisconnected.
func (r *Registry) EmitWorkerDisconnected(ctx context.Context, connID, namespace string, orphaned int) {
	for _, e := range r.workerDisconnected {
		if err := e.hook.OnWorkerDisconnected(ctx, connID, namespace, orphaned); err != nil {
			r.logHookError("OnWorkerDisconnected", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
