package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/dialog/ext"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*Extension)(nil)
	_ ext.WorkflowStarted    = (*Extension)(nil)
	_ ext.FieldAccepted      = (*Extension)(nil)
	_ ext.FieldRejected      = (*Extension)(nil)
	_ ext.WorkflowCompleted  = (*Extension)(nil)
	_ ext.WorkflowFailed     = (*Extension)(nil)
	_ ext.WorkerConnected    = (*Extension)(nil)
	_ ext.WorkerDisconnected = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit trail entry.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// SlogRecorder returns a Recorder that writes each event as one structured
// log line. Critical events log at error level, warnings at warn.
func SlogRecorder(logger *slog.Logger) Recorder {
	return RecorderFunc(func(ctx context.Context, evt *AuditEvent) error {
		level := slog.LevelInfo
		switch evt.Severity {
		case SeverityWarning:
			level = slog.LevelWarn
		case SeverityCritical:
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("action", evt.Action),
			slog.String("category", evt.Category),
			slog.String("resource", evt.Resource),
			slog.String("resource_id", evt.ResourceID),
			slog.String("outcome", evt.Outcome),
			slog.Any("metadata", evt.Metadata),
		}
		if evt.Reason != "" {
			attrs = append(attrs, slog.String("reason", evt.Reason))
		}
		logger.LogAttrs(ctx, level, "audit", attrs...)
		return nil
	})
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges Dialog lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Workflow lifecycle hooks ────────────────────────

// OnWorkflowStarted implements ext.WorkflowStarted.
func (e *Extension) OnWorkflowStarted(ctx context.Context, wf *workflow.Workflow) error {
	return e.record(ctx, ActionWorkflowStarted, SeverityInfo, OutcomeSuccess,
		ResourceWorkflow, wf.ID().String(), CategoryWorkflow, nil,
		"workflow_name", wf.Name(),
	)
}

// OnFieldAccepted implements ext.FieldAccepted. Each breadcrumb becomes a
// metadata entry.
func (e *Extension) OnFieldAccepted(ctx context.Context, wf *workflow.Workflow, crumbs []prompt.Breadcrumb) error {
	kv := []any{"workflow_name", wf.Name()}
	for _, c := range crumbs {
		kv = append(kv, "field."+c.Key, c.Value)
	}
	return e.record(ctx, ActionFieldAccepted, SeverityInfo, OutcomeSuccess,
		ResourceWorkflow, wf.ID().String(), CategoryField, nil,
		kv...,
	)
}

// OnFieldRejected implements ext.FieldRejected.
func (e *Extension) OnFieldRejected(ctx context.Context, wf *workflow.Workflow, reason error) error {
	return e.record(ctx, ActionFieldRejected, SeverityWarning, OutcomeFailure,
		ResourceWorkflow, wf.ID().String(), CategoryField, reason,
		"workflow_name", wf.Name(),
	)
}

// OnWorkflowCompleted implements ext.WorkflowCompleted.
func (e *Extension) OnWorkflowCompleted(ctx context.Context, wf *workflow.Workflow, elapsed time.Duration) error {
	return e.record(ctx, ActionWorkflowCompleted, SeverityInfo, OutcomeSuccess,
		ResourceWorkflow, wf.ID().String(), CategoryWorkflow, nil,
		"workflow_name", wf.Name(),
		"elapsed_ms", elapsed.Milliseconds(),
		"breadcrumbs", len(wf.Breadcrumbs()),
	)
}

// OnWorkflowFailed implements ext.WorkflowFailed.
func (e *Extension) OnWorkflowFailed(ctx context.Context, wf *workflow.Workflow, runErr error) error {
	return e.record(ctx, ActionWorkflowFailed, SeverityCritical, OutcomeFailure,
		ResourceWorkflow, wf.ID().String(), CategoryWorkflow, runErr,
		"workflow_name", wf.Name(),
	)
}

// ── Worker lifecycle hooks ──────────────────────────

// OnWorkerConnected implements ext.WorkerConnected.
func (e *Extension) OnWorkerConnected(ctx context.Context, connID, namespace string) error {
	return e.record(ctx, ActionWorkerConnected, SeverityInfo, OutcomeSuccess,
		ResourceConnection, connID, CategoryWorker, nil,
		"namespace", namespace,
	)
}

// OnWorkerDisconnected implements ext.WorkerDisconnected.
func (e *Extension) OnWorkerDisconnected(ctx context.Context, connID, namespace string, orphaned int) error {
	severity := SeverityInfo
	if orphaned > 0 {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionWorkerDisconnected, severity, OutcomeSuccess,
		ResourceConnection, connID, CategoryWorker, nil,
		"namespace", namespace,
		"orphaned_workflows", orphaned,
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
