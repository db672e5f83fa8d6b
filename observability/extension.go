package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/dialog/ext"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.WorkflowStarted    = (*MetricsExtension)(nil)
	_ ext.FieldAccepted      = (*MetricsExtension)(nil)
	_ ext.FieldRejected      = (*MetricsExtension)(nil)
	_ ext.WorkflowCompleted  = (*MetricsExtension)(nil)
	_ ext.WorkflowFailed     = (*MetricsExtension)(nil)
	_ ext.WorkerConnected    = (*MetricsExtension)(nil)
	_ ext.WorkerDisconnected = (*MetricsExtension)(nil)
)

const instrumentationName = "github.com/xraph/dialog"

// MetricsExtension records system-wide lifecycle metrics as OpenTelemetry
// counters. Register it as a Dialog extension to track workflow starts,
// completions and failures, answer acceptance, and worker churn.
type MetricsExtension struct {
	WorkflowStarted    metric.Int64Counter
	WorkflowCompleted  metric.Int64Counter
	WorkflowFailed     metric.Int64Counter
	FieldAccepted      metric.Int64Counter
	FieldRejected      metric.Int64Counter
	WorkerConnected    metric.Int64Counter
	WorkerDisconnected metric.Int64Counter
	WorkflowsOrphaned  metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global meter provider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(instrumentationName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	counter := func(name, desc string) metric.Int64Counter {
		c, _ := meter.Int64Counter(name, metric.WithDescription(desc)) //nolint:errcheck // a noop counter is returned on error
		return c
	}
	return &MetricsExtension{
		WorkflowStarted:    counter("dialog.workflow.started", "Workflows started"),
		WorkflowCompleted:  counter("dialog.workflow.completed", "Workflows that ended in success"),
		WorkflowFailed:     counter("dialog.workflow.failed", "Workflows that ended in error"),
		FieldAccepted:      counter("dialog.field.accepted", "Answers that passed normalization and validation"),
		FieldRejected:      counter("dialog.field.rejected", "Answers rejected with a validation message"),
		WorkerConnected:    counter("dialog.worker.connected", "Worker connections added to the hub"),
		WorkerDisconnected: counter("dialog.worker.disconnected", "Worker connections removed from the hub"),
		WorkflowsOrphaned:  counter("dialog.workflow.orphaned", "Workflows left unreachable by a disconnect"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Workflow lifecycle hooks ────────────────────────

// OnWorkflowStarted implements ext.WorkflowStarted.
func (m *MetricsExtension) OnWorkflowStarted(ctx context.Context, wf *workflow.Workflow) error {
	m.WorkflowStarted.Add(ctx, 1, workflowAttrs(wf))
	return nil
}

// OnFieldAccepted implements ext.FieldAccepted.
func (m *MetricsExtension) OnFieldAccepted(ctx context.Context, wf *workflow.Workflow, _ []prompt.Breadcrumb) error {
	m.FieldAccepted.Add(ctx, 1, workflowAttrs(wf))
	return nil
}

// OnFieldRejected implements ext.FieldRejected.
func (m *MetricsExtension) OnFieldRejected(ctx context.Context, wf *workflow.Workflow, _ error) error {
	m.FieldRejected.Add(ctx, 1, workflowAttrs(wf))
	return nil
}

// OnWorkflowCompleted implements ext.WorkflowCompleted.
func (m *MetricsExtension) OnWorkflowCompleted(ctx context.Context, wf *workflow.Workflow, _ time.Duration) error {
	m.WorkflowCompleted.Add(ctx, 1, workflowAttrs(wf))
	return nil
}

// OnWorkflowFailed implements ext.WorkflowFailed.
func (m *MetricsExtension) OnWorkflowFailed(ctx context.Context, wf *workflow.Workflow, _ error) error {
	m.WorkflowFailed.Add(ctx, 1, workflowAttrs(wf))
	return nil
}

// ── Worker lifecycle hooks ──────────────────────────

// OnWorkerConnected implements ext.WorkerConnected.
func (m *MetricsExtension) OnWorkerConnected(ctx context.Context, _, namespace string) error {
	m.WorkerConnected.Add(ctx, 1, namespaceAttrs(namespace))
	return nil
}

// OnWorkerDisconnected implements ext.WorkerDisconnected.
func (m *MetricsExtension) OnWorkerDisconnected(ctx context.Context, _, namespace string, orphaned int) error {
	attrs := namespaceAttrs(namespace)
	m.WorkerDisconnected.Add(ctx, 1, attrs)
	if orphaned > 0 {
		m.WorkflowsOrphaned.Add(ctx, int64(orphaned), attrs)
	}
	return nil
}

func workflowAttrs(wf *workflow.Workflow) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("workflow_name", wf.Name()))
}

func namespaceAttrs(namespace string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("namespace", namespace))
}
