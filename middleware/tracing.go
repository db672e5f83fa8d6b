package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/dialog/workflow"
)

// tracerName is the instrumentation scope name for dialog tracing.
const tracerName = "github.com/xraph/dialog"

// Tracing returns middleware that wraps a procedure run in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through.
//
// Span attributes include dialog.workflow.id and dialog.workflow.name; the
// span also records dialog.workflow.breadcrumbs when it ends. On error,
// the span status is set to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, wf *workflow.Workflow, next Handler) error {
		ctx, span := tracer.Start(ctx, "dialog.workflow.run",
			trace.WithAttributes(
				attribute.String("dialog.workflow.id", wf.ID().String()),
				attribute.String("dialog.workflow.name", wf.Name()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		span.SetAttributes(attribute.Int("dialog.workflow.breadcrumbs", len(wf.Breadcrumbs())))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
