package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/dialog/workflow"
)

// meterName is the instrumentation scope name for dialog metrics.
const meterName = "github.com/xraph/dialog"

// Metrics returns middleware that records per-run metrics using the global
// OTel MeterProvider. If no MeterProvider is configured, noop instruments
// are used and this middleware becomes a pass-through.
//
// Instruments:
//   - dialog.workflow.duration (Float64Histogram): time from launch to
//     terminal prompt in seconds, operator think time included, with
//     attributes: workflow_name, status ("ok" or "error")
//   - dialog.workflow.runs (Int64Counter): finished runs, with the same
//     attributes
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error, the API returns noop instruments.
	duration, dErr := meter.Float64Histogram(
		"dialog.workflow.duration",
		metric.WithDescription("Duration of workflow runs in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr

	runs, rErr := meter.Int64Counter(
		"dialog.workflow.runs",
		metric.WithDescription("Total number of finished workflow runs"),
		metric.WithUnit("{run}"),
	)
	_ = rErr

	return func(ctx context.Context, wf *workflow.Workflow, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("workflow_name", wf.Name()),
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		runs.Add(ctx, 1, attrs)

		return err
	}
}
