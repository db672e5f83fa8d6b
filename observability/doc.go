// Package observability provides OpenTelemetry-based metrics extensions for
// Dialog. The MetricsExtension implements lifecycle hooks to record
// system-wide counters for workflow starts, completions and failures,
// accepted and rejected answers, and worker connections.
//
// For per-execution tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
