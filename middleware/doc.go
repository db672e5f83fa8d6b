// Package middleware provides composable middleware for workflow procedure
// runs.
//
// A [Middleware] wraps a procedure from launch until it returns. Middleware
// are composed into a chain using [Chain] and installed on a registry with
// workflow.WithMiddleware. They are applied right-to-left: the first
// middleware in the slice is the outermost wrapper.
//
//	// recover → logging → procedure
//	chain := middleware.Chain(middleware.Recover(logger), middleware.Logging(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs workflow name, duration, and outcome
//   - [Recover] — catches panics and converts them to dialog.ErrProcedureFailed
//   - [Tracing] — wraps the run in an OpenTelemetry span
//   - [Metrics] — records per-run duration and outcome counters
//
// A run includes the time spent waiting for operator answers, so durations
// measure workflow lifetime rather than CPU time.
package middleware
