// Package audithook is a Dialog extension that bridges lifecycle events to
// an immutable audit trail backend.
//
// Every workflow, field and worker lifecycle hook emits a structured audit
// event through the [Recorder] interface. The extension assigns severity
// levels (info for normal operations, warning for rejected answers and
// lost workers, critical for failed procedures) and metadata (workflow
// name, breadcrumbs, elapsed time, errors).
//
// # Logging audit events
//
//	audithook.New(audithook.SlogRecorder(logger))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionFieldAccepted,
//	        audithook.ActionWorkflowFailed,
//	    ),
//	)
package audithook
