// Package ext defines the extension system for Dialog.
//
// Extensions are notified of lifecycle events and can react to them:
// recording metrics, writing audit logs, alerting on failures. Each
// lifecycle hook is a separate interface so extensions opt in only to the
// events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnWorkflowCompleted(ctx context.Context, wf *workflow.Workflow, elapsed time.Duration) error {
//	    log.Printf("workflow %s completed in %s", wf.ID(), elapsed)
//	    return nil
//	}
//
// # Workflow Lifecycle Hooks
//
//   - [WorkflowStarted] — procedure launched
//   - [FieldAccepted] — an answer was accepted and breadcrumbs appended
//   - [FieldRejected] — an answer was rejected and the field re-asked
//   - [WorkflowCompleted] — procedure returned without error
//   - [WorkflowFailed] — procedure returned an error or panicked
//
// # Worker Hooks
//
//   - [WorkerConnected] — the hub accepted a worker connection
//   - [WorkerDisconnected] — a worker connection went away
//
// # Other Hooks
//
//   - [Shutdown] — the process is shutting down gracefully
package ext
