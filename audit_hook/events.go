package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionWorkflowStarted    = "workflow.started"
	ActionFieldAccepted      = "field.accepted"
	ActionFieldRejected      = "field.rejected"
	ActionWorkflowCompleted  = "workflow.completed"
	ActionWorkflowFailed     = "workflow.failed"
	ActionWorkerConnected    = "worker.connected"
	ActionWorkerDisconnected = "worker.disconnected"
)

// Audit event categories group related actions.
const (
	CategoryWorkflow = "dialog.workflow"
	CategoryField    = "dialog.field"
	CategoryWorker   = "dialog.worker"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceWorkflow   = "workflow"
	ResourceConnection = "worker_connection"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionWorkflowStarted,
		ActionFieldAccepted,
		ActionFieldRejected,
		ActionWorkflowCompleted,
		ActionWorkflowFailed,
		ActionWorkerConnected,
		ActionWorkerDisconnected,
	}
}
