package dialog

import "errors"

var (
	// Lookup errors.
	ErrWorkflowNotFound     = errors.New("dialog: workflow not found")
	ErrWorkflowTypeNotFound = errors.New("dialog: workflow type not found")
	ErrNamespaceNotFound    = errors.New("dialog: namespace not found")
	ErrConnectionNotFound   = errors.New("dialog: connection not found")

	// Field errors. These never escape a workflow; they turn into re-prompts.
	ErrValidationFailed = errors.New("dialog: validation failed")
	ErrInvalidSelection = errors.New("dialog: invalid selection")

	// Transport errors.
	ErrUnauthorized = errors.New("dialog: unauthorized")
	ErrUnreachable  = errors.New("dialog: worker connection unreachable")
	ErrRateLimited  = errors.New("dialog: rate limited")

	// Lifecycle errors.
	ErrProcedureFailed   = errors.New("dialog: procedure failed")
	ErrNotAwaitingAnswer = errors.New("dialog: workflow is not awaiting an answer")
	ErrWorkflowFinished  = errors.New("dialog: workflow already finished")
	ErrRegistryClosed    = errors.New("dialog: registry closed")
)
