package workflow

import (
	"context"
	"time"

	"github.com/xraph/dialog/prompt"
)

// Emitter receives workflow lifecycle events. It is satisfied by
// *ext.Registry; the interface lives here to break the import cycle.
type Emitter interface {
	EmitWorkflowStarted(ctx context.Context, wf *Workflow)
	EmitFieldAccepted(ctx context.Context, wf *Workflow, crumbs []prompt.Breadcrumb)
	EmitFieldRejected(ctx context.Context, wf *Workflow, err error)
	EmitWorkflowCompleted(ctx context.Context, wf *Workflow, elapsed time.Duration)
	EmitWorkflowFailed(ctx context.Context, wf *Workflow, err error)
}

type noopEmitter struct{}

func (noopEmitter) EmitWorkflowStarted(context.Context, *Workflow)                    {}
func (noopEmitter) EmitFieldAccepted(context.Context, *Workflow, []prompt.Breadcrumb) {}
func (noopEmitter) EmitFieldRejected(context.Context, *Workflow, error)               {}
func (noopEmitter) EmitWorkflowCompleted(context.Context, *Workflow, time.Duration)   {}
func (noopEmitter) EmitWorkflowFailed(context.Context, *Workflow, error)              {}

// Handler runs a procedure to completion.
type Handler func(ctx context.Context) error

// Middleware wraps a procedure run. It must call next unless it
// short-circuits with an error.
type Middleware func(ctx context.Context, wf *Workflow, next Handler) error
