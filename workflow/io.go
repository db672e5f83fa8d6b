package workflow

import (
	"context"
	"log/slog"

	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/input"
	"github.com/xraph/dialog/prompt"
)

// IO is the procedure's handle for talking to the operator. It is bound
// to one workflow and must only be used from that workflow's procedure.
type IO struct {
	ctx context.Context
	wf  *Workflow
}

// Context returns the procedure's context. It is cancelled when the
// registry closes.
func (io *IO) Context() context.Context { return io.ctx }

// WorkflowID returns the id of the running workflow.
func (io *IO) WorkflowID() id.ID { return io.wf.id }

// Logger returns a logger tagged with the workflow id.
func (io *IO) Logger() *slog.Logger {
	return io.wf.logger.With(slog.String("workflow_id", io.wf.id.String()))
}

// Message shows text and waits until the operator acknowledges it. The
// acknowledgement value is ignored and no breadcrumb is written.
func (io *IO) Message(text string) error {
	wait := io.wf.ask(prompt.NewMessage(text), "")
	_, err := wait(io.ctx)
	return err
}

// Ask presents field and suspends until the operator submits a value that
// normalizes and validates. A rejected value re-asks the same field with
// the rejection message; an accepted one appends the field's breadcrumbs.
// The only errors returned are context errors.
func Ask[T any](io *IO, field input.Field[T]) (T, error) {
	in := field.Build()
	wf := io.wf

	var priorError string
	for {
		wait := wf.ask(in.Prompt(), priorError)
		raw, err := wait(io.ctx)
		if err != nil {
			var zero T
			return zero, err
		}

		v, err := in.Normalize(raw)
		if err == nil {
			err = in.Validate(v)
		}
		if err != nil {
			priorError = err.Error()
			wf.emitter.EmitFieldRejected(io.ctx, wf, err)
			continue
		}

		crumbs := in.Format(v)
		wf.accept(crumbs)
		wf.emitter.EmitFieldAccepted(io.ctx, wf, crumbs)
		return v, nil
	}
}
