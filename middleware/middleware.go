// Package middleware provides composable middleware for workflow procedure
// runs. Middleware wraps a procedure from launch to return and can observe
// or alter its outcome (recover from panics, log, add tracing, etc.).
package middleware

import (
	"context"

	"github.com/xraph/dialog/workflow"
)

// Handler is the terminal function that runs the procedure.
type Handler = workflow.Handler

// Middleware wraps a Handler with cross-cutting logic.
// It receives the run context, the workflow being run, and the next
// handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware = workflow.Middleware

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(recover, tracing, logging) executes as:
//
//	recover → tracing → logging → procedure
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, wf *workflow.Workflow, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, wf, prev)
			}
		}
		return h(ctx)
	}
}
