package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/workflow"
)

// Recover returns middleware that recovers from panics in the procedure.
// Panics are converted to dialog.ErrProcedureFailed and logged with a
// stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, wf *workflow.Workflow, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("workflow procedure panicked",
					slog.String("workflow_name", wf.Name()),
					slog.String("workflow_id", wf.ID().String()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("%w: panic in workflow %s: %v", dialog.ErrProcedureFailed, wf.Name(), r)
			}
		}()
		return next(ctx)
	}
}
