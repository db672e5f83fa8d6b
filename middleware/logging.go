package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/dialog/workflow"
)

// Logging returns middleware that logs procedure start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, wf *workflow.Workflow, next Handler) error {
		logger.Info("workflow started",
			slog.String("workflow_name", wf.Name()),
			slog.String("workflow_id", wf.ID().String()),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("workflow failed",
				slog.String("workflow_name", wf.Name()),
				slog.String("workflow_id", wf.ID().String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("workflow completed",
				slog.String("workflow_name", wf.Name()),
				slog.String("workflow_id", wf.ID().String()),
				slog.Duration("elapsed", elapsed),
				slog.Int("breadcrumbs", len(wf.Breadcrumbs())),
			)
		}

		return err
	}
}
