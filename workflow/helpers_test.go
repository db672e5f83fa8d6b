package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEmitter counts lifecycle events.
type recordingEmitter struct {
	mu        sync.Mutex
	started   int
	accepted  int
	rejected  int
	completed int
	failed    int
	lastErr   error
}

func (e *recordingEmitter) EmitWorkflowStarted(context.Context, *workflow.Workflow) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started++
}

func (e *recordingEmitter) EmitFieldAccepted(context.Context, *workflow.Workflow, []prompt.Breadcrumb) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accepted++
}

func (e *recordingEmitter) EmitFieldRejected(context.Context, *workflow.Workflow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected++
}

func (e *recordingEmitter) EmitWorkflowCompleted(context.Context, *workflow.Workflow, time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed++
}

func (e *recordingEmitter) EmitWorkflowFailed(_ context.Context, _ *workflow.Workflow, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed++
	e.lastErr = err
}

func (e *recordingEmitter) counts() (started, accepted, rejected, completed, failed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started, e.accepted, e.rejected, e.completed, e.failed
}

// newTestRegistry registers defs into a fresh catalog and returns a
// registry over it.
func newTestRegistry(register func(c *workflow.Catalog), opts ...workflow.Option) *workflow.Registry {
	c := workflow.NewCatalog()
	register(c)
	opts = append([]workflow.Option{workflow.WithLogger(testLogger())}, opts...)
	return workflow.NewRegistry(c, opts...)
}

func testContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
