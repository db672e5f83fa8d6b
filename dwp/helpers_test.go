package dwp_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/dialog/input"
	"github.com/xraph/dialog/worker"
	"github.com/xraph/dialog/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLocalWorker serves a create-user workflow that asks for a name of at
// least three characters.
func newLocalWorker() *worker.Local {
	catalog := workflow.NewCatalog()
	workflow.Register(catalog, workflow.NewDefinition("create-user",
		func(io *workflow.IO, _ struct{}) error {
			_, err := workflow.Ask(io, input.Text("Name").Validate(func(s string) error {
				if len(s) < 3 {
					return input.Invalid("name must be at least 3 characters")
				}
				return nil
			}))
			return err
		},
		workflow.WithTitle("Create user"),
	))
	return worker.NewLocal(workflow.NewRegistry(catalog, workflow.WithLogger(testLogger())))
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
