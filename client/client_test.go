package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/api"
	"github.com/xraph/dialog/client"
	"github.com/xraph/dialog/dwp"
	"github.com/xraph/dialog/engine"
	"github.com/xraph/dialog/input"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

// ── Test Helpers ──────────────────────────────────────

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type greetInput struct {
	Greeting string `json:"greeting"`
}

// setupClientTest serves a hub with an in-process "users" namespace on an
// httptest server and returns a client for it.
func setupClientTest(t *testing.T) (*client.Client, *engine.Engine) {
	t.Helper()

	cfg := dialog.DefaultConfig()
	cfg.Namespace = "users"

	catalog := workflow.NewCatalog()
	workflow.Register(catalog, workflow.NewDefinition("create-user",
		func(io *workflow.IO, in greetInput) error {
			name, err := workflow.Ask(io, input.Text("Name").Validate(input.MinLength(3)))
			if err != nil {
				return err
			}
			if in.Greeting != "" {
				return io.Message(in.Greeting + ", " + name)
			}
			return nil
		},
		workflow.WithTitle("Create user"),
	))

	eng, err := engine.Build(cfg, engine.WithLogger(testLogger()), engine.WithCatalog(catalog))
	if err != nil {
		t.Fatalf("engine.Build: %v", err)
	}
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ts := httptest.NewServer(api.New(eng).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = eng.Stop(context.Background())
	})

	return client.New(ts.URL+"/", client.WithLogger(testLogger())), eng
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ── Tests ─────────────────────────────────────────────

func TestClient_Health(t *testing.T) {
	c, _ := setupClientTest(t)

	h, err := c.Health(testContext(t))
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" || h.Connections != 1 {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestClient_ListWorkflowTypes(t *testing.T) {
	c, _ := setupClientTest(t)
	ctx := testContext(t)

	types, err := c.ListWorkflowTypes(ctx)
	if err != nil {
		t.Fatalf("ListWorkflowTypes: %v", err)
	}
	if len(types) != 1 || types[0].ID != "users.create-user" {
		t.Errorf("unexpected types: %+v", types)
	}

	types, err = c.ListWorkflowTypes(ctx, "billing")
	if err != nil {
		t.Fatalf("ListWorkflowTypes(billing): %v", err)
	}
	if len(types) != 0 {
		t.Errorf("expected no types for billing, got %+v", types)
	}
}

func TestClient_WorkflowRoundTrip(t *testing.T) {
	c, _ := setupClientTest(t)
	ctx := testContext(t)

	st, err := c.StartWorkflow(ctx, "users.create-user", greetInput{Greeting: "Welcome"})
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	if f, ok := st.Prompt.(*prompt.Field); !ok || f.Label != "Name" {
		t.Fatalf("expected the Name field, got %#v", st.Prompt)
	}

	picked, err := c.PickUpWorkflow(ctx, st.WorkflowID)
	if err != nil {
		t.Fatalf("PickUpWorkflow: %v", err)
	}
	if picked.WorkflowID != st.WorkflowID {
		t.Errorf("pick-up id %q != %q", picked.WorkflowID, st.WorkflowID)
	}

	st, err = c.ContinueWorkflow(ctx, st.WorkflowID, "ab")
	if err != nil {
		t.Fatalf("ContinueWorkflow(ab): %v", err)
	}
	if st.Error == "" {
		t.Fatal("expected a rejection")
	}

	st, err = c.ContinueWorkflow(ctx, st.WorkflowID, "Ada")
	if err != nil {
		t.Fatalf("ContinueWorkflow(Ada): %v", err)
	}
	if m, ok := st.Prompt.(*prompt.Message); !ok || m.Text != "Welcome, Ada" {
		t.Fatalf("expected the greeting, got %#v", st.Prompt)
	}

	st, err = c.ContinueWorkflow(ctx, st.WorkflowID, nil)
	if err != nil {
		t.Fatalf("ContinueWorkflow(ack): %v", err)
	}
	if !st.Finished() {
		t.Fatalf("expected a terminal prompt, got %#v", st.Prompt)
	}

	_, err = c.ContinueWorkflow(ctx, st.WorkflowID, "again")
	if !errors.Is(err, dialog.ErrWorkflowFinished) {
		t.Errorf("expected ErrWorkflowFinished, got %v", err)
	}
}

func TestClient_ErrorsKeepSentinels(t *testing.T) {
	c, eng := setupClientTest(t)
	ctx := testContext(t)

	if _, err := c.StartWorkflow(ctx, "billing.refund", nil); !errors.Is(err, dialog.ErrNamespaceNotFound) {
		t.Errorf("unknown namespace: %v", err)
	}
	if _, err := c.StartWorkflow(ctx, "users.missing", nil); !errors.Is(err, dialog.ErrWorkflowTypeNotFound) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := c.PickUpWorkflow(ctx, "users.wf_nope"); !errors.Is(err, dialog.ErrWorkflowNotFound) {
		t.Errorf("unknown workflow: %v", err)
	}

	st, err := c.StartWorkflow(ctx, "users.create-user", nil)
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	conns, err := c.Connections(ctx)
	if err != nil {
		t.Fatalf("Connections: %v", err)
	}
	if len(conns) != 1 || conns[0].Namespace != "users" {
		t.Fatalf("unexpected connections: %+v", conns)
	}
	if err := eng.Hub().RemoveConnection(ctx, conns[0].ID); err != nil {
		t.Fatalf("RemoveConnection: %v", err)
	}
	if _, err := c.ContinueWorkflow(ctx, st.WorkflowID, "Ada"); !errors.Is(err, dialog.ErrUnreachable) {
		t.Errorf("orphaned workflow: %v", err)
	}
}

func TestClient_BadRequestIsRemoteError(t *testing.T) {
	c, _ := setupClientTest(t)

	_, err := c.StartWorkflow(testContext(t), "", nil)
	if !errors.Is(err, dwp.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := client.New(url, client.WithHTTPClient(&http.Client{Timeout: time.Second}))
	if _, err := c.Health(testContext(t)); err == nil {
		t.Fatal("expected an error from a closed server")
	}
}
