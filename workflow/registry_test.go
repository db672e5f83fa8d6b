package workflow_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/input"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

type userInput struct {
	Greeting string `json:"greeting"`
}

// createUser asks for a name (min 3 chars) and an age, then shows a message.
func createUser(c *workflow.Catalog) {
	workflow.Register(c, workflow.NewDefinition("create-user",
		func(io *workflow.IO, in userInput) error {
			name, err := workflow.Ask(io, input.Text("Name").Validate(input.MinLength(3)))
			if err != nil {
				return err
			}
			if _, err := workflow.Ask(io, input.Number("Age")); err != nil {
				return err
			}
			return io.Message(in.Greeting + " " + name)
		},
		workflow.WithTitle("Create user"),
	))
}

func fieldLabel(t *testing.T, p prompt.Prompt) string {
	t.Helper()
	f, ok := p.(*prompt.Field)
	if !ok {
		t.Fatalf("prompt = %T, want *prompt.Field", p)
	}
	return f.Label
}

func TestRegistry_StartUnknownType(t *testing.T) {
	r := newTestRegistry(createUser)
	_, err := r.Start(context.Background(), "nope", nil)
	if !errors.Is(err, dialog.ErrWorkflowTypeNotFound) {
		t.Fatalf("err = %v, want ErrWorkflowTypeNotFound", err)
	}
}

func TestRegistry_UnknownWorkflow(t *testing.T) {
	r := newTestRegistry(createUser)
	ctx := context.Background()

	if _, err := r.PickUp(ctx, "wf_missing"); !errors.Is(err, dialog.ErrWorkflowNotFound) {
		t.Errorf("PickUp err = %v, want ErrWorkflowNotFound", err)
	}
	if _, err := r.Continue(ctx, "wf_missing", "x"); !errors.Is(err, dialog.ErrWorkflowNotFound) {
		t.Errorf("Continue err = %v, want ErrWorkflowNotFound", err)
	}
}

func TestRegistry_FullRun(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	em := &recordingEmitter{}
	r := newTestRegistry(createUser, workflow.WithEmitter(em))

	st, err := r.Start(ctx, "create-user", json.RawMessage(`{"greeting":"Welcome"}`))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if fieldLabel(t, st.Prompt) != "Name" {
		t.Fatalf("first prompt = %+v", st.Prompt)
	}

	st, err = r.Continue(ctx, st.WorkflowID, "Ada")
	if err != nil {
		t.Fatalf("continue name: %v", err)
	}
	if fieldLabel(t, st.Prompt) != "Age" {
		t.Fatalf("second prompt = %+v", st.Prompt)
	}

	st, err = r.Continue(ctx, st.WorkflowID, "36")
	if err != nil {
		t.Fatalf("continue age: %v", err)
	}
	msg, ok := st.Prompt.(*prompt.Message)
	if !ok || msg.Text != "Welcome Ada" {
		t.Fatalf("third prompt = %#v, want message", st.Prompt)
	}
	if len(st.Breadcrumbs) != 2 || st.Breadcrumbs[1] != (prompt.Breadcrumb{Key: "Age", Value: "36"}) {
		t.Errorf("breadcrumbs = %v", st.Breadcrumbs)
	}

	st, err = r.Continue(ctx, st.WorkflowID, nil)
	if err != nil {
		t.Fatalf("acknowledge message: %v", err)
	}
	term, ok := st.Prompt.(*prompt.Terminal)
	if !ok || term.Status != prompt.StatusSuccess {
		t.Fatalf("final prompt = %#v, want success", st.Prompt)
	}
	if len(st.Breadcrumbs) != 2 {
		t.Errorf("message acknowledgement should not add a breadcrumb: %v", st.Breadcrumbs)
	}

	wf, _ := r.Get(st.WorkflowID)
	if !wf.Finished() {
		t.Error("workflow should be finished")
	}

	started, accepted, rejected, completed, failed := em.counts()
	if started != 1 || accepted != 2 || rejected != 0 || completed != 1 || failed != 0 {
		t.Errorf("events = %d/%d/%d/%d/%d", started, accepted, rejected, completed, failed)
	}
}

func TestRegistry_RejectedAnswerReasksSameField(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	em := &recordingEmitter{}
	r := newTestRegistry(createUser, workflow.WithEmitter(em))

	st, _ := r.Start(ctx, "create-user", nil)
	id := st.WorkflowID

	st, err := r.Continue(ctx, id, "ab")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if fieldLabel(t, st.Prompt) != "Name" {
		t.Fatalf("rejected answer should re-ask Name, got %+v", st.Prompt)
	}
	if st.Error == "" {
		t.Error("expected a rejection message")
	}
	if len(st.Breadcrumbs) != 0 {
		t.Errorf("rejection wrote breadcrumbs: %v", st.Breadcrumbs)
	}

	st, err = r.Continue(ctx, id, "abc")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if fieldLabel(t, st.Prompt) != "Age" {
		t.Fatalf("accepted answer should advance, got %+v", st.Prompt)
	}
	if st.Error != "" {
		t.Errorf("error should clear on a new field, got %q", st.Error)
	}
	if len(st.Breadcrumbs) != 1 || st.Breadcrumbs[0].Value != "abc" {
		t.Errorf("breadcrumbs = %v, want exactly [abc]", st.Breadcrumbs)
	}

	// Normalization failures take the same retry path.
	st, err = r.Continue(ctx, id, "not a number")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if fieldLabel(t, st.Prompt) != "Age" || st.Error == "" {
		t.Errorf("malformed number should re-ask Age with an error, got %+v / %q", st.Prompt, st.Error)
	}
	if len(st.Breadcrumbs) != 1 {
		t.Errorf("breadcrumbs = %v", st.Breadcrumbs)
	}

	_, accepted, rejected, _, _ := em.counts()
	if accepted != 1 || rejected != 2 {
		t.Errorf("accepted/rejected = %d/%d, want 1/2", accepted, rejected)
	}
}

func TestRegistry_PickUpIsIdempotent(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	r := newTestRegistry(createUser)
	st, _ := r.Start(ctx, "create-user", nil)
	if _, err := r.Continue(ctx, st.WorkflowID, "Ada"); err != nil {
		t.Fatalf("continue: %v", err)
	}

	first, err := r.PickUp(ctx, st.WorkflowID)
	if err != nil {
		t.Fatalf("pick up: %v", err)
	}
	second, err := r.PickUp(ctx, st.WorkflowID)
	if err != nil {
		t.Fatalf("pick up: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Errorf("pick-up not idempotent:\n%s\n%s", a, b)
	}
	if fieldLabel(t, first.Prompt) != "Age" {
		t.Errorf("pick-up prompt = %+v", first.Prompt)
	}
}

func TestRegistry_ProcedureErrorIsTerminal(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	boom := errors.New("database unavailable")
	em := &recordingEmitter{}
	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("fail", func(io *workflow.IO, _ struct{}) error {
			if _, err := workflow.Ask(io, input.Boolean("Sure?")); err != nil {
				return err
			}
			return boom
		}))
	}, workflow.WithEmitter(em))

	st, _ := r.Start(ctx, "fail", nil)
	st, err := r.Continue(ctx, st.WorkflowID, true)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}

	term, ok := st.Prompt.(*prompt.Terminal)
	if !ok || term.Status != prompt.StatusError || term.Message != boom.Error() {
		t.Fatalf("prompt = %#v, want error terminal", st.Prompt)
	}

	wf, _ := r.Get(st.WorkflowID)
	if !wf.Finished() || !errors.Is(wf.Err(), boom) {
		t.Errorf("finished=%v err=%v", wf.Finished(), wf.Err())
	}

	if _, err := r.Continue(ctx, st.WorkflowID, true); !errors.Is(err, dialog.ErrWorkflowFinished) {
		t.Errorf("continue after finish err = %v, want ErrWorkflowFinished", err)
	}

	again, _ := r.PickUp(ctx, st.WorkflowID)
	if again.Prompt != st.Prompt {
		t.Error("terminal prompt should be absorbing")
	}

	_, _, _, completed, failed := em.counts()
	if completed != 0 || failed != 1 {
		t.Errorf("completed/failed = %d/%d, want 0/1", completed, failed)
	}
}

func TestRegistry_PanicIsTerminal(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("panic", func(*workflow.IO, struct{}) error {
			panic("kaboom")
		}))
	})

	st, err := r.Start(ctx, "panic", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	term, ok := st.Prompt.(*prompt.Terminal)
	if !ok || term.Status != prompt.StatusError {
		t.Fatalf("prompt = %#v, want error terminal", st.Prompt)
	}

	wf, _ := r.Get(st.WorkflowID)
	if !errors.Is(wf.Err(), dialog.ErrProcedureFailed) {
		t.Errorf("err = %v, want ErrProcedureFailed", wf.Err())
	}
}

func TestRegistry_NoInteractiveSteps(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("noop", func(*workflow.IO, struct{}) error { return nil }))
	})

	st, err := r.Start(ctx, "noop", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !st.Finished() {
		t.Fatalf("prompt = %#v, want terminal", st.Prompt)
	}
}

func TestRegistry_BadInputFails(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	r := newTestRegistry(createUser)
	st, err := r.Start(ctx, "create-user", json.RawMessage(`{"greeting":42}`))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if term, ok := st.Prompt.(*prompt.Terminal); !ok || term.Status != prompt.StatusError {
		t.Errorf("prompt = %#v, want error terminal", st.Prompt)
	}
}

func TestRegistry_ConcurrentContinueRejected(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	proceeding := make(chan struct{})
	release := make(chan struct{})
	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("slow", func(io *workflow.IO, _ struct{}) error {
			if _, err := workflow.Ask(io, input.Text("First")); err != nil {
				return err
			}
			close(proceeding)
			<-release
			_, err := workflow.Ask(io, input.Text("Second"))
			return err
		}))
	})

	st, _ := r.Start(ctx, "slow", nil)

	done := make(chan *workflow.State, 1)
	go func() {
		next, _ := r.Continue(ctx, st.WorkflowID, "one")
		done <- next
	}()

	<-proceeding
	if _, err := r.Continue(ctx, st.WorkflowID, "two"); !errors.Is(err, dialog.ErrNotAwaitingAnswer) {
		t.Errorf("concurrent continue err = %v, want ErrNotAwaitingAnswer", err)
	}

	close(release)
	select {
	case next := <-done:
		if next == nil || fieldLabel(t, next.Prompt) != "Second" {
			t.Errorf("first continuation got %+v", next)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first continuation never completed")
	}
}

func TestRegistry_Form(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	var got map[string]any
	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("form", func(io *workflow.IO, _ struct{}) error {
			v, err := workflow.Ask(io, input.Form(map[string]input.Descriptor{
				"name":  input.Text("Name").Validate(input.MinLength(3)),
				"admin": input.Boolean("Admin"),
			}))
			got = v
			return err
		}))
	})

	st, _ := r.Start(ctx, "form", nil)
	if _, ok := st.Prompt.(*prompt.Form); !ok {
		t.Fatalf("prompt = %T, want form", st.Prompt)
	}

	st, _ = r.Continue(ctx, st.WorkflowID, map[string]any{"name": "x", "admin": "false"})
	if st.Error != "• name: must be at least 3 characters" {
		t.Errorf("error = %q", st.Error)
	}

	st, _ = r.Continue(ctx, st.WorkflowID, map[string]any{"name": "Ada", "admin": "false"})
	if !st.Finished() {
		t.Fatalf("prompt = %#v, want terminal", st.Prompt)
	}
	if len(st.Breadcrumbs) != 2 {
		t.Errorf("breadcrumbs = %v, want 2", st.Breadcrumbs)
	}
	if input.Value[string](got, "name") != "Ada" || input.Value[bool](got, "admin") {
		t.Errorf("form value = %v", got)
	}
}

func TestRegistry_Middleware(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	var wrapped string
	mw := func(ctx context.Context, wf *workflow.Workflow, next workflow.Handler) error {
		wrapped = wf.Name()
		return next(ctx)
	}
	r := newTestRegistry(func(c *workflow.Catalog) {
		workflow.Register(c, workflow.NewDefinition("noop", func(*workflow.IO, struct{}) error { return nil }))
	}, workflow.WithMiddleware(mw))

	if _, err := r.Start(ctx, "noop", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if wrapped != "noop" {
		t.Errorf("middleware saw %q, want noop", wrapped)
	}
}

func TestRegistry_Close(t *testing.T) {
	ctx, cancel := testContext()
	defer cancel()

	r := newTestRegistry(createUser)
	st, _ := r.Start(ctx, "create-user", nil)

	r.Close()

	if _, err := r.Start(ctx, "create-user", nil); !errors.Is(err, dialog.ErrRegistryClosed) {
		t.Errorf("start after close err = %v, want ErrRegistryClosed", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		wf, _ := r.Get(st.WorkflowID)
		if wf.Finished() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("closed registry did not stop the procedure")
		}
		time.Sleep(5 * time.Millisecond)
	}

	final, err := r.PickUp(ctx, st.WorkflowID)
	if err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if term, ok := final.Prompt.(*prompt.Terminal); !ok || term.Status != prompt.StatusError {
		t.Errorf("prompt = %#v, want error terminal", final.Prompt)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestState_JSONRoundTrip(t *testing.T) {
	st := &workflow.State{
		WorkflowID:  "wf_1",
		Prompt:      &prompt.Field{Kind: prompt.KindText, Label: "Name"},
		Error:       "too short",
		Breadcrumbs: []prompt.Breadcrumb{{Key: "a", Value: "b"}},
	}
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back workflow.State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.WorkflowID != "wf_1" || back.Error != "too short" || len(back.Breadcrumbs) != 1 {
		t.Errorf("state = %+v", back)
	}
	if fieldLabel(t, back.Prompt) != "Name" {
		t.Errorf("prompt = %+v", back.Prompt)
	}
}
