package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/bridge"
	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/prompt"
)

// Definition is a typed workflow definition with a handler function.
// T is the start input type; it must be JSON-decodable.
type Definition[T any] struct {
	// Name is the unique identifier for this workflow type.
	Name string

	// Meta is the catalogue entry shown to operators. Meta.ID is Name.
	Meta prompt.WorkflowType

	// Handler is the procedure. It asks questions through io.
	Handler func(io *IO, input T) error
}

// DefinitionOption sets catalogue metadata on a Definition.
type DefinitionOption func(*prompt.WorkflowType)

// WithTitle sets the display title.
func WithTitle(title string) DefinitionOption {
	return func(m *prompt.WorkflowType) { m.Title = title }
}

// WithDescription sets the description.
func WithDescription(description string) DefinitionOption {
	return func(m *prompt.WorkflowType) { m.Description = description }
}

// WithIcon sets the icon name.
func WithIcon(icon string) DefinitionOption {
	return func(m *prompt.WorkflowType) { m.Icon = icon }
}

// WithCategory sets the category used to group workflow types.
func WithCategory(category string) DefinitionOption {
	return func(m *prompt.WorkflowType) { m.Category = category }
}

// NewDefinition creates a typed workflow definition. The title defaults
// to the name.
func NewDefinition[T any](name string, handler func(io *IO, input T) error, opts ...DefinitionOption) *Definition[T] {
	meta := prompt.WorkflowType{ID: name, Title: name}
	for _, opt := range opts {
		opt(&meta)
	}
	meta.ID = name
	return &Definition[T]{Name: name, Meta: meta, Handler: handler}
}

// Workflow is one running instance of a definition. All exported methods
// are safe for concurrent use.
type Workflow struct {
	id        id.ID
	name      string
	title     string
	createdAt time.Time

	bridge  *bridge.Bridge
	emitter Emitter
	logger  *slog.Logger
	cancel  context.CancelFunc

	mu          sync.Mutex
	breadcrumbs []prompt.Breadcrumb
	lastError   string
	awaiting    bool
	finished    bool
	err         error
}

func newWorkflow(meta prompt.WorkflowType, emitter Emitter, logger *slog.Logger) *Workflow {
	return &Workflow{
		id:        id.NewWorkflowID(),
		name:      meta.ID,
		title:     meta.Title,
		createdAt: time.Now().UTC(),
		bridge:    bridge.New(),
		emitter:   emitter,
		logger:    logger,
	}
}

// ID returns the workflow id.
func (w *Workflow) ID() id.ID { return w.id }

// Name returns the workflow type name.
func (w *Workflow) Name() string { return w.name }

// Title returns the workflow type's display title.
func (w *Workflow) Title() string { return w.title }

// CreatedAt returns the start time.
func (w *Workflow) CreatedAt() time.Time { return w.createdAt }

// Finished reports whether the terminal prompt has been pushed.
func (w *Workflow) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

// Err returns the error the procedure ended with, if any.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Breadcrumbs returns a copy of the audit trail.
func (w *Workflow) Breadcrumbs() []prompt.Breadcrumb {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]prompt.Breadcrumb(nil), w.breadcrumbs...)
}

// start launches the procedure and waits for its first question.
func (w *Workflow) start(ctx, runCtx context.Context, runner RunnerFunc, input json.RawMessage, mw Middleware) (*State, error) {
	w.emitter.EmitWorkflowStarted(runCtx, w)
	go w.run(runCtx, runner, input, mw)
	return w.lastResponse(ctx)
}

func (w *Workflow) run(ctx context.Context, runner RunnerFunc, input json.RawMessage, mw Middleware) {
	start := time.Now()

	handler := func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic: %v", dialog.ErrProcedureFailed, r)
			}
		}()
		return runner(&IO{ctx: ctx, wf: w}, input)
	}

	var err error
	if mw != nil {
		err = mw(ctx, w, handler)
	} else {
		err = handler(ctx)
	}
	w.finish(ctx, err, time.Since(start))

	if w.cancel != nil {
		w.cancel()
	}
}

// finish pushes exactly one terminal prompt and only then marks the
// workflow finished.
func (w *Workflow) finish(ctx context.Context, err error, elapsed time.Duration) {
	w.mu.Lock()
	if err != nil {
		w.err = err
		w.lastError = err.Error()
		w.bridge.AskQuestion(prompt.Failure(err.Error()))
	} else {
		w.lastError = ""
		w.bridge.AskQuestion(prompt.Success(w.title + " completed"))
	}
	w.awaiting = false
	w.finished = true
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("workflow failed",
			slog.String("workflow_id", w.id.String()),
			slog.String("workflow_name", w.name),
			slog.String("error", err.Error()),
		)
		w.emitter.EmitWorkflowFailed(ctx, w, err)
		return
	}
	w.emitter.EmitWorkflowCompleted(ctx, w, elapsed)
}

// ask publishes p, with priorError shown next to it, and returns the
// deferred answer.
func (w *Workflow) ask(p prompt.Prompt, priorError string) func(context.Context) (prompt.Response, error) {
	w.mu.Lock()
	w.lastError = priorError
	w.awaiting = true
	answer := w.bridge.AskQuestion(p)
	w.mu.Unlock()
	return answer.Wait
}

func (w *Workflow) accept(crumbs []prompt.Breadcrumb) {
	w.mu.Lock()
	w.breadcrumbs = append(w.breadcrumbs, crumbs...)
	w.mu.Unlock()
}

// continueWith feeds r to the waiting procedure and blocks until its next
// question or terminal prompt.
func (w *Workflow) continueWith(ctx context.Context, r prompt.Response) (*State, error) {
	w.mu.Lock()
	if w.finished {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", dialog.ErrWorkflowFinished, w.id)
	}
	if !w.awaiting {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", dialog.ErrNotAwaitingAnswer, w.id)
	}
	w.awaiting = false
	w.bridge.SubmitAnswer(r)
	next := w.bridge.AwaitQuestion()
	w.mu.Unlock()

	p, err := next.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return w.state(p), nil
}

// lastResponse returns the outstanding question without advancing.
func (w *Workflow) lastResponse(ctx context.Context) (*State, error) {
	p, err := w.bridge.AwaitQuestion().Wait(ctx)
	if err != nil {
		return nil, err
	}
	return w.state(p), nil
}

func (w *Workflow) state(p prompt.Prompt) *State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &State{
		WorkflowID:  w.id.String(),
		Prompt:      p,
		Error:       w.lastError,
		Breadcrumbs: append([]prompt.Breadcrumb{}, w.breadcrumbs...),
	}
}
