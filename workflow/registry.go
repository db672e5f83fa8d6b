package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/prompt"
)

// Registry is the keyed store of running workflows. Entries are never
// removed while the registry lives; finished workflows stay queryable for
// their terminal prompt. It is safe for concurrent use.
type Registry struct {
	catalog    *Catalog
	emitter    Emitter
	middleware Middleware
	logger     *slog.Logger

	mu        sync.RWMutex
	workflows map[string]*Workflow
	closed    bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithEmitter sets the lifecycle event receiver.
func WithEmitter(e Emitter) Option {
	return func(r *Registry) { r.emitter = e }
}

// WithMiddleware wraps every procedure run in mw.
func WithMiddleware(mw Middleware) Option {
	return func(r *Registry) { r.middleware = mw }
}

// NewRegistry creates an empty registry that starts definitions from catalog.
func NewRegistry(catalog *Catalog, opts ...Option) *Registry {
	r := &Registry{
		catalog:   catalog,
		emitter:   noopEmitter{},
		logger:    slog.Default(),
		workflows: make(map[string]*Workflow),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the definition catalog.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// ListWorkflowTypes returns the catalogue entries.
func (r *Registry) ListWorkflowTypes(context.Context) ([]prompt.WorkflowType, error) {
	return r.catalog.Types(), nil
}

// Start launches a new workflow of type typeID and returns its first
// question. The procedure keeps running after ctx is done; ctx only bounds
// the wait for the first question.
func (r *Registry) Start(ctx context.Context, typeID string, input json.RawMessage) (*State, error) {
	runner, meta, ok := r.catalog.Get(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dialog.ErrWorkflowTypeNotFound, typeID)
	}

	wf := newWorkflow(meta, r.emitter, r.logger)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	wf.cancel = cancel

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return nil, dialog.ErrRegistryClosed
	}
	r.workflows[wf.id.String()] = wf
	r.mu.Unlock()

	r.logger.Debug("workflow started",
		slog.String("workflow_id", wf.id.String()),
		slog.String("workflow_name", typeID),
	)

	return wf.start(ctx, runCtx, runner, input, r.middleware)
}

// PickUp returns the current question of workflowID without advancing it.
// Calling it repeatedly yields the same state.
func (r *Registry) PickUp(ctx context.Context, workflowID string) (*State, error) {
	wf, err := r.lookup(workflowID)
	if err != nil {
		return nil, err
	}
	return wf.lastResponse(ctx)
}

// Continue answers the current question of workflowID and returns the
// next one. It fails with dialog.ErrNotAwaitingAnswer while another
// continuation of the same workflow is in flight, and with
// dialog.ErrWorkflowFinished once the workflow has ended.
func (r *Registry) Continue(ctx context.Context, workflowID string, response prompt.Response) (*State, error) {
	wf, err := r.lookup(workflowID)
	if err != nil {
		return nil, err
	}
	return wf.continueWith(ctx, response)
}

// Get returns the workflow with the given id.
func (r *Registry) Get(workflowID string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[workflowID]
	return wf, ok
}

// Len returns the number of workflows, running or finished.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}

// Close cancels every running procedure and rejects further starts.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	workflows := make([]*Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		workflows = append(workflows, wf)
	}
	r.mu.Unlock()

	for _, wf := range workflows {
		wf.cancel()
	}
}

func (r *Registry) lookup(workflowID string) (*Workflow, error) {
	wf, ok := r.Get(workflowID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", dialog.ErrWorkflowNotFound, workflowID)
	}
	return wf, nil
}
