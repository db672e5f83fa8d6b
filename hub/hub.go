package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/worker"
	"github.com/xraph/dialog/workflow"
)

const tracerName = "github.com/xraph/dialog"

// entry is one registered connection. Bindings keep pointing at an entry
// after it is removed so orphaned workflows can be told apart from
// unknown ones.
type entry struct {
	id        string
	namespace string
	conn      worker.Conn
	removed   bool // guarded by Hub.mu
}

// ConnectionInfo describes a live connection.
type ConnectionInfo struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
}

// Hub is the namespace router. It is safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	order    []*entry          // live connections in registration order
	conns    map[string]*entry // connID → entry
	bindings map[string]*entry // local workflow id → entry
	limiters map[string]*rate.Limiter

	listTimeout time.Duration
	startLimit  rate.Limit
	startBurst  int
	emitter     Emitter
	tracer      trace.Tracer
	logger      *slog.Logger
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		conns:       make(map[string]*entry),
		bindings:    make(map[string]*entry),
		limiters:    make(map[string]*rate.Limiter),
		listTimeout: time.Second,
		startLimit:  rate.Inf,
		emitter:     noopEmitter{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer(tracerName)
	}
	return h
}

// ──────────────────────────────────────────────────
// Connections
// ──────────────────────────────────────────────────

// AddConnection registers conn under namespace and returns its connection id.
func (h *Hub) AddConnection(ctx context.Context, namespace string, conn worker.Conn) string {
	if namespace == "" {
		namespace = id.DefaultNamespace
	}
	e := &entry{
		id:        id.NewConnectionID().String(),
		namespace: namespace,
		conn:      conn,
	}

	h.mu.Lock()
	h.conns[e.id] = e
	h.order = append(h.order, e)
	h.mu.Unlock()

	h.logger.Info("worker connected",
		slog.String("conn_id", e.id),
		slog.String("namespace", namespace),
	)
	h.emitter.EmitWorkerConnected(ctx, e.id, namespace)
	return e.id
}

// RemoveConnection unregisters a connection. Workflows bound to it become
// unreachable.
func (h *Hub) RemoveConnection(ctx context.Context, connID string) error {
	h.mu.Lock()
	e, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", dialog.ErrConnectionNotFound, connID)
	}
	e.removed = true
	delete(h.conns, connID)
	for i, o := range h.order {
		if o == e {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
	orphaned := 0
	for _, b := range h.bindings {
		if b == e {
			orphaned++
		}
	}
	h.mu.Unlock()

	h.logger.Info("worker disconnected",
		slog.String("conn_id", connID),
		slog.String("namespace", e.namespace),
		slog.Int("orphaned", orphaned),
	)
	h.emitter.EmitWorkerDisconnected(ctx, connID, e.namespace, orphaned)
	return nil
}

// Connections returns the live connections in registration order.
func (h *Hub) Connections() []ConnectionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ConnectionInfo, len(h.order))
	for i, e := range h.order {
		out[i] = ConnectionInfo{ID: e.id, Namespace: e.namespace}
	}
	return out
}

// snapshot returns the live connections serving any of namespaces, or all
// of them when namespaces is empty.
func (h *Hub) snapshot(namespaces []string) []*entry {
	want := make(map[string]bool, len(namespaces))
	for _, ns := range namespaces {
		want[ns] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*entry, 0, len(h.order))
	for _, e := range h.order {
		if len(want) == 0 || want[e.namespace] {
			out = append(out, e)
		}
	}
	return out
}

// ──────────────────────────────────────────────────
// Routing
// ──────────────────────────────────────────────────

// ListWorkflowTypes asks every connection (optionally restricted to the
// given namespaces) for its workflow types in parallel. A connection that
// fails or exceeds the list timeout contributes nothing. Types are
// re-namespaced and de-duplicated keeping the first seen, with connections
// visited in registration order.
func (h *Hub) ListWorkflowTypes(ctx context.Context, namespaces ...string) ([]prompt.WorkflowType, error) {
	entries := h.snapshot(namespaces)
	results := make([][]prompt.WorkflowType, len(entries))

	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			listCtx, cancel := context.WithTimeout(ctx, h.listTimeout)
			defer cancel()

			types, err := e.conn.ListWorkflowTypes(listCtx)
			if err != nil {
				h.logger.Warn("list workflow types failed",
					slog.String("conn_id", e.id),
					slog.String("namespace", e.namespace),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = types
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	seen := make(map[string]bool)
	out := make([]prompt.WorkflowType, 0)
	for i, types := range results {
		ns := entries[i].namespace
		for _, t := range types {
			nsID, err := id.NewNamespaced(ns, t.ID)
			if err != nil {
				h.logger.Warn("skipping workflow type",
					slog.String("namespace", ns),
					slog.String("type_id", t.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			key := nsID.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			t.ID = key
			out = append(out, t)
		}
	}
	return out, nil
}

// StartWorkflow starts a workflow on the first connection serving the
// type's namespace and binds the new workflow to that connection.
func (h *Hub) StartWorkflow(ctx context.Context, nsTypeID string, input json.RawMessage) (*workflow.State, error) {
	typeID := id.ParseNamespaced(nsTypeID)

	ctx, span := h.startSpan(ctx, "dialog.hub.start", typeID.Namespace,
		attribute.String("dialog.workflow.type", typeID.Local))
	defer span.End()

	if !h.limiter(typeID.Namespace).Allow() {
		return nil, endSpan(span, fmt.Errorf("%w: namespace %s", dialog.ErrRateLimited, typeID.Namespace))
	}

	e := h.first(typeID.Namespace)
	if e == nil {
		return nil, endSpan(span, fmt.Errorf("%w: %s", dialog.ErrNamespaceNotFound, typeID.Namespace))
	}
	span.SetAttributes(attribute.String("dialog.conn.id", e.id))

	st, err := e.conn.StartWorkflow(ctx, typeID.Local, input)
	if err != nil {
		return nil, endSpan(span, err)
	}

	h.mu.Lock()
	h.bindings[st.WorkflowID] = e
	h.mu.Unlock()

	h.logger.Debug("workflow bound",
		slog.String("workflow_id", st.WorkflowID),
		slog.String("conn_id", e.id),
		slog.String("namespace", e.namespace),
	)
	return namespaced(e.namespace, st), endSpan(span, nil)
}

// PickUpWorkflow returns the current state of a namespaced workflow.
func (h *Hub) PickUpWorkflow(ctx context.Context, nsWorkflowID string) (*workflow.State, error) {
	wfID := id.ParseNamespaced(nsWorkflowID)

	ctx, span := h.startSpan(ctx, "dialog.hub.pickup", wfID.Namespace,
		attribute.String("dialog.workflow.id", wfID.Local))
	defer span.End()

	e, err := h.binding(wfID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	st, err := e.conn.PickUpWorkflow(ctx, wfID.Local)
	if err != nil {
		return nil, endSpan(span, err)
	}
	return namespaced(e.namespace, st), endSpan(span, nil)
}

// ContinueWorkflow submits an answer to a namespaced workflow and returns
// its next state.
func (h *Hub) ContinueWorkflow(ctx context.Context, nsWorkflowID string, response prompt.Response) (*workflow.State, error) {
	wfID := id.ParseNamespaced(nsWorkflowID)

	ctx, span := h.startSpan(ctx, "dialog.hub.continue", wfID.Namespace,
		attribute.String("dialog.workflow.id", wfID.Local))
	defer span.End()

	e, err := h.binding(wfID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	st, err := e.conn.ContinueWorkflow(ctx, wfID.Local, response)
	if err != nil {
		return nil, endSpan(span, err)
	}
	return namespaced(e.namespace, st), endSpan(span, nil)
}

// first returns the earliest registered live connection in namespace.
func (h *Hub) first(namespace string) *entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range h.order {
		if e.namespace == namespace {
			return e
		}
	}
	return nil
}

// binding resolves the connection a workflow is bound to.
func (h *Hub) binding(wfID id.Namespaced) (*entry, error) {
	h.mu.RLock()
	e, ok := h.bindings[wfID.Local]
	removed := ok && e.removed
	h.mu.RUnlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %s", dialog.ErrWorkflowNotFound, wfID)
	case e.namespace != wfID.Namespace:
		return nil, fmt.Errorf("%w: %s", dialog.ErrWorkflowNotFound, wfID)
	case removed:
		return nil, fmt.Errorf("%w: workflow %s was bound to %s", dialog.ErrUnreachable, wfID, e.id)
	}
	return e, nil
}

func (h *Hub) limiter(namespace string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[namespace]
	if !ok {
		l = rate.NewLimiter(h.startLimit, h.startBurst)
		h.limiters[namespace] = l
	}
	return l
}

func (h *Hub) startSpan(ctx context.Context, name, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("dialog.namespace", namespace))
	return h.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// namespaced returns a copy of st with its workflow id qualified by ns.
func namespaced(ns string, st *workflow.State) *workflow.State {
	out := *st
	out.WorkflowID = id.Namespaced{Namespace: ns, Local: st.WorkflowID}.String()
	return &out
}
