package dwp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/worker"
	"github.com/xraph/dialog/workflow"
)

// Compile-time interface check.
var _ worker.Conn = (*RemoteWorker)(nil)

// RemoteWorker is the hub-side view of a worker connected over DWP. Each
// call sends a request frame and waits for the response correlated by
// frame ID. Only listing is bounded by a timeout: start, pick-up and
// continue wait for the worker for as long as ctx allows, since a procedure
// may take arbitrarily long to reach its next question. Once the socket
// closes every call fails with dialog.ErrUnreachable.
type RemoteWorker struct {
	wire        *wire
	namespace   string
	listTimeout time.Duration
	logger      *slog.Logger

	pending sync.Map // frameID → chan *Frame

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newRemoteWorker(w *wire, namespace string, listTimeout time.Duration, logger *slog.Logger) *RemoteWorker {
	return &RemoteWorker{
		wire:        w,
		namespace:   namespace,
		listTimeout: listTimeout,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Namespace returns the namespace the worker registered under.
func (r *RemoteWorker) Namespace() string { return r.namespace }

// Done is closed once the connection is gone.
func (r *RemoteWorker) Done() <-chan struct{} { return r.done }

// ListWorkflowTypes implements worker.Conn. A worker that does not answer
// within the list timeout contributes an empty list.
func (r *RemoteWorker) ListWorkflowTypes(ctx context.Context) ([]prompt.WorkflowType, error) {
	resp, err := r.request(ctx, MethodWorkflowTypes, struct{}{}, r.listTimeout)
	if errors.Is(err, errRequestTimeout) {
		r.logger.Warn("worker did not list workflow types in time",
			slog.String("namespace", r.namespace),
			slog.Duration("timeout", r.listTimeout),
		)
		return []prompt.WorkflowType{}, nil
	}
	if err != nil {
		return nil, err
	}

	var out WorkflowTypesResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("dwp: decode workflow types: %w", err)
	}
	if out.Types == nil {
		out.Types = []prompt.WorkflowType{}
	}
	return out.Types, nil
}

// StartWorkflow implements worker.Conn.
func (r *RemoteWorker) StartWorkflow(ctx context.Context, typeID string, input json.RawMessage) (*workflow.State, error) {
	return r.stateRequest(ctx, MethodWorkflowStart, WorkflowStartRequest{TypeID: typeID, Input: input})
}

// PickUpWorkflow implements worker.Conn.
func (r *RemoteWorker) PickUpWorkflow(ctx context.Context, workflowID string) (*workflow.State, error) {
	return r.stateRequest(ctx, MethodWorkflowPickUp, WorkflowPickUpRequest{WorkflowID: workflowID})
}

// ContinueWorkflow implements worker.Conn.
func (r *RemoteWorker) ContinueWorkflow(ctx context.Context, workflowID string, response prompt.Response) (*workflow.State, error) {
	return r.stateRequest(ctx, MethodWorkflowContinue, WorkflowContinueRequest{WorkflowID: workflowID, Response: response})
}

func (r *RemoteWorker) stateRequest(ctx context.Context, method string, data any) (*workflow.State, error) {
	resp, err := r.request(ctx, method, data, 0)
	if err != nil {
		return nil, err
	}
	var st workflow.State
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		return nil, fmt.Errorf("dwp: decode %s response: %w", method, err)
	}
	return &st, nil
}

var errRequestTimeout = errors.New("dwp: request timed out")

// ── Request/Response ───────────────────────────

func (r *RemoteWorker) request(ctx context.Context, method string, data any, timeout time.Duration) (*Frame, error) {
	select {
	case <-r.done:
		return nil, r.unreachable()
	default:
	}

	frame, err := NewRequestFrame(method, data)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Frame, 1)
	r.pending.Store(frame.ID, ch)
	defer r.pending.Delete(frame.ID)

	if err := r.wire.write(frame); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", dialog.ErrUnreachable, method, err)
	}

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case resp := <-ch:
		if resp.Type == FrameErr {
			return nil, ErrorFromDetail(resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		return nil, fmt.Errorf("%w: %s after %s", errRequestTimeout, method, timeout)
	case <-r.done:
		return nil, r.unreachable()
	}
}

// resolve delivers a response or error frame to its waiting request.
// Frames nobody waits for are dropped.
func (r *RemoteWorker) resolve(f *Frame) bool {
	val, ok := r.pending.LoadAndDelete(f.CorrelID)
	if !ok {
		return false
	}
	ch := val.(chan *Frame) //nolint:errcheck // pending map always stores chan *Frame
	ch <- f
	return true
}

// close fails every outstanding and future request.
func (r *RemoteWorker) close(cause error) {
	r.closeOnce.Do(func() {
		r.closeErr = cause
		close(r.done)
	})
}

func (r *RemoteWorker) unreachable() error {
	if r.closeErr != nil {
		return fmt.Errorf("%w: %v", dialog.ErrUnreachable, r.closeErr)
	}
	return dialog.ErrUnreachable
}
