package dwp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/xraph/dialog/worker"
)

// Handler dispatches hub request frames to a worker connection, usually a
// worker.Local over the process's workflow registry.
type Handler struct {
	conn   worker.Conn
	logger *slog.Logger
}

// NewHandler creates a new DWP method handler.
func NewHandler(conn worker.Conn, logger *slog.Logger) *Handler {
	return &Handler{conn: conn, logger: logger}
}

// Handle processes a single DWP request frame and returns a response.
func (h *Handler) Handle(ctx context.Context, frame *Frame) *Frame {
	switch frame.Method {
	case MethodWorkflowTypes:
		return h.handleWorkflowTypes(ctx, frame)
	case MethodWorkflowStart:
		return h.handleWorkflowStart(ctx, frame)
	case MethodWorkflowPickUp:
		return h.handleWorkflowPickUp(ctx, frame)
	case MethodWorkflowContinue:
		return h.handleWorkflowContinue(ctx, frame)
	default:
		return NewErrorFrame(frame.ID, ErrCodeMethodNotFound, "unknown method: "+frame.Method)
	}
}

func (h *Handler) handleWorkflowTypes(ctx context.Context, frame *Frame) *Frame {
	types, err := h.conn.ListWorkflowTypes(ctx)
	if err != nil {
		return NewErrorFrameFromError(frame.ID, err)
	}
	return mustResponseFrame(frame.ID, WorkflowTypesResponse{Types: types})
}

func (h *Handler) handleWorkflowStart(ctx context.Context, frame *Frame) *Frame {
	var req WorkflowStartRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil {
		return NewErrorFrame(frame.ID, ErrCodeBadRequest, "invalid request: "+err.Error())
	}

	st, err := h.conn.StartWorkflow(ctx, req.TypeID, req.Input)
	if err != nil {
		h.logger.Debug("workflow start failed",
			slog.String("type_id", req.TypeID),
			slog.String("error", err.Error()),
		)
		return NewErrorFrameFromError(frame.ID, err)
	}
	return mustResponseFrame(frame.ID, st)
}

func (h *Handler) handleWorkflowPickUp(ctx context.Context, frame *Frame) *Frame {
	var req WorkflowPickUpRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil {
		return NewErrorFrame(frame.ID, ErrCodeBadRequest, "invalid request: "+err.Error())
	}

	st, err := h.conn.PickUpWorkflow(ctx, req.WorkflowID)
	if err != nil {
		return NewErrorFrameFromError(frame.ID, err)
	}
	return mustResponseFrame(frame.ID, st)
}

func (h *Handler) handleWorkflowContinue(ctx context.Context, frame *Frame) *Frame {
	var req WorkflowContinueRequest
	if err := json.Unmarshal(frame.Data, &req); err != nil {
		return NewErrorFrame(frame.ID, ErrCodeBadRequest, "invalid request: "+err.Error())
	}

	st, err := h.conn.ContinueWorkflow(ctx, req.WorkflowID, req.Response)
	if err != nil {
		return NewErrorFrameFromError(frame.ID, err)
	}
	return mustResponseFrame(frame.ID, st)
}
