// Package dwp implements the Dialog Wire Protocol (DWP), the message-based
// protocol between a hub and its remote workers. DWP is transported over a
// WebSocket that the worker dials. After an auth handshake the hub sends
// request frames (list, start, pick up, continue) and the worker answers
// with response or error frames correlated by frame ID.
package dwp

import (
	"encoding/json"
	"time"

	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/prompt"
)

// FrameType identifies the frame category.
type FrameType string

const (
	FrameRequest  FrameType = "request"
	FrameResponse FrameType = "response"
	FrameErr      FrameType = "error"
	FramePing     FrameType = "ping"
	FramePong     FrameType = "pong"
)

// Frame is the DWP message envelope. Every message exchanged over
// the protocol is a Frame.
type Frame struct {
	// ID uniquely identifies this frame.
	ID string `json:"id" msgpack:"id"`

	// Type categorizes the frame.
	Type FrameType `json:"type" msgpack:"type"`

	// Method names the operation for request frames (e.g., "workflow.start").
	Method string `json:"method,omitempty" msgpack:"method,omitempty"`

	// CorrelID links a response to its originating request.
	CorrelID string `json:"correl_id,omitempty" msgpack:"correl_id,omitempty"`

	// Token carries auth credentials (only on the auth frame).
	Token string `json:"token,omitempty" msgpack:"token,omitempty"`

	// Data carries the method-specific payload. It is JSON in both codecs
	// so prompts keep their tagged encoding.
	Data json.RawMessage `json:"data,omitempty" msgpack:"data,omitempty"`

	// Error carries error details for error frames.
	Error *ErrorDetail `json:"error,omitempty" msgpack:"error,omitempty"`

	// Timestamp records when this frame was created.
	Timestamp time.Time `json:"ts" msgpack:"ts"`
}

// ErrorDetail describes an error in an error frame. Reason names the
// dialog sentinel the error wraps, if any.
type ErrorDetail struct {
	Code    int    `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	Reason  string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// ── Well-known methods ──────────────────────────────

const (
	// MethodAuth is the first frame a worker sends.
	MethodAuth = "auth"

	// Workflow methods, sent by the hub to a worker.
	MethodWorkflowTypes    = "workflow.types"
	MethodWorkflowStart    = "workflow.start"
	MethodWorkflowPickUp   = "workflow.pickup"
	MethodWorkflowContinue = "workflow.continue"
)

// ── Well-known error codes ──────────────────────────

const (
	ErrCodeBadRequest     = 400
	ErrCodeUnauthorized   = 401
	ErrCodeForbidden      = 403
	ErrCodeNotFound       = 404
	ErrCodeMethodNotFound = 405
	ErrCodeConflict       = 409
	ErrCodeTooManyRequest = 429
	ErrCodeInternal       = 500
	ErrCodeUnreachable    = 502
	ErrCodeUnavailable    = 503
)

// ── Request/Response payloads ───────────────────────

// AuthRequest is sent by a worker to authenticate and declare its namespace.
type AuthRequest struct {
	Token     string `json:"token"`
	Namespace string `json:"namespace"`
	Format    string `json:"format,omitempty"` // "json" (default) or "msgpack"
}

// AuthResponse is returned after successful authentication.
type AuthResponse struct {
	Format    string `json:"format"`
	Namespace string `json:"namespace"`
}

// WorkflowTypesResponse lists a worker's workflow types.
type WorkflowTypesResponse struct {
	Types []prompt.WorkflowType `json:"types"`
}

// WorkflowStartRequest starts a workflow by local type id.
type WorkflowStartRequest struct {
	TypeID string          `json:"type_id"`
	Input  json.RawMessage `json:"input,omitempty"`
}

// WorkflowPickUpRequest fetches the current state of a workflow.
type WorkflowPickUpRequest struct {
	WorkflowID string `json:"workflow_id"`
}

// WorkflowContinueRequest submits an answer.
type WorkflowContinueRequest struct {
	WorkflowID string          `json:"workflow_id"`
	Response   prompt.Response `json:"response"`
}

// NewRequestFrame creates a new request frame.
func NewRequestFrame(method string, data any) (*Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Frame{
		ID:        GenerateFrameID(),
		Type:      FrameRequest,
		Method:    method,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// NewResponseFrame creates a response to a request.
func NewResponseFrame(correlID string, data any) (*Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Frame{
		ID:        GenerateFrameID(),
		Type:      FrameResponse,
		CorrelID:  correlID,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// NewErrorFrame creates an error response to a request.
func NewErrorFrame(correlID string, code int, message string) *Frame {
	return &Frame{
		ID:       GenerateFrameID(),
		Type:     FrameErr,
		CorrelID: correlID,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewPingFrame creates a heartbeat frame.
func NewPingFrame() *Frame {
	return &Frame{
		ID:        GenerateFrameID(),
		Type:      FramePing,
		Timestamp: time.Now().UTC(),
	}
}

// NewPongFrame answers a ping, echoing its timestamp.
func NewPongFrame(ping *Frame) *Frame {
	return &Frame{
		ID:        GenerateFrameID(),
		Type:      FramePong,
		CorrelID:  ping.ID,
		Timestamp: ping.Timestamp,
	}
}

// GenerateFrameID returns a new unique frame ID.
func GenerateFrameID() string {
	return id.NewFrameID().String()
}

// mustResponseFrame creates a response frame, returning an error frame on
// marshal failure.
func mustResponseFrame(frameID string, data any) *Frame {
	resp, err := NewResponseFrame(frameID, data)
	if err != nil {
		return NewErrorFrame(frameID, ErrCodeInternal, "marshal response: "+err.Error())
	}
	return resp
}
