package dwp

import (
	"errors"
	"fmt"

	"github.com/xraph/dialog"
)

// errorKind ties a dialog sentinel to its wire code and reason.
type errorKind struct {
	err    error
	code   int
	reason string
}

var errorKinds = []errorKind{
	{dialog.ErrWorkflowNotFound, ErrCodeNotFound, "workflow_not_found"},
	{dialog.ErrWorkflowTypeNotFound, ErrCodeNotFound, "workflow_type_not_found"},
	{dialog.ErrNamespaceNotFound, ErrCodeNotFound, "namespace_not_found"},
	{dialog.ErrNotAwaitingAnswer, ErrCodeConflict, "not_awaiting_answer"},
	{dialog.ErrWorkflowFinished, ErrCodeConflict, "workflow_finished"},
	{dialog.ErrUnauthorized, ErrCodeUnauthorized, "unauthorized"},
	{dialog.ErrRateLimited, ErrCodeTooManyRequest, "rate_limited"},
	{dialog.ErrUnreachable, ErrCodeUnreachable, "unreachable"},
	{dialog.ErrRegistryClosed, ErrCodeUnavailable, "registry_closed"},
	{dialog.ErrProcedureFailed, ErrCodeInternal, "procedure_failed"},
}

// ErrRemote is wrapped by errors that came back from the peer without a
// known reason.
var ErrRemote = errors.New("dwp: remote error")

// NewErrorFrameFromError builds an error frame for err, carrying the code
// and reason of the first dialog sentinel it wraps.
func NewErrorFrameFromError(correlID string, err error) *Frame {
	f := NewErrorFrame(correlID, ErrCodeInternal, err.Error())
	f.Error = DetailFromError(err)
	return f
}

// DetailFromError describes err with the code and reason of the first
// dialog sentinel it wraps, or ErrCodeInternal with no reason.
func DetailFromError(err error) *ErrorDetail {
	d := &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			d.Code = k.code
			d.Reason = k.reason
			break
		}
	}
	return d
}

// ErrorFromDetail maps an error frame's detail back to an error wrapping
// the matching dialog sentinel, so errors.Is works across the wire.
func ErrorFromDetail(d *ErrorDetail) error {
	if d == nil {
		return fmt.Errorf("%w: missing error detail", ErrRemote)
	}
	for _, k := range errorKinds {
		if d.Reason != "" && d.Reason == k.reason {
			return remoteError{sentinel: k.err, message: d.Message}
		}
	}
	switch d.Code {
	case ErrCodeUnauthorized:
		return remoteError{sentinel: dialog.ErrUnauthorized, message: d.Message}
	case ErrCodeUnreachable:
		return remoteError{sentinel: dialog.ErrUnreachable, message: d.Message}
	}
	return fmt.Errorf("%w (%d): %s", ErrRemote, d.Code, d.Message)
}

// remoteError keeps the peer's message verbatim while matching a sentinel.
type remoteError struct {
	sentinel error
	message  string
}

func (e remoteError) Error() string { return e.message }
func (e remoteError) Unwrap() error { return e.sentinel }
