package dwp_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/dwp"
)

func TestErrorRoundTrip(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{dialog.ErrWorkflowNotFound, 404},
		{dialog.ErrWorkflowTypeNotFound, 404},
		{dialog.ErrNamespaceNotFound, 404},
		{dialog.ErrNotAwaitingAnswer, 409},
		{dialog.ErrWorkflowFinished, 409},
		{dialog.ErrUnauthorized, 401},
		{dialog.ErrRateLimited, 429},
		{dialog.ErrUnreachable, 502},
		{dialog.ErrRegistryClosed, 503},
		{dialog.ErrProcedureFailed, 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("%w: wf_123", tt.err)
			f := dwp.NewErrorFrameFromError("frm_1", wrapped)
			if f.Error.Code != tt.code {
				t.Errorf("code = %d, want %d", f.Error.Code, tt.code)
			}

			back := dwp.ErrorFromDetail(f.Error)
			if !errors.Is(back, tt.err) {
				t.Errorf("ErrorFromDetail lost the sentinel: %v", back)
			}
			if back.Error() != wrapped.Error() {
				t.Errorf("message = %q, want %q", back.Error(), wrapped.Error())
			}
		})
	}
}

func TestErrorFromDetail_Unknown(t *testing.T) {
	err := dwp.ErrorFromDetail(&dwp.ErrorDetail{Code: 418, Message: "teapot"})
	if !errors.Is(err, dwp.ErrRemote) {
		t.Errorf("expected ErrRemote, got %v", err)
	}

	f := dwp.NewErrorFrameFromError("frm_1", errors.New("plain"))
	if f.Error.Code != dwp.ErrCodeInternal || f.Error.Reason != "" {
		t.Errorf("unexpected detail for plain error: %+v", f.Error)
	}
}

func TestErrorFromDetail_CodeFallback(t *testing.T) {
	if err := dwp.ErrorFromDetail(&dwp.ErrorDetail{Code: 401, Message: "no"}); !errors.Is(err, dialog.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := dwp.ErrorFromDetail(nil); !errors.Is(err, dwp.ErrRemote) {
		t.Errorf("expected ErrRemote for nil detail, got %v", err)
	}
}
