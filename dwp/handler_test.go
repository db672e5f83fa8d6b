package dwp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/xraph/dialog/dwp"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

func request(t *testing.T, method string, data any) *dwp.Frame {
	t.Helper()
	f, err := dwp.NewRequestFrame(method, data)
	if err != nil {
		t.Fatalf("NewRequestFrame: %v", err)
	}
	return f
}

func decodeState(t *testing.T, f *dwp.Frame) *workflow.State {
	t.Helper()
	if f.Type != dwp.FrameResponse {
		t.Fatalf("expected response frame, got %s: %+v", f.Type, f.Error)
	}
	var st workflow.State
	if err := json.Unmarshal(f.Data, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return &st
}

func TestHandler_Workflow(t *testing.T) {
	ctx := testContext(t)
	h := dwp.NewHandler(newLocalWorker(), testLogger())

	// types
	resp := h.Handle(ctx, request(t, dwp.MethodWorkflowTypes, struct{}{}))
	var types dwp.WorkflowTypesResponse
	if err := json.Unmarshal(resp.Data, &types); err != nil {
		t.Fatalf("decode types: %v", err)
	}
	if len(types.Types) != 1 || types.Types[0].ID != "create-user" {
		t.Fatalf("unexpected types: %+v", types)
	}

	// start
	startReq := request(t, dwp.MethodWorkflowStart, dwp.WorkflowStartRequest{TypeID: "create-user"})
	resp = h.Handle(ctx, startReq)
	if resp.CorrelID != startReq.ID {
		t.Errorf("CorrelID = %q, want %q", resp.CorrelID, startReq.ID)
	}
	st := decodeState(t, resp)
	if _, ok := st.Prompt.(*prompt.Field); !ok {
		t.Fatalf("expected field prompt, got %T", st.Prompt)
	}

	// pickup
	again := decodeState(t, h.Handle(ctx, request(t, dwp.MethodWorkflowPickUp, dwp.WorkflowPickUpRequest{WorkflowID: st.WorkflowID})))
	if again.WorkflowID != st.WorkflowID {
		t.Errorf("pick-up id mismatch")
	}

	// continue
	done := decodeState(t, h.Handle(ctx, request(t, dwp.MethodWorkflowContinue, dwp.WorkflowContinueRequest{
		WorkflowID: st.WorkflowID,
		Response:   "ada lovelace",
	})))
	if !done.Finished() {
		t.Fatalf("expected terminal, got %T", done.Prompt)
	}
}

func TestHandler_Errors(t *testing.T) {
	ctx := context.Background()
	h := dwp.NewHandler(newLocalWorker(), testLogger())

	tests := []struct {
		name   string
		frame  *dwp.Frame
		code   int
		reason string
	}{
		{"unknown method", request(t, "workflow.cancel", struct{}{}), dwp.ErrCodeMethodNotFound, ""},
		{"unknown type", request(t, dwp.MethodWorkflowStart, dwp.WorkflowStartRequest{TypeID: "nope"}), dwp.ErrCodeNotFound, "workflow_type_not_found"},
		{"unknown workflow", request(t, dwp.MethodWorkflowPickUp, dwp.WorkflowPickUpRequest{WorkflowID: "wf_x"}), dwp.ErrCodeNotFound, "workflow_not_found"},
		{"bad payload", &dwp.Frame{ID: "frm_bad", Type: dwp.FrameRequest, Method: dwp.MethodWorkflowContinue, Data: json.RawMessage(`[`)}, dwp.ErrCodeBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Handle(ctx, tt.frame)
			if resp.Type != dwp.FrameErr {
				t.Fatalf("expected error frame, got %s", resp.Type)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %d, want %d", resp.Error.Code, tt.code)
			}
			if resp.Error.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", resp.Error.Reason, tt.reason)
			}
			if resp.CorrelID != tt.frame.ID {
				t.Errorf("CorrelID = %q, want %q", resp.CorrelID, tt.frame.ID)
			}
		})
	}
}
