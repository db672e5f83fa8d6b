package workflow

import (
	"encoding/json"

	"github.com/xraph/dialog/prompt"
)

// State is the result of every Start, PickUp and Continue call.
type State struct {
	WorkflowID  string              `json:"workflow_id"`
	Prompt      prompt.Prompt       `json:"prompt"`
	Error       string              `json:"error,omitempty"`
	Breadcrumbs []prompt.Breadcrumb `json:"breadcrumbs"`
}

// Finished reports whether the state carries a terminal prompt.
func (s *State) Finished() bool { return prompt.IsTerminal(s.Prompt) }

// UnmarshalJSON decodes the prompt through prompt.Decode.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		WorkflowID  string              `json:"workflow_id"`
		Prompt      json.RawMessage     `json:"prompt"`
		Error       string              `json:"error"`
		Breadcrumbs []prompt.Breadcrumb `json:"breadcrumbs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p, err := prompt.Decode(raw.Prompt)
	if err != nil {
		return err
	}

	s.WorkflowID = raw.WorkflowID
	s.Prompt = p
	s.Error = raw.Error
	s.Breadcrumbs = raw.Breadcrumbs
	return nil
}
