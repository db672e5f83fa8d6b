// Package prompt defines the wire vocabulary exchanged between a workflow
// and the operator's renderer.
//
// A Prompt is a closed sum type: *Field, *Form, *Stack, *Message and
// *Terminal are its only variants. Every variant marshals to JSON with a
// "type" tag, and Decode rejects any tag it does not know. Consumers match
// variants exhaustively with Switch.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Decode for an unrecognised "type" tag.
var ErrUnknownType = errors.New("prompt: unknown type")

// Type is the JSON discriminator of a Prompt variant.
type Type string

// Prompt variant tags.
const (
	TypeField    Type = "field"
	TypeForm     Type = "form"
	TypeStack    Type = "stack"
	TypeMessage  Type = "message"
	TypeTerminal Type = "terminal"
)

// Prompt is the single thing currently presented to the operator.
type Prompt interface {
	// Type returns the variant tag.
	Type() Type
	sealed()
}

// Response is a raw operator answer as decoded from JSON: string, float64,
// bool, nil, []any or map[string]any.
type Response = any

// Breadcrumb is one audit-trail entry recorded when a field is accepted.
type Breadcrumb struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WorkflowType is the static catalogue entry for a workflow definition.
type WorkflowType struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Message is an informational display. The operator acknowledges it to move on.
type Message struct {
	Text string `json:"text"`
}

// NewMessage returns a message prompt.
func NewMessage(text string) *Message { return &Message{Text: text} }

func (*Message) Type() Type { return TypeMessage }
func (*Message) sealed()    {}

// MarshalJSON adds the type tag.
func (m *Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeMessage, (*alias)(m)})
}

// Status is the outcome carried by a Terminal prompt.
type Status string

// Terminal statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Terminal ends a workflow. It is absorbing: once a workflow shows a
// terminal prompt it never shows anything else.
type Terminal struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Success returns a terminal success prompt.
func Success(message string) *Terminal {
	return &Terminal{Status: StatusSuccess, Message: message}
}

// Failure returns a terminal error prompt carrying message.
func Failure(message string) *Terminal {
	return &Terminal{Status: StatusError, Message: message}
}

func (*Terminal) Type() Type { return TypeTerminal }
func (*Terminal) sealed()    {}

// MarshalJSON adds the type tag.
func (t *Terminal) MarshalJSON() ([]byte, error) {
	type alias Terminal
	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeTerminal, (*alias)(t)})
}

// IsTerminal reports whether p ends a workflow.
func IsTerminal(p Prompt) bool {
	_, ok := p.(*Terminal)
	return ok
}

// Decode parses a tagged JSON prompt. A null or empty payload decodes to nil.
func Decode(data []byte) (Prompt, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("prompt: decode: %w", err)
	}

	var p Prompt
	switch env.Type {
	case TypeField:
		p = &Field{}
	case TypeForm:
		p = &Form{}
	case TypeStack:
		p = &Stack{}
	case TypeMessage:
		p = &Message{}
	case TypeTerminal:
		p = &Terminal{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("prompt: decode %s: %w", env.Type, err)
	}
	return p, nil
}
