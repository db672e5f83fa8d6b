package prompt

import (
	"encoding/json"
	"fmt"
)

// Form groups named members into one turn. The operator answers with an
// object keyed like Fields.
type Form struct {
	Title  string            `json:"title,omitempty"`
	Fields map[string]Prompt `json:"fields"`
}

func (*Form) Type() Type { return TypeForm }
func (*Form) sealed()    {}

// MarshalJSON adds the type tag.
func (f *Form) MarshalJSON() ([]byte, error) {
	type alias Form
	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeForm, (*alias)(f)})
}

// UnmarshalJSON decodes each member through Decode.
func (f *Form) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title  string                     `json:"title"`
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Title = raw.Title
	f.Fields = make(map[string]Prompt, len(raw.Fields))
	for key, member := range raw.Fields {
		p, err := Decode(member)
		if err != nil {
			return fmt.Errorf("form field %q: %w", key, err)
		}
		f.Fields[key] = p
	}
	return nil
}

// Direction is the layout axis of a Stack.
type Direction string

// Stack directions.
const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Stack presents ordered members together. The operator answers with an
// array in member order.
type Stack struct {
	Direction Direction `json:"direction"`
	Items     []Prompt  `json:"items"`
}

func (*Stack) Type() Type { return TypeStack }
func (*Stack) sealed()    {}

// MarshalJSON adds the type tag.
func (s *Stack) MarshalJSON() ([]byte, error) {
	type alias Stack
	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeStack, (*alias)(s)})
}

// UnmarshalJSON decodes each item through Decode.
func (s *Stack) UnmarshalJSON(data []byte) error {
	var raw struct {
		Direction Direction         `json:"direction"`
		Items     []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Direction = raw.Direction
	s.Items = make([]Prompt, 0, len(raw.Items))
	for i, item := range raw.Items {
		p, err := Decode(item)
		if err != nil {
			return fmt.Errorf("stack item %d: %w", i, err)
		}
		s.Items = append(s.Items, p)
	}
	return nil
}
