package prompt

import "encoding/json"

// Kind identifies the widget a single Field asks for.
type Kind string

// Field kinds.
const (
	KindText        Kind = "text"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindColor       Kind = "color"
	KindImageURL    Kind = "image-url"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi-select"
	KindTable       Kind = "table"
)

// Option is one choice offered by a select or multi-select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Column describes one column of a table field.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableRow is one selectable row of a table field. Key is the value the
// operator submits to select it.
type TableRow struct {
	Key   string         `json:"key"`
	Cells map[string]any `json:"cells"`
}

// Field asks for a single value.
type Field struct {
	Kind        Kind       `json:"kind"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Default     any        `json:"default,omitempty"`
	Options     []Option   `json:"options,omitempty"`
	Columns     []Column   `json:"columns,omitempty"`
	Rows        []TableRow `json:"rows,omitempty"`
	Multiple    bool       `json:"multiple,omitempty"`
}

func (*Field) Type() Type { return TypeField }
func (*Field) sealed()    {}

// MarshalJSON adds the type tag.
func (f *Field) MarshalJSON() ([]byte, error) {
	type alias Field
	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{TypeField, (*alias)(f)})
}
