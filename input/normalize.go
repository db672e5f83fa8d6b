package input

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/xraph/dialog/prompt"
)

// A Normalizer converts a raw operator answer into a typed value.
type Normalizer[T any] func(prompt.Response) (T, error)

// AsString unwraps single-element lists and requires a string.
func AsString(r prompt.Response) (string, error) {
	switch v := r.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) == 1 {
			return AsString(v[0])
		}
	case nil:
		return "", Invalid("a value is required")
	}
	return "", Invalid("expected text")
}

// AsNumber parses a float. An empty string is zero; NaN is rejected.
func AsNumber(r prompt.Response) (float64, error) {
	var f float64
	switch v := r.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, Invalid("%q is not a number", v.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, Invalid("%q is not a number", v)
		}
		f = parsed
	case []any:
		if len(v) == 1 {
			return AsNumber(v[0])
		}
		return 0, Invalid("expected a number")
	case nil:
		return 0, Invalid("a value is required")
	default:
		return 0, Invalid("expected a number")
	}
	if math.IsNaN(f) {
		return 0, Invalid("expected a number")
	}
	return f, nil
}

// AsBool accepts a boolean, or the strings "true", "" (checked box with no
// value) and "false".
func AsBool(r prompt.Response) (bool, error) {
	switch v := r.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true", "":
			return true, nil
		case "false":
			return false, nil
		}
		return false, Invalid("%q is not true or false", v)
	case []any:
		if len(v) == 1 {
			return AsBool(v[0])
		}
	}
	return false, Invalid("expected true or false")
}

// AsArray wraps scalars in a list. A missing value is an empty list.
func AsArray(r prompt.Response) ([]any, error) {
	switch v := r.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return []any{v}, nil
	}
}

// AsSingleton returns the first element of a list. An empty or missing
// list is an error; a scalar is returned as is.
func AsSingleton(r prompt.Response) (prompt.Response, error) {
	switch v := r.(type) {
	case nil:
		return nil, Invalid("a value is required")
	case []any:
		if len(v) == 0 {
			return nil, Invalid("a value is required")
		}
		return v[0], nil
	default:
		return v, nil
	}
}

// AsStrings normalizes to a list of strings.
func AsStrings(r prompt.Response) ([]string, error) {
	items, err := AsArray(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := AsString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
