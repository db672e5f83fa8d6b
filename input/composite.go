package input

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xraph/dialog/prompt"
)

type failure struct {
	key string
	err error
}

// joinFailures folds member failures into one bulleted message, one
// "• key: message" line per failure.
func joinFailures(failures []failure) error {
	if len(failures) == 0 {
		return nil
	}
	lines := make([]string, len(failures))
	for i, f := range failures {
		lines[i] = fmt.Sprintf("• %s: %s", f.key, f.err.Error())
	}
	return Invalid("%s", strings.Join(lines, "\n"))
}

// Form asks for several named fields in one turn. The operator answers
// with an object keyed like members; the normalized value maps each key to
// its member's typed value. Members may themselves be composites.
func Form(members map[string]Descriptor) *Builder[map[string]any] {
	keys := make([]string, 0, len(members))
	frozen := make(map[string]erased, len(members))
	wire := &prompt.Form{Fields: make(map[string]prompt.Prompt, len(members))}
	for key, d := range members {
		keys = append(keys, key)
		e := d.erase()
		frozen[key] = e
		wire.Fields[key] = e.Prompt()
	}
	sort.Strings(keys)

	normalize := func(r prompt.Response) (map[string]any, error) {
		var raw map[string]any
		switch v := r.(type) {
		case map[string]any:
			raw = v
		case nil:
			raw = map[string]any{}
		default:
			return nil, Invalid("expected an object of form values")
		}

		out := make(map[string]any, len(keys))
		var failures []failure
		for _, key := range keys {
			v, err := frozen[key].normalizeAny(raw[key])
			if err != nil {
				failures = append(failures, failure{key, err})
				continue
			}
			out[key] = v
		}
		if err := joinFailures(failures); err != nil {
			return nil, err
		}
		return out, nil
	}

	b := newBuilder[map[string]any](wire, "", normalize)
	b.validators = append(b.validators, func(values map[string]any) error {
		var failures []failure
		for _, key := range keys {
			if err := frozen[key].validateAny(values[key]); err != nil {
				failures = append(failures, failure{key, err})
			}
		}
		return joinFailures(failures)
	})
	b.format = func(values map[string]any) []prompt.Breadcrumb {
		var out []prompt.Breadcrumb
		for _, key := range keys {
			out = append(out, frozen[key].formatAny(values[key])...)
		}
		return out
	}
	return b
}

// HStack presents members side by side in one turn.
func HStack(members ...Descriptor) *Builder[[]any] {
	return stack(prompt.Horizontal, members)
}

// VStack presents members one above the other in one turn.
func VStack(members ...Descriptor) *Builder[[]any] {
	return stack(prompt.Vertical, members)
}

func stack(dir prompt.Direction, members []Descriptor) *Builder[[]any] {
	frozen := make([]erased, len(members))
	wire := &prompt.Stack{Direction: dir, Items: make([]prompt.Prompt, len(members))}
	for i, d := range members {
		frozen[i] = d.erase()
		wire.Items[i] = frozen[i].Prompt()
	}

	keyOf := func(i int) string {
		if l := frozen[i].Label(); l != "" {
			return l
		}
		return fmt.Sprintf("#%d", i+1)
	}

	normalize := func(r prompt.Response) ([]any, error) {
		var raw []any
		switch v := r.(type) {
		case []any:
			raw = v
		case nil:
		default:
			return nil, Invalid("expected a list of values")
		}

		out := make([]any, len(frozen))
		var failures []failure
		for i, member := range frozen {
			var item prompt.Response
			if i < len(raw) {
				item = raw[i]
			}
			v, err := member.normalizeAny(item)
			if err != nil {
				failures = append(failures, failure{keyOf(i), err})
				continue
			}
			out[i] = v
		}
		if err := joinFailures(failures); err != nil {
			return nil, err
		}
		return out, nil
	}

	b := newBuilder[[]any](wire, "", normalize)
	b.validators = append(b.validators, func(values []any) error {
		var failures []failure
		for i, member := range frozen {
			if err := member.validateAny(values[i]); err != nil {
				failures = append(failures, failure{keyOf(i), err})
			}
		}
		return joinFailures(failures)
	})
	b.format = func(values []any) []prompt.Breadcrumb {
		var out []prompt.Breadcrumb
		for i, member := range frozen {
			out = append(out, member.formatAny(values[i])...)
		}
		return out
	}
	return b
}

// Value extracts a typed member value from a composite result. It returns
// the zero value when the key is absent or holds another type.
func Value[T any](values map[string]any, key string) T {
	v, _ := values[key].(T)
	return v
}
