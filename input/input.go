// Package input describes the fields a workflow asks for.
//
// A field is declared with a Builder (Text, Number, Select, Form, ...)
// and frozen with Build into an immutable Input. An Input carries the
// wire prompt shown to the operator plus the three steps applied to every
// answer: normalize the raw value into a typed one, validate it, and
// format the accepted value into breadcrumbs.
package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/dialog/prompt"
)

// Field is anything that yields a frozen Input: a *Builder or an *Input.
type Field[T any] interface {
	Build() *Input[T]
}

// Input is a frozen field descriptor.
type Input[T any] struct {
	wire      prompt.Prompt
	label     string
	normalize Normalizer[T]
	validate  func(T) error
	format    func(T) []prompt.Breadcrumb
}

// Prompt returns the wire form shown to the operator.
func (in *Input[T]) Prompt() prompt.Prompt { return in.wire }

// Label returns the field's label, used as the default breadcrumb key.
func (in *Input[T]) Label() string { return in.label }

// Normalize converts a raw answer into T.
func (in *Input[T]) Normalize(r prompt.Response) (T, error) { return in.normalize(r) }

// Validate checks an already normalized value.
func (in *Input[T]) Validate(v T) error { return in.validate(v) }

// Format renders an accepted value as breadcrumbs.
func (in *Input[T]) Format(v T) []prompt.Breadcrumb { return in.format(v) }

// Build returns in itself, so an Input can be passed wherever a Builder is.
func (in *Input[T]) Build() *Input[T] { return in }

func (in *Input[T]) erase() erased                               { return in }
func (in *Input[T]) normalizeAny(r prompt.Response) (any, error) { return in.normalize(r) }
func (in *Input[T]) validateAny(v any) error                     { return in.validate(v.(T)) }
func (in *Input[T]) formatAny(v any) []prompt.Breadcrumb         { return in.format(v.(T)) }

// Descriptor is a field of any value type, either a *Builder or a frozen
// *Input. Composite fields are built from Descriptors.
type Descriptor interface {
	Prompt() prompt.Prompt
	Label() string
	erase() erased
}

type erased interface {
	Prompt() prompt.Prompt
	Label() string
	normalizeAny(prompt.Response) (any, error)
	validateAny(any) error
	formatAny(any) []prompt.Breadcrumb
}

// Builder accumulates a field definition.
type Builder[T any] struct {
	wire       prompt.Prompt
	label      string
	normalize  Normalizer[T]
	validators []func(T) error
	format     func(T) []prompt.Breadcrumb
}

func newBuilder[T any](wire prompt.Prompt, label string, normalize Normalizer[T]) *Builder[T] {
	return &Builder[T]{wire: wire, label: label, normalize: normalize}
}

// Describe sets the help text of a single field, or the title of a form.
func (b *Builder[T]) Describe(text string) *Builder[T] {
	switch w := b.wire.(type) {
	case *prompt.Field:
		w.Description = text
	case *prompt.Form:
		w.Title = text
	}
	return b
}

// Placeholder sets the placeholder of a single field.
func (b *Builder[T]) Placeholder(text string) *Builder[T] {
	if f, ok := b.wire.(*prompt.Field); ok {
		f.Placeholder = text
	}
	return b
}

// Default sets the pre-filled value of a single field.
func (b *Builder[T]) Default(v any) *Builder[T] {
	if f, ok := b.wire.(*prompt.Field); ok {
		f.Default = v
	}
	return b
}

// Validate adds a check on the normalized value. Checks run in the order
// they were added; the first failure is reported.
func (b *Builder[T]) Validate(fn func(T) error) *Builder[T] {
	b.validators = append(b.validators, fn)
	return b
}

// Format replaces the breadcrumb rendering of accepted values.
func (b *Builder[T]) Format(fn func(T) []prompt.Breadcrumb) *Builder[T] {
	b.format = fn
	return b
}

// Build freezes the builder.
func (b *Builder[T]) Build() *Input[T] {
	validators := append([]func(T) error(nil), b.validators...)
	format := b.format
	if format == nil {
		label := b.label
		format = func(v T) []prompt.Breadcrumb {
			return []prompt.Breadcrumb{{Key: label, Value: FormatValue(v)}}
		}
	}

	return &Input[T]{
		wire:      clonePrompt(b.wire),
		label:     b.label,
		normalize: b.normalize,
		validate: func(v T) error {
			for _, fn := range validators {
				if err := fn(v); err != nil {
					return err
				}
			}
			return nil
		},
		format: format,
	}
}

// Prompt returns the wire form under construction.
func (b *Builder[T]) Prompt() prompt.Prompt { return b.wire }

// Label returns the field's label.
func (b *Builder[T]) Label() string { return b.label }

func (b *Builder[T]) erase() erased { return b.Build() }

// Map composes fn after the builder's normalizer. Validators already added
// run on the pre-mapped value; the breadcrumb format resets to the default
// for U.
func Map[T, U any](b *Builder[T], fn func(T) (U, error)) *Builder[U] {
	inner := b.Build()
	return &Builder[U]{
		wire:  inner.wire,
		label: inner.label,
		normalize: func(r prompt.Response) (U, error) {
			var zero U
			v, err := inner.normalize(r)
			if err != nil {
				return zero, err
			}
			if err := inner.validate(v); err != nil {
				return zero, err
			}
			return fn(v)
		},
	}
}

// MinLength rejects strings shorter than n runes.
func MinLength(n int) func(string) error {
	return func(s string) error {
		if len([]rune(s)) < n {
			return Invalid("must be at least %d characters", n)
		}
		return nil
	}
}

// Required rejects empty strings.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return Invalid("a value is required")
	}
	return nil
}

// FormatValue renders a typed value as breadcrumb text. The result
// normalizes back to the same value for the built-in scalar kinds.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func clonePrompt(p prompt.Prompt) prompt.Prompt {
	if f, ok := p.(*prompt.Field); ok {
		c := *f
		return &c
	}
	return p
}
