package input

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/xraph/dialog/prompt"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func field(kind prompt.Kind, label string) *prompt.Field {
	return &prompt.Field{Kind: kind, Label: label}
}

// Text asks for a free-form string.
func Text(label string) *Builder[string] {
	return newBuilder(field(prompt.KindText, label), label, AsString)
}

// Number asks for a number.
func Number(label string) *Builder[float64] {
	return newBuilder(field(prompt.KindNumber, label), label, AsNumber)
}

// Boolean asks for a yes/no answer.
func Boolean(label string) *Builder[bool] {
	return newBuilder(field(prompt.KindBoolean, label), label, AsBool)
}

// Color asks for a hex color such as #1e90ff.
func Color(label string) *Builder[string] {
	return newBuilder(field(prompt.KindColor, label), label, func(r prompt.Response) (string, error) {
		s, err := AsString(r)
		if err != nil {
			return "", err
		}
		if !hexColor.MatchString(s) {
			return "", Invalid("%q is not a hex color", s)
		}
		return s, nil
	})
}

// ImageURL asks for an absolute http(s) image URL.
func ImageURL(label string) *Builder[string] {
	return newBuilder(field(prompt.KindImageURL, label), label, func(r prompt.Response) (string, error) {
		s, err := AsString(r)
		if err != nil {
			return "", err
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", Invalid("%q is not an http(s) URL", s)
		}
		return s, nil
	})
}

// Select asks the operator to pick one option. The normalized value is the
// option's Value.
func Select(label string, options ...prompt.Option) *Builder[string] {
	f := field(prompt.KindSelect, label)
	f.Options = options
	return newBuilder(f, label, func(r prompt.Response) (string, error) {
		v, err := AsSingleton(r)
		if err != nil {
			return "", err
		}
		s, err := AsString(v)
		if err != nil {
			return "", err
		}
		if !hasOption(options, s) {
			return "", invalidSelection(s)
		}
		return s, nil
	})
}

// MultiSelect asks the operator to pick any number of options. A plain
// string answer is read as a list of option values joined by commas, the
// form its breadcrumb takes.
func MultiSelect(label string, options ...prompt.Option) *Builder[[]string] {
	f := field(prompt.KindMultiSelect, label)
	f.Options = options
	return newBuilder(f, label, func(r prompt.Response) ([]string, error) {
		if s, ok := r.(string); ok {
			return splitOptions(s, options)
		}
		values, err := AsStrings(r)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if !hasOption(options, v) {
				return nil, invalidSelection(v)
			}
		}
		return values, nil
	})
}

// Options builds select options whose label equals their value.
func Options(values ...string) []prompt.Option {
	out := make([]prompt.Option, len(values))
	for i, v := range values {
		out[i] = prompt.Option{Value: v, Label: v}
	}
	return out
}

// splitOptions reads a comma-joined list of option values. At each position
// the longest option value followed by a comma or the end of s wins, so
// values that contain commas survive.
func splitOptions(s string, options []prompt.Option) ([]string, error) {
	out := []string{}
	rest := strings.TrimSpace(s)
	for rest != "" {
		best := ""
		for _, o := range options {
			v := o.Value
			if len(v) <= len(best) || !strings.HasPrefix(rest, v) {
				continue
			}
			if len(rest) == len(v) || rest[len(v)] == ',' {
				best = v
			}
		}
		if best == "" {
			tok, _, _ := strings.Cut(rest, ",")
			return nil, invalidSelection(strings.TrimSpace(tok))
		}
		out = append(out, best)
		rest = strings.TrimPrefix(rest[len(best):], ",")
		rest = strings.TrimLeft(rest, " ")
	}
	return out, nil
}

func hasOption(options []prompt.Option, value string) bool {
	return slices.ContainsFunc(options, func(o prompt.Option) bool { return o.Value == value })
}
