package id

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins a namespace and a local identifier.
const Separator = "."

// DefaultNamespace is used for identifiers that carry no namespace.
const DefaultNamespace = "default"

// ErrInvalidLocalID is returned when a local identifier contains Separator.
var ErrInvalidLocalID = errors.New("id: local identifier must not contain the namespace separator")

// Namespaced is an identifier scoped to a namespace, written as
// "namespace.local". The local part never contains Separator; parsing
// splits on the first occurrence only.
type Namespaced struct {
	Namespace string
	Local     string
}

// NewNamespaced builds a Namespaced identifier. An empty namespace becomes
// DefaultNamespace.
func NewNamespaced(namespace, local string) (Namespaced, error) {
	if strings.Contains(local, Separator) {
		return Namespaced{}, fmt.Errorf("%w: %q", ErrInvalidLocalID, local)
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Namespaced{Namespace: namespace, Local: local}, nil
}

// ParseNamespaced splits s on the first Separator. A string without a
// separator belongs to DefaultNamespace.
func ParseNamespaced(s string) Namespaced {
	ns, local, ok := strings.Cut(s, Separator)
	if !ok {
		return Namespaced{Namespace: DefaultNamespace, Local: s}
	}
	if ns == "" {
		ns = DefaultNamespace
	}
	return Namespaced{Namespace: ns, Local: local}
}

// String returns "namespace.local".
func (n Namespaced) String() string {
	ns := n.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns + Separator + n.Local
}
