package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/xraph/dialog/id"
	"github.com/xraph/dialog/prompt"
)

// RunnerFunc is a type-erased procedure that accepts raw JSON input.
// The typed Definition[T] is converted to a RunnerFunc at registration
// time by closing over JSON unmarshal + the typed handler.
type RunnerFunc func(io *IO, input json.RawMessage) error

type catalogEntry struct {
	meta   prompt.WorkflowType
	runner RunnerFunc
}

// Catalog maps workflow type names to their procedures. It is safe for
// concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]catalogEntry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]catalogEntry)}
}

// Register adds a typed definition, replacing any previous definition with
// the same name. An empty or null input decodes to the zero T. It panics
// if the name is empty or contains id.Separator, since the hub could not
// namespace it (programming error).
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Register[T any](c *Catalog, def *Definition[T]) {
	if def.Name == "" {
		panic("workflow: definition name must not be empty")
	}
	if _, err := id.NewNamespaced("", def.Name); err != nil {
		panic(fmt.Sprintf("workflow: invalid definition name %q: %v", def.Name, err))
	}

	runner := func(io *IO, input json.RawMessage) error {
		var t T
		if len(input) > 0 && string(input) != "null" {
			if err := json.Unmarshal(input, &t); err != nil {
				return fmt.Errorf("unmarshal input for workflow %q: %w", def.Name, err)
			}
		}
		return def.Handler(io, t)
	}

	meta := def.Meta
	meta.ID = def.Name

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[def.Name] = catalogEntry{meta: meta, runner: runner}
}

// Get returns the runner and metadata for name.
func (c *Catalog) Get(name string) (RunnerFunc, prompt.WorkflowType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e.runner, e.meta, ok
}

// Types returns the catalogue entries sorted by id.
func (c *Catalog) Types() []prompt.WorkflowType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]prompt.WorkflowType, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Names returns all registered workflow type names, sorted.
func (c *Catalog) Names() []string {
	types := c.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.ID
	}
	return names
}
