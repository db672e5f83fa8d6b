package dialog

import "github.com/xraph/dialog/id"

// ID is the identifier type for workflow instances and connections.
type ID = id.ID

// Namespaced is a "namespace.local" identifier used by the hub.
type Namespaced = id.Namespaced
