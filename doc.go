// Package dialog provides an interactive workflow continuation engine for Go.
// A workflow is an ordinary sequential function that asks a remote operator
// for structured input one question at a time. Between questions the
// workflow goroutine is suspended; the operator's answer resumes it.
//
// Dialog is designed as a library. Register workflow definitions in a
// catalog, serve them from a registry, and optionally put a hub in front of
// many worker processes.
//
// # Quick Start
//
//	catalog := workflow.NewCatalog()
//	workflow.Register(catalog, workflow.NewDefinition("create-user",
//	    func(io *workflow.IO, _ struct{}) error {
//	        name, err := workflow.Ask(io, input.Text("Name"))
//	        if err != nil {
//	            return err
//	        }
//	        return io.Message("Created " + name)
//	    },
//	))
//
//	reg := workflow.NewRegistry(catalog)
//	state, err := reg.Start(ctx, "create-user", nil)
//
// # Architecture
//
// A procedure talks to its caller through a turn-taking bridge built on two
// single-assignment promises. Fields are declared with the input package:
// each field knows its wire prompt, how to normalize a raw answer, how to
// validate it, and how to record it in the audit trail as breadcrumbs.
//
// Workers connect to a hub over the Dialog Wire Protocol (package dwp). The
// hub groups connections by namespace, fans out catalogue listing, and pins
// every started workflow to the connection that created it.
//
// Workflow IDs are type-prefixed UUIDv7 strings ("wf_..."). Namespaced IDs
// use the form "namespace.local".
package dialog
