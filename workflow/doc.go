// Package workflow runs interactive procedures that ask an operator for
// input one question at a time.
//
// A procedure is ordinary sequential Go code. Each call to [Ask] or
// [IO.Message] suspends the procedure until the operator answers; the
// [Registry] exposes the suspended question to callers and feeds their
// answers back in.
//
// # Defining a Workflow
//
//	var CreateUser = workflow.NewDefinition("create-user",
//	    func(io *workflow.IO, _ struct{}) error {
//	        name, err := workflow.Ask(io, input.Text("Name").Validate(input.MinLength(3)))
//	        if err != nil {
//	            return err
//	        }
//	        return io.Message("Created " + name)
//	    },
//	    workflow.WithTitle("Create user"),
//	)
//
// # Lifecycle
//
// A workflow moves through these states:
//
//	created → awaiting answer ⇄ validating → awaiting answer → … → terminal
//
// A rejected answer re-asks the same field with the rejection message in
// [State.Error] and records no breadcrumb. The terminal prompt is
// absorbing: picking up a finished workflow always returns it.
//
// # Key Types
//
//   - [Definition] — typed procedure plus catalogue metadata
//   - [Catalog] — registered definitions, by name
//   - [Registry] — running workflow instances, by id
//   - [Workflow] — one running instance
//   - [State] — the result of every Start, PickUp and Continue call
package workflow
