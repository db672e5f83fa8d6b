// Package hub routes operator calls to worker connections by namespace.
//
// Workers register a [worker.Conn] under a namespace. The hub exposes the
// union of their workflow types under namespaced ids of the form
// "{namespace}.{local}", starts a workflow on the first connection that
// serves the requested namespace, and remembers that binding so every later
// pick-up or continuation of the same workflow reaches the same worker.
//
// When a connection is removed, workflows bound to it are orphaned: the
// binding is kept and every further call fails with dialog.ErrUnreachable.
//
//	h := hub.New(hub.WithLogger(logger), hub.WithEmitter(extensions))
//	connID := h.AddConnection(ctx, "user-service", worker.NewLocal(registry))
//	types, _ := h.ListWorkflowTypes(ctx)
//	st, _ := h.StartWorkflow(ctx, "user-service.create-user", nil)
//	st, _ = h.ContinueWorkflow(ctx, st.WorkflowID, "ada")
package hub
