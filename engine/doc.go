// Package engine wires the dialog subsystems together: the workflow
// registry with its middleware chain and extension emitter, the hub, and
// the DWP server that workers connect to.
//
// The engine package exists to break an import cycle: ext and middleware
// import workflow, and hub and dwp import worker, so none of them can
// construct the others. Engine sits above all subsystem packages and below
// the application layer.
//
// # Hub process
//
//	eng, err := engine.Build(cfg,
//	    engine.WithLogger(logger),
//	    engine.WithExtension(audithook.New(audithook.SlogRecorder(logger))),
//	)
//	eng.Start(ctx)
//	mux.Handle("/dwp", eng.DWP())
//
// # Worker process
//
//	catalog := workflow.NewCatalog()
//	workflow.Register(catalog, CreateUser)
//
//	eng, err := engine.Build(cfg, engine.WithCatalog(catalog))
//	err = eng.Agent().Run(ctx)
//
// A hub built with a non-empty catalog also serves those workflows itself
// under Config.Namespace once Start is called.
//
// # Options
//
//   - [WithLogger] sets the shared logger
//   - [WithCatalog] sets the in-process workflow definitions
//   - [WithExtension] registers a lifecycle extension
//   - [WithMiddleware] adds a middleware after the default chain
//   - [WithAuthenticator] overrides worker authentication
//   - [WithTracerProvider] sets the OpenTelemetry tracer provider
//   - [WithMeterProvider] sets the OpenTelemetry meter provider
package engine
