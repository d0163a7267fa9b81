// Package bootstrap runs a service through its lifecycle: start the
// registered components, run hooks, check readiness, print a startup
// summary, wait for a signal and shut everything down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(engine.NewComponent(holder, overrides))
//	app.RegisterComponent(server.NewComponent(srv))
//	err = app.Run(ctx)
package bootstrap
