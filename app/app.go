package app

import (
	"context"

	"go.uber.org/fx"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// New creates an application from the environment type E and the provided
// fx options. The options must (directly or indirectly) provide an
// [github.com/advdv/ahttp.Handler]; everything else, environment parsing,
// the zap logger and the configured server, is provided here.
func New[E Environment](opts ...fx.Option) *App {
	base := []fx.Option{
		fx.Provide(
			ParseEnv[E](),
			func(e E) Environment { return e },
			NewLogger,
			NewServer,
			NewHTTPTransport,
			NewHTTPClient,
			NewRequestBuilder,
		),
		fx.Invoke(startServerHook),
	}

	return &App{app: fx.New(append(base, opts...)...)}
}

// Run starts the application and blocks until it receives a shutdown
// signal.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application without blocking, for tests and embedders.
func (a *App) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

// Stop gracefully stops a started application.
func (a *App) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

// Err reports dependency graph construction errors without starting.
func (a *App) Err() error {
	return a.app.Err()
}
