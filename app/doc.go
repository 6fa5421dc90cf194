// Package app provides a batteries-included way to run an ahttp handler as
// a service: environment parsing, structured zap logging, optional
// OpenTelemetry instrumentation and an fx-managed server lifecycle with
// graceful shutdown.
//
// A complete application:
//
//	type Env struct {
//	    app.BaseEnvironment
//	    GreetingPrefix string `env:"GREETING_PREFIX,required"`
//	}
//
//	app.New[Env](fx.Provide(NewHandler)).Run()
//
// where NewHandler is any constructor producing an [ahttp.Handler]. The
// dispatcher is configured with a zap-backed error handler, so every
// classified failure becomes one structured log entry plus the standard
// 500 fallback.
package app
