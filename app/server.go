package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/advdv/ahttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerParams holds the dependencies for creating an HTTP server. The
// tracer provider and propagator are optional; without them the server runs
// uninstrumented.
type ServerParams struct {
	fx.In

	Env        Environment
	Handler    ahttp.Handler
	Logger     *zap.Logger
	TracerProv trace.TracerProvider          `optional:"true"`
	Propagator propagation.TextMapPropagator `optional:"true"`
}

// NewServer creates an HTTP server serving the handler through a configured
// dispatcher: zap-backed error policy, the environment's Server header, and
// otel instrumentation when a tracer provider is available.
func NewServer(params ServerParams) *http.Server {
	var handler http.Handler = ahttp.Serve(params.Handler,
		ahttp.WithErrorHandler(NewErrorHandler(params.Logger)),
		ahttp.WithLogger(newZapAHTTPLogger(params.Logger)),
		ahttp.WithServerHeader(params.Env.serverHeader()),
	)

	if params.TracerProv != nil {
		opts := []otelhttp.Option{otelhttp.WithTracerProvider(params.TracerProv)}
		if params.Propagator != nil {
			opts = append(opts, otelhttp.WithPropagators(params.Propagator))
		}

		// otelhttp's wrapped writer keeps the http.Hijacker of the
		// underlying connection, so hijacking handlers work instrumented
		handler = otelhttp.NewHandler(handler, params.Env.serviceName(), opts...)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: params.Env.readHeaderTimeout(),
		IdleTimeout:       params.Env.idleTimeout(),
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}
