package app

import (
	"net/http"

	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// TransportParams holds the optional instrumentation for outbound requests.
type TransportParams struct {
	fx.In

	TracerProv trace.TracerProvider          `optional:"true"`
	Propagator propagation.TextMapPropagator `optional:"true"`
}

// NewHTTPTransport creates an HTTP RoundTripper for outbound requests,
// instrumented with OpenTelemetry tracing when a tracer provider is
// available.
func NewHTTPTransport(params TransportParams) http.RoundTripper {
	if params.TracerProv == nil {
		return http.DefaultTransport
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(params.TracerProv)}
	if params.Propagator != nil {
		opts = append(opts, otelhttp.WithPropagators(params.Propagator))
	}

	return otelhttp.NewTransport(http.DefaultTransport, opts...)
}

// NewHTTPClient creates an *http.Client that uses the configured transport.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}

// NewRequestBuilder creates a base [requests.Builder] with the configured
// transport, for handlers that call other services.
func NewRequestBuilder(t http.RoundTripper) *requests.Builder {
	return requests.New().Transport(t)
}
