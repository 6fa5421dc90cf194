package ahttp

import "context"

// Handler is the core unit of request-processing logic. It returns the
// response to write, or fails: with [ErrHijacked] after taking over the
// connection, or with any other error to trigger the fallback policy.
type Handler interface {
	ServeAHTTP(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(context.Context, *Request) (*Response, error)

// ServeAHTTP implements the [Handler] interface.
func (f HandlerFunc) ServeAHTTP(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware transforms one handler into another to layer cross-cutting
// behavior around it.
type Middleware func(Handler) Handler
