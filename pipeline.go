package ahttp

import "context"

// Pipeline is an ordered, immutable sequence of middleware. The zero value
// is an empty pipeline. Pipelines are values: [Pipeline.Add] returns a new
// pipeline and never modifies its receiver, so a composed handler can be
// built once and shared across concurrent requests.
type Pipeline struct {
	middleware []Middleware
}

// NewPipeline inits an empty pipeline.
func NewPipeline() Pipeline {
	return Pipeline{}
}

// Add returns a new pipeline with mw appended to the sequence.
func (p Pipeline) Add(mw ...Middleware) Pipeline {
	combined := make([]Middleware, 0, len(p.middleware)+len(mw))
	combined = append(combined, p.middleware...)
	combined = append(combined, mw...)

	return Pipeline{middleware: combined}
}

// Handler finalizes the pipeline by folding the middleware around h. The
// order is that of the Gorilla and Chi routers: the middleware added first
// is the outermost wrapping, so it observes the request first and the
// response last.
func (p Pipeline) Handler(h Handler) Handler {
	return Wrap(h, p.middleware...)
}

// Wrap takes the inner handler h and wraps it with middleware, outermost
// first.
func Wrap(h Handler, m ...Middleware) Handler {
	if len(m) < 1 {
		return h
	}

	wrapped := h
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}

// RequestHook inspects the request before the inner handler runs. Returning
// a non-nil response short-circuits the pipeline: the inner handler is
// skipped and the response travels back out through the response hooks of
// outer middleware only.
type RequestHook func(ctx context.Context, req *Request) (*Response, error)

// ResponseHook transforms the inner handler's response on the way out. A
// failing hook is an ordinary handler failure: the dispatcher catches it
// like an error returned by the handler itself.
type ResponseHook func(ctx context.Context, resp *Response) (*Response, error)

// NewMiddleware builds middleware from independent request and response
// hooks. Either hook may be nil to pass messages through unchanged. The
// response hook only runs for responses produced on the normal path, not
// for hijacked requests or handler failures.
func NewMiddleware(request RequestHook, response ResponseHook) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			if request != nil {
				resp, err := request(ctx, req)
				if err != nil || resp != nil {
					// a short-circuit response bypasses this middleware's
					// own response hook; only outer middleware observe it
					return resp, err
				}
			}

			resp, err := next.ServeAHTTP(ctx, req)
			if err != nil || resp == nil || response == nil {
				return resp, err
			}

			return response(ctx, resp)
		})
	}
}
