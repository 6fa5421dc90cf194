package ahttp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrorHandler decides what happens after a failure was classified. It may
// return a response to write to the client, or nil when none is needed (or
// possible, as with [ErrorTypeAsync]). The default handler logs one
// diagnostic block and returns a plain 500 with an empty body for every
// type whose ResponseNeeded flag is set; internal failure detail never
// reaches the response.
type ErrorHandler func(t ErrorType, cause error, trace Trace) *Response

// NewLogErrorHandler returns the default error handling policy writing its
// diagnostic blocks to out.
func NewLogErrorHandler(out io.Writer) ErrorHandler {
	return func(t ErrorType, cause error, trace Trace) *Response {
		fmt.Fprintf(out, "%s ERROR - %s\n", time.Now().UTC().Format(time.RFC3339Nano), t.Description())
		if cause != nil {
			fmt.Fprintf(out, "%s\n", cause)
		}

		if len(trace) > 0 {
			fmt.Fprint(out, trace.String())
		}

		if !t.ResponseNeeded() {
			return nil
		}

		return EmptyResponse(http.StatusInternalServerError)
	}
}

// Dispatcher adapts a composed [Handler] to the raw transport. It owns the
// per-request state machine: adapt the raw request, dispatch it through the
// handler, then either write the returned response, hand the cycle to the
// hijack path, or recover the failure into a fallback response. It is safe
// for concurrent use; build it once and serve many requests.
type Dispatcher struct {
	handler      Handler
	errorHandler ErrorHandler
	logs         Logger
	serverHeader string
}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithErrorHandler replaces the default error handling policy.
func WithErrorHandler(h ErrorHandler) Option {
	return func(d *Dispatcher) { d.errorHandler = h }
}

// WithLogger replaces the default logger for out-of-policy failures.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) { d.logs = l }
}

// WithServerHeader replaces the default Server header value injected into
// responses that do not set their own.
func WithServerHeader(value string) Option {
	return func(d *Dispatcher) { d.serverHeader = value }
}

// Serve builds a dispatcher for h. The result implements [http.Handler] and
// can be registered on any mux or server.
func Serve(h Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handler:      h,
		errorHandler: NewLogErrorHandler(os.Stderr),
		logs:         NewStdLogger(log.Default()),
		serverHeader: DefaultServerHeader,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ServeHTTP implements the http.Handler interface.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := adaptRequest(w, r)
	if err != nil {
		d.fail(w, nil, ErrorTypeParse, err, captureTrace(1))
		return
	}

	resp, err := d.dispatch(r.Context(), req)

	switch {
	case err != nil && errors.Is(err, ErrHijacked):
		if req.Hijacked() {
			return // the hijack path completed the cycle
		}

		d.fail(w, req, ErrorTypeInvalidHijack, err, traceOf(err))

	case err != nil:
		d.fail(w, req, ErrorTypeHandler, err, traceOf(err))

	case resp == nil:
		if req.Hijacked() {
			return // hijacked without the sentinel, still a completed cycle
		}

		d.fail(w, req, ErrorTypeNilResponse, nil, nil)

	default:
		if req.Hijacked() {
			// Response and hijack for the same request: the connection is
			// owned by the hijacker and must not be written to twice, so the
			// mismatch is reported without writing.
			err := errors.New("handler returned a response for a hijacked request")
			d.fail(w, req, ErrorTypeInvalidHijack, err, nil)

			return
		}

		if err := writeResponse(w, resp, d.serverHeader); err != nil {
			d.logs.LogWriteError(err)
		}
	}
}

// ReportAsync funnels a failure that happened outside any request's
// synchronous completion chain, e.g. in a goroutine serving a hijacked
// connection. It is logged through the error handler and never produces a
// response or a panic, so the accept loop keeps serving.
func (d *Dispatcher) ReportAsync(err error) {
	if err == nil {
		return
	}

	defer func() {
		if v := recover(); v != nil {
			d.logs.LogErrorHandlerPanic(v)
		}
	}()

	d.errorHandler(ErrorTypeAsync, err, captureTrace(1))
}

// dispatch runs the composed handler as a single logical unit: panics from
// any layer, including middleware response hooks, surface as ordinary
// handler errors carrying the trace captured at the panic site.
func (d *Dispatcher) dispatch(ctx context.Context, req *Request) (resp *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			resp, err = nil, &panicError{value: v, trace: captureTrace(2)}
		}
	}()

	return d.handler.ServeAHTTP(ctx, req)
}

// fail recovers a classified failure into a fallback response. A hijacked
// request is never written to; a panicking custom error handler degrades to
// the plain 500 text response.
func (d *Dispatcher) fail(w http.ResponseWriter, req *Request, t ErrorType, cause error, trace Trace) {
	resp, ok := d.runErrorHandler(t, cause, trace)
	if !ok {
		if req == nil || !req.Hijacked() {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return
	}

	if resp == nil || (req != nil && req.Hijacked()) {
		return
	}

	if err := writeResponse(w, resp, d.serverHeader); err != nil {
		d.logs.LogWriteError(err)
	}
}

func (d *Dispatcher) runErrorHandler(t ErrorType, cause error, trace Trace) (resp *Response, ok bool) {
	defer func() {
		if v := recover(); v != nil {
			d.logs.LogErrorHandlerPanic(v)
			resp, ok = nil, false
		}
	}()

	return d.errorHandler(t, cause, trace), true
}

// panicError carries a recovered panic value and the trace captured at the
// recovery site through the classification path.
type panicError struct {
	value any
	trace Trace
}

func (e *panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.value)
}

// traceOf returns the trace attached to a recovered panic, if any.
func traceOf(err error) Trace {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.trace
	}

	return nil
}
