// Package ahttp adapts raw HTTP requests to an immutable, transport-agnostic
// message model with composable middleware and centralized failure recovery.
//
// # Overview
//
// ahttp sits between the transport layer (a net/http server) and application
// logic. It converts each raw inbound request into an immutable [Request],
// runs it through a [Handler] composed from a [Pipeline] of middleware, and
// serializes the returned [Response] back to the wire. Every failure on the
// way, malformed input, a handler error or panic, a misused hijack, is
// classified into a closed [ErrorType] and recovered into a safe fallback
// response, so the serving loop never crashes and internal failure detail
// never leaks into a response body.
//
// A minimal example:
//
//	handler := ahttp.HandlerFunc(func(ctx context.Context, req *ahttp.Request) (*ahttp.Response, error) {
//	    if req.Method() != http.MethodGet {
//	        return ahttp.EmptyResponse(http.StatusMethodNotAllowed), nil
//	    }
//	    return ahttp.StringResponse(http.StatusOK, "hello"), nil
//	})
//
//	http.ListenAndServe(":8080", ahttp.Serve(handler))
//
// # Message Model
//
// [Request] and [Response] are immutable values. Headers are folded: a
// header repeated on the wire becomes a single string with its values
// joined by commas. The body of either message is a stream that may be
// consumed exactly once. Response headers set to the empty string mean
// "do not set", which also suppresses the default Date and Server headers
// the writer would otherwise inject.
//
// # Handlers and Middleware
//
// A [Handler] turns a request into a response, or fails. [Middleware]
// transforms one handler into another; a [Pipeline] folds an ordered
// middleware sequence around a terminal handler:
//
//	handler := ahttp.NewPipeline().
//	    Add(logging, auth).
//	    Handler(app)
//
// Middleware added first is outermost: it observes the request first and
// the response last. [NewMiddleware] builds middleware from independent
// request and response hooks; a failing response hook is caught by the same
// error policy as a failing handler.
//
// # Hijacking
//
// A handler can take exclusive, irreversible control of the underlying
// connection with [Request.Hijack], e.g. to speak WebSockets. After a
// hijack the normal response-writing path is permanently excluded for that
// request: the handler signals completion by returning [ErrHijacked], and
// the dispatcher writes nothing. A request can be hijacked at most once,
// and body reads fail after the takeover. Returning the sentinel without
// hijacking, or a response after hijacking, is a contract violation that is
// classified and reported, never silently swallowed.
//
// # Error Policy
//
// [Serve] wraps the composed handler in a [Dispatcher] whose per-request
// state machine classifies every failure into an [ErrorType] and consults a
// pluggable [ErrorHandler]. The default handler logs one timestamped ERROR
// block, with the cause and a call trace filtered of adapter-internal
// frames, and answers the client with a plain 500 and empty body whenever
// the type requires a response. Failures from background work, such as
// goroutines serving hijacked connections, are funneled through
// [Dispatcher.ReportAsync]: logged only, never fatal to the accept loop.
//
// # Batteries
//
// The app subpackage wires the dispatcher into a configured *http.Server
// with environment-based configuration, zap logging, otel instrumentation
// and an fx lifecycle. The websock subpackage upgrades hijacked connections
// to WebSockets.
package ahttp
