package ahttp

// ErrorType is the closed classification of failures the dispatcher can
// encounter. Every failure in the request cycle is tagged with exactly one
// variant before it reaches the error handler, so the handler can be matched
// exhaustively.
type ErrorType int

const (
	// ErrorTypeAsync tags failures that occur outside any request's
	// synchronous completion chain, e.g. a background task reporting
	// through [Dispatcher.ReportAsync]. There is no pending request to
	// answer, so no fallback response is synthesized.
	ErrorTypeAsync ErrorType = iota

	// ErrorTypeParse tags failures while adapting the raw transport
	// request; the handler never ran.
	ErrorTypeParse

	// ErrorTypeInvalidHijack tags hijack contract violations: the
	// [ErrHijacked] sentinel without a preceding [Request.Hijack], or a
	// response returned for a request whose connection was taken over.
	ErrorTypeInvalidHijack

	// ErrorTypeHandler tags errors and panics escaping the composed
	// handler.
	ErrorTypeHandler

	// ErrorTypeNilResponse tags handlers that returned neither a response
	// nor an error without hijacking.
	ErrorTypeNilResponse
)

// Description returns the human-readable form used in diagnostics.
func (t ErrorType) Description() string {
	switch t {
	case ErrorTypeAsync:
		return "asynchronous error"
	case ErrorTypeParse:
		return "error parsing request"
	case ErrorTypeInvalidHijack:
		return "invalid hijack signal"
	case ErrorTypeHandler:
		return "error thrown by handler"
	case ErrorTypeNilResponse:
		return "null response from handler"
	default:
		return "unknown error"
	}
}

// ResponseNeeded reports whether this class of failure requires a fallback
// response to be synthesized for the client. [ErrorTypeAsync] is purely
// diagnostic.
func (t ErrorType) ResponseNeeded() bool {
	return t != ErrorTypeAsync
}

func (t ErrorType) String() string { return t.Description() }
