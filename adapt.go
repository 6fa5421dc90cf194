package ahttp

import (
	"bufio"
	"net"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/cockroachdb/errors"
)

// adaptRequest translates a raw transport request into an abstract
// [Request]: header values folded per name, the body mapped through
// unchanged, and a hijack capability that detaches the raw connection
// before the transport flushes a status line or headers. Failures here are
// classified as parse errors by the dispatcher; the handler never sees the
// request.
func adaptRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	if r.URL == nil {
		return nil, errors.New("raw request carries no URL")
	}

	if r.Method == "" {
		return nil, errors.New("raw request carries no method")
	}

	return newRequest(
		r.Method,
		r.URL,
		r.Proto,
		foldHeader(r.Header),
		r.Body,
		r.Context(),
		detachFunc(w),
	), nil
}

// foldHeader flattens a multi-valued header collection into the single
// string form of [Header], joining repeated values with commas.
func foldHeader(raw http.Header) Header {
	folded := make(Header, len(raw))
	for name, values := range raw {
		folded[textproto.CanonicalMIMEHeaderKey(name)] = strings.Join(values, ",")
	}

	return folded
}

// detachFunc builds the hijack capability from the raw response writer. The
// capability reports [ErrHijackUnsupported] when the transport cannot hand
// over the connection, e.g. under HTTP/2.
func detachFunc(w http.ResponseWriter) HijackFunc {
	return func() (net.Conn, *bufio.ReadWriter, error) {
		hijacker, ok := w.(http.Hijacker)
		if !ok {
			return nil, nil, ErrHijackUnsupported
		}

		conn, buf, err := hijacker.Hijack()
		if err != nil {
			return nil, nil, errors.Wrap(err, "hijack raw connection")
		}

		return conn, buf, nil
	}
}
