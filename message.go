package ahttp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Header maps canonical header names to their value. Headers that carry
// multiple values on the wire are folded into a single string joined with
// commas. An entry whose value is the empty string means "do not set this
// header", which also suppresses any default the writer would inject for it.
type Header map[string]string

// Get returns the value for the canonical form of name, or "".
func (h Header) Get(name string) string {
	return h[textproto.CanonicalMIMEHeaderKey(name)]
}

// Set stores value under the canonical form of name.
func (h Header) Set(name, value string) {
	h[textproto.CanonicalMIMEHeaderKey(name)] = value
}

// Del removes the canonical form of name.
func (h Header) Del(name string) {
	delete(h, textproto.CanonicalMIMEHeaderKey(name))
}

// Has reports whether the canonical form of name is present, including
// entries set to the empty string.
func (h Header) Has(name string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// Clone returns a copy of the header, nil stays nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}

	clone := make(Header, len(h))
	for name, value := range h {
		clone[name] = value
	}

	return clone
}

var (
	// ErrHijacked is the sentinel a handler returns after it took over the
	// underlying connection via [Request.Hijack]. It tells the dispatcher
	// that no response must be written on the normal path.
	ErrHijacked = errors.New("ahttp: connection hijacked")

	// ErrAlreadyHijacked is returned by [Request.Hijack] when the request's
	// connection was taken over before.
	ErrAlreadyHijacked = errors.New("ahttp: request was already hijacked")

	// ErrBodyAfterHijack is returned by body reads once the request's
	// connection has been hijacked.
	ErrBodyAfterHijack = errors.New("ahttp: request body is unavailable after hijack")

	// ErrHijackUnsupported is returned by [Request.Hijack] when the
	// underlying transport cannot detach the connection.
	ErrHijackUnsupported = errors.New("ahttp: underlying transport does not support hijacking")
)

// HijackFunc detaches the underlying connection from the transport's normal
// write path before any status line or headers were flushed and returns the
// resulting bidirectional byte stream.
type HijackFunc func() (net.Conn, *bufio.ReadWriter, error)

const (
	hijackFree int32 = iota
	hijackPending
	hijackDone
)

// hijackState is the one-shot Not-Hijacked to Hijacked transition. It is
// shared between a Request and all requests derived from it. The pending
// state covers the detach call itself, so a failed detach never shows up
// as hijacked to concurrent observers.
type hijackState struct {
	state  atomic.Int32
	detach HijackFunc
}

// Request is an immutable inbound HTTP message. The only observable
// mutations are consuming the body stream and the one-shot hijack
// transition. Derived requests made with [Request.WithContext] share both.
type Request struct {
	method string
	url    *url.URL
	proto  string
	header Header
	body   *guardedBody
	ctx    context.Context
	hijack *hijackState
}

// NewRequest constructs a request without a hijack capability, as used by
// tests and by middleware that synthesizes requests. Hijacking it returns
// [ErrHijackUnsupported]. A nil body reads as empty.
func NewRequest(method string, u *url.URL, header Header, body io.Reader) *Request {
	return newRequest(method, u, "HTTP/1.1", header, body, context.Background(), nil)
}

func newRequest(
	method string, u *url.URL, proto string, header Header,
	body io.Reader, ctx context.Context, detach HijackFunc,
) *Request {
	if body == nil {
		body = bytes.NewReader(nil)
	}

	state := &hijackState{detach: detach}

	return &Request{
		method: method,
		url:    u,
		proto:  proto,
		header: header,
		body:   &guardedBody{src: body, state: state},
		ctx:    ctx,
		hijack: state,
	}
}

// Method returns the request method, e.g. "GET".
func (r *Request) Method() string { return r.method }

// URL returns the requested URL. Callers must not modify it.
func (r *Request) URL() *url.URL { return r.url }

// Proto returns the protocol version, e.g. "HTTP/1.1".
func (r *Request) Proto() string { return r.proto }

// Header returns the folded request headers. Callers must treat the map as
// read-only; derive a copy with [Header.Clone] before changing it.
func (r *Request) Header() Header { return r.header }

// Body returns the consume-once body stream. Reads fail with
// [ErrBodyAfterHijack] once the request has been hijacked.
func (r *Request) Body() io.Reader { return r.body }

// Context returns the context this request was adapted under.
func (r *Request) Context() context.Context { return r.ctx }

// WithContext returns a shallow copy of the request carrying ctx. The copy
// shares the body stream and hijack state with the original.
func (r *Request) WithContext(ctx context.Context) *Request {
	derived := *r
	derived.ctx = ctx

	return &derived
}

// Hijack atomically takes exclusive ownership of the underlying connection.
// The transport will not write a status line or headers to it, and the
// normal response-writing path is permanently excluded for this request.
// A second call returns [ErrAlreadyHijacked]. A failed takeover leaves the
// request un-hijacked: [Request.Hijacked] stays false throughout and the
// normal response path remains available.
func (r *Request) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if r.hijack.detach == nil {
		return nil, nil, ErrHijackUnsupported
	}

	if !r.hijack.state.CompareAndSwap(hijackFree, hijackPending) {
		return nil, nil, ErrAlreadyHijacked
	}

	conn, buf, err := r.hijack.detach()
	if err != nil {
		r.hijack.state.Store(hijackFree)
		return nil, nil, errors.Wrap(err, "detach underlying connection")
	}

	r.hijack.state.Store(hijackDone)

	return conn, buf, nil
}

// Hijacked reports whether the request's connection has been taken over.
func (r *Request) Hijacked() bool { return r.hijack.state.Load() == hijackDone }

// guardedBody fails reads deterministically once the connection is hijacked,
// even when the handler captured the reader before hijacking.
type guardedBody struct {
	src   io.Reader
	state *hijackState
}

func (b *guardedBody) Read(p []byte) (int, error) {
	if b.state.state.Load() == hijackDone {
		return 0, ErrBodyAfterHijack
	}

	return b.src.Read(p)
}

// Response is an immutable outbound HTTP message. The body stream may be
// consumed exactly once, by the writer that serializes it to the wire.
type Response struct {
	status int
	header Header
	body   io.Reader
}

// NewResponse constructs a response. A nil body means an empty body.
func NewResponse(status int, header Header, body io.Reader) *Response {
	return &Response{status: status, header: header, body: body}
}

// StringResponse constructs a response with a fixed string body.
func StringResponse(status int, body string) *Response {
	return &Response{status: status, body: strings.NewReader(body)}
}

// EmptyResponse constructs a response without headers or body.
func EmptyResponse(status int) *Response {
	return &Response{status: status}
}

// Status returns the response status code.
func (r *Response) Status() int { return r.status }

// Header returns the response headers, possibly nil. Callers must treat the
// map as read-only.
func (r *Response) Header() Header { return r.header }

// Body returns the consume-once body stream, possibly nil.
func (r *Response) Body() io.Reader { return r.body }

// WithHeader returns a copy of the response with name set to value. The
// copy shares the body stream with the original.
func (r *Response) WithHeader(name, value string) *Response {
	derived := *r
	derived.header = r.header.Clone()

	if derived.header == nil {
		derived.header = make(Header, 1)
	}

	derived.header.Set(name, value)

	return &derived
}
