// Package websock upgrades hijacked connections to the WebSocket protocol.
// It is the flagship consumer of the hijack protocol: the handshake and all
// subsequent frames travel over the connection taken from the transport with
// [ahttp.Request.Hijack], bypassing the normal response-writing path
// entirely.
package websock

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"net/http"

	"github.com/advdv/ahttp"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
)

// Upgrader wraps the gorilla upgrader so origin checks, buffer sizes and
// subprotocol negotiation can be configured while upgrading abstract
// requests. The zero value uses gorilla's defaults.
type Upgrader struct {
	websocket.Upgrader
}

// Upgrade performs the WebSocket handshake over the request's hijacked
// connection. On success the request is hijacked and the returned *Conn
// owns the connection; the handler must finish by returning
// [ahttp.ErrHijacked]. When the handshake is rejected before the takeover,
// a regular rejection response is returned instead for the handler to pass
// on unchanged.
func (u *Upgrader) Upgrade(req *ahttp.Request, responseHeader http.Header) (*websocket.Conn, *ahttp.Response, error) {
	raw, err := rawRequest(req)
	if err != nil {
		return nil, nil, err
	}

	shim := &rejectionWriter{req: req, header: make(http.Header)}

	conn, err := u.Upgrader.Upgrade(shim, raw, responseHeader)
	if err != nil {
		if req.Hijacked() {
			// the connection was taken over but the handshake failed on
			// it; nothing can be written anymore
			return nil, nil, errors.Wrap(err, "handshake on hijacked connection")
		}

		return nil, shim.response(), errors.Wrap(err, "upgrade rejected")
	}

	return conn, nil, nil
}

// Upgrade calls [Upgrader.Upgrade] with default settings.
func Upgrade(req *ahttp.Request, responseHeader http.Header) (*websocket.Conn, *ahttp.Response, error) {
	var u Upgrader
	return u.Upgrade(req, responseHeader)
}

// Handler adapts a WebSocket session function to an [ahttp.Handler]. The
// session runs synchronously on the upgraded connection, which is closed
// when it returns; session failures are hijack-path failures and surface
// through [ahttp.Dispatcher.ReportAsync] by callers that run sessions in
// the background.
func Handler(session func(ctx context.Context, conn *websocket.Conn) error) ahttp.Handler {
	return ahttp.HandlerFunc(func(ctx context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		conn, rejection, err := Upgrade(req, nil)
		if err != nil {
			if rejection != nil {
				return rejection, nil
			}

			return nil, err
		}

		defer conn.Close()

		if err := session(ctx, conn); err != nil {
			// the request is already hijacked, so this surfaces as a
			// reported failure without touching the connection
			return nil, errors.Wrap(err, "websocket session")
		}

		return nil, ahttp.ErrHijacked
	})
}

// Echo returns a handler that reads messages and writes them back until the
// peer closes the connection.
func Echo() ahttp.Handler {
	return Handler(func(_ context.Context, conn *websocket.Conn) error {
		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}

				return errors.Wrap(err, "read frame")
			}

			if err := conn.WriteMessage(kind, msg); err != nil {
				return errors.Wrap(err, "write frame")
			}
		}
	})
}

// rawRequest synthesizes the minimal raw request the gorilla upgrader
// inspects during the handshake: method, negotiation headers and host.
func rawRequest(req *ahttp.Request) (*http.Request, error) {
	if req.URL() == nil {
		return nil, errors.New("request carries no URL")
	}

	header := make(http.Header, len(req.Header()))
	for name, value := range req.Header() {
		if value == "" {
			continue
		}

		header.Set(name, value)
	}

	return &http.Request{
		Method: req.Method(),
		URL:    req.URL(),
		Proto:  req.Proto(),
		Header: header,
		Host:   header.Get("Host"),
	}, nil
}

// rejectionWriter captures what the upgrader writes when it refuses the
// handshake before hijacking, so the refusal can travel back as an
// ordinary response.
type rejectionWriter struct {
	req    *ahttp.Request
	header http.Header
	status int
	body   bytes.Buffer
}

func (w *rejectionWriter) Header() http.Header { return w.header }

func (w *rejectionWriter) WriteHeader(status int) { w.status = status }

func (w *rejectionWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	return w.body.Write(p)
}

// Hijack implements http.Hijacker by taking over the abstract request's
// connection, so the upgrader never writes the handshake through the
// normal path.
func (w *rejectionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.req.Hijack()
}

func (w *rejectionWriter) response() *ahttp.Response {
	status := w.status
	if status == 0 {
		status = http.StatusBadRequest
	}

	header := make(ahttp.Header, len(w.header))
	for name, values := range w.header {
		for _, value := range values {
			header.Set(name, value)
		}
	}

	return ahttp.NewResponse(status, header, bytes.NewReader(w.body.Bytes()))
}
