package ahttp

import (
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultServerHeader is the Server header value injected into responses
// that do not set one themselves. Override per dispatcher with
// [WithServerHeader].
const DefaultServerHeader = "ahttp"

// writeResponse serializes resp to the raw transport response: status code,
// headers, then the body streamed to completion. Headers set to the empty
// string are skipped entirely, and Date and Server defaults are injected
// only for names the response neither sets nor suppresses. The transport
// closes the write side once the cycle returns, which marks the response as
// truly finished.
func writeResponse(w http.ResponseWriter, resp *Response, serverHeader string) error {
	raw := w.Header()

	for name, value := range resp.Header() {
		if value == "" {
			continue
		}

		raw.Set(name, value)
	}

	if !resp.Header().Has("Date") {
		raw.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}

	if !resp.Header().Has("Server") {
		raw.Set("Server", serverHeader)
	}

	w.WriteHeader(resp.Status())

	if resp.Body() == nil {
		return nil
	}

	if _, err := io.Copy(w, resp.Body()); err != nil {
		return errors.Wrap(err, "stream response body")
	}

	return nil
}
