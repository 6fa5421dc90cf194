package ahttp_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/advdv/ahttp"
	"github.com/carlmjohnson/requests"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards diagnostic output written from server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// rawGet writes a bare HTTP/1.1 request over a plain TCP connection and
// returns every byte the server sends back, so tests can assert that a
// hijacked connection carries exactly the handler's bytes and nothing
// injected by the writer.
func rawGet(t *testing.T, addr, path string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "GET "+path+" HTTP/1.1\r\nHost: test\r\n\r\n")
	require.NoError(t, err)

	data, err := io.ReadAll(conn)
	require.NoError(t, err)

	return string(data)
}

func TestHijackRawTakeover(t *testing.T) {
	diag := &syncBuffer{}

	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		conn, _, err := req.Hijack()
		if err != nil {
			return nil, err
		}

		defer conn.Close()

		if _, err := io.WriteString(conn, "raw takeover bytes"); err != nil {
			return nil, err
		}

		return nil, ahttp.ErrHijacked
	})

	srv := httptest.NewServer(ahttp.Serve(handler, ahttp.WithErrorHandler(ahttp.NewLogErrorHandler(diag))))
	defer srv.Close()

	got := rawGet(t, srv.Listener.Addr().String(), "/")
	require.Equal(t, "raw takeover bytes", got, "no status line or headers may be injected")
	require.Empty(t, diag.String())
}

func TestHijackExclusivity(t *testing.T) {
	type result struct{ second, body error }
	results := make(chan result, 1)

	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		conn, _, err := req.Hijack()
		if err != nil {
			return nil, err
		}

		defer conn.Close()

		var res result
		_, _, res.second = req.Hijack()
		_, res.body = io.ReadAll(req.Body())
		results <- res

		return nil, ahttp.ErrHijacked
	})

	srv := httptest.NewServer(ahttp.Serve(handler))
	defer srv.Close()

	rawGet(t, srv.Listener.Addr().String(), "/")

	res := <-results
	require.ErrorIs(t, res.second, ahttp.ErrAlreadyHijacked)
	require.ErrorIs(t, res.body, ahttp.ErrBodyAfterHijack)
}

func TestHijackResponseMismatch(t *testing.T) {
	diag := &syncBuffer{}

	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		conn, _, err := req.Hijack()
		if err != nil {
			return nil, err
		}

		defer conn.Close()

		if _, err := io.WriteString(conn, "hijacker owns this"); err != nil {
			return nil, err
		}

		// contract violation: a response alongside the hijack
		return ahttp.StringResponse(http.StatusOK, "must never be written"), nil
	})

	srv := httptest.NewServer(ahttp.Serve(handler, ahttp.WithErrorHandler(ahttp.NewLogErrorHandler(diag))))
	defer srv.Close()

	got := rawGet(t, srv.Listener.Addr().String(), "/")
	require.Equal(t, "hijacker owns this", got, "the ordinary response must be discarded")

	// the mismatch is reported after the hijacker closed the connection
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(diag.String()), []byte("ERROR - invalid hijack signal"))
	}, time.Second, 10*time.Millisecond)
}

func TestHijackWithoutSentinelCompletes(t *testing.T) {
	diag := &syncBuffer{}

	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		conn, _, err := req.Hijack()
		if err != nil {
			return nil, err
		}

		defer conn.Close()

		_, err = io.WriteString(conn, "quietly hijacked")

		return nil, err
	})

	srv := httptest.NewServer(ahttp.Serve(handler, ahttp.WithErrorHandler(ahttp.NewLogErrorHandler(diag))))
	defer srv.Close()

	got := rawGet(t, srv.Listener.Addr().String(), "/")
	require.Equal(t, "quietly hijacked", got)
	require.Empty(t, diag.String())
}

func TestServingContinuesAfterFailures(t *testing.T) {
	diag := &syncBuffer{}

	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		switch req.URL().Path {
		case "/panic":
			panic("boom")
		case "/hijack":
			conn, _, err := req.Hijack()
			if err != nil {
				return nil, err
			}
			conn.Close()

			return nil, ahttp.ErrHijacked
		default:
			return ahttp.StringResponse(http.StatusOK, "still alive"), nil
		}
	})

	srv := httptest.NewServer(ahttp.Serve(handler, ahttp.WithErrorHandler(ahttp.NewLogErrorHandler(diag))))
	defer srv.Close()

	ctx := context.Background()

	var first string
	err := requests.URL(srv.URL).Path("/panic").CheckStatus(http.StatusInternalServerError).ToString(&first).Fetch(ctx)
	require.NoError(t, err)

	rawGet(t, srv.Listener.Addr().String(), "/hijack")

	var second string
	err = requests.URL(srv.URL).Path("/ok").ToString(&second).Fetch(ctx)
	require.NoError(t, err)
	require.Equal(t, "still alive", second)

	require.Contains(t, diag.String(), "ERROR - error thrown by handler")
}
