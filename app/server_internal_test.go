package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/ahttp"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewServerDispatch(t *testing.T) {
	handler := ahttp.HandlerFunc(func(_ context.Context, req *ahttp.Request) (*ahttp.Response, error) {
		if req.URL().Path == "/fail" {
			return nil, errors.New("nope")
		}

		return ahttp.StringResponse(http.StatusOK, "ok"), nil
	})

	server := NewServer(ServerParams{
		Env:     testEnv{},
		Handler: handler,
		Logger:  zaptest.NewLogger(t),
	})

	require.Equal(t, ":0", server.Addr)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test-server", rec.Header().Get("Server"))

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Body.String())
}
