package app_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/advdv/ahttp"
	"github.com/advdv/ahttp/app"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestAppLifecycle(t *testing.T) {
	t.Setenv("AHTTP_SERVICE_NAME", "lifecycle-test")
	t.Setenv("AHTTP_PORT", "0")

	a := app.New[app.BaseEnvironment](fx.Provide(func() ahttp.Handler {
		return ahttp.HandlerFunc(func(context.Context, *ahttp.Request) (*ahttp.Response, error) {
			return ahttp.EmptyResponse(http.StatusOK), nil
		})
	}))
	require.NoError(t, a.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, a.Start(ctx))
	require.NoError(t, a.Stop(ctx))
}
