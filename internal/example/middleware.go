// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"log/slog"

	"github.com/advdv/ahttp"
)

// ctxKey type scopes middleware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the context.
func Middleware(logs *slog.Logger) ahttp.Middleware {
	return func(n ahttp.Handler) ahttp.Handler {
		return ahttp.HandlerFunc(func(ctx context.Context, req *ahttp.Request) (*ahttp.Response, error) {
			logs := logs.With(
				slog.String("method", req.Method()),
				slog.String("path", req.URL().Path),
			)

			ctx = context.WithValue(ctx, ctxKey("slog"), logs)

			return n.ServeAHTTP(ctx, req.WithContext(ctx))
		})
	}
}

func Log(ctx context.Context) *slog.Logger {
	v, _ := ctx.Value(ctxKey("slog")).(*slog.Logger)

	return v
}
