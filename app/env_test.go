package app_test

import (
	"testing"
	"time"

	"github.com/advdv/ahttp/app"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("AHTTP_SERVICE_NAME", "test-svc")

	env, err := app.ParseEnv[app.BaseEnvironment]()()
	require.NoError(t, err)

	require.Equal(t, "test-svc", env.ServiceName)
	require.Equal(t, 8080, env.Port)
	require.Equal(t, zapcore.InfoLevel, env.LogLevel)
	require.Equal(t, "ahttp", env.ServerHeader)
	require.Equal(t, 5*time.Second, env.ReadHeaderTimeout)
	require.Equal(t, 120*time.Second, env.IdleTimeout)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("AHTTP_SERVICE_NAME", "test-svc")
	t.Setenv("AHTTP_PORT", "9999")
	t.Setenv("AHTTP_LOG_LEVEL", "debug")
	t.Setenv("AHTTP_SERVER_HEADER", "test-svc/2")

	env, err := app.ParseEnv[app.BaseEnvironment]()()
	require.NoError(t, err)

	require.Equal(t, 9999, env.Port)
	require.Equal(t, zapcore.DebugLevel, env.LogLevel)
	require.Equal(t, "test-svc/2", env.ServerHeader)
}

func TestParseEnvMissingRequired(t *testing.T) {
	_, err := app.ParseEnv[app.BaseEnvironment]()()
	require.ErrorContains(t, err, "failed to parse environment")
}
