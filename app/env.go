package app

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must
// implement. Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	serverHeader() string
	readHeaderTimeout() time.Duration
	idleTimeout() time.Duration
}

// BaseEnvironment contains the required environment variables. Embed this in
// your custom environment struct.
type BaseEnvironment struct {
	Port        int           `env:"AHTTP_PORT"         envDefault:"8080"`
	ServiceName string        `env:"AHTTP_SERVICE_NAME,required"`
	LogLevel    zapcore.Level `env:"AHTTP_LOG_LEVEL"    envDefault:"info"`
	// ServerHeader is injected into responses that set no Server header of
	// their own.
	ServerHeader      string        `env:"AHTTP_SERVER_HEADER"       envDefault:"ahttp"`
	ReadHeaderTimeout time.Duration `env:"AHTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"AHTTP_IDLE_TIMEOUT"        envDefault:"120s"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) serverHeader() string {
	return e.ServerHeader
}

func (e BaseEnvironment) readHeaderTimeout() time.Duration {
	return e.ReadHeaderTimeout
}

func (e BaseEnvironment) idleTimeout() time.Duration {
	return e.IdleTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
