package resolvex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs           []string
	password        string
	thresholds      Thresholds
	vocabTTL        time.Duration
	telemetryBuffer int
	logger          *zap.Logger
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithThresholds overrides the resolver's scoring weights and decision
// cut-offs. Zero fields keep their defaults.
func WithThresholds(t Thresholds) Option {
	return func(c *clientConfig) {
		c.thresholds = t
	}
}

// WithVocabTTL sets how long a built vocabulary stays cached.
func WithVocabTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.vocabTTL = ttl
	}
}

// WithTelemetryBuffer sets the telemetry event buffer size.
func WithTelemetryBuffer(size int) Option {
	return func(c *clientConfig) {
		c.telemetryBuffer = size
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
