package dispatch

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/servekit/core/vhost"
)

// Config holds dispatcher configuration with environment variable support.
type Config struct {
	// Connection timeouts handed to the underlying listeners.
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"0"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RoutingTimeout is the per-request deadline raced against the routing
	// collaborator. Zero disables the race.
	RoutingTimeout time.Duration `env:"SERVER_ROUTING_TIMEOUT" envDefault:"0"`

	// MaxBodySize rejects requests declaring a larger body with 413.
	// Zero means unlimited.
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" envDefault:"0"`

	// StrictBodylessMethods rejects bodies on GET, HEAD, OPTIONS and TRACE
	// with 400.
	StrictBodylessMethods bool `env:"SERVER_STRICT_BODYLESS_METHODS" envDefault:"false"`

	// CompatibilityMode serializes request processing (never acceptance)
	// behind one mutex for legacy single-threaded semantics.
	CompatibilityMode bool `env:"SERVER_COMPATIBILITY_MODE" envDefault:"false"`

	// Compression enables Accept-Encoding negotiation on responses.
	Compression bool `env:"SERVER_COMPRESSION" envDefault:"true"`

	// RequestIDHeader, when set, stamps each response with a generated
	// request id under this header name.
	RequestIDHeader string `env:"SERVER_REQUEST_ID_HEADER" envDefault:""`

	// ServerID, when set, is emitted as the Server response header.
	ServerID string `env:"SERVER_ID" envDefault:""`
}

// DefaultConfig returns a Config with the envDefault values.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:     15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Compression:     true,
	}
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse server config: %w", err)
	}
	return cfg, nil
}

// NewFromConfig creates a Server from configuration. Additional options
// override config values.
func NewFromConfig(registry *vhost.Registry, cfg Config, opts ...Option) (*Server, error) {
	configOpts := []Option{
		WithReadTimeout(cfg.ReadTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
		WithIdleTimeout(cfg.IdleTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
		WithRoutingTimeout(cfg.RoutingTimeout),
		WithMaxBodySize(cfg.MaxBodySize),
		WithCompression(cfg.Compression),
	}
	if cfg.StrictBodylessMethods {
		configOpts = append(configOpts, WithStrictBodylessMethods())
	}
	if cfg.CompatibilityMode {
		configOpts = append(configOpts, WithCompatibilityMode())
	}
	if cfg.RequestIDHeader != "" {
		configOpts = append(configOpts, WithRequestIDHeader(cfg.RequestIDHeader))
	}
	if cfg.ServerID != "" {
		configOpts = append(configOpts, WithServerID(cfg.ServerID))
	}
	configOpts = append(configOpts, opts...)

	return New(registry, configOpts...)
}
