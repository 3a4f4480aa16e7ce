package dispatch

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/servekit/core/outcome"
	"github.com/dmitrymomot/servekit/core/request"
)

// Option configures server behavior.
type Option func(*Server)

// WithLogger sets the logger for server lifecycle events. Per-request
// accounting goes through recorders, not this logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithReadTimeout sets the listener read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = d
	}
}

// WithWriteTimeout sets the listener write timeout. Zero leaves streaming
// responses unbounded.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// WithIdleTimeout sets the keep-alive idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.idleTimeout = d
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithRoutingTimeout races the routing collaborator against a deadline.
// When the deadline wins the client receives 408 and the collaborator is
// abandoned: its context is cancelled but a collaborator that ignores
// cancellation keeps running in the background.
func WithRoutingTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.routingTimeout = d
	}
}

// WithMaxBodySize rejects requests declaring a larger body with 413 before
// routing runs. Zero means unlimited.
func WithMaxBodySize(limit int64) Option {
	return func(s *Server) {
		s.maxBodySize = limit
	}
}

// WithStrictBodylessMethods rejects bodies on GET, HEAD, OPTIONS and TRACE
// with 400.
func WithStrictBodylessMethods() Option {
	return func(s *Server) {
		s.strictBodyless = true
	}
}

// WithCompatibilityMode serializes request processing behind a single mutex
// acquired before routing and released in the cleanup funnel. Acceptance is
// never serialized. Trades throughput for legacy single-threaded semantics.
func WithCompatibilityMode() Option {
	return func(s *Server) {
		s.compatMode = true
	}
}

// WithCompression toggles Accept-Encoding negotiation.
func WithCompression(enabled bool) Option {
	return func(s *Server) {
		s.compression = enabled
	}
}

// WithRequestIDHeader stamps each response with a generated request id under
// the given header name.
func WithRequestIDHeader(name string) Option {
	return func(s *Server) {
		s.requestIDHeader = name
	}
}

// WithServerID emits the given value as the Server response header.
func WithServerID(id string) Option {
	return func(s *Server) {
		s.serverID = id
	}
}

// WithResolver installs a forwarding resolver consulted during envelope
// construction.
func WithResolver(res request.Resolver) Option {
	return func(s *Server) {
		s.resolver = res
	}
}

// WithAccessLog sets the logging collaborator receiving request outcomes.
// It is skipped for requests whose access logging is suppressed (client
// disconnects mid-transfer).
func WithAccessLog(rec outcome.Recorder) Option {
	return func(s *Server) {
		s.accessLog = rec
	}
}

// WithRecorder adds a telemetry recorder invoked for every request outcome,
// including suppressed ones.
func WithRecorder(recs ...outcome.Recorder) Option {
	return func(s *Server) {
		s.recorders = append(s.recorders, recs...)
	}
}

// WithDisposableBag closes side-channel bag entries implementing io.Closer
// when the request is torn down.
func WithDisposableBag() Option {
	return func(s *Server) {
		s.disposeBag = true
	}
}

// WithSurfaceFaults re-raises unexpected faults to the caller instead of
// converting them to 500 responses. Diagnostic and test use only.
func WithSurfaceFaults() Option {
	return func(s *Server) {
		s.surfaceFaults = true
	}
}

// OnRequestClosed registers a hook invoked from the cleanup funnel after
// every request, before recorders run.
func OnRequestClosed(fn func(*outcome.Outcome)) Option {
	return func(s *Server) {
		s.onRequestClosed = append(s.onRequestClosed, fn)
	}
}

// OnException registers a hook invoked for loggable server faults.
func OnException(fn func(error)) Option {
	return func(s *Server) {
		s.onException = append(s.onException, fn)
	}
}
