package accesslog

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/servekit/core/outcome"
)

// Recorder writes one structured access log line per completed request. It
// implements outcome.Recorder; formatting and persistence stay out of the
// dispatcher entirely.
type Recorder struct {
	log   *slog.Logger
	level slog.Level
}

// Option configures the recorder.
type Option func(*Recorder)

// WithLevel sets the level access lines are logged at. Defaults to Info.
func WithLevel(level slog.Level) Option {
	return func(r *Recorder) {
		r.level = level
	}
}

// New creates an access log recorder backed by the given logger.
func New(log *slog.Logger, opts ...Option) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	r := &Recorder{log: log, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements outcome.Recorder.
func (r *Recorder) Record(info outcome.RequestInfo, out *outcome.Outcome) {
	attrs := []any{
		slog.String("method", info.Method),
		slog.String("url", info.URL),
		slog.String("host", info.Host),
		slog.String("remote_addr", info.RemoteAddr),
		slog.Time("received", info.Received),
		slog.Int("status", out.StatusCode),
		slog.String("classification", out.Classification.String()),
		slog.Int64("bytes_in", out.BytesReceived),
		slog.Int64("bytes_out", out.BytesSent),
		slog.Duration("elapsed", out.Elapsed),
	}
	if out.Err != nil {
		attrs = append(attrs, slog.String("error", out.Err.Error()))
	}
	r.log.Log(context.Background(), r.level, "request", attrs...)
}
