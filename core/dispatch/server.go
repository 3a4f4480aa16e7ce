package dispatch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/servekit/core/outcome"
	"github.com/dmitrymomot/servekit/core/request"
	"github.com/dmitrymomot/servekit/core/vhost"
)

// Server is the dispatcher: it owns one listener per distinct registry port,
// accepts connections, and drives every request through the processing
// pipeline. All per-process state lives on the instance, so multiple servers
// coexist in one process.
type Server struct {
	registry *vhost.Registry
	log      *slog.Logger

	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	routingTimeout  time.Duration

	maxBodySize     int64
	strictBodyless  bool
	compatMode      bool
	compression     bool
	requestIDHeader string
	serverID        string
	disposeBag      bool
	surfaceFaults   bool

	resolver  request.Resolver
	accessLog outcome.Recorder
	recorders []outcome.Recorder

	onRequestClosed []func(*outcome.Outcome)
	onException     []func(error)

	// serialMu is the compatibility-mode processing lock. Acceptance never
	// takes it.
	serialMu sync.Mutex

	mu       sync.Mutex
	running  bool
	servers  []*http.Server
	shutdown context.CancelFunc
}

// New creates a dispatcher over the given host registry.
func New(registry *vhost.Registry, opts ...Option) (*Server, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	s := &Server{
		registry:        registry,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		readTimeout:     15 * time.Second,
		idleTimeout:     60 * time.Second,
		shutdownTimeout: 30 * time.Second,
		compression:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Registry returns the server's host registry.
func (s *Server) Registry() *vhost.Registry {
	return s.registry
}

// Handler returns the request pipeline for one listening port as an
// http.Handler, for embedding or tests that bring their own listener.
func (s *Server) Handler(port int, secure bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.process(w, r, port, secure)
	})
}

// Start opens a listener for every distinct port in the registry and blocks
// until the context is cancelled or a listener fails. Cancellation triggers
// graceful shutdown and returns ctx.Err().
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	s.running = true

	ports := s.registry.Ports()
	servers := make([]*http.Server, 0, len(ports))
	for _, p := range ports {
		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", p.Number),
			Handler:      s.Handler(p.Number, p.Secure),
			ReadTimeout:  s.readTimeout,
			WriteTimeout: s.writeTimeout,
			IdleTimeout:  s.idleTimeout,
		}
		if p.Secure {
			srv.TLSConfig = s.tlsConfigFor(p.Number)
		}
		servers = append(servers, srv)
	}
	s.servers = servers
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.servers = nil
		s.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			s.log.InfoContext(ctx, "listening", "addr", srv.Addr, "tls", srv.TLSConfig != nil)

			var err error
			if srv.TLSConfig != nil {
				err = srv.ListenAndServeTLS("", "")
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.shutdownAll(servers)
		return gctx.Err()
	})

	return g.Wait()
}

// Stop gracefully shuts down all listeners using the shutdown timeout.
func (s *Server) Stop() error {
	s.mu.Lock()
	servers := s.servers
	s.mu.Unlock()
	if len(servers) == 0 {
		return nil
	}
	s.shutdownAll(servers)
	return nil
}

// Run provides errgroup compatibility: the returned function starts the
// server and shuts it down when ctx is cancelled, reporting nil for a clean
// stop.
func (s *Server) Run(ctx context.Context) func() error {
	return func() error {
		err := s.Start(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

func (s *Server) shutdownAll(servers []*http.Server) {
	s.log.Info("shutting down", "timeout", s.shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Shutdown(ctx); err != nil {
				s.log.Error("shutdown listener", "addr", srv.Addr, "error", err)
				_ = srv.Close()
			}
		}()
	}
	wg.Wait()
}

// tlsConfigFor collects TLS material from every host with a secure binding
// on the port. SNI selection falls out of the certificate names.
func (s *Server) tlsConfigFor(port int) *tls.Config {
	var certs []tls.Certificate
	for _, h := range s.registry.Hosts() {
		for _, b := range h.Bindings() {
			if b.Port == port && b.Secure {
				certs = append(certs, h.Certificates()...)
				break
			}
		}
	}
	return &tls.Config{
		Certificates: certs,
		MinVersion:   tls.VersionTLS12,
	}
}
