package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/servekit/core/compress"
	"github.com/dmitrymomot/servekit/core/handler"
	"github.com/dmitrymomot/servekit/core/outcome"
	"github.com/dmitrymomot/servekit/core/request"
	"github.com/dmitrymomot/servekit/core/response"
	"github.com/dmitrymomot/servekit/core/vhost"
)

// process drives one request through the pipeline. Every exit path, normal
// or panicking, runs the cleanup funnel in finish.
func (s *Server) process(rw http.ResponseWriter, r *http.Request, port int, secure bool) {
	st := &procState{
		start: time.Now(),
		raw:   r,
		w:     newTrackingWriter(rw),
	}

	// Registered first so it runs last: re-raises aborts and surfaced
	// faults after the funnel has done its accounting.
	defer func() {
		if st.repanic != nil {
			panic(st.repanic)
		}
	}()
	defer s.finish(st)
	defer s.capture(st)

	s.pipeline(st, r, port, secure)
}

func (s *Server) pipeline(st *procState, r *http.Request, port int, secure bool) {
	// Envelope construction is the malformed-input boundary.
	opts := []request.Option{request.WithSecure(secure)}
	if s.resolver != nil {
		opts = append(opts, request.WithResolver(s.resolver))
	}
	if s.maxBodySize > 0 {
		opts = append(opts, request.WithMaxBodySize(s.maxBodySize))
	}
	env, err := request.New(r, port, opts...)
	if err != nil {
		st.err = err
		s.reject(st, http.StatusBadRequest, outcome.MalformedRequest)
		return
	}
	st.env = env
	st.rc = handler.NewRequestContext(env)

	// Host resolution.
	host := s.registry.Resolve(env.Hostname(), port)
	if host == nil {
		st.err = fmt.Errorf("%w: %s:%d", ErrUnknownHost, env.Hostname(), port)
		s.reject(st, http.StatusBadRequest, outcome.DnsUnknownHost)
		return
	}
	st.rc.SetHost(host)
	if !host.Ready() {
		st.err = fmt.Errorf("%w: %s", ErrHostNotReady, host.Name())
		s.reject(st, http.StatusServiceUnavailable, outcome.ListeningHostNotReady)
		return
	}

	// Admission checks run before the routing collaborator ever sees the
	// request.
	if s.maxBodySize > 0 && env.ContentLength() > s.maxBodySize {
		st.err = fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, env.ContentLength(), s.maxBodySize)
		s.reject(st, http.StatusRequestEntityTooLarge, outcome.ContentTooLarge)
		return
	}
	if s.strictBodyless && bodylessMethod(env.Method()) && env.HasBody() {
		st.err = fmt.Errorf("%w: %s", ErrIllegalMethodBody, env.Method())
		s.reject(st, http.StatusBadRequest, outcome.ContentServedOnIllegalMethod)
		return
	}
	if s.requestIDHeader != "" {
		st.w.Header().Set(s.requestIDHeader, uuid.NewString())
	}
	if s.serverID != "" {
		st.w.Header().Set("Server", s.serverID)
	}

	// Compatibility mode serializes processing from here through the
	// funnel. Acceptance already happened and is never serialized.
	if s.compatMode {
		s.serialMu.Lock()
		st.mutexHeld = true
	}

	// Routing, raced against the deadline when one is configured.
	res, timedOut := s.invokeRouter(r.Context(), st, host.Router())
	if timedOut {
		st.err = ErrRequestTimeout
		st.suppressError = true
		s.reject(st, http.StatusRequestTimeout, outcome.RequestTimeout)
		return
	}
	st.rc.SetRoute(res.Route)

	envOut := res.Response
	if res.Err != nil && envOut == nil {
		envOut = response.NewUnhandledException(res.Err)
	}
	if envOut == nil {
		st.class = outcome.NoResponse
		s.writeStatus(st, http.StatusNoContent)
		return
	}

	switch envOut.Completion() {
	case response.Empty:
		st.class = outcome.NoResponse
		s.writeStatus(st, http.StatusNoContent)

	case response.UnhandledException:
		st.err = envOut.Err()
		if s.surfaceFaults {
			// Diagnostic mode: re-raise instead of answering 500. The
			// funnel still runs on the way out.
			panic(st.err)
		}
		st.class = outcome.UncaughtExceptionThrown
		s.writeStatus(st, http.StatusInternalServerError)

	case response.ClientClose, response.ServerClose:
		st.class = outcome.ConnectionClosed
		s.closeConnection(st, false)

	case response.Refuse:
		st.class = outcome.ConnectionClosed
		s.closeConnection(st, true)

	case response.EventSourceClose:
		st.class = outcome.EventSourceClosed
		st.status = http.StatusOK
		st.streamed = envOut.StreamedBytes()

	case response.Normal:
		s.deliver(st, envOut)

	default:
		st.err = fmt.Errorf("unknown completion tag %d", envOut.Completion())
		st.class = outcome.UncaughtExceptionThrown
		s.writeStatus(st, http.StatusInternalServerError)
	}
}

// invokeRouter calls the routing collaborator in its own goroutine and,
// when a routing timeout is configured, races its completion against the
// deadline. On timeout the context is cancelled and the wait abandoned: a
// collaborator that ignores cancellation keeps running in the background
// with whatever side effects it produces.
func (s *Server) invokeRouter(parent context.Context, st *procState, router handler.Router) (handler.Result, bool) {
	ctx, cancel := context.WithCancel(parent)
	st.cancelRoute = cancel

	resCh := make(chan handler.Result, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				resCh <- handler.Result{Err: toError(v)}
			}
		}()
		resCh <- router.Execute(ctx, st.rc)
	}()

	if s.routingTimeout <= 0 {
		return <-resCh, false
	}

	timer := time.NewTimer(s.routingTimeout)
	defer timer.Stop()
	select {
	case res := <-resCh:
		return res, false
	case <-timer.C:
		cancel()
		return handler.Result{}, true
	}
}

// deliver runs header composition, CORS, compression negotiation, framing,
// and body streaming for a Normal envelope.
func (s *Server) deliver(st *procState, env *response.Envelope) {
	req := st.env
	hdr := st.w.Header()

	// CORS applies only when the matched route allows it.
	if route := st.rc.Route(); route != nil && route.AllowCORS {
		if h, ok := st.rc.Host().(*vhost.Host); ok && h.CORS() != nil {
			applyCORS(env.Header(), h.CORS(), req.Header().Get("Origin"))
		}
	}

	// Three-tier composition: route-set values first, extras appended
	// without replacing, overrides replacing whatever is there.
	env.Header().Each(func(name string, values []string) {
		for _, v := range values {
			hdr.Add(name, v)
		}
	})
	st.rc.ExtraHeader().Each(func(name string, values []string) {
		for _, v := range values {
			hdr.Add(name, v)
		}
	})
	st.rc.OverrideHeader().Each(func(name string, values []string) {
		hdr.Del(name)
		for _, v := range values {
			hdr.Add(name, v)
		}
	})

	content := env.Content()

	// Compression negotiation. Content already carrying an encoding, or of
	// a compressed media type, passes through untouched.
	if s.compression && content != nil &&
		hdr.Get("Content-Encoding") == "" &&
		compress.Compressible(hdr.Get("Content-Type")) {
		if enc, ok := compress.Negotiate(req.Header().Get("Accept-Encoding")); ok {
			content = compress.Wrap(content, enc)
			hdr.Set("Content-Encoding", enc)
			hdr.Add("Vary", "Accept-Encoding")
		}
	}

	// Framing: explicit chunked wins; otherwise a determinable length gets
	// Content-Length and anything else falls back to chunked. Never both:
	// any chunked path drops a router-set Content-Length, which no longer
	// describes the bytes on the wire once the producer is wrapped.
	code, _ := env.Status()
	chunked := env.Chunked()
	if chunked {
		hdr.Del("Content-Length")
	} else if content != nil {
		if n, ok := content.Length(); ok {
			hdr.Set("Content-Length", strconv.FormatInt(n, 10))
		} else {
			chunked = true
			hdr.Del("Content-Length")
		}
	} else if bodyAllowed(code) {
		hdr.Set("Content-Length", "0")
	}

	st.status = code
	st.w.WriteHeader(code)

	// HEAD computes headers as GET would but never sends body bytes.
	if req.Method() == http.MethodHead || content == nil || !bodyAllowed(code) {
		st.class = outcome.Success
		return
	}

	if _, err := content.WriteTo(st.w); err != nil {
		// Client severed the connection mid-transfer.
		st.err = err
		st.class = outcome.ConnectionClosed
		st.suppressError = true
		st.suppressAccess = true
		return
	}
	st.class = outcome.Success
}

// applyCORS writes the Access-Control-Allow-* headers from the host policy
// into the route-set header tier.
func applyCORS(hdr *response.Header, policy *vhost.CORSPolicy, requestOrigin string) {
	origin, ok := policy.ResolveOrigin(requestOrigin)
	if !ok {
		return
	}
	hdr.Set("Access-Control-Allow-Origin", origin)
	if policy.Mode != vhost.OriginFixed {
		hdr.Add("Vary", "Origin")
	}
	if len(policy.AllowMethods) > 0 {
		hdr.Set("Access-Control-Allow-Methods", strings.Join(policy.AllowMethods, ", "))
	}
	if len(policy.AllowHeaders) > 0 {
		hdr.Set("Access-Control-Allow-Headers", strings.Join(policy.AllowHeaders, ", "))
	}
	if len(policy.ExposeHeaders) > 0 {
		hdr.Set("Access-Control-Expose-Headers", strings.Join(policy.ExposeHeaders, ", "))
	}
	if policy.AllowCredentials && origin != "*" {
		hdr.Set("Access-Control-Allow-Credentials", "true")
	}
	if policy.MaxAge > 0 {
		hdr.Set("Access-Control-Max-Age", strconv.Itoa(policy.MaxAge))
	}
}

// closeConnection takes the connection away from the HTTP machinery and
// closes it without writing a response: gracefully for ServerClose and
// ClientClose, abruptly (linger zero, simulating a reset) for Refuse. The
// actual close happens in the funnel so it runs exactly once.
func (s *Server) closeConnection(st *procState, abrupt bool) {
	conn, _, err := st.w.Hijack()
	if err != nil {
		// No raw connection access (HTTP/2): aborting the handler is the
		// closest available behavior.
		st.repanic = http.ErrAbortHandler
		return
	}
	st.conn = conn
	st.abrupt = abrupt
}

// reject answers a pipeline short-circuit with a plain status response.
func (s *Server) reject(st *procState, code int, class outcome.Classification) {
	st.class = class
	s.writeStatus(st, code)
}

func (s *Server) writeStatus(st *procState, code int) {
	st.status = code
	if st.w.Written() {
		return
	}
	hdr := st.w.Header()
	if bodyAllowed(code) {
		hdr.Set("Content-Type", "text/plain; charset=utf-8")
		hdr.Set("X-Content-Type-Options", "nosniff")
		body := fmt.Sprintf("%d %s\n", code, http.StatusText(code))
		hdr.Set("Content-Length", strconv.Itoa(len(body)))
		st.w.WriteHeader(code)
		if st.env == nil || st.env.Method() != http.MethodHead {
			_, _ = st.w.Write([]byte(body))
		}
		return
	}
	st.w.WriteHeader(code)
}

func bodylessMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// bodyAllowed mirrors the RFC rules net/http enforces.
func bodyAllowed(code int) bool {
	if code >= 100 && code <= 199 {
		return false
	}
	return code != http.StatusNoContent && code != http.StatusNotModified
}

func toError(v any) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	default:
		return fmt.Errorf("panic: %v", e)
	}
}
