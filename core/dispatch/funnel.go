package dispatch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/dmitrymomot/servekit/core/handler"
	"github.com/dmitrymomot/servekit/core/outcome"
	"github.com/dmitrymomot/servekit/core/request"
)

// procState is the per-request processing state threaded from acceptance
// through the cleanup funnel.
type procState struct {
	start time.Time
	raw   *http.Request
	w     *trackingWriter

	env *request.Envelope
	rc  *handler.RequestContext

	class    outcome.Classification
	status   int
	err      error
	streamed int64

	suppressAccess bool
	suppressError  bool

	mutexHeld   bool
	cancelRoute context.CancelFunc

	// hijacked connection pending close, and whether to reset it.
	conn   net.Conn
	abrupt bool

	finalized bool
	repanic   any
}

// capture classifies panics escaping the pipeline. It runs before the
// funnel, so the funnel always sees a settled classification.
func (s *Server) capture(st *procState) {
	v := recover()
	if v == nil {
		return
	}
	if v == http.ErrAbortHandler { //nolint:errorlint // sentinel identity is the contract
		// Deliberate abort, raised by this pipeline or a collaborator.
		if st.class == outcome.Success {
			st.class = outcome.ConnectionClosed
		}
		st.suppressAccess = true
		st.suppressError = true
		st.repanic = v
		return
	}

	err := toError(v)
	st.err = err
	switch {
	case errors.Is(err, net.ErrClosed):
		// The connection object was released concurrently. An expected
		// teardown race, not an operator-actionable fault.
		st.class = outcome.ExceptionThrown
		st.suppressError = true

	case isConnFault(err):
		st.class = outcome.ConnectionClosed
		st.suppressError = true
		st.suppressAccess = true

	default:
		if s.surfaceFaults {
			st.class = outcome.UncaughtExceptionThrown
			st.repanic = v
			return
		}
		st.class = outcome.UncaughtExceptionThrown
		if !st.w.Written() {
			s.writeStatus(st, http.StatusInternalServerError)
		}
		// Once headers are committed the wire code stands; the Outcome
		// carries it, with the fault in Classification and Err.
	}
}

// finish is the cleanup funnel. It runs for every request regardless of the
// path taken: stops the routing timer, settles byte counts, closes or aborts
// the sink exactly once, releases the compatibility mutex, disposes bag
// entries, and invokes hooks and recorders.
func (s *Server) finish(st *procState) {
	if st.cancelRoute != nil {
		st.cancelRoute()
		st.cancelRoute = nil
	}

	out := &outcome.Outcome{
		Classification: st.class,
		StatusCode:     st.effectiveStatus(),
		BytesSent:      st.w.BytesSent() + st.streamed,
		Elapsed:        time.Since(st.start),
		Err:            st.err,
	}
	if st.env != nil {
		out.BytesReceived = st.env.BytesReceived()
	}

	s.closeOutput(st)

	if st.mutexHeld {
		s.serialMu.Unlock()
		st.mutexHeld = false
	}

	if s.disposeBag && st.rc != nil {
		st.rc.CloseDisposables()
	}

	for _, fn := range s.onRequestClosed {
		fn(out)
	}
	if st.err != nil && !st.suppressError {
		for _, fn := range s.onException {
			fn(st.err)
		}
		if st.class == outcome.UncaughtExceptionThrown {
			s.log.Error("uncaught exception",
				"method", st.raw.Method,
				"url", st.raw.URL.String(),
				"error", st.err,
			)
		}
	}

	info := st.info()
	if s.accessLog != nil && !st.suppressAccess {
		s.accessLog.Record(info, out)
	}
	for _, rec := range s.recorders {
		rec.Record(info, out)
	}
}

// closeOutput finalizes the response sink exactly once: hijacked connections
// are closed (with linger zero for abrupt closes, falling back to a plain
// close if the graceful path fails), everything else is flushed and left to
// the HTTP machinery.
func (s *Server) closeOutput(st *procState) {
	if st.finalized {
		return
	}
	st.finalized = true

	if st.conn != nil {
		if st.abrupt {
			if tcp, ok := st.conn.(*net.TCPConn); ok {
				_ = tcp.SetLinger(0)
			}
		}
		if err := st.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Debug("close connection", "error", err)
		}
		return
	}

	if st.repanic == nil {
		st.w.Flush()
	}
}

func (st *procState) effectiveStatus() int {
	if st.w.Written() {
		return st.w.Status()
	}
	return st.status
}

func (st *procState) info() outcome.RequestInfo {
	info := outcome.RequestInfo{
		Method:     st.raw.Method,
		URL:        st.raw.URL.String(),
		Proto:      st.raw.Proto,
		Header:     st.raw.Header,
		Host:       st.raw.Host,
		RemoteAddr: st.raw.RemoteAddr,
		Received:   st.start,
	}
	if st.env != nil {
		info.Host = st.env.Hostname()
		info.RemoteAddr = st.env.RemoteAddr()
	}
	return info
}

// isConnFault reports whether err is a low-level connectivity failure: the
// client severed the connection mid-transfer.
func isConnFault(err error) bool {
	if errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
