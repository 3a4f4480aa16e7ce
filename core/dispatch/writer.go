package dispatch

import (
	"bufio"
	"net"
	"net/http"
)

// trackingWriter wraps the response sink, tracking commit state and bytes
// written so the cleanup funnel can account every request exactly once.
type trackingWriter struct {
	http.ResponseWriter
	status  int
	bytes   int64
	written bool
}

func newTrackingWriter(w http.ResponseWriter) *trackingWriter {
	return &trackingWriter{ResponseWriter: w}
}

func (w *trackingWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Written reports whether headers have been committed to the wire.
func (w *trackingWriter) Written() bool {
	return w.written
}

// Status returns the committed status code, 0 before commit.
func (w *trackingWriter) Status() int {
	return w.status
}

// BytesSent returns the response body bytes written so far.
func (w *trackingWriter) BytesSent() int64 {
	return w.bytes
}

// Flush implements http.Flusher when the underlying writer supports it.
func (w *trackingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack exposes the underlying connection for close-without-response
// handling. Unsupported on HTTP/2.
func (w *trackingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}
