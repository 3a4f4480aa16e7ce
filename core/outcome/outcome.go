package outcome

import (
	"net/http"
	"time"
)

// Classification summarizes how a request's processing ended, independent of
// the wire status code. It feeds logging and telemetry collaborators and never
// appears on the wire itself.
type Classification int

const (
	// Success indicates the response was produced and delivered normally.
	Success Classification = iota
	// NoResponse indicates the routing collaborator produced no envelope (204).
	NoResponse
	// DnsUnknownHost indicates no virtual host matched the request (400).
	DnsUnknownHost
	// ListeningHostNotReady indicates the matched host has no bound router
	// or is not ready to serve (503).
	ListeningHostNotReady
	// ContentTooLarge indicates the declared body exceeded the server's
	// maximum (413).
	ContentTooLarge
	// ContentServedOnIllegalMethod indicates a body was present on a
	// conventionally bodyless method (400).
	ContentServedOnIllegalMethod
	// MalformedRequest indicates envelope construction failed on bad client
	// input (400).
	MalformedRequest
	// RequestTimeout indicates the routing deadline expired (408).
	RequestTimeout
	// UncaughtExceptionThrown indicates the routing collaborator failed with
	// an unhandled error (500).
	UncaughtExceptionThrown
	// ConnectionClosed indicates the connection ended by request of either
	// peer, or was severed mid-transfer.
	ConnectionClosed
	// EventSourceClosed indicates an event-stream collaborator finished
	// writing directly to the connection.
	EventSourceClosed
	// ExceptionThrown indicates a fault on an already-released resource,
	// an expected teardown race rather than a server error.
	ExceptionThrown
)

var classificationNames = map[Classification]string{
	Success:                      "Success",
	NoResponse:                   "NoResponse",
	DnsUnknownHost:               "DnsUnknownHost",
	ListeningHostNotReady:        "ListeningHostNotReady",
	ContentTooLarge:              "ContentTooLarge",
	ContentServedOnIllegalMethod: "ContentServedOnIllegalMethod",
	MalformedRequest:             "MalformedRequest",
	RequestTimeout:               "RequestTimeout",
	UncaughtExceptionThrown:      "UncaughtExceptionThrown",
	ConnectionClosed:             "ConnectionClosed",
	EventSourceClosed:            "EventSourceClosed",
	ExceptionThrown:              "ExceptionThrown",
}

// String returns the canonical name of the classification.
func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Outcome is the post-hoc summary of one request's processing. The dispatcher
// produces exactly one Outcome per request and never mutates it after handing
// it to collaborators.
type Outcome struct {
	// Classification summarizes how processing ended.
	Classification Classification

	// StatusCode is the wire status code sent to the client, or the code
	// that would have been sent if headers were already committed.
	StatusCode int

	// BytesReceived counts request body bytes consumed from the client.
	BytesReceived int64

	// BytesSent counts response bytes written to the client.
	BytesSent int64

	// Elapsed is the wall time between request arrival and funnel completion.
	Elapsed time.Duration

	// Err holds the captured failure, if any.
	Err error
}

// RequestInfo carries the raw request metadata handed to logging collaborators
// alongside the Outcome. The core never formats log lines itself.
type RequestInfo struct {
	Method     string
	URL        string
	Proto      string
	Header     http.Header
	Host       string
	RemoteAddr string
	Received   time.Time
}

// Recorder consumes completed request outcomes. Implementations own
// formatting and persistence; the dispatcher only delivers the record.
type Recorder interface {
	Record(info RequestInfo, out *Outcome)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(info RequestInfo, out *Outcome)

// Record implements Recorder.
func (f RecorderFunc) Record(info RequestInfo, out *Outcome) { f(info, out) }

// MultiRecorder fans one outcome out to several recorders in order.
func MultiRecorder(recorders ...Recorder) Recorder {
	return RecorderFunc(func(info RequestInfo, out *Outcome) {
		for _, r := range recorders {
			r.Record(info, out)
		}
	})
}
