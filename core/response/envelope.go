package response

import (
	"fmt"
	"net/http"
)

// MaxReasonLength bounds the reason phrase accepted by an envelope.
const MaxReasonLength = 8192

// Envelope is the mutable outgoing response: validated status line, ordered
// header multimap, optional content producer, and framing preference. The
// completion tag is fixed at construction and steers the dispatcher's state
// machine without ever reaching the wire.
type Envelope struct {
	code       int
	reason     string
	header     Header
	content    Content
	chunked    bool
	completion Completion

	// UnhandledException payload.
	err error

	// EventSourceClose payload: bytes the collaborator already wrote.
	streamed int64
}

// New creates a Normal envelope with the given status code and the standard
// reason phrase for it.
func New(code int) (*Envelope, error) {
	e := &Envelope{completion: Normal}
	if err := e.SetStatus(code, http.StatusText(code)); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEmpty creates an envelope tagged Empty; the dispatcher surfaces it
// as 204 with no body.
func NewEmpty() *Envelope {
	return &Envelope{code: http.StatusNoContent, reason: http.StatusText(http.StatusNoContent), completion: Empty}
}

// NewRefuse creates an envelope that aborts the connection abruptly.
func NewRefuse() *Envelope {
	return &Envelope{completion: Refuse}
}

// NewServerClose creates an envelope that closes the connection gracefully
// at the server's request.
func NewServerClose() *Envelope {
	return &Envelope{completion: ServerClose}
}

// NewClientClose creates an envelope recording a client-initiated close.
func NewClientClose() *Envelope {
	return &Envelope{completion: ClientClose}
}

// NewUnhandledException wraps a routing failure for the dispatcher to
// re-raise into its failure funnel.
func NewUnhandledException(err error) *Envelope {
	return &Envelope{
		code:       http.StatusInternalServerError,
		reason:     http.StatusText(http.StatusInternalServerError),
		completion: UnhandledException,
		err:        err,
	}
}

// NewEventSourceClose records a response that an event-stream collaborator
// already wrote directly to the connection, carrying its byte count.
func NewEventSourceClose(bytesWritten int64) *Envelope {
	return &Envelope{completion: EventSourceClose, streamed: bytesWritten}
}

// SetStatus validates and sets the status line. Code and reason are validated
// independently: the code must be a 3-digit integer, the reason must not
// exceed MaxReasonLength.
func (e *Envelope) SetStatus(code int, reason string) error {
	if code < 100 || code > 999 {
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, code)
	}
	if len(reason) > MaxReasonLength {
		return fmt.Errorf("%w: %d bytes", ErrReasonTooLong, len(reason))
	}
	e.code = code
	e.reason = reason
	return nil
}

// Status returns the wire status code and reason phrase.
func (e *Envelope) Status() (code int, reason string) {
	return e.code, e.reason
}

// Header returns the envelope's header multimap for mutation.
func (e *Envelope) Header() *Header {
	return &e.header
}

// SetContent attaches the body producer.
func (e *Envelope) SetContent(c Content) {
	e.content = c
}

// Content returns the body producer, nil when the envelope carries no body.
func (e *Envelope) Content() Content {
	return e.content
}

// SetChunked forces chunked transfer framing regardless of whether the
// content length is determinable.
func (e *Envelope) SetChunked(chunked bool) {
	e.chunked = chunked
}

// Chunked reports whether chunked framing was explicitly requested.
func (e *Envelope) Chunked() bool {
	return e.chunked
}

// Completion returns the construction-time completion tag.
func (e *Envelope) Completion() Completion {
	return e.completion
}

// Err returns the captured routing failure for UnhandledException envelopes.
func (e *Envelope) Err() error {
	return e.err
}

// StreamedBytes returns the byte count reported by an EventSourceClose
// envelope.
func (e *Envelope) StreamedBytes() int64 {
	return e.streamed
}

// AddCookie serializes the cookie and appends it as a Set-Cookie header.
func (e *Envelope) AddCookie(c Cookie) {
	e.header.Add("Set-Cookie", c.String())
}
