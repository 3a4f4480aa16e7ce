package response

// Completion steers the dispatcher's response state machine. It is assigned
// once at envelope construction, never mutated, and never written to the
// wire; the wire status code is carried separately.
type Completion int

const (
	// Normal proceeds through header composition, compression negotiation,
	// and body streaming.
	Normal Completion = iota

	// Empty signals an intentionally body-less reply, surfaced as 204.
	Empty

	// Refuse aborts the connection abruptly with no close handshake,
	// simulating a connection reset.
	Refuse

	// ServerClose closes the connection gracefully at the server's request,
	// skipping header and body processing.
	ServerClose

	// ClientClose records that the client ended the exchange; the connection
	// is closed gracefully with no further processing.
	ClientClose

	// UnhandledException carries a captured routing failure, surfaced as 500
	// and re-raised into the failure funnel for logging.
	UnhandledException

	// EventSourceClose marks a response already streamed directly to the
	// connection by an event-stream collaborator; only its byte count
	// remains to be accounted.
	EventSourceClose
)

var completionNames = map[Completion]string{
	Normal:             "Normal",
	Empty:              "Empty",
	Refuse:             "Refuse",
	ServerClose:        "ServerClose",
	ClientClose:        "ClientClose",
	UnhandledException: "UnhandledException",
	EventSourceClose:   "EventSourceClose",
}

// String returns the canonical name of the completion tag.
func (c Completion) String() string {
	if name, ok := completionNames[c]; ok {
		return name
	}
	return "Unknown"
}
