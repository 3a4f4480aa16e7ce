// Package dispatch implements the request-processing engine: connection
// acceptance, virtual-host resolution, admission control, routing invocation
// raced against an optional deadline, the response state machine, header and
// CORS composition, compression negotiation, transfer framing, body
// streaming, and the single cleanup funnel every request passes through.
//
// # Pipeline
//
// Each accepted request walks the same ordered steps, any of which may
// short-circuit to the funnel: envelope construction (400 on malformed
// input), host resolution (400 unknown host, 503 host not ready), admission
// checks (413 oversized body, 400 body on a bodyless method), routing with
// the deadline race (408 on expiry), and the completion-tag switch on the
// returned envelope. Normal envelopes then get CORS (when the matched route
// allows it), the three-tier header merge (override beats extra beats
// route-set), compression negotiation (brotli, gzip, deflate, in that
// priority), a framing decision (Content-Length when determinable, chunked
// otherwise, never both), and body streaming with HEAD suppression.
//
// # Concurrency
//
// Acceptance re-arms before request processing finishes, so accepting never
// blocks on execution. Requests are processed concurrently unless
// compatibility mode serializes processing (never acceptance) behind one
// mutex acquired before routing and released in the funnel.
//
// # Failure funnel
//
// The funnel always runs: it stops the routing timer, settles byte counts,
// closes or aborts the output sink exactly once, releases the
// compatibility-mode mutex, disposes side-channel bag entries when enabled,
// and hands exactly one Outcome per request to hooks and recorders. Client
// errors surface as specific 4xx codes and never reach the error log;
// transient connectivity faults are swallowed from logs but still recorded
// for metrics; nothing a single request does can affect another in flight.
package dispatch
