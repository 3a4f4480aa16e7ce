// Package response defines the outgoing response envelope used by the
// dispatcher and routing collaborators.
//
// An Envelope carries a validated status line, an ordered case-insensitive
// header multimap, an optional body producer, and a framing preference. Each
// envelope also carries a completion tag fixed at construction: a non-wire
// signal that selects which branch of the dispatcher's state machine handles
// the envelope (normal delivery, empty reply, graceful or abrupt close,
// captured failure, or an already-streamed event source).
package response
