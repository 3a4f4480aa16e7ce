// Package request defines the inbound request envelope: a stable snapshot of
// one accepted request with effective-origin derivation, strict cookie
// extraction, and lazy capped body materialization.
//
// Construction is the malformed-input boundary: an unparsable cookie header
// or a rejected forwarding header fails New with an error wrapping
// ErrMalformed, which the dispatcher surfaces as 400 before routing runs.
package request
