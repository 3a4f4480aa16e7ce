package handler

import (
	"io"

	"github.com/dmitrymomot/servekit/core/request"
	"github.com/dmitrymomot/servekit/core/response"
)

// Host is the resolved virtual host as seen by request processing. The
// concrete implementation lives in the vhost package; this interface keeps
// the dependency pointing one way.
type Host interface {
	Name() string
	BasePath() string
}

// RequestContext is the per-request scratch state shared between the
// dispatcher and the routing collaborator. One context serves exactly one
// request; contexts are created fresh per accepted request and never pooled
// or reused.
//
// Headers set through OverrideHeader win over everything the router sets;
// headers set through ExtraHeader are appended without replacing existing
// values. The dispatcher enforces this precedence during composition.
type RequestContext struct {
	req      *request.Envelope
	host     Host
	route    *RouteRef
	override response.Header
	extra    response.Header
	bag      map[any]any
}

// NewRequestContext wraps a request envelope in a fresh context.
func NewRequestContext(req *request.Envelope) *RequestContext {
	return &RequestContext{req: req}
}

// Request returns the inbound request envelope.
func (rc *RequestContext) Request() *request.Envelope { return rc.req }

// Host returns the matched virtual host, nil until resolution completes.
func (rc *RequestContext) Host() Host { return rc.host }

// SetHost records the matched virtual host.
func (rc *RequestContext) SetHost(h Host) { rc.host = h }

// Route returns the matched route, nil until routing completes.
func (rc *RequestContext) Route() *RouteRef { return rc.route }

// SetRoute records the matched route.
func (rc *RequestContext) SetRoute(r *RouteRef) { rc.route = r }

// OverrideHeader returns the header tier that replaces any same-named values
// set by the router or the extra tier.
func (rc *RequestContext) OverrideHeader() *response.Header { return &rc.override }

// ExtraHeader returns the additive header tier: values appended to the
// response without displacing what the router set.
func (rc *RequestContext) ExtraHeader() *response.Header { return &rc.extra }

// SetValue stores a typed key/value pair in the side-channel bag for
// handler-to-handler state.
func (rc *RequestContext) SetValue(key, val any) {
	if rc.bag == nil {
		rc.bag = make(map[any]any)
	}
	rc.bag[key] = val
}

// Value returns the bag entry for key, or nil.
func (rc *RequestContext) Value(key any) any {
	if rc.bag == nil {
		return nil
	}
	return rc.bag[key]
}

// CloseDisposables closes every bag entry implementing io.Closer and clears
// the bag. The dispatcher calls this from its cleanup funnel when disposal
// is enabled; close errors are ignored, teardown must not fail teardown.
func (rc *RequestContext) CloseDisposables() {
	for k, v := range rc.bag {
		if c, ok := v.(io.Closer); ok {
			_ = c.Close()
		}
		delete(rc.bag, k)
	}
}
