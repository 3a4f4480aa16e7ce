package handler

import (
	"context"

	"github.com/dmitrymomot/servekit/core/response"
)

// RouteRef identifies the route a router matched, as much of it as the
// dispatcher needs: a display pattern and whether cross-origin headers may be
// applied to its responses.
type RouteRef struct {
	Pattern   string
	AllowCORS bool
}

// Result is the routing collaborator's verdict for one request. Response may
// be nil when no route produced an envelope; Err carries any failure raised
// while producing it.
type Result struct {
	Response *response.Envelope
	Route    *RouteRef
	Err      error
}

// Router is the routing collaborator driven by the dispatcher. Execute runs
// under the dispatcher's per-request context; implementations should honor
// ctx cancellation, but the dispatcher does not depend on it — a router that
// ignores an expired deadline keeps running in the background while the client
// receives 408.
//
// A Router may be bound to at most one server at a time; see the vhost
// package for binding semantics.
type Router interface {
	Execute(ctx context.Context, rc *RequestContext) Result
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(ctx context.Context, rc *RequestContext) Result

// Execute implements Router.
func (f RouterFunc) Execute(ctx context.Context, rc *RequestContext) Result {
	return f(ctx, rc)
}
