// Package servekit provides an embeddable HTTP server engine: virtual-host
// resolution, request admission, pluggable routing collaborators, a
// completion-tag driven response state machine, and uniform outcome
// accounting for every request the engine accepts.
//
// The engine does not route requests itself. Applications register virtual
// hosts in a registry, bind a routing collaborator to each host, and hand the
// registry to the dispatcher. The dispatcher owns everything around the
// router: hostname matching, admission limits, deadline racing, header
// composition, compression negotiation, body framing, and cleanup.
//
// # Package Organization
//
//	github.com/dmitrymomot/servekit/core/vhost    - Virtual host registry with wildcard patterns and port bindings
//	github.com/dmitrymomot/servekit/core/handler  - Routing collaborator contract and per-request context
//	github.com/dmitrymomot/servekit/core/request  - Inbound request envelope with strict cookie parsing and lazy body
//	github.com/dmitrymomot/servekit/core/response - Outgoing response envelope, ordered headers, cookies, content producers
//	github.com/dmitrymomot/servekit/core/compress - Accept-Encoding negotiation and streaming compression
//	github.com/dmitrymomot/servekit/core/dispatch - The dispatcher: listeners, processing pipeline, cleanup funnel
//	github.com/dmitrymomot/servekit/core/outcome  - Per-request outcome records and recorder contract
//	github.com/dmitrymomot/servekit/pkg/forwarded - Client address resolution behind trusted proxies
//	github.com/dmitrymomot/servekit/pkg/accesslog - Structured access logging recorder built on slog
//	github.com/dmitrymomot/servekit/pkg/metrics   - Prometheus recorder for request telemetry
//
// # Getting Started
//
//	host, _ := vhost.New("api.example.com", vhost.WithBinding(8080, false))
//	host.BindRouter(myRouter)
//
//	reg := vhost.NewRegistry()
//	reg.Add(host)
//
//	srv, _ := dispatch.New(reg,
//		dispatch.WithRoutingTimeout(10*time.Second),
//		dispatch.WithAccessLog(accesslog.New(logger)),
//	)
//	srv.Start(ctx)
package servekit
