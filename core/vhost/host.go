package vhost

import (
	"crypto/tls"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrymomot/servekit/core/handler"
)

// Binding is one (port, secure) pair a virtual host listens on. All bindings
// of a host share the host's single base path prefix.
type Binding struct {
	Port   int
	Secure bool
}

// Host is one routable virtual host: hostname patterns, port bindings, an
// optionally bound routing collaborator, a CORS policy, and optional TLS
// material. A host serves traffic only once it has at least one binding and
// a bound router.
type Host struct {
	name     string
	patterns []string
	bindings []Binding
	basePath string
	cors     *CORSPolicy
	certs    []tls.Certificate

	mu     sync.RWMutex
	router handler.Router
}

// Option configures host construction.
type Option func(*Host)

// WithBinding adds a (port, secure) pair.
func WithBinding(port int, secure bool) Option {
	return func(h *Host) {
		h.bindings = append(h.bindings, Binding{Port: port, Secure: secure})
	}
}

// WithAliases adds additional hostname patterns matched for this host.
func WithAliases(patterns ...string) Option {
	return func(h *Host) {
		h.patterns = append(h.patterns, patterns...)
	}
}

// WithBasePath sets the path prefix shared by every binding of this host.
func WithBasePath(prefix string) Option {
	return func(h *Host) {
		h.basePath = prefix
	}
}

// WithCORS attaches a cross-origin policy.
func WithCORS(policy *CORSPolicy) Option {
	return func(h *Host) {
		h.cors = policy
	}
}

// WithCertificate attaches TLS material served on secure bindings.
func WithCertificate(certs ...tls.Certificate) Option {
	return func(h *Host) {
		h.certs = append(h.certs, certs...)
	}
}

// New creates a virtual host for the given primary hostname pattern.
// Patterns support a single leading "*." wildcard segment and are matched
// case-insensitively.
func New(pattern string, opts ...Option) (*Host, error) {
	h := &Host{name: pattern, patterns: []string{pattern}}
	for _, opt := range opts {
		opt(h)
	}

	for i, p := range h.patterns {
		if err := validatePattern(p); err != nil {
			return nil, err
		}
		h.patterns[i] = strings.ToLower(p)
	}
	for _, b := range h.bindings {
		if b.Port < 1 || b.Port > 65535 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPort, b.Port)
		}
	}
	return h, nil
}

func validatePattern(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPattern)
	}
	rest := strings.TrimPrefix(p, "*.")
	if rest == "" || strings.Contains(rest, "*") {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
	}
	return nil
}

// Name returns the primary hostname pattern.
func (h *Host) Name() string { return h.name }

// BasePath returns the path prefix shared by all bindings.
func (h *Host) BasePath() string { return h.basePath }

// Bindings returns the host's port bindings.
func (h *Host) Bindings() []Binding { return h.bindings }

// CORS returns the host's cross-origin policy, nil when none is set.
func (h *Host) CORS() *CORSPolicy { return h.cors }

// Certificates returns the host's TLS material.
func (h *Host) Certificates() []tls.Certificate { return h.certs }

// Matches reports whether this host serves (hostname, port). A "*.suffix"
// pattern matches any hostname with at least one extra label before the
// suffix; "*.example.com" matches "a.example.com" but not "example.com".
func (h *Host) Matches(hostname string, port int) bool {
	hostname = strings.ToLower(hostname)
	for _, b := range h.bindings {
		if b.Port != port {
			continue
		}
		for _, p := range h.patterns {
			if matchPattern(p, hostname) {
				return true
			}
		}
	}
	return false
}

func matchPattern(pattern, hostname string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(hostname, "."+suffix)
	}
	return pattern == hostname
}

// BindRouter claims the router for this host. Binding is first-come: if the
// router is already bound to a different host the call is a no-op and
// returns false; rebinding requires an explicit ReleaseRouter on the owner.
// Binding the router this host already owns is an idempotent no-op.
func (h *Host) BindRouter(r handler.Router) bool {
	if r == nil {
		return false
	}
	if !claimRouter(r, h) {
		return false
	}
	h.mu.Lock()
	h.router = r
	h.mu.Unlock()
	return true
}

// ReleaseRouter releases the host's router so it can be bound elsewhere.
func (h *Host) ReleaseRouter() {
	h.mu.Lock()
	r := h.router
	h.router = nil
	h.mu.Unlock()
	if r != nil {
		releaseRouter(r, h)
	}
}

// Router returns the bound routing collaborator, nil when unbound.
func (h *Host) Router() handler.Router {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.router
}

// Ready reports whether the host can serve traffic: at least one port
// binding and a bound router.
func (h *Host) Ready() bool {
	return len(h.bindings) > 0 && h.Router() != nil
}

// Router ownership is exclusive across every host in the process: a router
// carries live per-route state and cannot serve two hosts at once. Routers
// with non-comparable dynamic types (closures adapted via RouterFunc) cannot
// be identity-tracked and are always bindable.
var (
	ownersMu sync.Mutex
	owners   = make(map[handler.Router]*Host)
)

func claimRouter(r handler.Router, h *Host) bool {
	if !reflect.TypeOf(r).Comparable() {
		return true
	}
	ownersMu.Lock()
	defer ownersMu.Unlock()
	if owner, ok := owners[r]; ok {
		return owner == h
	}
	owners[r] = h
	return true
}

func releaseRouter(r handler.Router, h *Host) {
	if !reflect.TypeOf(r).Comparable() {
		return
	}
	ownersMu.Lock()
	defer ownersMu.Unlock()
	if owners[r] == h {
		delete(owners, r)
	}
}
