package forwarded

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ErrInvalidForwardedIP is returned when a forwarding header is present but
// does not parse as an IP address. Callers treat it as malformed client
// input.
var ErrInvalidForwardedIP = errors.New("invalid forwarded ip")

// Header names consulted, in priority order.
const (
	headerForwardedFor  = "X-Forwarded-For"
	headerRealIP        = "X-Real-IP"
	headerForwardedHost = "X-Forwarded-Host"
)

// Resolver derives the effective client address, and optionally the target
// hostname, from proxy forwarding headers. It implements the request
// envelope's Resolver contract.
//
// Only deploy a Resolver behind a trusted proxy: forwarding headers are
// client-controlled otherwise.
type Resolver struct {
	trustHost bool
}

// Option configures the resolver.
type Option func(*Resolver)

// WithTrustedHost enables X-Forwarded-Host overriding the effective target
// hostname. Disabled by default.
func WithTrustedHost() Option {
	return func(res *Resolver) {
		res.trustHost = true
	}
}

// New creates a forwarding resolver.
func New(opts ...Option) *Resolver {
	res := &Resolver{}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Resolve returns the forwarded client address and, when host trust is
// enabled, the forwarded hostname. Empty results mean no override. A
// forwarding header that does not parse fails with ErrInvalidForwardedIP.
func (res *Resolver) Resolve(r *http.Request) (remoteAddr, hostname string, err error) {
	if v := r.Header.Get(headerForwardedFor); v != "" {
		// The leftmost entry is the originating client; later entries are
		// the proxies the request passed through.
		first, _, _ := strings.Cut(v, ",")
		addr, err := parseIP(strings.TrimSpace(first))
		if err != nil {
			return "", "", fmt.Errorf("%w: %s=%q", ErrInvalidForwardedIP, headerForwardedFor, v)
		}
		remoteAddr = addr
	} else if v := r.Header.Get(headerRealIP); v != "" {
		addr, err := parseIP(strings.TrimSpace(v))
		if err != nil {
			return "", "", fmt.Errorf("%w: %s=%q", ErrInvalidForwardedIP, headerRealIP, v)
		}
		remoteAddr = addr
	}

	if res.trustHost {
		hostname = strings.TrimSpace(r.Header.Get(headerForwardedHost))
	}
	return remoteAddr, hostname, nil
}

func parseIP(s string) (string, error) {
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String(), nil
	}
	// Some proxies append the port.
	if host, _, err := net.SplitHostPort(s); err == nil {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.String(), nil
		}
	}
	return "", fmt.Errorf("parse ip %q", s)
}
