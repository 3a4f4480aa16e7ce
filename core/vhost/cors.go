package vhost

import "strings"

// OriginMode selects how a CORS policy resolves the Access-Control-Allow-Origin
// value for a request.
type OriginMode int

const (
	// OriginFixed writes a single configured origin string.
	OriginFixed OriginMode = iota

	// OriginAuto reflects the request's Origin header back verbatim.
	OriginAuto

	// OriginAllowList matches the request's Origin case-insensitively
	// against a configured list and writes only the matching entry.
	OriginAllowList
)

// CORSPolicy is a virtual host's cross-origin policy. The dispatcher applies
// it only when the matched route allows cross-origin responses.
type CORSPolicy struct {
	Mode             OriginMode
	Origin           string
	AllowedOrigins   []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// ResolveOrigin returns the Access-Control-Allow-Origin value for the given
// request Origin header, and whether one should be written at all.
func (p *CORSPolicy) ResolveOrigin(requestOrigin string) (string, bool) {
	switch p.Mode {
	case OriginAuto:
		if requestOrigin == "" {
			return "", false
		}
		return requestOrigin, true
	case OriginAllowList:
		for _, allowed := range p.AllowedOrigins {
			if strings.EqualFold(allowed, requestOrigin) {
				return allowed, true
			}
		}
		return "", false
	default:
		if p.Origin == "" {
			return "", false
		}
		return p.Origin, true
	}
}
