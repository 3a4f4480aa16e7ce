package request

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Resolver may override the effective client address and hostname derived
// from a raw request, typically by consulting forwarding headers set by a
// trusted proxy. Empty return values leave the original derivation in place.
// A resolver error is treated as malformed client input.
type Resolver interface {
	Resolve(r *http.Request) (remoteAddr, hostname string, err error)
}

// Envelope is the immutable-ish wrapper around one inbound request. It
// snapshots the request line and headers at construction, derives the
// effective hostname and client address (optionally through a Resolver),
// extracts cookies strictly, and materializes the body lazily on first use.
type Envelope struct {
	method        string
	url           *url.URL
	proto         string
	header        http.Header
	hostname      string
	port          int
	remoteAddr    string
	secure        bool
	contentLength int64
	transferEnc   []string
	cookies       []*http.Cookie

	src      io.Reader
	received int64
	body     []byte
	bodyErr  error
	bodyRead bool
	maxBody  int64
	resolver Resolver
}

// Option configures envelope construction.
type Option func(*Envelope)

// WithResolver installs a forwarding resolver consulted during construction.
// Only install a resolver when the server fronts a trusted proxy.
func WithResolver(res Resolver) Option {
	return func(e *Envelope) {
		e.resolver = res
	}
}

// WithMaxBodySize caps lazy body materialization. Zero means no cap.
func WithMaxBodySize(limit int64) Option {
	return func(e *Envelope) {
		e.maxBody = limit
	}
}

// WithSecure marks the envelope as received on a TLS binding.
func WithSecure(secure bool) Option {
	return func(e *Envelope) {
		e.secure = secure
	}
}

// New builds an envelope from a raw request accepted on the given local
// port. Construction fails with an ErrMalformed-wrapped error when the
// cookie header is unparsable or the resolver rejects a forwarding header.
func New(r *http.Request, localPort int, opts ...Option) (*Envelope, error) {
	e := &Envelope{
		method:        r.Method,
		url:           r.URL,
		proto:         r.Proto,
		header:        r.Header,
		hostname:      stripPort(r.Host),
		port:          localPort,
		remoteAddr:    r.RemoteAddr,
		contentLength: r.ContentLength,
		transferEnc:   r.TransferEncoding,
		src:           r.Body,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.resolver != nil {
		addr, host, err := e.resolver.Resolve(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if addr != "" {
			e.remoteAddr = addr
		}
		if host != "" {
			e.hostname = stripPort(host)
		}
	}

	cookies, err := parseCookies(r.Header.Values("Cookie"))
	if err != nil {
		return nil, err
	}
	e.cookies = cookies

	return e, nil
}

// Method returns the request method.
func (e *Envelope) Method() string { return e.method }

// URL returns the parsed request URL.
func (e *Envelope) URL() *url.URL { return e.url }

// Proto returns the protocol version of the request line.
func (e *Envelope) Proto() string { return e.proto }

// Header returns the request headers. Callers must not mutate them.
func (e *Envelope) Header() http.Header { return e.header }

// Hostname returns the effective target hostname, without port, after any
// forwarding resolution.
func (e *Envelope) Hostname() string { return e.hostname }

// Port returns the local port the connection arrived on.
func (e *Envelope) Port() int { return e.port }

// RemoteAddr returns the effective client address after any forwarding
// resolution.
func (e *Envelope) RemoteAddr() string { return e.remoteAddr }

// Secure reports whether the request arrived on a TLS binding.
func (e *Envelope) Secure() bool { return e.secure }

// ContentLength returns the declared request body length, -1 when unknown.
func (e *Envelope) ContentLength() int64 { return e.contentLength }

// HasBody reports whether the request declares or may carry a body, either
// through a positive Content-Length or a transfer encoding. net/http strips
// Transfer-Encoding from the header map during transfer parsing, so the
// encoding list snapshotted at construction is the authority.
func (e *Envelope) HasBody() bool {
	return e.contentLength > 0 || len(e.transferEnc) > 0
}

// TransferEncoding returns the request's transfer encodings, outermost first.
func (e *Envelope) TransferEncoding() []string { return e.transferEnc }

// Body materializes the request body into memory on first call and returns
// the same buffer afterwards. Reading past the configured cap fails with
// ErrBodyTooLarge.
func (e *Envelope) Body() ([]byte, error) {
	if e.bodyRead {
		return e.body, e.bodyErr
	}
	e.bodyRead = true

	if e.src == nil {
		return nil, nil
	}

	src := e.src
	if e.maxBody > 0 {
		src = io.LimitReader(src, e.maxBody+1)
	}
	data, err := io.ReadAll(src)
	e.received += int64(len(data))
	if err != nil {
		e.bodyErr = err
		return nil, err
	}
	if e.maxBody > 0 && int64(len(data)) > e.maxBody {
		e.bodyErr = ErrBodyTooLarge
		return nil, e.bodyErr
	}
	e.body = data
	return e.body, nil
}

// BytesReceived reports how many body bytes were consumed from the client.
func (e *Envelope) BytesReceived() int64 { return e.received }

// Cookies returns the cookies extracted at construction.
func (e *Envelope) Cookies() []*http.Cookie { return e.cookies }

// Cookie returns the named cookie or nil.
func (e *Envelope) Cookie(name string) *http.Cookie {
	for _, c := range e.cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// stripPort removes a trailing :port from a host header value, handling
// bracketed IPv6 literals.
func stripPort(host string) string {
	if host == "" {
		return host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// parseCookies parses Cookie header values strictly: every pair must be
// name=value with a valid token name. Browsers never send anything else, so
// a violation is malformed client input rather than something to repair.
func parseCookies(lines []string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	for _, line := range lines {
		for pair := range strings.SplitSeq(line, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, value, ok := strings.Cut(pair, "=")
			if !ok || name == "" || !validCookieName(name) {
				return nil, fmt.Errorf("%w: %q", ErrMalformedCookie, pair)
			}
			value = strings.Trim(value, `"`)
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
	}
	return cookies, nil
}

func validCookieName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`()<>@,;:\"/[]?={}`, c) >= 0 {
			return false
		}
	}
	return true
}
