package response

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Cookie describes one Set-Cookie header value. Name and value are
// percent-encoded on serialization; attributes are emitted only when set.
type Cookie struct {
	Name  string
	Value string

	// Expires is emitted as an HTTP-date when non-zero.
	Expires time.Time

	// MaxAge is emitted in seconds when positive.
	MaxAge int

	Domain   string
	Path     string
	Secure   bool
	HttpOnly bool
	SameSite string
}

// escape percent-encodes a cookie name or value. QueryEscape covers the
// reserved set but encodes spaces as '+', which cookie recipients do not
// decode, so spaces are rewritten to %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// String serializes the cookie in Set-Cookie format:
//
//	name=value[; Expires=<HTTP-date>][; Max-Age=<seconds>][; Domain=<host>][; Path=<path>][; Secure][; HttpOnly][; SameSite=<value>]
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(escape(c.Name))
	b.WriteByte('=')
	b.WriteString(escape(c.Value))

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(http.TimeFormat))
	}
	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if c.SameSite != "" {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite)
	}
	return b.String()
}
