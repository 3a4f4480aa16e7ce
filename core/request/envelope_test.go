package request_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servekit/core/request"
)

func TestNewDerivesHostAndPort(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://API.Example.com:8080/path?q=1", nil)
	env, err := request.New(r, 8080)
	require.NoError(t, err)

	assert.Equal(t, "API.Example.com", env.Hostname(), "port stripped, casing preserved for the registry to fold")
	assert.Equal(t, 8080, env.Port())
	assert.Equal(t, http.MethodGet, env.Method())
	assert.Equal(t, "/path", env.URL().Path)
	assert.False(t, env.Secure())
}

func TestNewStripsIPv6Brackets(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "[::1]:8080"
	env, err := request.New(r, 8080)
	require.NoError(t, err)
	assert.Equal(t, "::1", env.Hostname())
}

func TestLazyBodyMaterialization(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("payload"))
	env, err := request.New(r, 80)
	require.NoError(t, err)

	assert.Zero(t, env.BytesReceived(), "nothing consumed before Body is called")

	body, err := env.Body()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
	assert.Equal(t, int64(7), env.BytesReceived())

	// Second call returns the same materialized buffer.
	again, err := env.Body()
	require.NoError(t, err)
	assert.Equal(t, body, again)
	assert.Equal(t, int64(7), env.BytesReceived(), "no double read")
}

func TestBodyCapEnforced(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	env, err := request.New(r, 80, request.WithMaxBodySize(64))
	require.NoError(t, err)

	_, err = env.Body()
	assert.ErrorIs(t, err, request.ErrBodyTooLarge)

	// The error sticks on subsequent calls.
	_, err = env.Body()
	assert.ErrorIs(t, err, request.ErrBodyTooLarge)
}

func TestCookieExtraction(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Cookie", `session=abc123; theme="dark"`)
	env, err := request.New(r, 80)
	require.NoError(t, err)

	require.Len(t, env.Cookies(), 2)
	assert.Equal(t, "abc123", env.Cookie("session").Value)
	assert.Equal(t, "dark", env.Cookie("theme").Value, "quoted value unwrapped")
	assert.Nil(t, env.Cookie("absent"))
}

func TestMalformedCookieFailsConstruction(t *testing.T) {
	t.Parallel()

	cases := []string{
		"noequals",
		"=nokey",
		"bad name=v",
		"ctl\x01=v",
	}
	for _, line := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", line)
		_, err := request.New(r, 80)
		assert.ErrorIs(t, err, request.ErrMalformed, "cookie line %q", line)
		assert.ErrorIs(t, err, request.ErrMalformedCookie, "cookie line %q", line)
	}
}

type staticResolver struct {
	addr, host string
	err        error
}

func (s staticResolver) Resolve(*http.Request) (string, string, error) {
	return s.addr, s.host, s.err
}

func TestResolverOverrides(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://orig.test/", nil)
	env, err := request.New(r, 80, request.WithResolver(staticResolver{addr: "10.1.2.3", host: "fwd.test:9090"}))
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", env.RemoteAddr())
	assert.Equal(t, "fwd.test", env.Hostname(), "forwarded host wins, port stripped")
}

func TestResolverPartialOverride(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://orig.test/", nil)
	env, err := request.New(r, 80, request.WithResolver(staticResolver{addr: "10.1.2.3"}))
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", env.RemoteAddr())
	assert.Equal(t, "orig.test", env.Hostname(), "empty override leaves original host")
}

func TestResolverErrorIsMalformed(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := request.New(r, 80, request.WithResolver(staticResolver{err: errors.New("bad forwarded header")}))
	assert.ErrorIs(t, err, request.ErrMalformed)
}

func TestHasBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	env, err := request.New(r, 80)
	require.NoError(t, err)
	assert.True(t, env.HasBody())

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	env, err = request.New(r, 80)
	require.NoError(t, err)
	assert.False(t, env.HasBody())
}

func TestHasBodyChunked(t *testing.T) {
	t.Parallel()

	// net/http surfaces a chunked body as TransferEncoding with
	// ContentLength -1 and no Transfer-Encoding header entry.
	r := httptest.NewRequest(http.MethodGet, "/", strings.NewReader("hello"))
	r.TransferEncoding = []string{"chunked"}
	r.ContentLength = -1
	r.Header.Del("Transfer-Encoding")

	env, err := request.New(r, 80)
	require.NoError(t, err)
	assert.True(t, env.HasBody(), "chunked bodies carry no Content-Length")
	assert.Equal(t, []string{"chunked"}, env.TransferEncoding())
}
