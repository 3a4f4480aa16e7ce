package dispatch_test

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servekit/core/dispatch"
	"github.com/dmitrymomot/servekit/core/handler"
	"github.com/dmitrymomot/servekit/core/response"
	"github.com/dmitrymomot/servekit/core/vhost"
)

// newLocalServer wires a dispatcher for host "127.0.0.1" behind a real
// listener and returns the test server.
func newLocalServer(t *testing.T, router handler.Router, opts ...dispatch.Option) *httptest.Server {
	t.Helper()

	host, err := vhost.New("127.0.0.1", vhost.WithBinding(80, false))
	require.NoError(t, err)
	require.True(t, host.BindRouter(router))

	reg := vhost.NewRegistry()
	require.NoError(t, reg.Add(host))

	s, err := dispatch.New(reg, opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler(80, false))
	t.Cleanup(ts.Close)
	return ts
}

func TestLargeBodyRoundtrip(t *testing.T) {
	t.Parallel()

	const size = 2 << 20
	payload := make([]byte, size)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	router := handler.RouterFunc(func(ctx context.Context, rc *handler.RequestContext) handler.Result {
		env, _ := response.New(http.StatusOK)
		env.Header().Set("Content-Type", "application/octet-stream")
		env.SetContent(response.NewBuffer(payload))
		return handler.Result{Response: env}
	})
	ts := newLocalServer(t, router)

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Get(ts.URL + "/blob")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, strconv.Itoa(size), resp.Header.Get("Content-Length"))
	assert.Empty(t, resp.Header.Get("Content-Encoding"), "no negotiation without Accept-Encoding")

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Len(t, got, size)
	assert.True(t, bytes.Equal(payload, got), "body survives the wire byte for byte")
}

func TestRefuseSeversConnection(t *testing.T) {
	t.Parallel()

	router := handler.RouterFunc(func(ctx context.Context, rc *handler.RequestContext) handler.Result {
		return handler.Result{Response: response.NewRefuse()}
	})
	ts := newLocalServer(t, router)

	resp, err := ts.Client().Get(ts.URL + "/")
	if err == nil {
		defer resp.Body.Close()
		_, err = io.ReadAll(resp.Body)
	}
	assert.Error(t, err, "refused connections never carry a response")
}

func TestServerCloseWithoutResponse(t *testing.T) {
	t.Parallel()

	router := handler.RouterFunc(func(ctx context.Context, rc *handler.RequestContext) handler.Result {
		return handler.Result{Response: response.NewServerClose()}
	})
	ts := newLocalServer(t, router)

	resp, err := ts.Client().Get(ts.URL + "/")
	if err == nil {
		defer resp.Body.Close()
		_, err = io.ReadAll(resp.Body)
	}
	assert.Error(t, err, "connection closes before any status line")
}

func TestChunkedBodyRejectedOnWire(t *testing.T) {
	t.Parallel()

	var invoked atomic.Bool
	router := handler.RouterFunc(func(ctx context.Context, rc *handler.RequestContext) handler.Result {
		invoked.Store(true)
		return handler.Result{Response: response.NewEmpty()}
	})
	ts := newLocalServer(t, router, dispatch.WithStrictBodylessMethods())

	conn, err := net.Dial("tcp", ts.Listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\n" +
		"Host: 127.0.0.1\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"5\r\nhello\r\n0\r\n\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, invoked.Load(), "chunked body never reaches the router")
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	host, err := vhost.New("127.0.0.1", vhost.WithBinding(18973, false))
	require.NoError(t, err)
	require.True(t, host.BindRouter(handler.RouterFunc(
		func(ctx context.Context, rc *handler.RequestContext) handler.Result {
			return handler.Result{Response: response.NewEmpty()}
		},
	)))

	reg := vhost.NewRegistry()
	require.NoError(t, reg.Add(host))
	s, err := dispatch.New(reg, dispatch.WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	// Wait for the listener to come up.
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://127.0.0.1:18973/")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = dispatch.New(reg)
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartRejectsSecondStart(t *testing.T) {
	t.Parallel()

	host, err := vhost.New("127.0.0.1", vhost.WithBinding(18974, false))
	require.NoError(t, err)
	require.True(t, host.BindRouter(handler.RouterFunc(
		func(ctx context.Context, rc *handler.RequestContext) handler.Result {
			return handler.Result{Response: response.NewEmpty()}
		},
	)))

	reg := vhost.NewRegistry()
	require.NoError(t, reg.Add(host))
	s, err := dispatch.New(reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:18974/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	assert.ErrorIs(t, s.Start(ctx), dispatch.ErrServerAlreadyRunning)

	cancel()
	<-done
}
