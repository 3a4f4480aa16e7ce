package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servekit/core/handler"
	"github.com/dmitrymomot/servekit/core/request"
)

type ctxKey struct{}

func newContext(t *testing.T) *handler.RequestContext {
	t.Helper()

	env, err := request.New(httptest.NewRequest(http.MethodGet, "http://app.test/", nil), 80)
	require.NoError(t, err)
	return handler.NewRequestContext(env)
}

func TestRequestContextBag(t *testing.T) {
	t.Parallel()

	rc := newContext(t)

	assert.Nil(t, rc.Value(ctxKey{}))
	rc.SetValue(ctxKey{}, "payload")
	assert.Equal(t, "payload", rc.Value(ctxKey{}))

	rc.SetValue(ctxKey{}, "replaced")
	assert.Equal(t, "replaced", rc.Value(ctxKey{}))
}

type closable struct {
	closed bool
}

func (c *closable) Close() error {
	c.closed = true
	return nil
}

func TestCloseDisposables(t *testing.T) {
	t.Parallel()

	rc := newContext(t)

	res := &closable{}
	rc.SetValue(ctxKey{}, res)
	rc.SetValue("plain", "not a closer")

	rc.CloseDisposables()

	assert.True(t, res.closed)
	assert.Nil(t, rc.Value(ctxKey{}), "bag is cleared on disposal")
	assert.Nil(t, rc.Value("plain"))
}

func TestHeaderTiersAreIndependent(t *testing.T) {
	t.Parallel()

	rc := newContext(t)

	rc.ExtraHeader().Add("X-Extra", "a")
	rc.OverrideHeader().Set("X-Override", "b")

	assert.Equal(t, "a", rc.ExtraHeader().Get("X-Extra"))
	assert.False(t, rc.OverrideHeader().Has("X-Extra"))
	assert.Equal(t, "b", rc.OverrideHeader().Get("X-Override"))
}

func TestRouterFuncAdapter(t *testing.T) {
	t.Parallel()

	rc := newContext(t)
	r := handler.RouterFunc(func(_ context.Context, got *handler.RequestContext) handler.Result {
		assert.Same(t, rc, got)
		return handler.Result{Route: &handler.RouteRef{Pattern: "/x"}}
	})

	res := r.Execute(context.Background(), rc)
	require.NotNil(t, res.Route)
	assert.Equal(t, "/x", res.Route.Pattern)
}
