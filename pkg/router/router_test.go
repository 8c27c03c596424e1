package router

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
)

func TestDispatchExtractsParams(t *testing.T) {
	r := New()
	r.Get("/items/{id}", "get-item")
	r.Get("/shops/{shop}/items/{id}", "get-shop-item")

	route, params, err := r.Dispatch(http.MethodGet, "/items/42")
	require.NoError(t, err)
	assert.Equal(t, "get-item", route.Target)
	assert.Equal(t, Params{{Key: "id", Value: "42"}}, params)

	route, params, err = r.Dispatch("get", "/shops/berlin/items/7")
	require.NoError(t, err)
	assert.Equal(t, "get-shop-item", route.Target)
	assert.Equal(t, Params{
		{Key: "shop", Value: "berlin"},
		{Key: "id", Value: "7"},
	}, params)

	id, ok := params.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "7", id)
	assert.Equal(t, map[string]string{"shop": "berlin", "id": "7"}, params.Map())
}

func TestDispatchNotFound(t *testing.T) {
	r := New()
	r.Get("/items/{id}", "get-item")

	_, _, err := r.Dispatch(http.MethodDelete, "/missing")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, http.MethodDelete, nf.Method)
	assert.Equal(t, "/missing", nf.Path)
	assert.Equal(t, http.StatusNotFound, httperr.StatusCode(err))
	assert.Equal(t, httperr.KindRouting, httperr.KindOf(err))
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	r := New()
	r.Put("/items/{id}", "put-item")
	r.Get("/items/{id}", "get-item")
	r.Post("/items", "create-item")

	for _, method := range []string{http.MethodDelete, "BREW"} {
		t.Run(method, func(t *testing.T) {
			_, _, err := r.Dispatch(method, "/items/42")
			require.Error(t, err)

			var mna *MethodNotAllowedError
			require.True(t, errors.As(err, &mna))
			assert.Equal(t, []string{http.MethodGet, http.MethodPut}, mna.Allowed)
			assert.Equal(t, http.StatusMethodNotAllowed, httperr.StatusCode(err))

			resp := httperr.Augment(httpmsg.NewResponse(), err)
			assert.Equal(t, "GET, PUT", resp.HeaderLine("Allow"))
		})
	}
}

func TestDispatchEmptyPathIsRoot(t *testing.T) {
	r := New()
	r.Get("/", "index")

	route, params, err := r.Dispatch(http.MethodGet, "")
	require.NoError(t, err)
	assert.Equal(t, "index", route.Target)
	assert.Empty(t, params)
}

func TestGroupsComposePrefixes(t *testing.T) {
	r := New()
	r.Group("/api", func(r *Router) {
		r.Group("/v1", func(r *Router) {
			r.Get("/items/{id}", "v1-item")
		})
		r.Get("/health", "health")
	})

	route, params, err := r.Dispatch(http.MethodGet, "/api/v1/items/3")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/items/{id}", route.Pattern)
	assert.Equal(t, "v1-item", route.Target)
	assert.Equal(t, Params{{Key: "id", Value: "3"}}, params)

	_, _, err = r.Dispatch(http.MethodGet, "/api/health")
	require.NoError(t, err)
}

func TestRoutesKeepRegistrationOrder(t *testing.T) {
	r := New()
	r.Post("/b", 1)
	r.Get("/a", 2)
	r.Post("/b", 3)

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "POST", routes[0].Method)
	assert.Equal(t, "/b", routes[0].Pattern)
	assert.Equal(t, 3, routes[0].Target)
	assert.Equal(t, "/a", routes[1].Pattern)
}

func TestAddRejectsRelativePattern(t *testing.T) {
	assert.Panics(t, func() {
		New().Get("items", nil)
	})
}
