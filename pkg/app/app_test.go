package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebuy-de/adrkit/pkg/adr"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/exception"
	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/render"
	"github.com/rebuy-de/adrkit/pkg/router"
	"github.com/rebuy-de/adrkit/pkg/webutil"
)

func showItem(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error) {
	id, _ := req.Attribute("id")
	return resp.WriteString(fmt.Sprintf("item %v", id)), nil
}

func boot(t *testing.T, setup ...func(r *digutil.Resolver)) (*Application, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	r := digutil.NewResolver()
	require.NoError(t, digutil.ProvideValue[prometheus.Registerer](r, reg))
	for _, fn := range setup {
		fn(r)
	}

	a, err := Boot(r)
	require.NoError(t, err)

	a.AddRoutes(func(r *router.Router) {
		r.Get("/items/{id}", adr.ActionFunc(showItem))
		r.Put("/items/{id}", adr.ActionFunc(showItem))
		r.Get("/broken", adr.ActionFunc(func(*httpmsg.Request, *httpmsg.Response) (*httpmsg.Response, error) {
			return nil, httperr.New(700, "weird status")
		}))
		r.Get("/cancelled", adr.ActionFunc(func(*httpmsg.Request, *httpmsg.Response) (*httpmsg.Response, error) {
			return nil, errors.Wrap(context.Canceled, "waiting for upstream")
		}))
	})

	return a, reg
}

func jsonFirst(t *testing.T) func(r *digutil.Resolver) {
	return func(r *digutil.Resolver) {
		require.NoError(t, r.Provide(func() (*exception.Preferences, error) {
			return exception.NewPreferences(
				exception.Preference{MediaType: "application/json", Renderer: render.KeyJSON},
				exception.Preference{MediaType: "text/html", Renderer: render.KeyHTML},
			)
		}))
	}
}

func request(t *testing.T, method, target string, headers ...string) *httpmsg.Request {
	t.Helper()

	req, err := httpmsg.NewRequest(method, target)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req = req.WithHeader(headers[i], headers[i+1])
	}
	return req
}

func TestHandleDispatchesWithParams(t *testing.T) {
	a, reg := boot(t)

	resp, err := a.Handle(request(t, http.MethodGet, "/items/42"), httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "item 42", resp.String())

	requests, err := testutil.GatherAndCount(reg, "adrkit_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestHandleNotFoundNegotiatesJSON(t *testing.T) {
	a, _ := boot(t, jsonFirst(t))

	for _, accept := range []string{"application/json", "text/plain", ""} {
		t.Run(accept, func(t *testing.T) {
			req := request(t, http.MethodDelete, "/missing", "Accept", accept)

			resp, err := a.Handle(req, httpmsg.NewResponse(), true)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode())
			assert.Equal(t, "application/json", resp.HeaderLine("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body(), &body))
			assert.Equal(t, float64(404), body["status"])
			assert.Equal(t, "routing", body["kind"])
			assert.NotEmpty(t, body["id"])
		})
	}
}

func TestHandleNegotiatesHTML(t *testing.T) {
	a, _ := boot(t, jsonFirst(t))

	req := request(t, http.MethodGet, "/missing", "Accept", "text/html, application/json;q=0.5")
	resp, err := a.Handle(req, httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, "text/html", resp.HeaderLine("Content-Type"))
	assert.Contains(t, resp.String(), "<h1>404 Not Found</h1>")
}

func TestHandleMethodNotAllowed(t *testing.T) {
	a, _ := boot(t)

	resp, err := a.Handle(request(t, http.MethodDelete, "/items/1"), httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode())
	assert.Equal(t, "GET, PUT", resp.HeaderLine("Allow"))
	assert.Equal(t, "text/html", resp.HeaderLine("Content-Type"))
}

func TestHandleWithoutCatch(t *testing.T) {
	a, reg := boot(t)

	resp, err := a.Handle(request(t, http.MethodDelete, "/missing"), httpmsg.NewResponse(), false)
	assert.Nil(t, resp)

	var nf *router.NotFoundError
	require.True(t, errors.As(err, &nf))

	count := testutil.ToFloat64(a.inst.errors.WithLabelValues("routing"))
	assert.Equal(t, float64(1), count)

	requests, err := testutil.GatherAndCount(reg, "adrkit_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 0, requests)
}

func TestHandleStatusFallbacks(t *testing.T) {
	a, _ := boot(t)

	resp, err := a.Handle(request(t, http.MethodGet, "/broken"), httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())

	resp, err = a.Handle(request(t, http.MethodGet, "/cancelled"), httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, httpmsg.StatusClientClosedRequest, resp.StatusCode())
}

func TestHandleContractViolation(t *testing.T) {
	a, _ := boot(t, func(r *digutil.Resolver) {
		require.NoError(t, r.Register("broken", func(err error) string {
			return "not a response"
		}))
	})
	a.SetExceptionHandler("broken")
	assert.Equal(t, digutil.Key("broken"), a.ExceptionHandler())

	resp, err := a.Handle(request(t, http.MethodGet, "/missing"), httpmsg.NewResponse(), true)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExceptionHandlerContract))
	assert.Equal(t, httperr.KindContract, httperr.KindOf(err))

	a.SetExceptionHandler("missing")
	_, err = a.Handle(request(t, http.MethodGet, "/missing"), httpmsg.NewResponse(), true)
	assert.True(t, errors.Is(err, ErrExceptionHandlerContract))
}

func TestHandleCustomExceptionHandler(t *testing.T) {
	a, _ := boot(t, func(r *digutil.Resolver) {
		require.NoError(t, r.Register(exception.KeyExceptionHandler,
			func(resp *httpmsg.Response, err error) (*httpmsg.Response, error) {
				out, serr := resp.WithStatus(httperr.StatusCode(err))
				if serr != nil {
					return nil, serr
				}
				return out.WriteString("custom: " + err.Error()), nil
			}))
	})

	resp, err := a.Handle(request(t, http.MethodGet, "/nothing"), httpmsg.NewResponse(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "custom: no route for GET /nothing", resp.String())
}

func TestHandleIsRepeatable(t *testing.T) {
	a, _ := boot(t)
	req := request(t, http.MethodGet, "/items/7")
	base := httpmsg.NewResponse()

	first, err := a.Handle(req, base, true)
	require.NoError(t, err)
	second, err := a.Handle(req, base, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "", base.String())
	_, found := req.Attribute("id")
	assert.False(t, found)

	missing := request(t, http.MethodGet, "/nope")
	first, err = a.Handle(missing, base, true)
	require.NoError(t, err)
	second, err = a.Handle(missing, base, true)
	require.NoError(t, err)
	assert.Equal(t, first.StatusCode(), second.StatusCode())
	assert.Equal(t, first.Header(), second.Header())
}

func TestRunEmitsResponse(t *testing.T) {
	buf := new(bytes.Buffer)
	a, _ := boot(t, func(r *digutil.Resolver) {
		require.NoError(t, r.Register(KeyEmitter, func() webutil.Emitter {
			return webutil.NewStreamEmitter(buf)
		}))
		require.NoError(t, r.Register(KeyRequest, func() (*httpmsg.Request, error) {
			return httpmsg.NewRequest(http.MethodGet, "/items/42")
		}))
	})

	require.NoError(t, a.Run(context.Background(), nil, nil))
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\nitem 42", buf.String())
}

func TestServeHTTP(t *testing.T) {
	a, _ := boot(t)

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item 5", rec.Body.String())

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/items/5", strings.NewReader("{}"))
	r.Header.Set("Accept", "text/plain")
	a.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "GET, PUT", rec.Header().Get("Allow"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "405 Method Not Allowed\n"))
}

func TestRegisterOnServer(t *testing.T) {
	a, _ := boot(t)

	server := webutil.NewServer(webutil.ServerParams{Handlers: []webutil.Handler{a}})
	router := server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item 7", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeHTTPContractViolation(t *testing.T) {
	a, _ := boot(t, func(r *digutil.Resolver) {
		require.NoError(t, r.Register(exception.KeyExceptionHandler, func() int { return 1 }))
	})

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBootKeepsOverrides(t *testing.T) {
	custom := router.New()
	custom.Get("/custom", adr.ActionFunc(showItem))

	a, _ := boot(t, func(r *digutil.Resolver) {
		require.NoError(t, digutil.ProvideValue(r, custom))
	})

	assert.Same(t, custom, a.Router())
	assert.Len(t, a.Router().Routes(), 5)

	again, err := Boot(a.Resolver())
	require.NoError(t, err)
	assert.Same(t, a, again)
}

func TestBootWithoutResolver(t *testing.T) {
	a, err := Boot(nil)
	require.NoError(t, err)
	assert.NotNil(t, a.Resolver())
	assert.Equal(t, adr.KeyActionHandler, a.ActionHandler())

	a.SetActionHandler("custom")
	assert.Equal(t, digutil.Key("custom"), a.ActionHandler())
}

func TestConfig(t *testing.T) {
	a, _ := boot(t)

	assert.Equal(t, "fallback", a.Config("name", "fallback"))
	a.SetConfig("name", "adrkit")
	assert.Equal(t, "adrkit", a.Config("name", "fallback"))

	require.NoError(t, a.LoadConfig(strings.NewReader("")))
	require.NoError(t, a.LoadConfig(strings.NewReader(
		"server:\n  listen: ':9000'\n  timeout: 5s\nname: other\n",
	)))
	assert.Equal(t, "other", a.Config("name", nil))

	var server struct {
		Listen  string `mapstructure:"listen"`
		Timeout string `mapstructure:"timeout"`
	}
	require.NoError(t, a.DecodeConfig("server", &server))
	assert.Equal(t, ":9000", server.Listen)
	assert.Equal(t, "5s", server.Timeout)

	assert.Error(t, a.DecodeConfig("unknown", &server))
	assert.Error(t, a.LoadConfig(strings.NewReader("- not\n- a map\n")))
}

func TestLogger(t *testing.T) {
	a, _ := boot(t)

	assert.Same(t, a.Logger("audit"), a.Logger("audit"))
	assert.Same(t, a.Logger(""), a.Logger("default"))
	assert.NotSame(t, a.Logger("audit"), a.Logger("default"))
}

func TestBootRejectsEmptyPreferences(t *testing.T) {
	r := digutil.NewResolver()
	require.NoError(t, digutil.ProvideValue[prometheus.Registerer](r, prometheus.NewRegistry()))
	require.NoError(t, r.Provide(func() (*exception.Preferences, error) {
		return exception.ParsePreferences([]byte("{}"))
	}))

	_, err := Boot(r)
	require.Error(t, err)
	assert.ErrorContains(t, err, exception.ErrEmptyPreferences.Error())
}

func TestHandleConcurrently(t *testing.T) {
	a, reg := boot(t)

	type result struct {
		status      int
		contentType string
		body        string
		err         error
	}

	accepts := []string{"application/json", "text/html", "text/plain"}
	requests := make([]*httpmsg.Request, 60)
	for i := range requests {
		target := fmt.Sprintf("/items/%d", i)
		if i%2 == 1 {
			target = "/missing"
		}
		requests[i] = request(t, http.MethodGet, target, "Accept", accepts[i%len(accepts)])
	}

	results := make([]result, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := a.Handle(req, httpmsg.NewResponse(), true)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			results[i] = result{
				status:      resp.StatusCode(),
				contentType: resp.HeaderLine("Content-Type"),
				body:        resp.String(),
			}
		}()
	}
	wg.Wait()

	for i, res := range results {
		require.NoError(t, res.err)

		if i%2 == 0 {
			assert.Equal(t, http.StatusOK, res.status)
			assert.Equal(t, fmt.Sprintf("item %d", i), res.body)
			continue
		}

		assert.Equal(t, http.StatusNotFound, res.status)
		assert.Equal(t, accepts[i%len(accepts)], res.contentType)
	}

	series, err := testutil.GatherAndCount(reg, "adrkit_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestNewWithoutLoggerRegistry(t *testing.T) {
	r := digutil.NewResolver()
	require.NoError(t, digutil.ProvideValue[prometheus.Registerer](r, prometheus.NewRegistry()))
	require.NoError(t, r.Provide(router.New))
	require.NoError(t, r.Provide(New))

	a, err := digutil.Get[*Application](r)
	require.NoError(t, err)
	assert.NotNil(t, a.Logger("items"))
}
