package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/rebuy-de/adrkit/pkg/adr"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/exception"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/logutil"
	"github.com/rebuy-de/adrkit/pkg/negotiate"
	"github.com/rebuy-de/adrkit/pkg/render"
	"github.com/rebuy-de/adrkit/pkg/router"
	"github.com/rebuy-de/adrkit/pkg/webutil"
)

const (
	// KeyRequest resolves the request of the current process. By default it
	// is read once from the CGI environment.
	KeyRequest digutil.Key = "app.request"

	// KeyResponse resolves a fresh empty response.
	KeyResponse digutil.Key = "app.response"

	// KeyEmitter resolves the webutil.Emitter used by Run.
	KeyEmitter digutil.Key = "app.emitter"
)

// ActionHandler is the contract of the action handler strategy.
type ActionHandler interface {
	Handle(req *httpmsg.Request, resp *httpmsg.Response, route *router.Route) (*httpmsg.Response, error)
}

type Params struct {
	dig.In

	Resolver   *digutil.Resolver
	Router     *router.Router
	Loggers    digutil.Optional[logutil.Registry]
	Registerer prometheus.Registerer `optional:"true"`
}

// Application dispatches requests to actions and turns errors into
// responses.
type Application struct {
	resolver *digutil.Resolver
	router   *router.Router
	loggers  *logutil.Registry
	inst     *instrumentation

	mu               sync.RWMutex
	exceptionHandler digutil.Key
	actionHandler    digutil.Key
	config           map[string]any
}

func New(p Params) *Application {
	loggers := p.Loggers.Value
	if loggers == nil {
		loggers = logutil.NewRegistry(nil)
	}

	return &Application{
		resolver:         p.Resolver,
		router:           p.Router,
		loggers:          loggers,
		inst:             newInstrumentation(p.Registerer),
		exceptionHandler: exception.KeyExceptionHandler,
		actionHandler:    adr.KeyActionHandler,
		config:           map[string]any{},
	}
}

// Boot registers the default bindings on the resolver and constructs the
// Application from it. A nil resolver gets replaced by a new one. Existing
// bindings are not replaced.
func Boot(r *digutil.Resolver) (*Application, error) {
	if r == nil {
		r = digutil.NewResolver()
	}

	steps := []func() error{
		func() error { return r.ProvideDefault(router.New) },
		func() error { return r.ProvideDefault(negotiate.New) },
		func() error { return r.ProvideDefault(func() *render.Renderer { return render.NewRenderer() }) },
		func() error { return r.ProvideDefault(exception.DefaultPreferences) },
		func() error { return r.ProvideDefault(exception.NewHandler) },
		func() error { return r.ProvideDefault(adr.NewActionHandler) },
		func() error { return r.ProvideDefault(func() *logutil.Registry { return logutil.NewRegistry(nil) }) },
		func() error { return r.ProvideDefault(New) },
		func() error { return render.RegisterDefaults(r) },
		func() error { return r.RegisterDefault(KeyRequest, sync.OnceValues(httpmsg.FromCGI)) },
		func() error { return r.RegisterDefault(KeyResponse, httpmsg.NewResponse) },
		func() error { return r.RegisterDefault(KeyEmitter, defaultEmitter) },
		func() error { return r.RegisterDefault(adr.KeyActionHandler, defaultActionHandler) },
		func() error { return r.RegisterDefault(exception.KeyExceptionHandler, exception.Strategy) },
	}

	for _, step := range steps {
		err := step()
		if err != nil {
			return nil, errors.Wrap(err, "register default bindings")
		}
	}

	// Singletons are built lazily otherwise. Building them here reports broken
	// configuration like empty Preferences on startup instead of on the first
	// failing request.
	_, err := digutil.Get[*exception.Handler](r)
	if err != nil {
		return nil, errors.Wrap(err, "construct exception handler")
	}

	_, err = digutil.Get[*adr.ActionHandler](r)
	if err != nil {
		return nil, errors.Wrap(err, "construct action handler")
	}

	a, err := digutil.Get[*Application](r)
	return a, errors.Wrap(err, "construct application")
}

func defaultEmitter() webutil.Emitter {
	return webutil.NewStreamEmitter(os.Stdout)
}

func defaultActionHandler(h *adr.ActionHandler) ActionHandler {
	return h
}

func (a *Application) Resolver() *digutil.Resolver {
	return a.resolver
}

func (a *Application) Router() *router.Router {
	return a.router
}

// AddRoutes calls fn with the router of the application.
func (a *Application) AddRoutes(fn func(r *router.Router)) *Application {
	fn(a.router)
	return a
}

func (a *Application) ExceptionHandler() digutil.Key {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exceptionHandler
}

// SetExceptionHandler selects the strategy that turns errors into responses.
// It must return a *httpmsg.Response.
func (a *Application) SetExceptionHandler(key digutil.Key) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exceptionHandler = key
	return a
}

func (a *Application) ActionHandler() digutil.Key {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.actionHandler
}

// SetActionHandler selects the strategy that returns the ActionHandler.
func (a *Application) SetActionHandler(key digutil.Key) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actionHandler = key
	return a
}

// Logger returns the named logger. The same name always returns the same
// logger.
func (a *Application) Logger(name string) *slog.Logger {
	return a.loggers.Get(name)
}

// Handle dispatches the request and runs the action. With catch, errors are
// converted into a response by the exception handler. Without catch they are
// returned as they are. A broken exception handler always results in an error
// that matches ErrExceptionHandlerContract.
func (a *Application) Handle(req *httpmsg.Request, resp *httpmsg.Response, catch bool) (*httpmsg.Response, error) {
	start := time.Now()

	out, err := a.dispatch(req, resp)
	if err != nil {
		a.inst.observeError(err)
		if !catch {
			return nil, err
		}

		out, err = a.handleError(req, resp, err)
		if err != nil {
			a.inst.observeError(err)
			return nil, err
		}
	}

	a.inst.observeRequest(out.StatusCode(), time.Since(start))
	return out, nil
}

func (a *Application) dispatch(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error) {
	route, params, err := a.router.Dispatch(req.Method(), req.URI().Path)
	if err != nil {
		return nil, err
	}

	for _, param := range params {
		req = req.WithAttribute(param.Key, param.Value)
	}

	key := a.ActionHandler()
	handler, err := digutil.Make[ActionHandler](a.resolver, key, req, resp)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve action handler %q", string(key))
	}

	out, err := handler.Handle(req, resp, route)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.Errorf("action for %s %s returned no response", route.Method, route.Pattern)
	}

	return out, nil
}

func (a *Application) handleError(req *httpmsg.Request, resp *httpmsg.Response, cause error) (*httpmsg.Response, error) {
	key := a.ExceptionHandler()

	result, err := a.resolver.Call(key, req, resp, cause)
	if err != nil {
		return nil, errors.WithStack(&ContractError{Key: key, Cause: err})
	}

	out, ok := result.(*httpmsg.Response)
	if !ok || out == nil {
		return nil, errors.WithStack(&ContractError{Key: key, Result: result})
	}

	return out, nil
}

// Run handles a single request and emits the response with the resolved
// emitter. A nil request or response gets resolved with KeyRequest and
// KeyResponse.
func (a *Application) Run(ctx context.Context, req *httpmsg.Request, resp *httpmsg.Response) error {
	var err error

	if req == nil {
		req, err = digutil.Make[*httpmsg.Request](a.resolver, KeyRequest)
		if err != nil {
			return errors.Wrap(err, "resolve request")
		}
	}

	if resp == nil {
		resp, err = digutil.Make[*httpmsg.Response](a.resolver, KeyResponse)
		if err != nil {
			return errors.Wrap(err, "resolve response")
		}
	}

	out, err := a.Handle(req.WithContext(ctx), resp, true)
	if err != nil {
		return err
	}

	emitter, err := digutil.Make[webutil.Emitter](a.resolver, KeyEmitter)
	if err != nil {
		return errors.Wrap(err, "resolve emitter")
	}

	return emitter.Emit(ctx, out)
}

// ServeHTTP makes the Application a http.Handler.
func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httpmsg.FromHTTP(r)
	if err != nil {
		logutil.Get(ctx).Warn("reading request failed", "error", err.Error())
		http.Error(w, httpmsg.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	resp, err := digutil.Make[*httpmsg.Response](a.resolver, KeyResponse)
	if err != nil {
		resp = httpmsg.NewResponse()
	}

	out, err := a.Handle(req, resp, true)
	if err != nil {
		logutil.Get(ctx).Error("handling request failed",
			"error", err.Error(),
			"stacktrace", fmt.Sprintf("%+v", err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = webutil.NewResponseWriterEmitter(w).Emit(ctx, out)
	if err != nil {
		logutil.Get(ctx).Warn("emitting response failed", "error", err.Error())
	}
}

// Register mounts the Application as catch-all handler, so it can be served
// by a webutil.Server.
func (a *Application) Register(r chi.Router) {
	r.Handle("/*", a)
}
