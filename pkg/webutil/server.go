package webutil

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"github.com/rebuy-de/adrkit/pkg/cmdutil"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/logutil"
	"github.com/rebuy-de/adrkit/pkg/runutil"
)

// DefaultListenAddress is used by the Server, if no ListenAddress is
// provided.
const DefaultListenAddress = "0.0.0.0:8080"

// ListenAndServeWithContext does the same as http.ListenAndServe with the
// difference that it properly utilises the context. This means it does a
// graceful shutdown when the context is done and a context cancellation gets
// propagated down to the actual request context.
func ListenAndServeWithContext(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return errors.WithStack(err)
	})

	grp.Go(func() error {
		<-ctx.Done()

		logutil.Get(ctx).Debug("shutting down http server", "address", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return errors.WithStack(server.Shutdown(shutdownCtx))
	})

	return errors.Wrap(grp.Wait(), "http server failed")
}

// ListenAddress is the address of the public HTTP server. It is a separate
// type to support dependency injection.
type ListenAddress string

// ShutdownDelay delays the shutdown of the Server after the context got
// cancelled, to give load balancers some time to redirect traffic.
type ShutdownDelay time.Duration

// Handler is the interface that HTTP handlers need to implement to get picked
// up and served by the Server.
type Handler interface {
	Register(chi.Router)
}

// ProvideHandler provides a constructor of a Handler to the resolver.
func ProvideHandler(r *digutil.Resolver, fn any) error {
	return r.Provide(fn, dig.Group("handler"), dig.As(new(Handler)))
}

// ServerParams defines all parameters that are needed for the Server. Its
// fields can be injected using dig.
type ServerParams struct {
	dig.In

	Address  ListenAddress `optional:"true"`
	Delay    ShutdownDelay `optional:"true"`
	Handlers []Handler     `group:"handler"`
}

// Server serves all provided Handlers. It supports dependency injection using
// dig and is a runutil.WorkerConfiger.
type Server struct {
	Address  ListenAddress
	Delay    ShutdownDelay
	Handlers []Handler
}

func NewServer(p ServerParams) *Server {
	address := p.Address
	if address == "" {
		address = DefaultListenAddress
	}

	return &Server{
		Address:  address,
		Delay:    p.Delay,
		Handlers: p.Handlers,
	}
}

// Workers defines the workers, making it compatible with runutil.
func (s *Server) Workers() []runutil.Worker {
	return []runutil.Worker{s}
}

// Router builds the chi router with the default middlewares and all
// registered handlers.
func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger)
	router.Use(middleware.Recoverer)

	for _, h := range s.Handlers {
		if h == nil {
			continue
		}
		h.Register(router)
	}

	return router
}

func (s *Server) Run(ctx context.Context) error {
	ctx = cmdutil.ContextWithDelay(ctx, time.Duration(s.Delay))

	logutil.Get(ctx).Info("http server listening", "address", string(s.Address))
	return errors.WithStack(ListenAndServeWithContext(
		ctx, string(s.Address), s.Router()))
}

type requestFields struct {
	Method    string `logfield:"method"`
	Path      string `logfield:"path"`
	RequestID string `logfield:"request-id"`
	Remote    string `logfield:"remote-addr"`
}

// RequestLogger starts a new logging subsystem for every request and logs
// the outcome on debug level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logutil.Start(r.Context(), "request", logutil.Fields(logutil.FromStruct(requestFields{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: middleware.GetReqID(r.Context()),
			Remote:    r.RemoteAddr,
		})))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logutil.Get(ctx).Debug("request handled",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
