package webutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"github.com/rebuy-de/adrkit/pkg/cmdutil"
	"github.com/rebuy-de/adrkit/pkg/logutil"
	"github.com/rebuy-de/adrkit/pkg/runutil"
)

// DefaultAdminListenAddress is used by the AdminAPI, if no
// AdminListenAddress is provided.
const DefaultAdminListenAddress = "0.0.0.0:8090"

// AdminListenAddress is the address of the admin API.
type AdminListenAddress string

type AdminAPIParams struct {
	dig.In

	Address  AdminListenAddress  `optional:"true"`
	Gatherer prometheus.Gatherer `optional:"true"`
}

// AdminAPI serves metrics, health checks and pprof on a separate port.
type AdminAPI struct {
	Address  AdminListenAddress
	Gatherer prometheus.Gatherer
}

func NewAdminAPI(p AdminAPIParams) *AdminAPI {
	address := p.Address
	if address == "" {
		address = DefaultAdminListenAddress
	}

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &AdminAPI{
		Address:  address,
		Gatherer: gatherer,
	}
}

func (a *AdminAPI) Workers() []runutil.Worker {
	return []runutil.Worker{a}
}

// Handler returns the admin mux. The health endpoint reports a shutdown as
// soon as ctx is done.
func (a *AdminAPI) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(a.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "SHUTTING DOWN")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	// net/http/pprof only registers itself on the default mux.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

// Run serves the admin API until ctx is done. The server itself outlives ctx
// by a second, so the health endpoint can report the shutdown.
func (a *AdminAPI) Run(ctx context.Context) error {
	ctx = logutil.Start(ctx, "admin-api")
	logutil.Get(ctx).Debug("admin api listening", "address", string(a.Address))

	return ListenAndServeWithContext(
		cmdutil.ContextWithDelay(ctx, time.Second),
		string(a.Address), a.Handler(ctx))
}
