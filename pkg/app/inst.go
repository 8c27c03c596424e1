package app

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rebuy-de/adrkit/pkg/httperr"
)

// inst.go contains the instrumentation of the request pipeline. It is kept
// separate, so the handling code stays readable.

const instNamespace = "adrkit"

type instrumentation struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
}

func newInstrumentation(reg prometheus.Registerer) *instrumentation {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &instrumentation{
		requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: instNamespace,
			Name:      "requests_total",
			Help:      "Number of handled requests by response status.",
		}, []string{"status"})),
		errors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: instNamespace,
			Name:      "errors_total",
			Help:      "Number of errors that reached the error boundary by kind.",
		}, []string{"kind"})),
		duration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: instNamespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a request, without emitting it.",
			Buckets:   prometheus.DefBuckets,
		})),
	}
}

// register returns the already registered collector, if there is one. This
// happens when booting more than one application in a process.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		existing, ok := are.ExistingCollector.(T)
		if ok {
			return existing
		}
	}

	return c
}

func (i *instrumentation) observeRequest(status int, duration time.Duration) {
	i.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	i.duration.Observe(duration.Seconds())
}

func (i *instrumentation) observeError(err error) {
	i.errors.WithLabelValues(httperr.KindOf(err).String()).Inc()
}
