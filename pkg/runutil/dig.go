package runutil

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/rebuy-de/adrkit/pkg/digutil"
)

// WorkerConfiger is implemented by services that bring their own workers,
// like the web server and the admin API.
type WorkerConfiger interface {
	Workers() []Worker
}

// WorkerGroup collects all provided WorkerConfigers.
type WorkerGroup struct {
	dig.In
	All []WorkerConfiger `group:"worker"`
}

// ProvideWorker provides a constructor of a WorkerConfiger, which can later
// be started with RunProvidedWorkers.
func ProvideWorker(r *digutil.Resolver, fn any) error {
	return r.Provide(fn, dig.Group("worker"), dig.As(new(WorkerConfiger)))
}

// RunProvidedWorkers starts all workers that were provided with
// ProvideWorker. Every worker gets its own logging subsystem.
func RunProvidedWorkers(ctx context.Context, r *digutil.Resolver) error {
	in, err := digutil.Get[WorkerGroup](r)
	if err != nil {
		return errors.Wrap(err, "resolve workers")
	}

	workers := []Worker{}
	for _, c := range in.All {
		if c == nil {
			continue
		}

		for _, w := range c.Workers() {
			workers = append(workers, NamedWorkerFromType(w, c))
		}
	}

	if len(workers) == 0 {
		return errors.New("no workers provided")
	}

	return RunAllWorkers(ctx, workers...)
}
