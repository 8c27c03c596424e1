package runutil

import "context"

// Worker is a service that runs until the context gets cancelled, like an
// HTTP server.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc casts a function to a Worker.
type WorkerFunc func(ctx context.Context) error

func (fn WorkerFunc) Run(ctx context.Context) error {
	return fn(ctx)
}
