package runutil

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerExitedPrematurely indicates that a worker returned without error
// before the context was cancelled.
var ErrWorkerExitedPrematurely = errors.New("worker exited prematurely")

// RunAllWorkers runs every worker in its own goroutine and blocks until all
// of them returned. The first worker that returns cancels the others. The
// result joins all worker errors and contains ErrWorkerExitedPrematurely for
// each worker that stopped on its own.
func RunAllWorkers(ctx context.Context, workers ...Worker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	for _, w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()

			err := w.Run(ctx)
			switch {
			case err != nil:
				fail(err)
			case ctx.Err() == nil:
				fail(ErrWorkerExitedPrematurely)
			}
		}()
	}

	wg.Wait()

	return errors.Join(errs...)
}
