package runutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/rebuy-de/adrkit/pkg/logutil"
)

// NamedWorker starts a new logutil subsystem before running the worker.
func NamedWorker(worker Worker, name string, a ...any) Worker {
	return WorkerFunc(func(ctx context.Context) error {
		ctx = logutil.Start(ctx, fmt.Sprintf(name, a...))
		return worker.Run(ctx)
	})
}

// NamedWorkerFromType works like NamedWorker, but derives the name from the
// type of t, eg "webutil/Server".
func NamedWorkerFromType(worker Worker, t any) Worker {
	name := fmt.Sprintf("%T", t)
	name = strings.TrimLeft(name, "*")
	name = strings.Replace(name, ".", "/", 1)
	return NamedWorker(worker, "%s", name)
}
