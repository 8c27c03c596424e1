package cmdutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// SignalRootContext returns a background context that gets cancelled on
// SIGINT or SIGTERM.
func SignalRootContext() context.Context {
	return SignalContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// SignalContext cancels the returned context on the first of the given
// signals. A second signal terminates the process with
// ExitCodeMultipleInterrupts.
func SignalContext(ctx context.Context, signals ...os.Signal) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	received := make(chan os.Signal, 2)
	signal.Notify(received, signals...)

	go func() {
		for count := 1; ; count++ {
			sig := <-received
			slog.Debug("received signal", "signal", sig.String(), "count", count)

			if count > 1 {
				slog.Error("two interrupts received, exiting immediately; data loss may have occurred")
				os.Exit(ExitCodeMultipleInterrupts)
			}

			cancel()
		}
	}()

	return ctx
}

type RunFuncWithContext func(ctx context.Context, cmd *cobra.Command, args []string)

// ContextWithDelay returns a context with all values of in, which gets
// cancelled the given delay after in is done.
func ContextWithDelay(in context.Context, delay time.Duration) context.Context {
	out, cancel := context.WithCancel(context.WithoutCancel(in))
	context.AfterFunc(in, func() {
		time.AfterFunc(delay, cancel)
	})
	return out
}
