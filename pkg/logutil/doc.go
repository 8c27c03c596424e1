// Package logutil provides context-aware structured logging with log/slog.
//
// A logger is stored in the context together with the path of subsystems it
// passed and a trace ID per subsystem:
//
//	ctx = logutil.Start(ctx, "request")
//	ctx = logutil.WithField(ctx, "method", req.Method())
//	logutil.Get(ctx).Info("handling request")
//
// NewHandler builds the process wide handler that is configured by the
// command line flags, and Registry hands out long-living named loggers.
package logutil
