package logutil

import (
	"log/slog"
	"sort"
	"sync"
)

// DefaultLoggerName is used by Registry.Get for an empty name.
const DefaultLoggerName = "default"

// Registry holds one logger per name. Every logger carries its name in the
// "logger" attribute.
type Registry struct {
	mu      sync.Mutex
	handler slog.Handler
	loggers map[string]*slog.Logger
}

// NewRegistry creates a registry whose loggers write to handler. A nil handler
// uses the handler of slog.Default at the time a logger is created.
func NewRegistry(handler slog.Handler) *Registry {
	return &Registry{
		handler: handler,
		loggers: map[string]*slog.Logger{},
	}
}

// Get returns the logger with the given name and creates it on first use.
func (r *Registry) Get(name string) *slog.Logger {
	if name == "" {
		name = DefaultLoggerName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loggers[name]
	if ok {
		return l
	}

	handler := r.handler
	if handler == nil {
		handler = slog.Default().Handler()
	}

	l = slog.New(handler).With("logger", name)
	r.loggers[name] = l
	return l
}

// Names returns the names of all created loggers.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
