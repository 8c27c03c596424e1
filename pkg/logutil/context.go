package logutil

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mitchellh/mapstructure"
)

type scopeKey struct{}

// span is one step in the subsystem path of a context.
type span struct {
	id   string
	name string
}

// scope is stored in the context. The spans are kept next to the logger, so
// a nested Start can rebuild the logger with the whole path.
type scope struct {
	spans  []span
	logger *slog.Logger
}

func (s *scope) subsystem() string {
	names := make([]string, 0, len(s.spans)+1)
	names = append(names, "/")
	for _, sp := range s.spans {
		names = append(names, sp.name)
	}
	return path.Join(names...)
}

func (s *scope) traceID() string {
	ids := make([]string, len(s.spans))
	for i, sp := range s.spans {
		ids[i] = sp.id
	}
	return strings.Join(ids, "-")
}

func fromContext(ctx context.Context) (*scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	return s, ok
}

func newSpanID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Get returns the logger of the context or the default logger, if the context
// was not started with Start.
func Get(ctx context.Context) *slog.Logger {
	s, ok := fromContext(ctx)
	if !ok {
		return slog.Default()
	}
	return s.logger
}

// GetSubsystem returns the subsystem path of the context, like
// "/server/request".
func GetSubsystem(ctx context.Context) string {
	s, ok := fromContext(ctx)
	if !ok {
		return ""
	}
	return s.subsystem()
}

// Start opens a new subsystem below the one of ctx. The returned context
// carries a logger derived from slog.Default with one trace id per
// subsystem, the combined trace id and the subsystem path.
func Start(ctx context.Context, subsystem string, opts ...ContextOption) context.Context {
	var parent []span
	if s, ok := fromContext(ctx); ok {
		parent = s.spans
	}

	s := &scope{
		spans: append(append([]span(nil), parent...), span{
			id:   newSpanID(),
			name: subsystem,
		}),
	}

	attrs := make([]any, 0, 2*len(s.spans)+4)
	for _, sp := range s.spans {
		attrs = append(attrs, "trace-id-"+slug.Make(sp.name), sp.id)
	}
	attrs = append(attrs,
		"subsystem", s.subsystem(),
		"trace-id", s.traceID(),
	)
	s.logger = slog.Default().With(attrs...)

	return apply(ctx, s, opts)
}

// Update returns a context with the options applied to its logger. Contexts
// that were not started with Start are returned unaltered.
func Update(ctx context.Context, opts ...ContextOption) context.Context {
	s, ok := fromContext(ctx)
	if !ok {
		return ctx
	}

	c := *s
	return apply(ctx, &c, opts)
}

func apply(ctx context.Context, s *scope, opts []ContextOption) context.Context {
	for _, opt := range opts {
		opt(s)
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextOption modifies the logger of a context.
type ContextOption func(*scope)

func Field(key string, value any) ContextOption {
	return func(s *scope) {
		s.logger = s.logger.With(key, value)
	}
}

// Fields adds all fields in the order of their keys.
func Fields(fields map[string]any) ContextOption {
	return func(s *scope) {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]any, 0, 2*len(keys))
		for _, k := range keys {
			attrs = append(attrs, k, fields[k])
		}
		s.logger = s.logger.With(attrs...)
	}
}

func WithField(ctx context.Context, key string, value any) context.Context {
	return Update(ctx, Field(key, value))
}

func WithFields(ctx context.Context, fields map[string]any) context.Context {
	return Update(ctx, Fields(fields))
}

// FromStruct converts a struct into log fields. The field names are taken
// from the logfield tag:
//
//	type Request struct {
//	    Method string `logfield:"method"`
//	    Path   string `logfield:"path"`
//	}
//
// A failed conversion is reported in the "logfield-error" field.
func FromStruct(s any) map[string]any {
	fields := map[string]any{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "logfield",
		Result:  &fields,
	})
	if err == nil {
		err = dec.Decode(s)
	}
	if err != nil {
		return map[string]any{"logfield-error": err.Error()}
	}

	return fields
}
