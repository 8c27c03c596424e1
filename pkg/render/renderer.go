// Package render turns error descriptions into response bodies.
package render

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoHandler is returned by Render when the handler stack is empty.
var ErrNoHandler = errors.New("no render handler on stack")

// Handler renders an Info into a response body.
type Handler interface {
	ContentType() string
	Render(ctx context.Context, info Info) (string, error)
}

// Renderer is a stack of handlers that is shared between requests. The top
// handler renders. Use RenderWith to push, render and pop atomically, since
// concurrent requests would otherwise see each others handlers.
type Renderer struct {
	section sync.Mutex

	mu    sync.Mutex
	stack []Handler
	debug bool
}

type Option func(*Renderer)

// WithDebug makes the renderer add stack traces to the rendered errors.
func WithDebug(debug bool) Option {
	return func(r *Renderer) {
		r.debug = debug
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := new(Renderer)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Debug() bool {
	return r.debug
}

func (r *Renderer) PushHandler(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stack = append(r.stack, h)
}

// PopHandler removes and returns the top handler. It returns nil for an empty
// stack.
func (r *Renderer) PopHandler() Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		return nil
	}

	h := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return h
}

// Handlers returns a copy of the stack, bottom first.
func (r *Renderer) Handlers() []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Handler(nil), r.stack...)
}

// Render renders the info with the top handler.
func (r *Renderer) Render(ctx context.Context, info Info) (string, error) {
	r.mu.Lock()
	var h Handler
	if len(r.stack) > 0 {
		h = r.stack[len(r.stack)-1]
	}
	r.mu.Unlock()

	if h == nil {
		return "", errors.WithStack(ErrNoHandler)
	}

	out, err := h.Render(ctx, info)
	return out, errors.Wrap(err, "render error")
}

// RenderWith pushes h, renders the info and pops h again. The whole sequence
// is mutually exclusive with other RenderWith calls.
func (r *Renderer) RenderWith(ctx context.Context, h Handler, info Info) (string, error) {
	r.section.Lock()
	defer r.section.Unlock()

	r.PushHandler(h)
	defer r.PopHandler()

	return r.Render(ctx, info)
}
