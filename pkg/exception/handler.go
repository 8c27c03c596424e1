// Package exception turns errors into content-negotiated error responses.
package exception

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/httperr"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/logutil"
	"github.com/rebuy-de/adrkit/pkg/negotiate"
	"github.com/rebuy-de/adrkit/pkg/render"
)

// KeyExceptionHandler names the default exception handling strategy. See
// Strategy.
const KeyExceptionHandler digutil.Key = "exception.handler"

// Strategy is the default exception handling strategy. A replacement can be
// any function registered with the resolver, as long as it returns a
// *httpmsg.Response. The request, response and error are passed as overrides,
// everything else is resolved from the container.
func Strategy(req *httpmsg.Request, resp *httpmsg.Response, err error, h *Handler) *httpmsg.Response {
	return h.HandleError(req, resp, err)
}

// fallbackMediaType is used for the minimal body written when the negotiated
// render handler fails.
const fallbackMediaType = "text/plain; charset=utf-8"

// Next is the handling step that gets wrapped by Process.
type Next func(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error)

type HandlerParams struct {
	dig.In

	Preferences *Preferences
	Negotiator  negotiate.Negotiator
	Resolver    *digutil.Resolver
	Renderer    *render.Renderer
}

// Handler negotiates the content type of error responses and renders them
// with the render handler configured in the Preferences.
type Handler struct {
	preferences *Preferences
	negotiator  negotiate.Negotiator
	resolver    *digutil.Resolver
	renderer    *render.Renderer
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		preferences: p.Preferences,
		negotiator:  p.Negotiator,
		resolver:    p.Resolver,
		renderer:    p.Renderer,
	}
}

func (h *Handler) Preferences() *Preferences {
	return h.preferences
}

// Process calls next and converts a returned error into an error response.
// It never returns the error of next.
func (h *Handler) Process(req *httpmsg.Request, resp *httpmsg.Response, next Next) (*httpmsg.Response, error) {
	out, err := next(req, resp)
	if err == nil {
		return out, nil
	}

	return h.HandleError(req, resp, err), nil
}

// HandleError builds the error response for err. The content type is the best
// match of the Accept header, falling back to the first preference. The status
// is the one carried by err, if valid, and 500 otherwise.
func (h *Handler) HandleError(req *httpmsg.Request, resp *httpmsg.Response, err error) *httpmsg.Response {
	ctx := req.Context()

	mediaType, ok := h.negotiator.Best(req.HeaderLine("Accept"), h.preferences.Types())
	if !ok {
		mediaType = h.preferences.Default()
	}

	// A carried status wins over the cancellation of the request.
	status := httperr.StatusCode(err)
	if (status < 100 || status > 599) && errors.Is(err, context.Canceled) {
		status = httpmsg.StatusClientClosedRequest
	}

	out, serr := resp.WithStatus(status)
	if serr != nil {
		// Cannot fail for a constant valid status.
		out, _ = resp.WithStatus(500)
	}
	out = httperr.Augment(out, err)
	// The negotiated type replaces a Content-Type added by the error.
	out = out.WithHeader("Content-Type", mediaType)

	info := render.NewInfo(err, out.StatusCode(), h.renderer.Debug())
	h.log(ctx, info, err)

	body, rerr := h.render(ctx, mediaType, info)
	if rerr != nil {
		logutil.Get(ctx).Error("rendering error response failed",
			"error-id", info.ID,
			"media-type", mediaType,
			"error", rerr.Error(),
		)
		body = fmt.Sprintf("%d %s\n", info.Status, info.Title)
		out = out.WithHeader("Content-Type", fallbackMediaType)
	}

	return out.WithBody([]byte(body))
}

func (h *Handler) render(ctx context.Context, mediaType string, info render.Info) (string, error) {
	key, ok := h.preferences.Lookup(mediaType)
	if !ok {
		return "", errors.Errorf("no renderer configured for %s", mediaType)
	}

	handler, err := digutil.Make[render.Handler](h.resolver, key)
	if err != nil {
		return "", errors.Wrapf(err, "resolve renderer %q", string(key))
	}

	return h.renderer.RenderWith(ctx, handler, info)
}

func (h *Handler) log(ctx context.Context, info render.Info, err error) {
	l := logutil.Get(ctx).With(
		"error-id", info.ID,
		"status", info.Status,
		"kind", info.Kind,
		"error", err.Error(),
	)

	switch {
	case info.Status == httpmsg.StatusClientClosedRequest:
		l.Debug("request cancelled")
	case info.Status >= 500:
		l.Error("request failed", "stacktrace", fmt.Sprintf("%+v", err))
	default:
		l.Warn("request failed")
	}
}
