// Package webutil serves Handlers over HTTP and emits httpmsg Responses.
//
// # Serving
//
// Handlers are structs with a Register method, which get provided to the
// resolver with ProvideHandler and are picked up by the Server:
//
//	type ItemHandler struct{}
//
//	func (h *ItemHandler) Register(router chi.Router) {
//	    router.Get("/healthz", h.handleHealth)
//	}
//
//	err := errors.Join(
//	    webutil.ProvideHandler(r, NewItemHandler),
//	    runutil.ProvideWorker(r, webutil.NewServer),
//	    runutil.ProvideWorker(r, webutil.NewAdminAPI),
//	)
//
// An *app.Application is a Handler itself and mounts as catch-all route.
//
// The Server adds request ids, logging and panic recovery to every request.
// The AdminAPI serves Prometheus metrics, a health check and pprof on a
// separate address.
//
// # Emitting
//
// An Emitter writes a Response onto a transport. The StreamEmitter writes the
// raw HTTP/1.x message, which is useful for CGI-style programs. The
// ResponseWriterEmitter writes to a http.ResponseWriter.
package webutil
