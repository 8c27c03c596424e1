// Package router matches a request method and path to a registered Route.
//
// The chi mux is only used as a matcher. Routes carry an opaque Target that
// gets interpreted by the action handler of the application:
//
//	r := router.New()
//	r.Get("/items/{id}", adr.ActionFunc(getItem))
//	r.Group("/admin", func(r *router.Router) {
//	    r.Delete("/items/{id}", adr.ActionFunc(deleteItem))
//	})
//
//	route, params, err := r.Dispatch("GET", "/items/42")
package router
