// Package app glues the router, the action handler and the exception handler
// together.
//
// Boot registers all default bindings on the resolver. Bindings that already
// exist are kept, so they can be replaced before booting:
//
//	r := digutil.NewResolver()
//	err := r.Provide(func() (*exception.Preferences, error) {
//	    return exception.NewPreferences(
//	        exception.Preference{MediaType: "application/json", Renderer: render.KeyJSON},
//	    )
//	})
//
//	a, err := app.Boot(r)
//	a.AddRoutes(func(r *router.Router) {
//	    r.Get("/items/{id}", showItem)
//	})
//
//	http.ListenAndServe(":8080", a)
package app
