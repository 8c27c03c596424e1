// Package digutil wraps Uber's dig container with a registry of named
// strategies.
//
// Plain dependencies are provided as singletons, the same way as with dig:
//
//	r := digutil.NewResolver()
//	err := r.Provide(negotiate.New)
//
// Strategies are functions registered under a Key. Their parameters get
// resolved from the container, unless the caller passes an override with an
// assignable type:
//
//	err = r.Register("greet", func(n negotiate.Negotiator, name string) string {
//	    return "hello " + name
//	})
//
//	msg, err := digutil.Make[string](r, "greet", "gopher")
//
// Optional dependencies use parameter objects:
//
//	type ServiceParams struct {
//	    dig.In
//
//	    Registerer prometheus.Registerer `optional:"true"`
//	}
package digutil
