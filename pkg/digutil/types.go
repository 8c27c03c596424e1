package digutil

import "go.uber.org/dig"

// Key names a strategy in the Resolver registry.
type Key string

// Optional resolves *T if it was provided and leaves Value nil otherwise. It
// can be used as a field of another parameter struct.
type Optional[T any] struct {
	dig.In
	Value *T `optional:"true"`
}

// ProvideValue provides an already existing value as singleton.
func ProvideValue[T any](r *Resolver, v T) error {
	return r.Provide(func() T {
		return v
	})
}
