package digutil

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/dig"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	outType   = reflect.TypeOf(dig.Out{})
)

// UnknownKeyError is returned when calling a Key that was never registered.
type UnknownKeyError struct {
	Key Key
}

func (e UnknownKeyError) Error() string {
	return fmt.Sprintf("no strategy registered for key %q", string(e.Key))
}

// Resolver combines a dig container for singletons with a registry of keyed
// strategy functions. It is safe for concurrent use. Constructors run while
// the container is locked and must not call back into the Resolver;
// strategies run unlocked and may.
type Resolver struct {
	// dig builds singletons lazily and is not safe for concurrent use.
	cmu       sync.Mutex
	container *dig.Container

	mu       sync.RWMutex
	registry map[Key]reflect.Value
	provided map[reflect.Type]struct{}
}

// NewResolver creates a Resolver with a fresh container. The Resolver
// provides itself, so constructors and strategies can depend on it.
func NewResolver(opts ...dig.Option) *Resolver {
	r := &Resolver{
		container: dig.New(opts...),
		registry:  map[Key]reflect.Value{},
		provided:  map[reflect.Type]struct{}{},
	}

	// Cannot fail on an empty container.
	_ = r.Provide(func() *Resolver { return r })

	return r
}

// Provide registers a singleton constructor. See dig.Container.Provide.
func (r *Resolver) Provide(ctor any, opts ...dig.ProvideOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.provide(ctor, opts...)
}

func (r *Resolver) provide(ctor any, opts ...dig.ProvideOption) error {
	r.cmu.Lock()
	err := r.container.Provide(ctor, opts...)
	r.cmu.Unlock()
	if err != nil {
		return errors.Wrap(err, "provide constructor")
	}

	for _, t := range outputTypes(reflect.TypeOf(ctor)) {
		r.provided[t] = struct{}{}
	}

	return nil
}

// ProvideDefault works like Provide, but does nothing if every type the
// constructor returns is already provided. This allows overriding defaults by
// providing them before.
func (r *Resolver) ProvideDefault(ctor any, opts ...dig.ProvideOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := outputTypes(reflect.TypeOf(ctor))
	missing := len(types) == 0
	for _, t := range types {
		if _, ok := r.provided[t]; !ok {
			missing = true
		}
	}
	if !missing {
		return nil
	}

	return r.provide(ctor, opts...)
}

// Provided reports whether a constructor for the type was provided.
func (r *Resolver) Provided(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.provided[t]
	return ok
}

// Invoke calls fn with its parameters resolved from the container. The
// container stays locked while fn runs, so fn must return quickly and must not
// use the Resolver. Use Get for everything else.
func (r *Resolver) Invoke(fn any, opts ...dig.InvokeOption) error {
	r.cmu.Lock()
	defer r.cmu.Unlock()

	return errors.WithStack(r.container.Invoke(fn, opts...))
}

// Register adds a strategy function under the given key. A previous strategy
// with the same key is replaced.
func (r *Resolver) Register(key Key, fn any) error {
	v, err := strategy(key, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry[key] = v
	return nil
}

// RegisterDefault registers the strategy only if the key is still unused.
func (r *Resolver) RegisterDefault(key Key, fn any) error {
	v, err := strategy(key, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registry[key]; !exists {
		r.registry[key] = v
	}
	return nil
}

func strategy(key Key, fn any) (reflect.Value, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return v, errors.Errorf("strategy %q must be a function, got %T", string(key), fn)
	}
	if v.Type().IsVariadic() {
		return v, errors.Errorf("strategy %q must not be variadic", string(key))
	}
	return v, nil
}

func (r *Resolver) Has(key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.registry[key]
	return ok
}

// Call invokes the strategy registered under key. Each parameter gets the
// first unused override that is assignable to it or is resolved from the
// container otherwise. If the last result of the strategy is an error, it is
// returned as error; the first result is returned as value.
func (r *Resolver) Call(key Key, overrides ...any) (any, error) {
	r.mu.RLock()
	fn, ok := r.registry[key]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WithStack(UnknownKeyError{Key: key})
	}

	ft := fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	used := make([]bool, len(overrides))
	missing := []int{}

	for i := range args {
		pt := ft.In(i)
		for j, o := range overrides {
			if used[j] || o == nil {
				continue
			}
			ov := reflect.ValueOf(o)
			if ov.Type().AssignableTo(pt) {
				args[i] = ov
				used[j] = true
				break
			}
		}
		if !args[i].IsValid() {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		in := make([]reflect.Type, len(missing))
		for k, idx := range missing {
			in[k] = ft.In(idx)
		}

		collect := reflect.MakeFunc(reflect.FuncOf(in, nil, false), func(values []reflect.Value) []reflect.Value {
			for k, idx := range missing {
				args[idx] = values[k]
			}
			return nil
		})

		r.cmu.Lock()
		err := r.container.Invoke(collect.Interface())
		r.cmu.Unlock()
		if err != nil {
			return nil, errors.Wrapf(err, "resolve parameters of strategy %q", string(key))
		}
	}

	results := fn.Call(args)
	if len(results) == 0 {
		return nil, nil
	}

	last := results[len(results)-1]
	if ft.Out(len(results)-1) == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(results) == 1 {
			return nil, err
		}
		return results[0].Interface(), err
	}

	return results[0].Interface(), nil
}

// Make calls the strategy and asserts its result to T.
func Make[T any](r *Resolver, key Key, overrides ...any) (T, error) {
	var zero T

	v, err := r.Call(key, overrides...)
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("strategy %q returned %T instead of %s",
			string(key), v, reflect.TypeOf((*T)(nil)).Elem())
	}

	return t, nil
}

// Get resolves a single value from the container. T may also be a parameter
// struct embedding dig.In.
func Get[T any](r *Resolver) (T, error) {
	var result T
	err := r.Invoke(func(v T) {
		result = v
	})
	return result, err
}

func outputTypes(ft reflect.Type) []reflect.Type {
	if ft == nil || ft.Kind() != reflect.Func {
		return nil
	}

	types := []reflect.Type{}
	for i := 0; i < ft.NumOut(); i++ {
		t := ft.Out(i)
		if t == errorType {
			continue
		}
		if t.Kind() == reflect.Struct && embedsOut(t) {
			for f := 0; f < t.NumField(); f++ {
				field := t.Field(f)
				if field.Type == outType || !field.IsExported() {
					continue
				}
				types = append(types, field.Type)
			}
			continue
		}
		types = append(types, t)
	}
	return types
}

func embedsOut(t reflect.Type) bool {
	for f := 0; f < t.NumField(); f++ {
		if t.Field(f).Anonymous && t.Field(f).Type == outType {
			return true
		}
	}
	return false
}
