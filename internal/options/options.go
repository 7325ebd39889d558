// Package options is the generic functional-options building block shared
// by this repo's declarative configuration surfaces: table.DefineSchema's
// per-entry compression/padding/deprecation settings and any other
// build-once-then-configure call site that needs the same shape without
// repeating it.
package options

// Option configures a target of type T, failing closed if the setting is
// invalid (e.g. an out-of-range reserved size, a conflicting compression
// override).
type Option[T any] interface {
	apply(T) error
}

// Func wraps a plain function as an Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New builds an Option from a function that can fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// Apply runs every option against target in order, stopping at the first
// error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// NoError wraps a function that can't fail as an Option. Most of this
// repo's options (WithDeprecated, WithFieldReservedSize, ...) are defined
// this way since their inputs are validated later, at schema-build time.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}
