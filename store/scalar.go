package store

// Scalar wraps a fixed-size value with trivial copy semantics. Scalars hold
// no heap resource and bypass the ownership model entirely: assignment and
// Copy produce independent values, both of which stay valid, and no move
// semantics apply.
type Scalar[T any] struct {
	v T
}

// NewScalar wraps v.
func NewScalar[T any](v T) Scalar[T] {
	return Scalar[T]{v: v}
}

// Get returns the wrapped value.
func (s Scalar[T]) Get() T {
	return s.v
}

// Copy returns an independent duplicate. The receiver remains valid.
func (s Scalar[T]) Copy() Scalar[T] {
	return s
}
