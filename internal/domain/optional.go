package domain

// Optional distinguishes "not provided" from a zero value in partial updates.
type Optional[T any] struct {
	value T
	set   bool
}

// Set wraps a provided value.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Unset is the absent value.
func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr treats nil as absent.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Set(*p)
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}
