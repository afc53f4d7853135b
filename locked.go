package lua

import "sync"

// Locked guards a payload with its own mutex. Containers shared between
// several contexts hand out concurrent strong references; the slot mechanism
// does not serialize access to the payload, Locked does.
type Locked[T any] struct {
	mu    sync.Mutex
	value T
}

// NewLocked returns a guard holding v.
func NewLocked[T any](v T) *Locked[T] { return &Locked[T]{value: v} }

// With runs fn with exclusive access to the guarded value.
func (l *Locked[T]) With(fn func(*T)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fn(&l.value)
}

// Load returns a copy of the guarded value.
func (l *Locked[T]) Load() T {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.value
}

// Store replaces the guarded value.
func (l *Locked[T]) Store(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.value = v
}

// IntoInner takes the value out of the guard, leaving the zero value behind.
func (l *Locked[T]) IntoInner() T {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := l.value
	var zero T
	l.value = zero

	return v
}
