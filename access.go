package lua

import (
	"fmt"
	"reflect"

	"github.com/enetx/g"
)

// Share wraps v in a Locked guard and returns the first strong reference to it.
// Payloads created this way can be used with WithExtra and Detach.
func Share[T any](v T) *Extra { return NewExtra(NewLocked(v)) }

// Downcast recovers the concrete payload type of e. It fails with
// *ErrTypeMismatch when e holds something else, and with ErrExtraReleased
// when e was already dropped.
func Downcast[T any](e *Extra) g.Result[T] {
	if e == nil || e.isReleased() {
		return g.Err[T](ErrExtraReleased)
	}

	v, ok := e.inner.value.(T)
	if !ok {
		return g.Err[T](&ErrTypeMismatch{
			Want: reflect.TypeFor[T]().String(),
			Got:  fmt.Sprintf("%T", e.inner.value),
		})
	}

	return g.Ok(v)
}

// WithExtra promotes the extra reference of t, recovers a *Locked[T] payload
// and runs fn under the payload lock. The promoted reference is dropped before
// WithExtra returns.
//
// The result is ErrExtraExpired when nothing is attached or the payload is gone,
// and *ErrTypeMismatch when the payload is not a *Locked[T].
func WithExtra[T, R any](t Thread, fn func(*T) R) g.Result[R] {
	promoted := t.GetExtra().Upgrade()
	if promoted.IsNone() {
		return g.Err[R](ErrExtraExpired)
	}

	extra := promoted.Some()
	defer extra.Drop()

	guard := Downcast[*Locked[T]](extra)
	if guard.IsErr() {
		return g.Err[R](guard.Err())
	}

	var out R
	guard.Ok().With(func(v *T) { out = fn(v) })

	return g.Ok(out)
}

// IntoInner consumes e and returns its payload, provided e is the only strong
// reference left. The type is checked first, so a mismatch leaves e untouched.
// After a successful call every Weak to the container is expired.
func IntoInner[T any](e *Extra) g.Result[T] {
	value := Downcast[T](e)
	if value.IsErr() {
		return value
	}

	if !e.state.CompareAndSwap(handleLive, handleClaimed) {
		return g.Err[T](ErrExtraReleased)
	}

	if !e.inner.strong.CompareAndSwap(1, 0) {
		e.state.Store(handleLive)
		return g.Err[T](&ErrExtraShared{Strong: e.inner.strong.Load()})
	}

	e.state.Store(handleReleased)
	e.cleanup.Stop()

	return value
}

// Detach clears the extra slot of t and reclaims the payload it referenced.
// own is the host's strong reference to that payload and is dropped in the
// process; the reclaimed value is returned once no other strong reference is
// left.
func Detach[T any](t Thread, own *Extra) g.Result[T] {
	previous := t.SetExtra(Weak{}).Upgrade()
	own.Drop()

	if previous.IsNone() {
		return g.Err[T](ErrExtraExpired)
	}

	extra := previous.Some()

	guard := IntoInner[*Locked[T]](extra)
	if guard.IsErr() {
		extra.Drop()
		return g.Err[T](guard.Err())
	}

	return g.Ok(guard.Ok().IntoInner())
}
