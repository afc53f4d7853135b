package lua

import (
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/enetx/g"
)

var extraIDs atomic.Uint64

// shared is the control block behind every Extra handle and Weak reference.
type shared struct {
	id     uint64
	strong atomic.Int64
	value  any
}

// acquire adds a strong reference unless the count already reached zero.
// A container that hit zero stays dead.
func (c *shared) acquire() bool {
	for {
		n := c.strong.Load()
		if n <= 0 {
			return false
		}

		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *shared) release() { c.strong.Add(-1) }

// Extra is a strong, reference-counted handle to a type-erased payload.
//
// Each *Extra counts as one strong reference. Additional strong references are
// made with Clone or by promoting a Weak; each must be released with Drop.
// A handle that becomes unreachable without Drop is released by the garbage
// collector. Execution contexts never hold an Extra, only a Weak derived from it.
type Extra struct {
	inner   *shared
	state   atomic.Int32
	cleanup runtime.Cleanup
}

// Extra handle states. A handle is claimed while IntoInner decides whether it
// may take the payload; Drop waits for the claim to settle.
const (
	handleLive int32 = iota
	handleClaimed
	handleReleased
)

func (e *Extra) isReleased() bool { return e.state.Load() == handleReleased }

// NewExtra wraps v in a new container and returns its first strong reference.
// Payloads that are mutated from several holders should guard themselves,
// see Locked and Share.
func NewExtra(v any) *Extra {
	c := &shared{id: extraIDs.Add(1), value: v}
	c.strong.Store(1)

	return newHandle(c)
}

func newHandle(c *shared) *Extra {
	e := &Extra{inner: c}
	e.cleanup = runtime.AddCleanup(e, (*shared).release, c)

	return e
}

// Clone returns an additional strong reference to the same container.
// It returns nil when called on a handle that was already dropped.
func (e *Extra) Clone() *Extra {
	if e == nil || e.isReleased() || !e.inner.acquire() {
		return nil
	}

	return newHandle(e.inner)
}

// Drop releases this strong reference. Calling Drop more than once on the same
// handle has no further effect.
func (e *Extra) Drop() {
	if e == nil {
		return
	}

	for {
		switch e.state.Load() {
		case handleReleased:
			return
		case handleClaimed:
			runtime.Gosched()
			continue
		}

		if e.state.CompareAndSwap(handleLive, handleReleased) {
			e.cleanup.Stop()
			e.inner.release()

			return
		}
	}
}

// Downgrade derives a non-owning reference to the container.
func (e *Extra) Downgrade() Weak {
	if e == nil {
		return Weak{}
	}

	return Weak{ptr: weak.Make(e.inner)}
}

// StrongCount reports how many strong references to the container are alive.
func (e *Extra) StrongCount() int64 {
	if e == nil {
		return 0
	}

	return e.inner.strong.Load()
}

// Same reports whether both handles refer to the same container.
func (e *Extra) Same(other *Extra) bool {
	return e != nil && other != nil && e.inner == other.inner
}

// Weak is a non-owning reference to an Extra container. It never keeps the
// payload alive and grants no access to it until promoted with Upgrade.
// The zero value is the absent reference.
type Weak struct {
	ptr weak.Pointer[shared]
}

// Upgrade attempts to promote the reference to a strong one. It returns None
// once the last strong reference has been dropped, or when the reference is
// absent. The returned handle must be released with Drop.
func (w Weak) Upgrade() g.Option[*Extra] {
	c := w.ptr.Value()
	if c == nil || !c.acquire() {
		return g.None[*Extra]()
	}

	return g.Some(newHandle(c))
}

// IsAbsent reports whether w is the empty reference.
func (w Weak) IsAbsent() bool { return w.ptr == weak.Pointer[shared]{} }

// Same reports whether both references point to the same container.
// Two absent references are not the same.
func (w Weak) Same(other Weak) bool { return !w.IsAbsent() && w.ptr == other.ptr }

// StrongCount reports how many strong references keep the container alive.
// It is zero for absent and expired references.
func (w Weak) StrongCount() int64 {
	c := w.ptr.Value()
	if c == nil {
		return 0
	}

	return max(c.strong.Load(), 0)
}

// container returns the control block without promoting it.
func (w Weak) container() g.Option[*shared] {
	if c := w.ptr.Value(); c != nil {
		return g.Some(c)
	}

	return g.None[*shared]()
}
