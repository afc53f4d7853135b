// Package lua models interpreter execution contexts (a main state and the
// threads derived from it) together with the extra slot each of them carries:
// a non-owning, type-erased reference to host data.
//
// The host keeps payloads alive through strong *Extra handles and installs
// Weak references into contexts. Contexts never extend a payload's lifetime, so
// a payload may refer back to the context that points at it without forming a
// cycle. Outcomes that may legitimately fail are reported with the Option and
// Result types of github.com/enetx/g.
package lua

import (
	"runtime"
	"weak"

	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
	"github.com/rs/zerolog"
)

var _ Thread = (*State)(nil)

// NewState creates a main thread. Its status is running and its extra slot is empty.
func NewState(opts ...StateOption) *State {
	f := &family{
		name:        "main",
		log:         zerolog.Nop(),
		transitions: g.NewMap[Status, g.Slice[transition]](),
		hooks:       g.NewSlice[TransitionHook](),
		threads:     make(map[uint64]weak.Pointer[State]),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.defineTransitions()

	f.main = f.newState(StatusRunning)
	f.main.log.Debug().Bool("inherit_extra", f.inherit).Msg("state created")

	return f.main
}

func (f *family) newState(status Status) *State {
	s := &State{
		id:      f.nextID.Add(1) - 1,
		family:  f,
		history: g.Slice[Status]{status},
	}

	s.status.Store(&status)

	s.log = f.log.With().Str("thread", s.Name()).Logger()

	return s
}

func (f *family) forget(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.threads, id)
}

// NewThread derives a suspended thread from s. The thread shares the family of
// s (logger, transition hooks, main thread) but never its extra slot: the new
// slot is empty unless the family was created WithInheritExtra, in which case
// the current reference of s is copied in after creation.
//
// Deriving from a closed context yields a thread that is already closed.
func (s *State) NewThread() *State {
	f := s.family
	t := f.newState(StatusSuspended)

	f.mu.Lock()
	alive := !f.main.closed.Load() && !s.closed.Load()
	if alive {
		f.threads[t.id] = weak.Make(t)
	}
	f.mu.Unlock()

	if !alive {
		t.closed.Store(true)
		return t
	}

	runtime.AddCleanup(t, f.forget, t.id)

	if f.inherit {
		t.SetExtra(s.GetExtra())
	}

	t.log.Debug().Uint64("parent", s.id).Bool("inherited", f.inherit).Msg("thread created")

	return t
}

// ID returns the identifier of s within its family. The main thread is 0.
func (s *State) ID() uint64 { return s.id }

// Name returns a human readable name such as "main" or "main/thread-3".
func (s *State) Name() string {
	if s.IsMainThread() {
		return s.family.name
	}

	return string(g.Format("{}/thread-{}", s.family.name, s.id))
}

// IsMainThread reports whether s was created by NewState.
func (s *State) IsMainThread() bool { return s.id == 0 }

// Main returns the main thread of the family of s.
func (s *State) Main() *State { return s.family.main }

// Threads returns the threads derived in this family that are neither closed
// nor garbage collected, ordered by ID.
func (s *State) Threads() g.Slice[*State] {
	f := s.family

	f.mu.Lock()
	threads := g.NewSlice[*State]()
	for _, ptr := range f.threads {
		if t := ptr.Value(); t != nil && !t.closed.Load() {
			threads.Push(t)
		}
	}
	f.mu.Unlock()

	threads.SortBy(func(a, b *State) cmp.Ordering { return cmp.Cmp(a.id, b.id) })

	return threads
}

// GetExtra returns the non-owning reference held by the extra slot of s.
// It is absent when nothing was set or s is closed.
func (s *State) GetExtra() Weak {
	if p := s.extra.Load(); p != nil && !s.closed.Load() {
		return *p
	}

	return Weak{}
}

// SetExtra atomically replaces the extra slot of s with w and returns the
// previous reference. Setting Weak{} detaches. The reference is stored as is:
// it is neither promoted nor validated, and no strong count changes.
// On a closed context nothing is stored and the absent reference is returned.
func (s *State) SetExtra(w Weak) Weak {
	if s.closed.Load() {
		return Weak{}
	}

	prev := s.extra.Swap(&w)

	// a concurrent Close must still leave the slot empty
	if s.closed.Load() {
		s.extra.Store(nil)
	}

	s.log.Debug().Bool("attached", !w.IsAbsent()).Bool("replaced", prev != nil && !prev.IsAbsent()).Msg("extra set")

	if prev == nil {
		return Weak{}
	}

	return *prev
}

// Close destroys s and its extra slot. Closing the main thread closes every
// thread of its family. Strong references held by the host are not affected.
// Only suspended or dead threads and a running main thread can be closed.
func (s *State) Close() error { return s.Trigger(EventClose) }

func (s *State) teardown() {
	s.closed.Store(true)
	s.extra.Store(nil)

	f := s.family

	if !s.IsMainThread() {
		f.forget(s.id)
		s.log.Debug().Msg("thread closed")

		return
	}

	f.mu.Lock()
	threads := f.threads
	f.threads = make(map[uint64]weak.Pointer[State])
	f.mu.Unlock()

	closed := 0

	for _, ptr := range threads {
		if t := ptr.Value(); t != nil && t.closed.CompareAndSwap(false, true) {
			t.extra.Store(nil)
			closed++
		}
	}

	s.log.Debug().Int("threads", closed).Msg("state closed")
}

// Sync returns a thread-safe wrapper around s.
func (s *State) Sync() *SyncState { return &SyncState{state: s} }
