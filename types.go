package lua

import (
	"sync"
	"sync/atomic"
	"weak"

	"github.com/enetx/g"
	"github.com/rs/zerolog"
)

type (
	// Status is the coroutine status of an execution context.
	Status g.String
	// Event drives a lifecycle transition of an execution context.
	Event g.String

	// GuardFunc determines whether a transition is allowed for the given context.
	GuardFunc func(s *State) bool
	// TransitionHook is called for every lifecycle transition of any context in a
	// state family, before the new status is applied. A returned error or a panic
	// aborts the transition.
	TransitionHook func(from, to Status, event Event, s *State) error

	// transition is an internal struct representing a possible path between statuses.
	transition struct {
		event Event
		to    Status
		guard GuardFunc
	}

	// family is shared by a main thread and every thread derived from it.
	family struct {
		name    string
		log     zerolog.Logger
		inherit bool

		// written by NewState only, read-only afterwards
		transitions g.Map[Status, g.Slice[transition]]

		mu      sync.Mutex
		hooks   g.Slice[TransitionHook]
		main    *State
		threads map[uint64]weak.Pointer[State]
		nextID  atomic.Uint64
	}

	// State is an execution context: either the main thread returned by NewState
	// or a thread derived from it with NewThread.
	//
	// Every State owns exactly one extra slot holding a non-owning reference to
	// host data. The slot and the current status can be read from any goroutine;
	// transitions and history follow single-owner discipline, use Sync to drive
	// one State from several goroutines.
	State struct {
		id     uint64
		family *family
		log    zerolog.Logger

		extra  atomic.Pointer[Weak]
		closed atomic.Bool
		status atomic.Pointer[Status]

		history g.Slice[Status]
	}

	// SyncState lets several goroutines drive the same execution context.
	// The extra slot needs no wrapper since it is swapped atomically; the
	// RWMutex serializes Trigger and Close against each other and against
	// History, which State leaves to its single owner.
	SyncState struct {
		state *State
		mu    sync.RWMutex
	}
)
