package lua

import (
	"fmt"

	"github.com/enetx/g"
)

// Coroutine statuses. A main thread starts running, a derived thread starts suspended.
const (
	StatusRunning   Status = "running"
	StatusSuspended Status = "suspended"
	StatusNormal    Status = "normal"
	StatusDead      Status = "dead"
	StatusClosed    Status = "closed"
)

// Lifecycle events accepted by Trigger.
const (
	// EventResume starts or continues a suspended thread.
	EventResume Event = "resume"
	// EventYield suspends a running thread.
	EventYield Event = "yield"
	// EventAwait marks a running context that resumed another one.
	EventAwait Event = "await"
	// EventWake returns control to a context that was awaiting.
	EventWake Event = "wake"
	// EventReturn finishes a thread normally.
	EventReturn Event = "return"
	// EventFail finishes a thread with an error.
	EventFail Event = "fail"
	// EventClose destroys a context and its extra slot.
	EventClose Event = "close"
)

func isThread(s *State) bool { return !s.IsMainThread() }

func isMain(s *State) bool { return s.IsMainThread() }

// defineTransitions installs the coroutine status table shared by a family.
func (f *family) defineTransitions() {
	f.transition(StatusSuspended, EventResume, StatusRunning, nil)
	f.transition(StatusRunning, EventYield, StatusSuspended, isThread)
	f.transition(StatusRunning, EventAwait, StatusNormal, nil)
	f.transition(StatusNormal, EventWake, StatusRunning, nil)
	f.transition(StatusRunning, EventReturn, StatusDead, isThread)
	f.transition(StatusRunning, EventFail, StatusDead, isThread)
	f.transition(StatusSuspended, EventClose, StatusClosed, nil)
	f.transition(StatusDead, EventClose, StatusClosed, nil)
	f.transition(StatusRunning, EventClose, StatusClosed, isMain)
}

func (f *family) transition(from Status, event Event, to Status, guard GuardFunc) {
	f.transitions[from] = f.transitions[from].Append(transition{event: event, to: to, guard: guard})
}

func (f *family) transitionHooks() g.Slice[TransitionHook] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hooks.Clone()
}

// OnTransition registers a hook called for transitions of every context in the
// family of s, including threads created later.
func (s *State) OnTransition(hook TransitionHook) *State {
	s.family.mu.Lock()
	defer s.family.mu.Unlock()

	s.family.hooks.Push(hook)
	return s
}

// Status returns the coroutine status of s.
func (s *State) Status() Status {
	if s.closed.Load() {
		return StatusClosed
	}

	return *s.status.Load()
}

// History returns a copy of the statuses s went through, oldest first.
func (s *State) History() g.Slice[Status] {
	history := s.history.Clone()
	if s.closed.Load() && history[len(history)-1] != StatusClosed {
		history.Push(StatusClosed)
	}

	return history
}

// Trigger attempts a lifecycle transition using the given event.
// Reaching StatusClosed tears the context down the same way Close does.
func (s *State) Trigger(event Event) error {
	from := s.Status()

	transitions, ok := s.family.transitions[from]
	if !ok {
		return &ErrInvalidTransition{From: from, Event: event}
	}

	matched := transitions.
		Iter().
		Exclude(func(t transition) bool { return t.event != event || (t.guard != nil && !t.guard(s)) }).
		Collect()

	if matched.Empty() {
		return &ErrInvalidTransition{From: from, Event: event}
	}

	to := matched[0].to

	for hook := range s.family.transitionHooks().Iter() {
		if err := s.runHook(hook, from, to, event); err != nil {
			return err
		}
	}

	s.status.Store(&to)
	s.history.Push(to)

	s.log.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Str("event", string(event)).
		Msg("status changed")

	if to == StatusClosed {
		s.teardown()
	}

	return nil
}

// runHook safely executes a transition hook, recovering from panics.
func (s *State) runHook(hook TransitionHook, from, to Status, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{From: from, To: to, Event: event, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if hookErr := hook(from, to, event, s); hookErr != nil {
		err = &ErrCallback{From: from, To: to, Event: event, Err: hookErr}
	}

	return err
}
