package lua

import "github.com/enetx/g"

// Interface compliance check.
var _ Thread = (*SyncState)(nil)

// GetExtra is the thread-safe version of State.GetExtra.
func (ss *SyncState) GetExtra() Weak {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.GetExtra()
}

// SetExtra is the thread-safe version of State.SetExtra.
// It atomically replaces the extra reference and returns the previous one.
func (ss *SyncState) SetExtra(w Weak) Weak {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.state.SetExtra(w)
}

// NewThread is the thread-safe version of State.NewThread.
// The derived thread is returned already wrapped.
func (ss *SyncState) NewThread() *SyncState {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.state.NewThread().Sync()
}

// Status is the thread-safe version of State.Status.
func (ss *SyncState) Status() Status {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.Status()
}

// History is the thread-safe version of State.History.
// It returns a copy of the status history.
func (ss *SyncState) History() g.Slice[Status] {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.History()
}

// Trigger is the thread-safe version of State.Trigger.
// It atomically executes a lifecycle transition in response to an event.
func (ss *SyncState) Trigger(event Event) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.state.Trigger(event)
}

// IsMainThread reports whether the wrapped context is a main thread.
func (ss *SyncState) IsMainThread() bool { return ss.state.IsMainThread() }

// Close is the thread-safe version of State.Close.
func (ss *SyncState) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.state.Close()
}

// ToDOT is the thread-safe version of State.ToDOT.
func (ss *SyncState) ToDOT() g.String {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.ToDOT()
}

// Name is the thread-safe version of State.Name.
func (ss *SyncState) Name() string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.Name()
}

// ID is the thread-safe version of State.ID.
func (ss *SyncState) ID() uint64 {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.ID()
}

// Threads is the thread-safe version of State.Threads.
// The returned contexts are not wrapped; use Sync on those that are shared.
func (ss *SyncState) Threads() g.Slice[*State] {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.state.Threads()
}

// OnTransition is the thread-safe version of State.OnTransition.
// The hook applies to the whole family, not only to the wrapped context.
func (ss *SyncState) OnTransition(hook TransitionHook) *SyncState {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.state.OnTransition(hook)
	return ss
}
