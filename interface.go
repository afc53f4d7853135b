package lua

import "github.com/enetx/g"

// Thread is the surface shared by *State and *SyncState.
type Thread interface {
	GetExtra() Weak
	SetExtra(Weak) Weak
	Status() Status
	History() g.Slice[Status]
	Trigger(Event) error
	IsMainThread() bool
	Close() error
	ToDOT() g.String
}
