package lua

import (
	"errors"
	"fmt"
)

// ErrExtraExpired is reported when a non-owning extra reference can no longer be
// promoted: the slot is empty or every strong reference to the container has been
// dropped. It means "no extra data attached"; retrying cannot succeed until a new
// reference is installed with SetExtra.
var ErrExtraExpired = errors.New("lua: extra reference expired")

// ErrExtraReleased is returned when a strong handle is used after Drop.
var ErrExtraReleased = errors.New("lua: extra handle already dropped")

// ErrTypeMismatch is returned when the payload stored in an Extra is not of the
// requested type. It signals that two parts of the host disagree on what is
// stored, so it should be surfaced rather than ignored.
type ErrTypeMismatch struct {
	Want string
	Got  string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("lua: extra holds %s, not %s", e.Got, e.Want)
}

// ErrExtraShared is returned by IntoInner when other strong references to the
// container are still alive.
type ErrExtraShared struct {
	Strong int64
}

func (e *ErrExtraShared) Error() string {
	return fmt.Sprintf("lua: extra still has %d strong references", e.Strong)
}

// ErrInvalidTransition is returned when no matching transition is found for the given event
// from the current status.
type ErrInvalidTransition struct {
	From  Status
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("lua: no matching transition for event %q from status %q", e.Event, e.From)
}

// ErrCallback is returned when a transition hook returns an error or panics.
// It wraps the original error, allowing it to be inspected using functions
// like errors.Is and errors.As.
type ErrCallback struct {
	From  Status
	To    Status
	Event Event
	// Err is the original error returned by the hook or the error created after recovering from a panic.
	Err error
}

func (e *ErrCallback) Error() string {
	return fmt.Sprintf("lua: error in transition hook %q -> %q on %q: %v", e.From, e.To, e.Event, e.Err)
}

func (e *ErrCallback) Unwrap() error { return e.Err }
