package lua_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/enetx/lua"
)

type extraData struct {
	value string
}

func assertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func assertTrue(t *testing.T, cond bool) {
	t.Helper()
	if !cond {
		t.Fatalf("expected true, got false")
	}
}

func assertFalse(t *testing.T, cond bool) {
	t.Helper()
	if cond {
		t.Fatalf("expected false, got true")
	}
}

// withData runs fn on the extraData attached to th and fails the test when
// nothing usable is attached.
func withData(t *testing.T, th Thread, fn func(*extraData)) {
	t.Helper()

	res := WithExtra(th, func(d *extraData) struct{} {
		fn(d)
		return struct{}{}
	})

	assertNoError(t, res.Err())
}

func valueOf(t *testing.T, th Thread) string {
	t.Helper()

	res := WithExtra(th, func(d *extraData) string { return d.value })
	assertNoError(t, res.Err())

	return res.Ok()
}

func TestExtra_DefaultEmpty(t *testing.T) {
	state := NewState()

	assertTrue(t, state.GetExtra().IsAbsent())
	assertTrue(t, state.GetExtra().Upgrade().IsNone())
	assertTrue(t, state.SetExtra(Weak{}).Upgrade().IsNone())

	thread := state.NewThread()
	assertTrue(t, thread.GetExtra().Upgrade().IsNone())
	assertTrue(t, thread.SetExtra(Weak{}).Upgrade().IsNone())
}

func TestExtra_SetGetRoundTrip(t *testing.T) {
	state := NewState()

	extra := Share(extraData{value: "payload"})
	defer extra.Drop()

	state.SetExtra(extra.Downgrade())

	promoted := state.GetExtra().Upgrade()
	assertTrue(t, promoted.IsSome())
	assertTrue(t, promoted.Some().Same(extra))
	promoted.Some().Drop()

	assertEqual(t, extra.StrongCount(), 1)
	assertEqual(t, valueOf(t, state), "payload")
}

func TestExtra_SwapReturnsPrevious(t *testing.T) {
	state := NewState()

	a := Share(extraData{value: "a"})
	defer a.Drop()

	b := Share(extraData{value: "b"})
	defer b.Drop()

	assertTrue(t, state.SetExtra(a.Downgrade()).IsAbsent())

	prev := state.SetExtra(b.Downgrade())
	assertTrue(t, prev.Same(a.Downgrade()))
	assertFalse(t, prev.Same(b.Downgrade()))

	prev = state.SetExtra(Weak{})
	assertTrue(t, prev.Same(b.Downgrade()))
	assertTrue(t, state.GetExtra().IsAbsent())
}

func TestExtra_SlotDoesNotExtendLifetime(t *testing.T) {
	state := NewState()

	extra := Share(extraData{value: "short lived"})
	state.SetExtra(extra.Downgrade())
	extra.Drop()

	assertFalse(t, state.GetExtra().IsAbsent())
	assertTrue(t, state.GetExtra().Upgrade().IsNone())
	assertErrorIs(t, WithExtra(state, func(d *extraData) string { return d.value }).Err(), ErrExtraExpired)
}

func TestExtra_Owned(t *testing.T) {
	state := NewState()

	assertTrue(t, state.GetExtra().Upgrade().IsNone())
	assertTrue(t, state.SetExtra(Weak{}).Upgrade().IsNone())

	extra := Share(extraData{value: "Initial data"})
	state.SetExtra(extra.Downgrade())

	for x := range 10 {
		withData(t, state, func(d *extraData) {
			d.value = fmt.Sprintf("Changed to %d", x)
		})
	}

	data := Detach[extraData](state, extra)
	assertNoError(t, data.Err())
	assertEqual(t, data.Ok().value, "Changed to 9")

	assertTrue(t, state.GetExtra().Upgrade().IsNone())
	assertTrue(t, state.SetExtra(Weak{}).Upgrade().IsNone())
}

func TestExtra_IndependentDerivation(t *testing.T) {
	state := NewState()

	extra := Share(extraData{value: "parent"})
	defer extra.Drop()

	state.SetExtra(extra.Downgrade())

	thread := state.NewThread()
	assertTrue(t, thread.GetExtra().IsAbsent())

	thread.SetExtra(state.GetExtra())
	assertTrue(t, thread.GetExtra().Same(state.GetExtra()))

	withData(t, thread, func(d *extraData) { d.value = "changed by thread" })
	assertEqual(t, valueOf(t, state), "changed by thread")

	// replacing the child's reference leaves the parent alone
	thread.SetExtra(Weak{})
	assertEqual(t, valueOf(t, state), "changed by thread")
}

func TestExtra_Thread(t *testing.T) {
	state := NewState()

	thread := state.NewThread()
	assertTrue(t, thread.GetExtra().Upgrade().IsNone())
	assertTrue(t, thread.SetExtra(Weak{}).Upgrade().IsNone())
	assertTrue(t, state.GetExtra().Upgrade().IsNone())
	assertTrue(t, state.SetExtra(Weak{}).Upgrade().IsNone())

	extra := Share(extraData{value: "Be shared!"})
	defer extra.Drop()

	state.SetExtra(extra.Downgrade())
	assertEqual(t, valueOf(t, state), "Be shared!")

	assertTrue(t, thread.GetExtra().Upgrade().IsNone())
	thread.SetExtra(state.GetExtra())
	assertEqual(t, valueOf(t, thread), "Be shared!")

	other := state.NewThread()
	assertTrue(t, other.GetExtra().Upgrade().IsNone())

	local := Share(extraData{value: "I'm in thread!"})
	other.SetExtra(local.Downgrade())

	assertEqual(t, valueOf(t, other), "I'm in thread!")
	assertEqual(t, valueOf(t, thread), "Be shared!")
	assertEqual(t, valueOf(t, state), "Be shared!")

	promoted := other.GetExtra().Upgrade()
	assertTrue(t, promoted.IsSome())
	promoted.Some().Drop()

	local.Drop()
	assertTrue(t, other.GetExtra().Upgrade().IsNone())

	assertEqual(t, valueOf(t, state), "Be shared!")
	assertEqual(t, valueOf(t, thread), "Be shared!")
}
