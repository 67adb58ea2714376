// Package cooldown models the resend gate as a pure state machine driven by
// an external clock, so it can be tested without timers or any rendering
// concern. The authoritative cooldown lives server-side next to the pending
// registration; this machine is the advisory countdown surfaced to clients.
package cooldown

import (
	"time"

	"go.uber.org/atomic"
)

// State is the gate's position.
type State int

const (
	// StateAvailable means the resend action may be invoked.
	StateAvailable State = iota
	// StateLocked means the resend action is refused until the countdown
	// reaches zero.
	StateLocked
)

// String returns the state name.
func (s State) String() string {
	if s == StateLocked {
		return "Locked"
	}

	return "Available"
}

// Machine is a tick-driven countdown gate.
//
// It starts Locked with the given number of remaining units and transitions to
// Available when the count reaches zero. Using the gate again re-enters
// Locked via Reset.
type Machine struct {
	remaining *atomic.Int64
}

// NewMachine returns a Machine locked for the given number of ticks.
// A non-positive value starts Available.
func NewMachine(ticks int64) *Machine {
	if ticks < 0 {
		ticks = 0
	}

	return &Machine{remaining: atomic.NewInt64(ticks)}
}

// Tick advances the countdown by one unit and returns the resulting state.
// Ticking an Available machine is a no-op.
func (m *Machine) Tick() State {
	for {
		cur := m.remaining.Load()
		if cur <= 0 {
			return StateAvailable
		}
		if m.remaining.CompareAndSwap(cur, cur-1) {
			if cur-1 == 0 {
				return StateAvailable
			}
			return StateLocked
		}
	}
}

// State returns the current state and the remaining ticks.
func (m *Machine) State() (State, int64) {
	rem := m.remaining.Load()
	if rem <= 0 {
		return StateAvailable, 0
	}

	return StateLocked, rem
}

// Reset re-locks the machine for the given number of ticks, replacing any
// countdown still in flight. Only one countdown is ever active.
func (m *Machine) Reset(ticks int64) {
	if ticks < 0 {
		ticks = 0
	}
	m.remaining.Store(ticks)
}

// Until computes the gate state from an absolute availability instant, the
// form used server-side: remaining whole seconds until availableAt, rounded
// up so a gate never reports Available early.
func Until(now, availableAt time.Time) (State, int64) {
	d := availableAt.Sub(now)
	if d <= 0 {
		return StateAvailable, 0
	}

	secs := int64((d + time.Second - 1) / time.Second)
	return StateLocked, secs
}
