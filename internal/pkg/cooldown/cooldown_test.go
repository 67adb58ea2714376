package cooldown

import (
	"testing"
	"time"
)

func TestMachineLockedUntilTicksExhausted(t *testing.T) {
	m := NewMachine(3)

	if st, rem := m.State(); st != StateLocked || rem != 3 {
		t.Fatalf("expected Locked(3), got %v(%d)", st, rem)
	}

	if st := m.Tick(); st != StateLocked {
		t.Fatalf("after 1 tick expected Locked, got %v", st)
	}
	if st := m.Tick(); st != StateLocked {
		t.Fatalf("after 2 ticks expected Locked, got %v", st)
	}
	if st := m.Tick(); st != StateAvailable {
		t.Fatalf("after 3 ticks expected Available, got %v", st)
	}
}

func TestMachineTickWhenAvailableIsNoop(t *testing.T) {
	m := NewMachine(0)

	for i := 0; i < 5; i++ {
		if st := m.Tick(); st != StateAvailable {
			t.Fatalf("tick %d: expected Available, got %v", i, st)
		}
	}
}

func TestMachineResetReplacesCountdown(t *testing.T) {
	m := NewMachine(10)
	m.Tick()

	// Re-issuing a code restarts the single countdown; the old one must
	// not keep ticking alongside.
	m.Reset(2)

	if st, rem := m.State(); st != StateLocked || rem != 2 {
		t.Fatalf("expected Locked(2) after reset, got %v(%d)", st, rem)
	}
	m.Tick()
	if st := m.Tick(); st != StateAvailable {
		t.Fatalf("expected Available after reset countdown, got %v", st)
	}
}

func TestMachineNegativeStartsAvailable(t *testing.T) {
	m := NewMachine(-4)
	if st, rem := m.State(); st != StateAvailable || rem != 0 {
		t.Fatalf("expected Available(0), got %v(%d)", st, rem)
	}
}

func TestUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		availableAt time.Time
		wantState   State
		wantRem     int64
	}{
		{"already available", now.Add(-time.Second), StateAvailable, 0},
		{"exactly now", now, StateAvailable, 0},
		{"mid countdown", now.Add(30 * time.Second), StateLocked, 30},
		{"rounds up partial second", now.Add(1500 * time.Millisecond), StateLocked, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, rem := Until(now, tt.availableAt)
			if st != tt.wantState || rem != tt.wantRem {
				t.Fatalf("Until() = %v(%d), want %v(%d)", st, rem, tt.wantState, tt.wantRem)
			}
		})
	}
}
