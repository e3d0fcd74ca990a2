package sim

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func TestConstantWithoutExpiryNeverRemovable(t *testing.T) {
	c := testClock()
	m := NewConstant(-30, "broken heating")

	c.Advance(1e9, 1)
	if m.CanBeRemoved() {
		t.Errorf("a permanent constant must never become removable")
	}
	if m.Value() != -30 {
		t.Errorf("expected constant value -30, got %v", m.Value())
	}
	if m.Cadence() != CadenceNever {
		t.Errorf("expected never cadence for a permanent constant, got %v", m.Cadence())
	}
}

func TestConstantExpiresExactlyAtDuration(t *testing.T) {
	c := testClock()
	m := NewConstantFor(c, 10, 8, "sugar rush")

	c.Advance(7.5, 1)
	if m.CanBeRemoved() {
		t.Errorf("modifier removable before its duration elapsed")
	}

	c.Advance(0.5, 1)
	if !m.CanBeRemoved() {
		t.Errorf("modifier not removable once elapsed time reached its duration")
	}
	if m.Cadence() != CadenceEachTick {
		t.Errorf("expected each-tick cadence for an expiring constant, got %v", m.Cadence())
	}
}

func TestExponentialDecayCurve(t *testing.T) {
	c := testClock()
	m, err := NewExponentialDecay(c, 100, 10, "fresh coffee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(m.Value()-100) > tolerance {
		t.Errorf("expected initial value 100, got %v", m.Value())
	}

	c.Advance(5, 1)
	if got, want := m.Value(), 100*math.Exp2(-0.5); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected value %v after half a half-life, got %v", want, got)
	}

	c.Advance(5, 1)
	// One half-life later the value has halved, which is exactly the
	// default insignificance threshold.
	if got := m.Value(); math.Abs(got-50) > 1e-6 {
		t.Errorf("expected value 50 after one half-life, got %v", got)
	}
	if !m.CanBeRemoved() {
		t.Errorf("expected removability at the default 50%% threshold")
	}
}

func TestExponentialDecayCustomThreshold(t *testing.T) {
	c := testClock()
	m, err := NewExponentialDecayThreshold(c, 80, 5, 10, "loud argument")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 80 -> 40 -> 20 -> 10 takes three half-lives, 15 units.
	c.Advance(14, 1)
	if m.CanBeRemoved() {
		t.Errorf("removable before magnitude crossed the threshold")
	}
	c.Advance(2, 1)
	if !m.CanBeRemoved() {
		t.Errorf("expected removability after three half-lives")
	}
}

func TestExponentialDecayNegativeInitial(t *testing.T) {
	c := testClock()
	m, err := NewExponentialDecayThreshold(c, -60, 10, -15, "spilled drink")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Value()+60) > tolerance {
		t.Errorf("expected initial value -60, got %v", m.Value())
	}
	c.Advance(10, 1)
	if math.Abs(m.Value()+30) > 1e-6 {
		t.Errorf("expected -30 after one half-life, got %v", m.Value())
	}
}

func TestExponentialDecayConstructionFailures(t *testing.T) {
	c := testClock()

	if _, err := NewExponentialDecay(c, 100, 0, "x"); err == nil {
		t.Errorf("expected error for non-positive half-life")
	}
	if _, err := NewExponentialDecayThreshold(c, 100, 10, -5, "x"); err == nil {
		t.Errorf("expected error for threshold on the other side of zero")
	}
	if _, err := NewExponentialDecayThreshold(c, -100, 10, 5, "x"); err == nil {
		t.Errorf("expected error for threshold on the other side of zero")
	}
	if _, err := NewExponentialDecayThreshold(c, 0, 10, 5, "x"); err == nil {
		t.Errorf("expected error for zero initial value")
	}
}

func TestDecayingZeroOutsideDuration(t *testing.T) {
	c := testClock()
	m := NewDecaying(c, func(p float64) float64 { return 42 }, 5, "flat buff")

	if m.Value() != 42 {
		t.Errorf("expected 42 inside the valid interval, got %v", m.Value())
	}
	c.Advance(6, 1)
	if m.Value() != 0 {
		t.Errorf("expected 0 past the duration, got %v", m.Value())
	}
	if !m.CanBeRemoved() {
		t.Errorf("expected removability past the duration")
	}
}

func TestProgressModifierMonotonic(t *testing.T) {
	m := NewProgress(func(p float64) float64 { return 10 - p }, 10, "slow burn")

	if err := m.AdvanceProgress(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Value() != 6 {
		t.Errorf("expected value 6 at progress 4, got %v", m.Value())
	}
	if m.Remaining() != 6 {
		t.Errorf("expected remaining 6, got %v", m.Remaining())
	}

	if err := m.AdvanceProgress(-1); !errors.Is(err, ErrProgressBackward) {
		t.Errorf("expected ErrProgressBackward for negative delta, got %v", err)
	}
	if err := m.SetProgress(2); !errors.Is(err, ErrProgressBackward) {
		t.Errorf("expected ErrProgressBackward for rewinding SetProgress, got %v", err)
	}
	if m.Progress() != 4 {
		t.Errorf("failed mutations must not move progress, got %v", m.Progress())
	}

	if err := m.SetProgress(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.CanBeRemoved() {
		t.Errorf("expected removability once progress reached the duration")
	}
}
