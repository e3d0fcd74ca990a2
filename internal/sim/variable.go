package sim

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Pyro-Cryo/kons-simulator/internal/container"
)

var (
	// ErrModifierNotFound is returned when RemoveModifier is asked to remove
	// a modifier the Variable does not hold. Masking this would hide
	// simulation bugs, so it is a hard failure.
	ErrModifierNotFound = errors.New("sim: modifier not attached to this variable")
	// ErrDependencyCycle is returned when attaching a monitoring modifier
	// that transitively observes its own owner.
	ErrDependencyCycle = errors.New("sim: monitoring modifier would observe its own owner")
)

// Variable is a bounded numeric attribute: base value plus the sum of its
// active modifiers, clamped to [min, max]. The computed value is memoized
// and refreshed according to the aggregated cadence of the modifier set, so
// a variable carrying only permanent constants costs O(1) per query while
// one observed through a monitoring modifier recomputes every query.
type Variable struct {
	clock *Clock
	base  float64
	min   float64
	max   float64
	unit  string

	mods          *container.Sequence[Modifier]
	cadenceCounts [cadenceCount]int

	memo      float64
	memoAt    float64
	memoValid bool

	// onRecompute, when set, is invoked once per recomputation. The engine
	// uses it to feed the metrics collector.
	onRecompute func()
}

// NewVariable creates a bounded attribute. min must be strictly below max;
// either bound may be infinite. The clock is required: there is no global
// time source, so tests and parallel simulations inject their own.
func NewVariable(clock *Clock, base, min, max float64) (*Variable, error) {
	if clock == nil {
		return nil, errors.New("sim: variable requires a clock")
	}
	if !(min < max) {
		return nil, fmt.Errorf("sim: variable bounds must satisfy min < max, got [%v, %v]", min, max)
	}
	return &Variable{
		clock: clock,
		base:  base,
		min:   min,
		max:   max,
		mods:  container.NewSequence[Modifier](),
	}, nil
}

// NewUnbounded creates a variable with infinite bounds.
func NewUnbounded(clock *Clock, base float64) (*Variable, error) {
	return NewVariable(clock, base, math.Inf(-1), math.Inf(1))
}

// SetUnit sets the suffix used by String.
func (v *Variable) SetUnit(unit string) {
	v.unit = unit
}

// Min returns the lower bound.
func (v *Variable) Min() float64 { return v.min }

// Max returns the upper bound.
func (v *Variable) Max() float64 { return v.max }

// Base returns the unmodified base value.
func (v *Variable) Base() float64 { return v.base }

// SetBase replaces the base value and invalidates the memo.
func (v *Variable) SetBase(base float64) {
	v.base = base
	v.memoValid = false
}

// AddModifier attaches m and raises the aggregated cadence if m demands a
// higher one. A modifier that is already removable (zero or negative
// remaining lifetime) is dropped instead of attached, so it never skews the
// cadence counters. Attaching a monitoring modifier that transitively
// observes this variable is rejected: the core does not support cyclic
// derived values, and recursing through one would never terminate.
func (v *Variable) AddModifier(m Modifier) error {
	if mon, ok := m.(*MonitoringModifier); ok {
		if mon.observes(v, make(map[*Variable]bool)) {
			return ErrDependencyCycle
		}
	}
	if m.CanBeRemoved() {
		return nil
	}
	v.mods.Append(m)
	v.cadenceCounts[m.Cadence()]++
	v.memoValid = false
	return nil
}

// RemoveModifier detaches m. Removing a modifier that is not attached is a
// hard failure, not a no-op.
func (v *Variable) RemoveModifier(m Modifier) error {
	if !v.mods.Remove(func(x Modifier) bool { return x == m }) {
		return ErrModifierNotFound
	}
	v.cadenceCounts[m.Cadence()]--
	v.memoValid = false
	return nil
}

// ClearModifiers detaches every modifier and resets the cadence to never.
func (v *Variable) ClearModifiers() {
	v.mods.Clear()
	v.cadenceCounts = [cadenceCount]int{}
	v.memoValid = false
}

// Modifiers returns a read-only snapshot of the active modifiers, in
// attachment order. Expired but not-yet-pruned modifiers may appear; they
// vanish on the next Value call.
func (v *Variable) Modifiers() []Modifier {
	return v.mods.Values()
}

// Cadence returns the aggregated recompute policy: the highest cadence any
// active modifier demands. Tracked incrementally on add/remove rather than
// by rescanning the modifier set.
func (v *Variable) Cadence() Cadence {
	for c := cadenceCount - 1; c > CadenceNever; c-- {
		if v.cadenceCounts[c] > 0 {
			return c
		}
	}
	return CadenceNever
}

// Value returns the clamped sum of the base value and all non-expired
// modifier contributions. If the memo is still valid under the aggregated
// cadence it is returned without touching any modifier; otherwise the sum
// is recomputed and expired modifiers are pruned in the same pass.
func (v *Variable) Value() float64 {
	now := v.clock.Now()
	if v.memoValid {
		switch v.Cadence() {
		case CadenceNever:
			return v.memo
		case CadenceEachTick:
			if v.memoAt == now {
				return v.memo
			}
		}
	}

	sum := v.base
	for m := range v.mods.KeepWhile(v.retain) {
		sum += m.Value()
	}
	v.memo = clamp(sum, v.min, v.max)
	v.memoAt = now
	v.memoValid = true
	if v.onRecompute != nil {
		v.onRecompute()
	}
	return v.memo
}

// retain is the keep-while predicate: expired modifiers are unlinked and
// their cadence contribution withdrawn as the summation walks over them.
func (v *Variable) retain(m Modifier) bool {
	if m.CanBeRemoved() {
		v.cadenceCounts[m.Cadence()]--
		return false
	}
	return true
}

// Ratio returns the value normalized into [0, 1] across the bounds. The
// second return is false when either bound is infinite.
func (v *Variable) Ratio() (float64, bool) {
	if math.IsInf(v.min, 0) || math.IsInf(v.max, 0) {
		return 0, false
	}
	return (v.Value() - v.min) / (v.max - v.min), true
}

// OnRecompute registers a hook invoked after every recomputation.
func (v *Variable) OnRecompute(fn func()) {
	v.onRecompute = fn
}

// String renders the current value with the unit suffix, e.g. "42.5 kcal".
func (v *Variable) String() string {
	s := strconv.FormatFloat(v.Value(), 'f', -1, 64)
	if v.unit == "" {
		return s
	}
	return s + " " + v.unit
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
