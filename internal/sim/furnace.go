package sim

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Pyro-Cryo/kons-simulator/internal/container"
)

// FurnaceVariable is a bounded attribute whose modifiers are fuel: instead
// of every contribution decaying independently, elapsed virtual time is
// spent consuming one fuel at a time in priority order. Several meals of
// different quality are digested one after another rather than all losing
// freshness simultaneously.
//
// The unconsumed fuel total is non-negative and never increases as virtual
// time advances.
type FurnaceVariable struct {
	clock *Clock
	base  float64
	min   float64
	max   float64
	unit  string

	fuels        *container.Heap[*ProgressModifier]
	lastResolved float64
}

// NewFurnaceVariable creates a furnace attribute. min must be strictly
// below max, as for Variable.
func NewFurnaceVariable(clock *Clock, base, min, max float64) (*FurnaceVariable, error) {
	if clock == nil {
		return nil, errors.New("sim: furnace variable requires a clock")
	}
	if !(min < max) {
		return nil, fmt.Errorf("sim: furnace bounds must satisfy min < max, got [%v, %v]", min, max)
	}
	return &FurnaceVariable{
		clock:        clock,
		base:         base,
		min:          min,
		max:          max,
		fuels:        container.NewHeap[*ProgressModifier](),
		lastResolved: clock.Now(),
	}, nil
}

// SetUnit sets the suffix used by String.
func (f *FurnaceVariable) SetUnit(unit string) {
	f.unit = unit
}

// Min returns the lower bound.
func (f *FurnaceVariable) Min() float64 { return f.min }

// Max returns the upper bound.
func (f *FurnaceVariable) Max() float64 { return f.max }

// Base returns the value of an empty furnace.
func (f *FurnaceVariable) Base() float64 { return f.base }

// AddFuel queues a fuel worth quantity, burned linearly over duration
// virtual units, with the default consumption priority: the negated burn
// rate, so the fastest-burning fuel is consumed first.
func (f *FurnaceVariable) AddFuel(quantity, duration float64, desc string) (*ProgressModifier, error) {
	if quantity <= 0 || duration <= 0 {
		return nil, fmt.Errorf("sim: fuel quantity and duration must be positive, got %v over %v", quantity, duration)
	}
	return f.addFuel(quantity, duration, -(quantity / duration), desc)
}

// AddFuelWeighted queues a fuel with an explicit consumption priority.
// Lower weights burn first.
func (f *FurnaceVariable) AddFuelWeighted(quantity, duration, weight float64, desc string) (*ProgressModifier, error) {
	if quantity <= 0 || duration <= 0 {
		return nil, fmt.Errorf("sim: fuel quantity and duration must be positive, got %v over %v", quantity, duration)
	}
	return f.addFuel(quantity, duration, weight, desc)
}

func (f *FurnaceVariable) addFuel(quantity, duration, weight float64, desc string) (*ProgressModifier, error) {
	// Settle the elapsed time against the existing queue first; new fuel
	// must not be charged for time that passed before it existed.
	f.resolveConsumption()

	// Linear burn: the remaining contribution shrinks from quantity to zero
	// as progress runs through the duration.
	fuel := NewProgress(func(p float64) float64 {
		return quantity * (1 - p/duration)
	}, duration, desc)
	f.fuels.Push(fuel, weight)
	return fuel, nil
}

// FuelCount returns the number of fuels not yet fully consumed, without
// resolving pending consumption.
func (f *FurnaceVariable) FuelCount() int {
	return f.fuels.Len()
}

// Fuels returns a snapshot of the queued fuels in unspecified order, for
// read-only inspection.
func (f *FurnaceVariable) Fuels() []*ProgressModifier {
	return f.fuels.Items()
}

// Value resolves fuel consumption since the last query, then returns the
// clamped sum of the base value and the remaining fuels' contributions.
func (f *FurnaceVariable) Value() float64 {
	f.resolveConsumption()
	sum := f.base
	for _, fuel := range f.fuels.Items() {
		sum += fuel.Value()
	}
	return clamp(sum, f.min, f.max)
}

// resolveConsumption spends the virtual time elapsed since the last query
// on the front fuel; when a fuel is exhausted the remainder of the elapsed
// time carries into the next one, until the time is spent or the queue is
// empty.
func (f *FurnaceVariable) resolveConsumption() {
	now := f.clock.Now()
	elapsed := now - f.lastResolved
	f.lastResolved = now

	for elapsed > 0 && f.fuels.Len() > 0 {
		front, err := f.fuels.Peek()
		if err != nil {
			return
		}
		remaining := front.Remaining()
		if elapsed >= remaining {
			_ = front.AdvanceProgress(remaining)
			_, _ = f.fuels.Pop()
			elapsed -= remaining
		} else {
			_ = front.AdvanceProgress(elapsed)
			elapsed = 0
		}
	}
}

// Ratio returns the value normalized into [0, 1] across the bounds. The
// second return is false when either bound is infinite.
func (f *FurnaceVariable) Ratio() (float64, bool) {
	if math.IsInf(f.min, 0) || math.IsInf(f.max, 0) {
		return 0, false
	}
	return (f.Value() - f.min) / (f.max - f.min), true
}

// String renders the current value with the unit suffix.
func (f *FurnaceVariable) String() string {
	s := strconv.FormatFloat(f.Value(), 'f', -1, 64)
	if f.unit == "" {
		return s
	}
	return s + " " + f.unit
}
