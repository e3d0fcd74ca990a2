package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrProgressBackward is returned when externally driven progress is asked
// to move backward. Progress is monotonically non-decreasing; rewinding it
// would silently corrupt consumption accounting.
var ErrProgressBackward = errors.New("sim: progress cannot move backward")

// ProgressFunc maps progress in [0, duration] to a contribution. Outside
// that interval the owning modifier contributes zero and is removable.
type ProgressFunc func(progress float64) float64

// DecayingModifier evaluates a caller-supplied curve over the virtual time
// elapsed since its creation. Once the elapsed time exceeds the duration the
// contribution is zero and the modifier is removable.
type DecayingModifier struct {
	clock     *Clock
	createdAt float64
	f         ProgressFunc
	duration  float64
	desc      string
}

// NewDecaying creates a time-driven modifier valid for duration virtual
// units from now.
func NewDecaying(clock *Clock, f ProgressFunc, duration float64, desc string) *DecayingModifier {
	return &DecayingModifier{
		clock:     clock,
		createdAt: clock.Now(),
		f:         f,
		duration:  duration,
		desc:      desc,
	}
}

// NewExponentialDecay creates a half-life decay curve starting at initial
// and becoming removable once its magnitude would fall below half the
// initial value, i.e. after exactly one half-life.
func NewExponentialDecay(clock *Clock, initial, halfLife float64, desc string) (*DecayingModifier, error) {
	return NewExponentialDecayThreshold(clock, initial, halfLife, initial/2, desc)
}

// NewExponentialDecayThreshold creates a half-life decay curve,
// value(t) = initial * 2^(-t/halfLife), that is removable once the value
// would cross the given insignificance threshold. The threshold must lie on
// the same side of zero as the initial value: a curve decaying toward zero
// can never cross a threshold of the opposite sign, so such a modifier
// would live forever.
func NewExponentialDecayThreshold(clock *Clock, initial, halfLife, threshold float64, desc string) (*DecayingModifier, error) {
	if halfLife <= 0 {
		return nil, fmt.Errorf("sim: half-life must be positive, got %v", halfLife)
	}
	if initial*threshold <= 0 {
		return nil, fmt.Errorf("sim: decay threshold %v and initial value %v must share a sign", threshold, initial)
	}
	// Solve initial * 2^(-t/halfLife) = threshold for t. A threshold at or
	// beyond the initial magnitude gives a non-positive duration, which
	// AddModifier treats as immediately removable.
	duration := halfLife * math.Log2(initial/threshold)
	f := func(t float64) float64 {
		return initial * math.Exp2(-t/halfLife)
	}
	return NewDecaying(clock, f, duration, desc), nil
}

func (m *DecayingModifier) elapsed() float64 {
	return m.clock.Now() - m.createdAt
}

func (m *DecayingModifier) Value() float64 {
	t := m.elapsed()
	if t < 0 || t > m.duration {
		return 0
	}
	return m.f(t)
}

func (m *DecayingModifier) CanBeRemoved() bool {
	return m.elapsed() >= m.duration
}

func (m *DecayingModifier) Cadence() Cadence {
	return CadenceEachTick
}

func (m *DecayingModifier) Description() string {
	return m.desc
}

// ProgressModifier has the same evaluation shape as DecayingModifier, but
// its progress is advanced explicitly by the owner instead of by elapsed
// time. FurnaceVariable uses it as fuel.
type ProgressModifier struct {
	f        ProgressFunc
	duration float64
	progress float64
	desc     string
}

// NewProgress creates an externally driven modifier valid over
// [0, duration] units of progress.
func NewProgress(f ProgressFunc, duration float64, desc string) *ProgressModifier {
	return &ProgressModifier{f: f, duration: duration, desc: desc}
}

// AdvanceProgress moves progress forward by delta. Negative deltas fail.
func (m *ProgressModifier) AdvanceProgress(delta float64) error {
	if delta < 0 {
		return fmt.Errorf("%w: delta %v", ErrProgressBackward, delta)
	}
	m.progress += delta
	return nil
}

// SetProgress moves progress to an absolute position, which must not lie
// behind the current one.
func (m *ProgressModifier) SetProgress(p float64) error {
	if p < m.progress {
		return fmt.Errorf("%w: %v is behind %v", ErrProgressBackward, p, m.progress)
	}
	m.progress = p
	return nil
}

// Progress returns the consumed portion of the duration.
func (m *ProgressModifier) Progress() float64 {
	return m.progress
}

// Remaining returns the unconsumed portion of the duration, floored at zero.
func (m *ProgressModifier) Remaining() float64 {
	if m.progress >= m.duration {
		return 0
	}
	return m.duration - m.progress
}

func (m *ProgressModifier) Value() float64 {
	if m.progress > m.duration {
		return 0
	}
	return m.f(m.progress)
}

func (m *ProgressModifier) CanBeRemoved() bool {
	return m.progress >= m.duration
}

func (m *ProgressModifier) Cadence() Cadence {
	return CadenceEachTick
}

func (m *ProgressModifier) Description() string {
	return m.desc
}
