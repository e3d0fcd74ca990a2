package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/Pyro-Cryo/kons-simulator/internal/container"
)

// Never is the sentinel fire time meaning "not scheduled". Scheduling or
// waiting on it is rejected instead of silently queueing a callback that
// could never fire.
var Never = math.Inf(1)

var (
	// ErrScheduleNever is returned when a callback is scheduled or awaited
	// at the Never sentinel.
	ErrScheduleNever = errors.New("sim: cannot schedule at Never")
	// ErrAdvanceReentry is returned when Advance is invoked from inside a
	// callback it is currently firing.
	ErrAdvanceReentry = errors.New("sim: Advance re-entered from a firing callback")
)

// DefaultMillisPerUnit is the real-time cost of one virtual time unit when
// no explicit conversion rate is given: one virtual unit per real second.
const DefaultMillisPerUnit = 1000.0

// Clock is a monotonically non-decreasing virtual-time source. It is driven
// exclusively by Advance, which converts externally supplied real-time
// deltas into virtual time and fires due callbacks in fire-time order.
//
// Advance must be called from exactly one place (the tick driver) and never
// from inside a firing callback.
type Clock struct {
	millisPerUnit float64
	elapsed       float64
	queue         *container.Heap[func()]
	firing        bool
}

// NewClock creates a clock converting real milliseconds to virtual units at
// the given rate. A rate of zero or below falls back to DefaultMillisPerUnit.
func NewClock(millisPerUnit float64) *Clock {
	if millisPerUnit <= 0 {
		millisPerUnit = DefaultMillisPerUnit
	}
	return &Clock{
		millisPerUnit: millisPerUnit,
		queue:         container.NewHeap[func()](),
	}
}

// Now returns the elapsed virtual time.
func (c *Clock) Now() float64 {
	return c.elapsed
}

// After returns the virtual timestamp n units from now.
func (c *Clock) After(n float64) float64 {
	return c.elapsed + n
}

// Pending returns the number of callbacks still queued.
func (c *Clock) Pending() int {
	return c.queue.Len()
}

// Schedule registers callback to fire at the given virtual time. A fire time
// at or before Now fires the callback synchronously before Schedule returns.
// Scheduling at Never is rejected.
func (c *Clock) Schedule(callback func(), at float64) error {
	if callback == nil {
		return errors.New("sim: Schedule requires a callback")
	}
	if math.IsInf(at, 1) {
		return ErrScheduleNever
	}
	if at <= c.elapsed {
		callback()
		return nil
	}
	c.queue.Push(callback, at)
	return nil
}

// WaitUntil returns a channel that is closed when a callback scheduled at
// the given virtual time fires. If the time has already passed, the channel
// is closed before WaitUntil returns. Waiting on Never fails immediately
// rather than handing back a channel that would block forever.
func (c *Clock) WaitUntil(at float64) (<-chan struct{}, error) {
	if math.IsInf(at, 1) {
		return nil, fmt.Errorf("%w: refusing to wait forever", ErrScheduleNever)
	}
	done := make(chan struct{})
	if err := c.Schedule(func() { close(done) }, at); err != nil {
		return nil, err
	}
	return done, nil
}

// WaitFor is WaitUntil at After(n).
func (c *Clock) WaitFor(n float64) (<-chan struct{}, error) {
	return c.WaitUntil(c.After(n))
}

// Advance converts a real-time delta (milliseconds, scaled by fastForward)
// into virtual time, then drains every queued callback whose fire time is at
// or before the new Now, in ascending fire-time order. Callbacks scheduled
// during the drain for a time still at or before Now fire synchronously via
// Schedule, so no due callback is starved. Advance returns the virtual time
// that passed.
//
// Advance is not reentrant: calling it from inside a firing callback is a
// hard error, since the outer drain is still walking the queue.
func (c *Clock) Advance(deltaMillis, fastForward float64) (float64, error) {
	if c.firing {
		return 0, ErrAdvanceReentry
	}
	if deltaMillis < 0 {
		return 0, fmt.Errorf("sim: negative real-time delta %v", deltaMillis)
	}
	if fastForward <= 0 {
		return 0, fmt.Errorf("sim: fast-forward factor must be positive, got %v", fastForward)
	}

	delta := deltaMillis / c.millisPerUnit * fastForward
	c.elapsed += delta

	c.firing = true
	defer func() { c.firing = false }()

	for c.queue.Len() > 0 {
		at, err := c.queue.PeekWeight()
		if err != nil || at > c.elapsed {
			break
		}
		callback, err := c.queue.Pop()
		if err != nil {
			break
		}
		callback()
	}
	return delta, nil
}
