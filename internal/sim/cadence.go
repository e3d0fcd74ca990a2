// Package sim is the valuation core of the simulator: a virtual clock with
// callback scheduling, the modifier family, and the bounded Variable and
// FurnaceVariable attributes built on them.
//
// The package is single-goroutine by contract. All mutation happens either
// synchronously in response to a direct call or synchronously inside one
// Clock.Advance invocation per external tick; nothing here blocks, locks or
// spawns goroutines. The surrounding engine serializes access.
package sim

// Cadence is the recompute policy a modifier imposes on the Variable that
// owns it. A Variable's aggregated cadence is the maximum over its active
// modifiers, so the ordering of the constants matters.
type Cadence int

const (
	// CadenceNever means the memoized value stays valid until the modifier
	// set changes.
	CadenceNever Cadence = iota
	// CadenceEachTick means the memo is valid only within a single virtual
	// timestamp.
	CadenceEachTick
	// CadenceAlways means every query recomputes.
	CadenceAlways

	cadenceCount
)

func (c Cadence) String() string {
	switch c {
	case CadenceNever:
		return "never"
	case CadenceEachTick:
		return "each-tick"
	case CadenceAlways:
		return "always"
	}
	return "unknown"
}
