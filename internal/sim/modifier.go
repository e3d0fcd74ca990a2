package sim

// Modifier is a single contribution to a Variable's computed value. A
// modifier belongs to exactly one Variable or FurnaceVariable; sharing an
// instance between owners corrupts cadence bookkeeping.
type Modifier interface {
	// Value returns the current contribution.
	Value() float64
	// CanBeRemoved reports whether the modifier has run its course and can
	// be pruned. Expiration is not an error; owners prune removable
	// modifiers during recomputation.
	CanBeRemoved() bool
	// Cadence is the recompute policy this modifier imposes on its owner.
	Cadence() Cadence
	// Description is a human-readable label used only for UI grouping.
	Description() string
}

// ConstantModifier contributes a fixed delta, optionally expiring a fixed
// duration after creation.
type ConstantModifier struct {
	delta     float64
	desc      string
	clock     *Clock
	expiresAt float64
}

// NewConstant creates a permanent fixed contribution.
func NewConstant(delta float64, desc string) *ConstantModifier {
	return &ConstantModifier{delta: delta, desc: desc, expiresAt: Never}
}

// NewConstantFor creates a fixed contribution that becomes removable once
// duration virtual units have elapsed. A non-positive duration yields a
// modifier that is removable immediately; Variable.AddModifier treats those
// as already expired.
func NewConstantFor(clock *Clock, delta, duration float64, desc string) *ConstantModifier {
	return &ConstantModifier{
		delta:     delta,
		desc:      desc,
		clock:     clock,
		expiresAt: clock.After(duration),
	}
}

func (m *ConstantModifier) Value() float64 {
	return m.delta
}

func (m *ConstantModifier) CanBeRemoved() bool {
	if m.clock == nil {
		return false
	}
	return m.clock.Now() >= m.expiresAt
}

func (m *ConstantModifier) Cadence() Cadence {
	if m.clock == nil {
		return CadenceNever
	}
	return CadenceEachTick
}

func (m *ConstantModifier) Description() string {
	return m.desc
}
