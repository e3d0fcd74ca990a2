package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoSources is returned when a monitoring modifier is built without any
// source Variable.
var ErrNoSources = errors.New("sim: monitoring modifier needs at least one source")

// MonitoringModifier derives its contribution live from the current values
// of other Variables. It never expires on its own; removal is always
// explicit. It holds plain references to its sources and must not outlive
// them.
type MonitoringModifier struct {
	sources []*Variable
	combine func(values []float64) float64
	scratch []float64
	desc    string
}

// NewMonitoring builds a monitoring modifier from an arbitrary combiner over
// the sources' current values.
func NewMonitoring(combine func(values []float64) float64, desc string, sources ...*Variable) (*MonitoringModifier, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if combine == nil {
		return nil, errors.New("sim: monitoring modifier needs a combiner")
	}
	return &MonitoringModifier{
		sources: sources,
		combine: combine,
		scratch: make([]float64, len(sources)),
		desc:    desc,
	}, nil
}

// SumOf tracks the sum of the sources' current values.
func SumOf(desc string, sources ...*Variable) (*MonitoringModifier, error) {
	return NewMonitoring(func(values []float64) float64 {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum
	}, desc, sources...)
}

// MinOf tracks the minimum of the sources' current values.
func MinOf(desc string, sources ...*Variable) (*MonitoringModifier, error) {
	return NewMonitoring(func(values []float64) float64 {
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	}, desc, sources...)
}

// MaxOf tracks the maximum of the sources' current values.
func MaxOf(desc string, sources ...*Variable) (*MonitoringModifier, error) {
	return NewMonitoring(func(values []float64) float64 {
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	}, desc, sources...)
}

// Remap linearly maps the source's bounded range onto [outMin, outMax]. The
// source must have both bounds finite; an unbounded range has no meaningful
// normalization.
func Remap(source *Variable, outMin, outMax float64, desc string) (*MonitoringModifier, error) {
	if source == nil {
		return nil, ErrNoSources
	}
	if math.IsInf(source.Min(), 0) || math.IsInf(source.Max(), 0) {
		return nil, fmt.Errorf("sim: Remap requires finite source bounds, got [%v, %v]", source.Min(), source.Max())
	}
	inMin, inSpan := source.Min(), source.Max()-source.Min()
	outSpan := outMax - outMin
	return NewMonitoring(func(values []float64) float64 {
		return outMin + (values[0]-inMin)/inSpan*outSpan
	}, desc, source)
}

func (m *MonitoringModifier) Value() float64 {
	for i, src := range m.sources {
		m.scratch[i] = src.Value()
	}
	return m.combine(m.scratch)
}

// CanBeRemoved always reports false: monitoring modifiers are removed
// explicitly, never pruned.
func (m *MonitoringModifier) CanBeRemoved() bool {
	return false
}

func (m *MonitoringModifier) Cadence() Cadence {
	return CadenceAlways
}

func (m *MonitoringModifier) Description() string {
	return m.desc
}

// Sources returns the observed Variables. Used for the dependency-cycle
// check when the modifier is attached to an owner.
func (m *MonitoringModifier) Sources() []*Variable {
	return m.sources
}

// observes reports whether the modifier directly or transitively reads
// target through chains of monitoring modifiers.
func (m *MonitoringModifier) observes(target *Variable, visited map[*Variable]bool) bool {
	for _, src := range m.sources {
		if src == target {
			return true
		}
		if visited[src] {
			continue
		}
		visited[src] = true
		for _, mod := range src.Modifiers() {
			if mon, ok := mod.(*MonitoringModifier); ok && mon.observes(target, visited) {
				return true
			}
		}
	}
	return false
}
