package patron

import (
	"testing"

	"github.com/Pyro-Cryo/kons-simulator/internal/sim"
)

func TestNewPatronDefaults(t *testing.T) {
	c := sim.NewClock(1)
	p, err := New(c, "p1", "Siri", ArchetypeRegular)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.IsHungry() {
		t.Errorf("expected breakfast in the stomach, fullness=%v", p.Fullness.Value())
	}
	if p.IsExhausted() {
		t.Errorf("expected a rested patron, energy=%v", p.Energy.Value())
	}
	if got := p.Mood.Value(); got <= 50 {
		t.Errorf("expected comfort links to lift the mood above base, got %v", got)
	}
}

func TestMoodFollowsFullness(t *testing.T) {
	c := sim.NewClock(1)
	p, _ := New(c, "p1", "Siri", ArchetypeRegular)

	before := p.Mood.Value()
	p.Fullness.SetBase(100)
	after := p.Mood.Value()
	if after <= before {
		t.Errorf("expected a fuller patron to be happier, %v -> %v", before, after)
	}
}

func TestStressedArchetypeStartsLower(t *testing.T) {
	c := sim.NewClock(1)
	calm, _ := New(c, "p1", "Siri", ArchetypeRegular)
	tense, _ := New(c, "p2", "Ebba", ArchetypeStressed)

	if tense.Mood.Value() >= calm.Mood.Value() {
		t.Errorf("expected the stressed archetype to start below the regular one")
	}
}
