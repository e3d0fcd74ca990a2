// Package patron defines the core domain entity for café visitors.
// This package is PURE simulation state and must NOT import any
// infrastructure packages (network, events, platform).
package patron

import (
	"fmt"

	"github.com/Pyro-Cryo/kons-simulator/internal/sim"
)

// Archetype represents the kind of visitor.
type Archetype string

const (
	ArchetypeRegular    Archetype = "Regular"    // shows up every day, easy to please
	ArchetypeFreeloader Archetype = "Freeloader" // stays forever, eats everything
	ArchetypeStressed   Archetype = "Stressed"   // mood drops fast, needs coffee
	ArchetypeVolunteer  Archetype = "Volunteer"  // does chores, drains energy
)

// Patron represents one simulated visitor and the variables that
// describe their state. All variables share the patron's clock.
type Patron struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Archetype Archetype `json:"archetype"`

	// Stomach burns served meals in priority order. Its current value is
	// how much undigested food the patron is carrying.
	Stomach *sim.FurnaceVariable `json:"-"`

	// Fullness tracks satiety on a 0-100 scale. Its base is refreshed
	// from the stomach each tick by the metabolism system.
	Fullness *sim.Variable `json:"-"`

	// Energy tracks how rested the patron is, 0-100. Chores drain it.
	Energy *sim.Variable `json:"-"`

	// Mood aggregates everything else, 0-100. Comfort and fullness feed
	// into it through monitoring modifiers.
	Mood *sim.Variable `json:"-"`
}

// New creates a patron with default starting state on the given clock.
func New(clock *sim.Clock, id, name string, archetype Archetype) (*Patron, error) {
	stomach, err := sim.NewFurnaceVariable(clock, 0, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("patron %s: stomach: %w", id, err)
	}
	fullness, err := sim.NewVariable(clock, 60, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("patron %s: fullness: %w", id, err)
	}
	energy, err := sim.NewVariable(clock, 80, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("patron %s: energy: %w", id, err)
	}
	mood, err := sim.NewVariable(clock, 50, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("patron %s: mood: %w", id, err)
	}
	fullness.SetUnit("%")
	energy.SetUnit("%")

	p := &Patron{
		ID:        id,
		Name:      name,
		Archetype: archetype,
		Stomach:   stomach,
		Fullness:  fullness,
		Energy:    energy,
		Mood:      mood,
	}

	// Well-fed and rested patrons are happier. Both links are monitoring
	// modifiers, so mood follows the sources without any bookkeeping.
	fed, err := sim.Remap(fullness, -15, 15, "well fed")
	if err != nil {
		return nil, err
	}
	if err := mood.AddModifier(fed); err != nil {
		return nil, err
	}
	rested, err := sim.Remap(energy, -10, 10, "rested")
	if err != nil {
		return nil, err
	}
	if err := mood.AddModifier(rested); err != nil {
		return nil, err
	}

	// Everyone arrives having eaten something at home; the stomach digests
	// it over the first couple of virtual hours.
	if _, err := stomach.AddFuel(60, 120, "breakfast at home"); err != nil {
		return nil, err
	}

	switch archetype {
	case ArchetypeStressed:
		if err := mood.AddModifier(sim.NewConstant(-10, "deadline stress")); err != nil {
			return nil, err
		}
	case ArchetypeFreeloader:
		if err := mood.AddModifier(sim.NewConstant(5, "no worries")); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// IsHungry reports whether the patron's fullness is below the
// grumbling threshold.
func (p *Patron) IsHungry() bool {
	return p.Fullness.Value() < 25
}

// IsExhausted reports whether the patron has run out of energy.
func (p *Patron) IsExhausted() bool {
	return p.Energy.Value() <= 5
}
