package engine

import (
	"fmt"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/metrics"
	"github.com/Pyro-Cryo/kons-simulator/internal/sim"
)

// hungerThreshold is the fullness level below which a patron starts
// complaining. Matches patron.IsHungry.
const hungerThreshold = 25.0

// MetabolismSystem couples each patron's stomach to their fullness and
// mood. The stomach is a furnace burning served meals; fullness follows
// whatever the stomach holds.
type MetabolismSystem struct {
	clock    *sim.Clock
	eventLog *events.EventLog
	logger   *logger.Logger
	patrons  map[string]*patron.Patron

	// One grumbling penalty per hungry patron, removed when they are
	// fed again.
	hungerPenalties map[string]sim.Modifier
}

// NewMetabolismSystem creates a new metabolism manager.
func NewMetabolismSystem(clock *sim.Clock, eventLog *events.EventLog, log *logger.Logger) *MetabolismSystem {
	return &MetabolismSystem{
		clock:           clock,
		eventLog:        eventLog,
		logger:          log,
		patrons:         make(map[string]*patron.Patron),
		hungerPenalties: make(map[string]sim.Modifier),
	}
}

// Register adds a patron to be tracked and seeds fullness from the
// stomach's current content.
func (ms *MetabolismSystem) Register(p *patron.Patron) error {
	ms.patrons[p.ID] = p
	ms.refreshFullness(p)
	return nil
}

// OnTimeTick re-derives fullness from each stomach and applies or
// lifts hunger penalties.
func (ms *MetabolismSystem) OnTimeTick(now float64) {
	for _, p := range ms.patrons {
		ms.refreshFullness(p)

		hungry := p.Fullness.Value() < hungerThreshold
		_, penalized := ms.hungerPenalties[p.ID]

		if hungry && !penalized {
			penalty := sim.NewConstant(-12, "grumbling stomach")
			if err := p.Mood.AddModifier(penalty); err != nil {
				ms.logger.Error("hunger penalty for %s: %v", p.ID, err)
				continue
			}
			ms.hungerPenalties[p.ID] = penalty
			ms.logger.Event("MOOD_CHANGE", p.ID, "hungry, mood penalty applied")
		} else if !hungry && penalized {
			if err := p.Mood.RemoveModifier(ms.hungerPenalties[p.ID]); err == nil {
				ms.logger.Event("MOOD_CHANGE", p.ID, "fed, mood penalty lifted")
			}
			delete(ms.hungerPenalties, p.ID)
		}
	}
}

// ServeMeal loads a meal into the patron's stomach and gives a short
// happiness bump that fades over the meal's half-life.
func (ms *MetabolismSystem) ServeMeal(p *patron.Patron, meal events.MealPayload) error {
	if _, err := p.Stomach.AddFuel(meal.Quantity, meal.Duration, meal.Dish); err != nil {
		ms.logger.Error("serving %q to %s: %v", meal.Dish, p.ID, err)
		return fmt.Errorf("serve meal: %w", err)
	}
	ms.refreshFullness(p)

	// A warm meal cheers anyone up for a while.
	treat, err := sim.NewExponentialDecay(ms.clock, 8, meal.Duration/2, "fresh "+meal.Dish)
	if err == nil {
		err = p.Mood.AddModifier(treat)
	}
	if err != nil {
		ms.logger.Error("meal treat for %s: %v", p.ID, err)
	} else {
		metrics.Get().RecordModifier(true)
	}

	ms.eventLog.Append(events.Event{
		ID:          events.NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: ms.clock.Now(),
		Type:        events.EventTypeModifierApplied,
		SubjectID:   p.ID,
		Payload:     "fresh " + meal.Dish,
	})
	ms.logger.Event("MEAL_SERVED", p.ID, fmt.Sprintf("%s (%.0f over %.0f units)", meal.Dish, meal.Quantity, meal.Duration))
	return nil
}

// refreshFullness copies the stomach's current content into the
// fullness base. Fullness modifiers (if any) stack on top.
func (ms *MetabolismSystem) refreshFullness(p *patron.Patron) {
	p.Fullness.SetBase(p.Stomach.Value())
}
