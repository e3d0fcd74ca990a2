package engine

import (
	"testing"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
)

// testEngine runs one virtual unit per real millisecond with no
// fast-forward, so Step(n) advances exactly n virtual units.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(events.NewEventLog(nil), logger.New(), Config{
		TickRate:      time.Second,
		MillisPerUnit: 1,
		FastForward:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func hasModifier(p *patron.Patron, desc string) bool {
	p.Mood.Value() // prune anything expired
	for _, m := range p.Mood.Modifiers() {
		if m.Description() == desc {
			return true
		}
	}
	return false
}

func TestAddPatronStartsContent(t *testing.T) {
	e := testEngine(t)
	p, err := e.AddPatron("p1", "Siri", patron.ArchetypeRegular)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.IsHungry() {
		t.Errorf("a fresh patron should not be hungry, fullness=%v", p.Fullness.Value())
	}
	if got := p.Mood.Value(); got < 50 || got > 70 {
		t.Errorf("expected a content starting mood, got %v", got)
	}
	if len(e.Patrons()) != 1 || e.Patron("p1") != p {
		t.Errorf("expected the patron to be registered")
	}
	if got := e.EventLog().GetByType(events.EventTypePatronArrived); len(got) != 1 {
		t.Errorf("expected one arrival event, got %d", len(got))
	}
}

func TestStepEmitsTickEvents(t *testing.T) {
	e := testEngine(t)
	for i := 0; i < 3; i++ {
		e.Step(10)
	}
	if got := e.EventLog().GetByType(events.EventTypeTimeTick); len(got) != 3 {
		t.Errorf("expected 3 tick events, got %d", len(got))
	}
	if e.Clock().Now() != 30 {
		t.Errorf("expected 30 virtual units elapsed, got %v", e.Clock().Now())
	}
}

func TestHungerPenaltyAppliedAndLiftedByMeal(t *testing.T) {
	e := testEngine(t)
	p, _ := e.AddPatron("p1", "Siri", patron.ArchetypeRegular)

	// Digest the whole breakfast: the stomach runs dry and the mood
	// penalty lands on the same tick.
	e.Step(120)
	if !p.IsHungry() {
		t.Fatalf("expected an empty stomach after 120 units, fullness=%v", p.Fullness.Value())
	}
	if !hasModifier(p, "grumbling stomach") {
		t.Errorf("expected a hunger penalty on the mood")
	}

	// A transport serves soup by appending a command event; the next
	// tick applies it and the penalty lifts.
	e.EventLog().Append(events.Event{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeMealServed,
		SubjectID: "p1",
		Payload:   events.MealPayload{Dish: "pea soup", Quantity: 50, Duration: 60},
	})
	e.Step(1)

	if p.IsHungry() {
		t.Errorf("expected the meal to land, fullness=%v", p.Fullness.Value())
	}
	if hasModifier(p, "grumbling stomach") {
		t.Errorf("expected the hunger penalty to be lifted")
	}
	if !hasModifier(p, "fresh pea soup") {
		t.Errorf("expected a meal treat on the mood")
	}
}

func TestNoiseEventFadesOut(t *testing.T) {
	e := testEngine(t)
	p, _ := e.AddPatron("p1", "Siri", patron.ArchetypeRegular)
	before := p.Mood.Value()

	e.EventLog().Append(events.Event{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeNoiseEvent,
		Payload:   events.NoisePayload{Source: "fire alarm", Severity: 20, HalfLife: 5},
	})
	e.Step(0)

	dropped := p.Mood.Value()
	if dropped >= before {
		t.Fatalf("expected noise to drop the mood, %v -> %v", before, dropped)
	}
	if !hasModifier(p, "noise: fire alarm") {
		t.Errorf("expected a noise penalty on the mood")
	}

	// One half-life later the penalty crosses its threshold and is
	// pruned on the next recompute.
	e.Step(5)
	if hasModifier(p, "noise: fire alarm") {
		t.Errorf("expected the noise penalty to expire after one half-life")
	}
}

func TestTemperatureCommandMovesRoomAndMood(t *testing.T) {
	e := testEngine(t)
	p, _ := e.AddPatron("p1", "Siri", patron.ArchetypeRegular)
	cold := p.Mood.Value()

	e.EventLog().Append(events.Event{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeTemperatureSet,
		Payload:   35.0,
	})
	e.Step(0)

	if got := e.RoomTemperature().Value(); got != 35 {
		t.Errorf("expected room at 35, got %v", got)
	}
	if got := p.Mood.Value(); got <= cold {
		t.Errorf("expected a warmer room to lift the mood, %v -> %v", cold, got)
	}
}

func TestChoreDrainsEnergyAndFinishes(t *testing.T) {
	e := testEngine(t)
	p, _ := e.AddPatron("p1", "Siri", patron.ArchetypeVolunteer)
	rested := p.Energy.Value()

	e.EventLog().Append(events.Event{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeChoreStarted,
		SubjectID: "p1",
		Payload:   "dishes",
	})
	e.Step(0)

	if got := p.Energy.Value(); got >= rested {
		t.Fatalf("expected the chore to strain energy, %v -> %v", rested, got)
	}
	if e.activity.ActiveChores() != 1 {
		t.Fatalf("expected one active chore")
	}

	// The chore runs for 30 units of pushed progress.
	e.Step(15)
	midway := p.Energy.Value()
	if midway >= rested {
		t.Errorf("expected strain midway through, energy=%v", midway)
	}

	e.Step(20)
	if e.activity.ActiveChores() != 0 {
		t.Errorf("expected the chore to finish")
	}
	if got := e.EventLog().GetByType(events.EventTypeChoreFinished); len(got) != 1 {
		t.Errorf("expected one completion event, got %d", len(got))
	}
	if !hasModifier(p, "finished dishes") {
		t.Errorf("expected an accomplishment boost on the mood")
	}
}

func TestRecurringNoiseFiresOnSchedule(t *testing.T) {
	e := testEngine(t)
	e.AddPatron("p1", "Siri", patron.ArchetypeRegular)

	if err := e.ScheduleRecurringNoise("espresso grinder", 5, 8, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.ScheduleRecurringNoise("x", 1, 1, 0); err == nil {
		t.Errorf("expected error for a non-positive interval")
	}

	e.Step(49)
	if got := e.EventLog().GetByType(events.EventTypeNoiseEvent); len(got) != 0 {
		t.Fatalf("expected no noise before the first interval, got %d", len(got))
	}

	e.Step(1)
	if got := e.EventLog().GetByType(events.EventTypeNoiseEvent); len(got) != 1 {
		t.Errorf("expected the first firing at 50 units, got %d", len(got))
	}

	e.Step(50)
	if got := e.EventLog().GetByType(events.EventTypeNoiseEvent); len(got) != 2 {
		t.Errorf("expected the callback to re-arm, got %d", len(got))
	}
}
