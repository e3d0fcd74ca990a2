// Package main runs a headless, fast-forwarded day in the café and
// prints what happened. Useful for tuning decay rates and meal sizes
// without standing up the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/engine"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
)

func main() {
	units := flag.Float64("units", 480, "virtual units to simulate")
	step := flag.Float64("step", 5, "virtual units per tick")
	flag.Parse()

	appLogger := logger.New()
	eventLog := events.NewEventLog(nil)

	eng, err := engine.New(eventLog, appLogger, engine.Config{
		TickRate:      time.Second,
		MillisPerUnit: 1,
		FastForward:   1,
	})
	if err != nil {
		appLogger.Error("Failed to build engine: %v", err)
		os.Exit(1)
	}

	patrons := []struct {
		id, name  string
		archetype patron.Archetype
	}{
		{"P001", "Siri", patron.ArchetypeRegular},
		{"P002", "Love", patron.ArchetypeFreeloader},
		{"P003", "Ebba", patron.ArchetypeStressed},
		{"P004", "Hampus", patron.ArchetypeVolunteer},
	}
	for _, p := range patrons {
		if _, err := eng.AddPatron(p.id, p.name, p.archetype); err != nil {
			appLogger.Error("Failed to add patron %s: %v", p.id, err)
			os.Exit(1)
		}
	}
	if err := eng.ScheduleRecurringNoise("espresso grinder", 4, 5, 45); err != nil {
		appLogger.Error("Failed to schedule ambience: %v", err)
		os.Exit(1)
	}

	// Scenario: lunch for everyone a third of the way in, a chore for
	// the volunteer, and a cold snap near the end.
	lunchAt := *units / 3
	coldAt := *units * 3 / 4
	served := false
	cooled := false

	for eng.Clock().Now() < *units {
		now := eng.Clock().Now()

		if !served && now >= lunchAt {
			served = true
			for _, p := range patrons {
				eventLog.Append(events.Event{
					ID:        events.NewEventID(),
					Timestamp: time.Now(),
					Type:      events.EventTypeMealServed,
					SubjectID: p.id,
					Payload:   events.MealPayload{Dish: "pea soup", Quantity: 50, Duration: 180},
				})
			}
			eventLog.Append(events.Event{
				ID:        events.NewEventID(),
				Timestamp: time.Now(),
				Type:      events.EventTypeChoreStarted,
				SubjectID: "P004",
				Payload:   "dishes",
			})
		}
		if !cooled && now >= coldAt {
			cooled = true
			eventLog.Append(events.Event{
				ID:        events.NewEventID(),
				Timestamp: time.Now(),
				Type:      events.EventTypeTemperatureSet,
				Payload:   12.0,
			})
		}

		eng.Step(*step)
	}

	fmt.Println()
	fmt.Printf("Simulated %.0f virtual units in %d events\n", *units, eventLog.Len())
	fmt.Println("ID    NAME     FULLNESS  ENERGY  MOOD")

	broken := false
	for _, p := range eng.Patrons() {
		fullness := p.Fullness.Value()
		energy := p.Energy.Value()
		mood := p.Mood.Value()
		fmt.Printf("%-5s %-8s %8.1f %7.1f %5.1f\n", p.ID, p.Name, fullness, energy, mood)

		for _, v := range []float64{fullness, energy, mood} {
			if v < 0 || v > 100 {
				broken = true
			}
		}
	}

	if broken {
		fmt.Println("\nFAIL: a variable escaped its bounds")
		os.Exit(1)
	}
	fmt.Println("\nOK")
}
