// Package engine contains the simulation loop for the café world.
//
// ARCHITECTURAL RULE: all clocks, variables and modifiers are mutated
// from the engine loop goroutine only. Other goroutines talk to the
// engine by appending command events to the EventLog; the loop picks
// them up on the next tick.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/metrics"
	"github.com/Pyro-Cryo/kons-simulator/internal/sim"
)

// Config tunes the pace of the simulation.
type Config struct {
	// TickRate is the real-time interval between engine ticks.
	TickRate time.Duration

	// MillisPerUnit converts real milliseconds to virtual time units.
	MillisPerUnit float64

	// FastForward multiplies the virtual time gained per tick.
	FastForward float64
}

// DefaultConfig runs one tick per second, one virtual unit per real
// second, sped up 60x (one virtual minute per real second).
func DefaultConfig() Config {
	return Config{
		TickRate:      1 * time.Second,
		MillisPerUnit: 1000,
		FastForward:   60,
	}
}

// TimeTickPayload is the data attached to each TIME_TICK event.
type TimeTickPayload struct {
	TickNumber  int64   `json:"tick_number"`
	VirtualTime float64 `json:"virtual_time"`
	PatronCount int     `json:"patron_count"`
}

// Engine is the central orchestrator. It owns the virtual clock, the
// patrons, and the subsystems that act on them.
type Engine struct {
	clock    *sim.Clock
	eventLog *events.EventLog
	logger   *logger.Logger
	config   Config

	metabolism *MetabolismSystem
	comfort    *ComfortSystem
	activity   *ActivitySystem

	tickNumber         int64
	lastProcessedEvent int
	patrons            map[string]*patron.Patron
	order              []string // patron IDs in arrival order

	stateSinks []stateSink
}

// stateSink pairs an export consumer with its tick interval.
type stateSink struct {
	fn    func([]PatronState)
	every int64
}

// PatronState is a plain-data copy of one patron's computed values,
// safe to hand to other goroutines.
type PatronState struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Archetype   string  `json:"archetype"`
	Fullness    float64 `json:"fullness"`
	Energy      float64 `json:"energy"`
	Mood        float64 `json:"mood"`
	StomachLoad float64 `json:"stomach_load"`
	VirtualTime float64 `json:"virtual_time"`

	// MoodSummary is the active mood modifiers grouped by description,
	// for the inspector UI.
	MoodSummary []sim.ModifierSummary `json:"mood_summary"`
}

// New initializes the engine and its subsystems.
func New(eventLog *events.EventLog, log *logger.Logger, config Config) (*Engine, error) {
	clock := sim.NewClock(config.MillisPerUnit)

	comfort, err := NewComfortSystem(clock, eventLog, log)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clock:      clock,
		eventLog:   eventLog,
		logger:     log,
		config:     config,
		metabolism: NewMetabolismSystem(clock, eventLog, log),
		comfort:    comfort,
		activity:   NewActivitySystem(clock, eventLog, log),
		patrons:    make(map[string]*patron.Patron),
		order:      make([]string, 0),
	}
	return e, nil
}

// Clock exposes the engine's virtual clock. Callers outside the engine
// loop may read it but must not advance it.
func (e *Engine) Clock() *sim.Clock {
	return e.clock
}

// EventLog exposes the event log so transports can inject commands.
func (e *Engine) EventLog() *events.EventLog {
	return e.eventLog
}

// AddPatron registers a new visitor with all subsystems and records
// the arrival. Must be called from the engine loop or before Run.
func (e *Engine) AddPatron(id, name string, archetype patron.Archetype) (*patron.Patron, error) {
	p, err := patron.New(e.clock, id, name, archetype)
	if err != nil {
		return nil, err
	}
	if err := e.metabolism.Register(p); err != nil {
		return nil, err
	}
	if err := e.comfort.Register(p); err != nil {
		return nil, err
	}
	e.activity.Register(p)

	for _, v := range []*sim.Variable{p.Fullness, p.Energy, p.Mood} {
		v.OnRecompute(metrics.Get().RecordRecompute)
	}

	e.patrons[p.ID] = p
	e.order = append(e.order, p.ID)

	e.eventLog.Append(events.Event{
		ID:          events.NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: e.clock.Now(),
		Type:        events.EventTypePatronArrived,
		SubjectID:   p.ID,
	})
	e.logger.Event("PATRON_ARRIVED", p.ID, p.Name+" ("+string(p.Archetype)+")")
	return p, nil
}

// Patrons returns the registered patrons in arrival order.
func (e *Engine) Patrons() []*patron.Patron {
	out := make([]*patron.Patron, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.patrons[id])
	}
	return out
}

// Patron returns a single patron by ID, or nil.
func (e *Engine) Patron(id string) *patron.Patron {
	return e.patrons[id]
}

// RoomTemperature exposes the shared room temperature variable.
func (e *Engine) RoomTemperature() *sim.Variable {
	return e.comfort.RoomTemperature()
}

// AddStateSink registers a consumer of per-tick state copies. Sinks
// run on the engine loop and must hand heavy work to their own
// goroutines. every controls how many ticks pass between exports.
func (e *Engine) AddStateSink(fn func([]PatronState), every int64) {
	if every < 1 {
		every = 1
	}
	e.stateSinks = append(e.stateSinks, stateSink{fn: fn, every: every})
}

// exportState builds plain-data copies of every patron and feeds them
// to each sink whose interval is due.
func (e *Engine) exportState(now float64) {
	var states []PatronState
	for _, sink := range e.stateSinks {
		if e.tickNumber%sink.every != 0 {
			continue
		}
		if states == nil {
			states = make([]PatronState, 0, len(e.order))
			for _, id := range e.order {
				p := e.patrons[id]
				states = append(states, PatronState{
					ID:          p.ID,
					Name:        p.Name,
					Archetype:   string(p.Archetype),
					Fullness:    p.Fullness.Value(),
					Energy:      p.Energy.Value(),
					Mood:        p.Mood.Value(),
					StomachLoad: p.Stomach.Value(),
					VirtualTime: now,
					MoodSummary: sim.Summarize(p.Mood),
				})
			}
		}
		sink.fn(states)
	}
}

// ScheduleRecurringNoise emits a noise event every interval virtual
// units, starting one interval from now. The clock re-arms the
// callback after each firing.
func (e *Engine) ScheduleRecurringNoise(source string, severity, halfLife, interval float64) error {
	if interval <= 0 {
		return fmt.Errorf("engine: noise interval must be positive, got %v", interval)
	}
	var fire func()
	fire = func() {
		metrics.Get().RecordCallback()
		e.eventLog.Append(events.Event{
			ID:          events.NewEventID(),
			Timestamp:   time.Now(),
			VirtualTime: e.clock.Now(),
			Type:        events.EventTypeNoiseEvent,
			Payload: events.NoisePayload{
				Source:   source,
				Severity: severity,
				HalfLife: halfLife,
			},
		})
		if err := e.clock.Schedule(fire, e.clock.Now()+interval); err != nil {
			e.logger.Error("rescheduling %q: %v", source, err)
		}
	}
	return e.clock.Schedule(fire, e.clock.Now()+interval)
}

// Run drives the simulation until the context is cancelled. Call in a
// goroutine; this is the only goroutine that mutates simulation state.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Engine started: tick every %v, fast-forward %.0fx", e.config.TickRate, e.config.FastForward)

	ticker := time.NewTicker(e.config.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine stopped.")
			return
		case <-ticker.C:
			e.Step(float64(e.config.TickRate.Milliseconds()))
		}
	}
}

// Step performs a single tick: apply pending commands, advance the
// virtual clock, and let every subsystem react. Exposed so headless
// runs can drive the simulation without real time passing.
func (e *Engine) Step(deltaMillis float64) {
	started := time.Now()
	e.tickNumber++

	e.processPending()

	if _, err := e.clock.Advance(deltaMillis, e.config.FastForward); err != nil {
		e.logger.Error("clock advance failed: %v", err)
		return
	}
	now := e.clock.Now()

	// Clock callbacks emit events while Advance drains the queue; apply
	// them in the same tick.
	e.processPending()

	e.metabolism.OnTimeTick(now)
	e.comfort.OnTimeTick(now)
	e.activity.OnTimeTick(now)

	e.eventLog.Append(events.Event{
		ID:          events.NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: now,
		Type:        events.EventTypeTimeTick,
		Payload: TimeTickPayload{
			TickNumber:  e.tickNumber,
			VirtualTime: now,
			PatronCount: len(e.patrons),
		},
	})
	// The tick event flows through processPending on the next tick,
	// where dispatch ignores it. Skipping ahead here would race with
	// transports appending commands concurrently.

	e.exportState(now)
	metrics.Get().RecordTick(time.Since(started))
}

// processPending applies command events appended by transports since
// the last tick.
func (e *Engine) processPending() {
	all := e.eventLog.Replay()
	if len(all) <= e.lastProcessedEvent {
		return
	}
	pending := all[e.lastProcessedEvent:]
	e.lastProcessedEvent = len(all)

	for _, event := range pending {
		e.dispatch(event)
	}
}

// dispatch routes a command event to the subsystem that handles it.
func (e *Engine) dispatch(event events.Event) {
	switch event.Type {
	case events.EventTypeMealServed:
		if payload, ok := event.Payload.(events.MealPayload); ok {
			if p := e.patrons[event.SubjectID]; p != nil {
				e.metabolism.ServeMeal(p, payload)
			}
		}

	case events.EventTypeNoiseEvent:
		if payload, ok := event.Payload.(events.NoisePayload); ok {
			e.comfort.OnNoise(payload)
		}

	case events.EventTypeTemperatureSet:
		if target, ok := event.Payload.(float64); ok {
			e.comfort.SetTemperature(target)
		}

	case events.EventTypeChoreStarted:
		if name, ok := event.Payload.(string); ok {
			if p := e.patrons[event.SubjectID]; p != nil {
				e.activity.StartChore(p, name)
			}
		}
	}
}
