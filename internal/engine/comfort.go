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

// Room temperature bounds in °C. The thermostat cannot leave them.
const (
	minRoomTemp = 5.0
	maxRoomTemp = 35.0
)

// ComfortSystem owns the shared room state and feeds it into every
// patron's mood: a comfort remap of the room temperature, plus decaying
// penalties for noise.
type ComfortSystem struct {
	clock    *sim.Clock
	eventLog *events.EventLog
	logger   *logger.Logger

	roomTemp *sim.Variable
	patrons  map[string]*patron.Patron
}

// NewComfortSystem creates the room with a pleasant default temperature.
func NewComfortSystem(clock *sim.Clock, eventLog *events.EventLog, log *logger.Logger) (*ComfortSystem, error) {
	roomTemp, err := sim.NewVariable(clock, 21, minRoomTemp, maxRoomTemp)
	if err != nil {
		return nil, fmt.Errorf("comfort: %w", err)
	}
	roomTemp.SetUnit("°C")

	return &ComfortSystem{
		clock:    clock,
		eventLog: eventLog,
		logger:   log,
		roomTemp: roomTemp,
		patrons:  make(map[string]*patron.Patron),
	}, nil
}

// RoomTemperature exposes the shared temperature variable.
func (cs *ComfortSystem) RoomTemperature() *sim.Variable {
	return cs.roomTemp
}

// Register links the room temperature into the patron's mood.
func (cs *ComfortSystem) Register(p *patron.Patron) error {
	comfort, err := sim.Remap(cs.roomTemp, -10, 10, "room comfort")
	if err != nil {
		return fmt.Errorf("comfort: %w", err)
	}
	if err := p.Mood.AddModifier(comfort); err != nil {
		return fmt.Errorf("comfort: %w", err)
	}
	cs.patrons[p.ID] = p
	return nil
}

// OnTimeTick does nothing: the comfort link is a monitoring modifier,
// so mood follows the room without per-tick work.
func (cs *ComfortSystem) OnTimeTick(now float64) {}

// SetTemperature moves the thermostat. The variable clamps the target
// to the room's physical range.
func (cs *ComfortSystem) SetTemperature(target float64) {
	cs.roomTemp.SetBase(target)
	cs.logger.Event("TEMPERATURE_SET", "", cs.roomTemp.String())
}

// OnNoise hits every patron's mood with a penalty that fades out over
// the noise's half-life.
func (cs *ComfortSystem) OnNoise(noise events.NoisePayload) {
	for _, p := range cs.patrons {
		penalty, err := sim.NewExponentialDecay(cs.clock, -noise.Severity, noise.HalfLife, "noise: "+noise.Source)
		if err != nil {
			cs.logger.Error("noise penalty: %v", err)
			return
		}
		if err := p.Mood.AddModifier(penalty); err != nil {
			cs.logger.Error("noise penalty for %s: %v", p.ID, err)
			continue
		}
		metrics.Get().RecordModifier(true)
	}

	cs.eventLog.Append(events.Event{
		ID:          events.NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: cs.clock.Now(),
		Type:        events.EventTypeModifierApplied,
		Payload:     "noise: " + noise.Source,
	})
	cs.logger.Event("NOISE_EVENT", "", fmt.Sprintf("%s (severity %.0f, half-life %.0f)", noise.Source, noise.Severity, noise.HalfLife))
}
