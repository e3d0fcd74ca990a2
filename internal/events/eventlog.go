// Package events provides the append-only record of everything that
// happens in the simulated café. The engine writes here; storage and
// the inspector read from here.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeTimeTick        EventType = "TIME_TICK"
	EventTypePatronArrived   EventType = "PATRON_ARRIVED"
	EventTypePatronLeft      EventType = "PATRON_LEFT"
	EventTypeMealServed      EventType = "MEAL_SERVED"
	EventTypeModifierApplied EventType = "MODIFIER_APPLIED"
	EventTypeModifierExpired EventType = "MODIFIER_EXPIRED"
	EventTypeNoiseEvent      EventType = "NOISE_EVENT"
	EventTypeTemperatureSet  EventType = "TEMPERATURE_SET"
	EventTypeChoreStarted    EventType = "CHORE_STARTED"
	EventTypeChoreProgress   EventType = "CHORE_PROGRESS"
	EventTypeChoreFinished   EventType = "CHORE_FINISHED"
	EventTypeMoodChange      EventType = "MOOD_CHANGE"
)

// MealPayload holds the details of a served meal.
type MealPayload struct {
	Dish     string  `json:"dish"`
	Quantity float64 `json:"quantity"` // fullness points
	Duration float64 `json:"duration"` // virtual units to digest
}

// NoisePayload holds the details of a disturbance.
type NoisePayload struct {
	Source   string  `json:"source"`
	Severity float64 `json:"severity"` // initial mood penalty
	HalfLife float64 `json:"halfLife"` // virtual units
}

// Event represents an immutable record of something that happened.
type Event struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	VirtualTime float64     `json:"virtual_time"`
	Type        EventType   `json:"type"`
	SubjectID   string      `json:"subject_id"` // which patron (or "" for world events)
	Payload     interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event Event) error
}

// EventLog is the in-memory append-only log of simulation events.
// It is the only structure shared across goroutines; everything else
// belongs to the engine loop.
type EventLog struct {
	mu        sync.RWMutex
	events    []Event
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]Event, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event Event) {
	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to persistent storage off the engine loop.
		go func(e Event) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetBySubject returns all events concerning a specific patron.
func (el *EventLog) GetBySubject(subjectID string) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.SubjectID == subjectID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of a given type.
func (el *EventLog) GetByType(eventType EventType) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// Since returns all events at or after the given virtual time.
func (el *EventLog) Since(virtualTime float64) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.VirtualTime >= virtualTime {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full history for state reconstruction.
func (el *EventLog) Replay() []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]Event, len(el.events))
	copy(out, el.events)
	return out
}

// Len returns the number of events in the log.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// NewEventID creates a unique event identifier.
func NewEventID() string {
	return uuid.NewString()
}
