// Package storage provides the persistence layer for the simulator.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"encoding/json"
	"time"
)

// StoredEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
// Payload is kept as raw JSON: event payloads range from objects to
// bare strings and numbers, and all of them must round-trip intact.
type StoredEvent struct {
	ID          string          `json:"id" db:"id"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	VirtualTime float64         `json:"virtual_time" db:"virtual_time"`
	EventType   string          `json:"event_type" db:"event_type"`
	SubjectID   string          `json:"subject_id" db:"subject_id"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetAll retrieves the full ledger in append order (for replay).
	GetAll(ctx context.Context) ([]StoredEvent, error)

	// GetBySubjectID retrieves all events concerning a patron.
	GetBySubjectID(ctx context.Context, subjectID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error)

	// GetSince retrieves all events at or after a virtual timestamp.
	GetSince(ctx context.Context, virtualTime float64) ([]StoredEvent, error)
}

// PatronSnapshot represents the current state of a patron for quick reads.
// Values are the computed variable values at snapshot time, not bases.
type PatronSnapshot struct {
	PatronID    string    `json:"patron_id" db:"patron_id"`
	Name        string    `json:"name" db:"name"`
	Archetype   string    `json:"archetype" db:"archetype"`
	Fullness    float64   `json:"fullness" db:"fullness"`
	Energy      float64   `json:"energy" db:"energy"`
	Mood        float64   `json:"mood" db:"mood"`
	StomachLoad float64   `json:"stomach_load" db:"stomach_load"`
	VirtualTime float64   `json:"virtual_time" db:"virtual_time"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// SnapshotRepository defines the interface for patron state snapshots.
type SnapshotRepository interface {
	// Upsert updates or inserts a patron snapshot.
	Upsert(ctx context.Context, snapshot PatronSnapshot) error

	// GetByPatronID retrieves a specific patron's snapshot.
	GetByPatronID(ctx context.Context, patronID string) (*PatronSnapshot, error)

	// GetAll retrieves every stored snapshot.
	GetAll(ctx context.Context) ([]PatronSnapshot, error)
}
