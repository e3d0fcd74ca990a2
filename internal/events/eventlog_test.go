package events

import (
	"sync"
	"testing"
	"time"
)

func makeEvent(eventType EventType, subjectID string, virtualTime float64) Event {
	return Event{
		ID:          NewEventID(),
		Timestamp:   time.Now(),
		VirtualTime: virtualTime,
		Type:        eventType,
		SubjectID:   subjectID,
	}
}

func TestEventLogAppendAndReplay(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(makeEvent(EventTypePatronArrived, "p1", 0))
	el.Append(makeEvent(EventTypeMealServed, "p1", 10))
	el.Append(makeEvent(EventTypeMealServed, "p2", 20))

	if el.Len() != 3 {
		t.Errorf("expected 3 events, got %d", el.Len())
	}

	replay := el.Replay()
	if len(replay) != 3 {
		t.Fatalf("expected full replay, got %d", len(replay))
	}
	// Replay hands back a copy; mutating it must not touch the log.
	replay[0].SubjectID = "tampered"
	if el.Replay()[0].SubjectID != "p1" {
		t.Errorf("replay must be a defensive copy")
	}
}

func TestEventLogFilters(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(makeEvent(EventTypePatronArrived, "p1", 0))
	el.Append(makeEvent(EventTypeMealServed, "p1", 10))
	el.Append(makeEvent(EventTypeMealServed, "p2", 20))
	el.Append(makeEvent(EventTypeNoiseEvent, "", 30))

	if got := el.GetBySubject("p1"); len(got) != 2 {
		t.Errorf("expected 2 events for p1, got %d", len(got))
	}
	if got := el.GetByType(EventTypeMealServed); len(got) != 2 {
		t.Errorf("expected 2 meal events, got %d", len(got))
	}
	if got := el.Since(20); len(got) != 2 {
		t.Errorf("expected 2 events from t=20, got %d", len(got))
	}
}

// collectingPersister records appended events for inspection.
type collectingPersister struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func (p *collectingPersister) Append(event Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func TestEventLogWritesThroughPersister(t *testing.T) {
	persister := &collectingPersister{done: make(chan struct{}, 1)}
	el := NewEventLog(persister)

	el.Append(makeEvent(EventTypeMealServed, "p1", 5))

	select {
	case <-persister.done:
	case <-time.After(time.Second):
		t.Fatalf("persister was never invoked")
	}
	persister.mu.Lock()
	defer persister.mu.Unlock()
	if len(persister.events) != 1 || persister.events[0].SubjectID != "p1" {
		t.Errorf("unexpected persisted events: %+v", persister.events)
	}
}

func TestNewEventIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewEventID()
		if id == "" || seen[id] {
			t.Fatalf("expected unique non-empty IDs, got %q", id)
		}
		seen[id] = true
	}
}
