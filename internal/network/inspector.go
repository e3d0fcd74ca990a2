package network

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/Pyro-Cryo/kons-simulator/internal/engine"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
)

// Inspector serves read-only JSON views of the simulation. It never
// touches live variables: it holds the latest state export from the
// engine loop and queries the event log, both of which are safe to
// read from HTTP handler goroutines.
type Inspector struct {
	mu       sync.RWMutex
	latest   []engine.PatronState
	eventLog *events.EventLog
}

// NewInspector creates an inspector over the given event log. Wire
// Update as an engine state sink.
func NewInspector(eventLog *events.EventLog) *Inspector {
	return &Inspector{eventLog: eventLog}
}

// Update stores the latest state export. Runs on the engine loop, so
// it only swaps the slice under the lock.
func (ins *Inspector) Update(states []engine.PatronState) {
	ins.mu.Lock()
	ins.latest = states
	ins.mu.Unlock()
}

// HandlePatrons serves GET /api/patrons and /api/patrons/{id}.
func (ins *Inspector) HandlePatrons(w http.ResponseWriter, r *http.Request) {
	ins.mu.RLock()
	states := ins.latest
	ins.mu.RUnlock()

	id := strings.TrimPrefix(r.URL.Path, "/api/patrons")
	id = strings.Trim(id, "/")

	w.Header().Set("Content-Type", "application/json")
	if id == "" {
		json.NewEncoder(w).Encode(states)
		return
	}
	for _, s := range states {
		if s.ID == id {
			json.NewEncoder(w).Encode(s)
			return
		}
	}
	http.Error(w, `{"error":"unknown patron"}`, http.StatusNotFound)
}

// HandleEvents serves GET /api/events with optional subject and type
// filters.
func (ins *Inspector) HandleEvents(w http.ResponseWriter, r *http.Request) {
	var result []events.Event
	switch {
	case r.URL.Query().Get("subject") != "":
		result = ins.eventLog.GetBySubject(r.URL.Query().Get("subject"))
	case r.URL.Query().Get("type") != "":
		result = ins.eventLog.GetByType(events.EventType(r.URL.Query().Get("type")))
	default:
		result = ins.eventLog.Replay()
	}
	if result == nil {
		result = []events.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
