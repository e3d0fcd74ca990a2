// Package network exposes the simulation over WebSocket and HTTP.
// Transports never touch simulation state directly: commands go in as
// events, state comes out as plain-data copies from the engine loop.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	eventLog   *events.EventLog
}

// envelope wraps every outbound message so clients can route by kind.
type envelope struct {
	Kind    string      `json:"kind"` // "event" or "state"
	Payload interface{} `json:"payload"`
}

// NewHub initializes a new WebSocket Hub. Incoming commands are
// appended to the given event log for the engine to pick up.
func NewHub(log *logger.Logger, eventLog *events.EventLog) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		eventLog:   eventLog,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a simulation event and sends it to all
// connected clients.
func (h *Hub) BroadcastEvent(event events.Event) {
	h.broadcastJSON("event", event)
}

// BroadcastState sends a state export to all connected clients. Wired
// as an engine state sink; the payload is already a safe copy.
func (h *Hub) BroadcastState(state interface{}) {
	h.broadcastJSON("state", state)
}

func (h *Hub) broadcastJSON(kind string, payload interface{}) {
	data, err := json.Marshal(envelope{Kind: kind, Payload: payload})
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize %s for WebSocket broadcast: %v", kind, err)
		return
	}
	h.broadcast <- data
}

// StartEventPoller spawns a goroutine that polls the EventLog and
// pushes new events to the Hub. The Hub runs independently from the
// engine loop while seeing the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessedEvent := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				allEvents := eventLog.Replay()
				if len(allEvents) > lastProcessedEvent {
					for _, event := range allEvents[lastProcessedEvent:] {
						h.BroadcastEvent(event)
					}
					lastProcessedEvent = len(allEvents)
				}
			}
		}
	}()
}
