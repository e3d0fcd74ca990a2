package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum interval between commands from one connection.
	commandCooldown = 500 * time.Millisecond
)

// ClientCommand represents an incoming command from the frontend.
type ClientCommand struct {
	Type     string          `json:"type"`      // "SERVE_MEAL", "SET_TEMPERATURE", ...
	PatronID string          `json:"patron_id"` // Who the command concerns (optional)
	Payload  json.RawMessage `json:"payload"`   // Command-specific data
}

// Client represents an active WebSocket connection.
type Client struct {
	hub             *Hub
	conn            *websocket.Conn
	send            chan []byte
	lastCommandTime time.Time
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps commands from the websocket connection into the
// event log.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.Get().RecordWSError()
				c.hub.logger.Error("WebSocket read: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var command ClientCommand
		if err := json.Unmarshal(message, &command); err != nil {
			c.hub.logger.Error("Failed to parse ClientCommand: %v", err)
			continue
		}

		c.handleCommand(command)
	}
}

// handleCommand validates a command and turns it into an event for the
// engine loop. The engine drops commands naming unknown patrons.
func (c *Client) handleCommand(command ClientCommand) {
	if time.Since(c.lastCommandTime) < commandCooldown {
		c.hub.logger.Warn("Rate limit exceeded for command %s", command.Type)
		return
	}
	c.lastCommandTime = time.Now()

	switch command.Type {
	case "SERVE_MEAL":
		var meal events.MealPayload
		if err := json.Unmarshal(command.Payload, &meal); err != nil {
			c.hub.logger.Warn("Bad SERVE_MEAL payload: %v", err)
			return
		}
		c.appendCommand(events.EventTypeMealServed, command.PatronID, meal)
		c.hub.logger.Event("COMMAND_SERVE_MEAL", command.PatronID, meal.Dish)

	case "SET_TEMPERATURE":
		var target float64
		if err := json.Unmarshal(command.Payload, &target); err != nil {
			c.hub.logger.Warn("Bad SET_TEMPERATURE payload: %v", err)
			return
		}
		c.appendCommand(events.EventTypeTemperatureSet, "", target)
		c.hub.logger.Event("COMMAND_SET_TEMPERATURE", "", string(command.Payload))

	case "MAKE_NOISE":
		var noise events.NoisePayload
		if err := json.Unmarshal(command.Payload, &noise); err != nil {
			c.hub.logger.Warn("Bad MAKE_NOISE payload: %v", err)
			return
		}
		c.appendCommand(events.EventTypeNoiseEvent, "", noise)
		c.hub.logger.Event("COMMAND_MAKE_NOISE", "", noise.Source)

	case "START_CHORE":
		var name string
		if err := json.Unmarshal(command.Payload, &name); err != nil {
			c.hub.logger.Warn("Bad START_CHORE payload: %v", err)
			return
		}
		c.appendCommand(events.EventTypeChoreStarted, command.PatronID, name)
		c.hub.logger.Event("COMMAND_START_CHORE", command.PatronID, name)

	default:
		c.hub.logger.Warn("Unknown command type: %s", command.Type)
	}
}

func (c *Client) appendCommand(eventType events.EventType, subjectID string, payload interface{}) {
	c.hub.eventLog.Append(events.Event{
		ID:        events.NewEventID(),
		Timestamp: time.Now(),
		Type:      eventType,
		SubjectID: subjectID,
		Payload:   payload,
	})
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
