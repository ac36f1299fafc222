package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/magnets-referee/game/engine"
)

// Event names carried in Message.Event
const (
	EventStateUpdate = "state_update"
	EventPlaceResult = "place_result"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what a connected client receives
type Message struct {
	SessionID string              `json:"sessionId"`
	GameState *engine.GameState   `json:"gameState,omitempty"`
	Outcome   *engine.TurnOutcome `json:"outcome,omitempty"`
	Event     string              `json:"event,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
}

// Client is one websocket connection watching a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans game updates out to the clients of each session
type Hub struct {
	clients    map[*Client]bool
	sessions   map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        logrus.FieldLogger
}

// NewHub creates a hub. A nil logger discards output.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "websocket"),
	}
}

// Run owns the client maps until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastToSession(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	h.log.WithFields(logrus.Fields{"session": client.sessionID, "clients": len(h.sessions[client.sessionID])}).Debug("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if clients, ok := h.sessions[client.sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
	h.log.WithField("session", client.sessionID).Debug("Client unregistered")
}

func (h *Hub) broadcastToSession(message *Message) {
	clients := h.sessions[message.SessionID]
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal message")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// slow client
			h.unregisterClient(client)
		}
	}
}

// publish queues a message for the Run loop without blocking the caller
func (h *Hub) publish(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.WithFields(logrus.Fields{"session": message.SessionID, "event": message.Event}).Warn("Broadcast queue full, dropping message")
	}
}

// BroadcastToSession sends the full game state to every client of a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.publish(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastPlace sends the outcome of one placement along with the new state
func (h *Hub) BroadcastPlace(sessionID string, outcome *engine.TurnOutcome, state *engine.GameState) {
	h.publish(&Message{
		SessionID: sessionID,
		GameState: state,
		Outcome:   outcome,
		Event:     EventPlaceResult,
	})
}

// BroadcastEvent sends a custom event to a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.publish(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ServeWS upgrades the request and attaches the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; clients only send control frames
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("session", c.sessionID).Debug("WebSocket closed unexpectedly")
			}
			break
		}
	}
}

func (c *Client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
