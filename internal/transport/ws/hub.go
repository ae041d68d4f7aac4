package ws

import (
	"encoding/json"
	"log"
	"sync"

	"quizarena/internal/game"
)

// Message is the WebSocket envelope format, for both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one connected client.
type Connection struct {
	Identity string
	Username string
	Send     chan []byte

	sessions map[string]bool // guarded by hub.mu
}

// delivery is one routed message. Direct deliveries go to a connection by
// identity; the rest go through session membership.
type delivery struct {
	sessionID string
	identity  string
	direct    bool
	data      []byte
}

// Hub tracks connections and session membership and implements
// game.Notifier. All deliveries funnel through one channel so clients
// observe events in the order the core emitted them.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection            // identity -> connection
	rooms map[string]map[string]*Connection // sessionID -> identity -> connection

	broadcast chan *delivery
}

// NewHub creates a new WebSocket hub and starts its delivery loop.
func NewHub() *Hub {
	h := &Hub{
		conns:     make(map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		broadcast: make(chan *delivery, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for d := range h.broadcast {
		h.mu.RLock()
		switch {
		case d.direct:
			if conn, ok := h.conns[d.identity]; ok {
				send(conn, d.data)
			}
		case d.identity != "":
			if members, ok := h.rooms[d.sessionID]; ok {
				if conn, ok := members[d.identity]; ok {
					send(conn, d.data)
				}
			}
		default:
			for _, conn := range h.rooms[d.sessionID] {
				send(conn, d.data)
			}
		}
		h.mu.RUnlock()
	}
}

// send never blocks; slow clients drop messages.
func send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
	}
}

// Register adds a connection. A reconnect with the same identity replaces
// the previous connection.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn.sessions == nil {
		conn.sessions = make(map[string]bool)
	}
	h.conns[conn.Identity] = conn
	log.Printf("guest %s connected", conn.Identity)
}

// Unregister removes a connection from the hub and from every session room
// it joined, and returns those session ids so the caller can leave the
// sessions on the game side.
func (h *Hub) Unregister(conn *Connection) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.conns[conn.Identity]; !ok || existing != conn {
		return nil
	}
	delete(h.conns, conn.Identity)

	var sessionIDs []string
	for sessionID := range conn.sessions {
		sessionIDs = append(sessionIDs, sessionID)
		if members, ok := h.rooms[sessionID]; ok {
			delete(members, conn.Identity)
			if len(members) == 0 {
				delete(h.rooms, sessionID)
			}
		}
	}
	close(conn.Send)
	log.Printf("guest %s disconnected", conn.Identity)
	return sessionIDs
}

// Subscribe adds a connection to a session room.
func (h *Hub) Subscribe(sessionID, identity string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[identity]
	if !ok {
		return
	}
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[string]*Connection)
	}
	h.rooms[sessionID][identity] = conn
	conn.sessions[sessionID] = true
}

// Unsubscribe removes a connection from a session room.
func (h *Hub) Unsubscribe(sessionID, identity string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[sessionID]; ok {
		delete(members, identity)
		if len(members) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	if conn, ok := h.conns[identity]; ok {
		delete(conn.sessions, sessionID)
	}
}

// NotifySession implements game.Notifier.
func (h *Hub) NotifySession(sessionID string, event game.Event, payload interface{}) {
	h.broadcast <- &delivery{
		sessionID: sessionID,
		data:      encode(event, payload),
	}
}

// NotifyPlayer implements game.Notifier.
func (h *Hub) NotifyPlayer(sessionID, identity string, event game.Event, payload interface{}) {
	h.broadcast <- &delivery{
		sessionID: sessionID,
		identity:  identity,
		data:      encode(event, payload),
	}
}

// NotifyCaller implements game.Notifier.
func (h *Hub) NotifyCaller(identity string, event game.Event, payload interface{}) {
	h.broadcast <- &delivery{
		identity: identity,
		direct:   true,
		data:     encode(event, payload),
	}
}

func encode(event game.Event, payload interface{}) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s payload: %v", event, err)
		raw = []byte("{}")
	}
	data, _ := json.Marshal(&Message{Type: string(event), Payload: raw})
	return data
}
