package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizarena/internal/game"
	"quizarena/internal/model"
	"quizarena/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Client command types, mirroring the event vocabulary clients speak.
const (
	cmdCreateSession = "createSession"
	cmdJoinSession   = "joinSession"
	cmdStartSession  = "startSession"
	cmdSubmitGuess   = "submitGuess"
	cmdSetQuestion   = "setNewQuestion"
	cmdLeaveSession  = "leaveSession"
)

type createSessionPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type submitGuessPayload struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
	Guess     string `json:"guess"`
}

type setQuestionPayload struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Handler upgrades connections and translates client commands into game
// operations. All game semantics live in the store; this layer only
// decodes, dispatches, and reports errors back to the caller.
type Handler struct {
	hub     *Hub
	store   *game.Store
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, store *game.Store, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		store:   store,
		authSvc: authSvc,
	}
}

// ServeWS handles GET /v1/ws?token=...
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateGuestToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		Identity: claims.GuestID,
		Username: claims.Username,
		Send:     make(chan []byte, 256),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		// A dropped connection leaves every session it was in.
		for _, sessionID := range h.hub.Unregister(conn) {
			if err := h.store.Leave(sessionID, conn.Identity); err != nil {
				log.Printf("leave session %s on disconnect: %v", sessionID, err)
			}
		}
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "invalid message")
			continue
		}
		h.dispatch(conn, &msg)
	}
}

func (h *Handler) dispatch(conn *Connection, msg *Message) {
	switch msg.Type {
	case cmdCreateSession:
		var p createSessionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		sess, err := h.store.Create(conn.Identity, conn.Username, p.Question, p.Answer)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.hub.Subscribe(sess.ID, conn.Identity)

	case cmdJoinSession:
		var p sessionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		// Subscribe first so the joiner sees its own roster broadcast.
		h.hub.Subscribe(p.SessionID, conn.Identity)
		if err := h.store.Join(p.SessionID, conn.Identity, conn.Username); err != nil {
			h.hub.Unsubscribe(p.SessionID, conn.Identity)
			h.sendError(conn, err.Error())
		}

	case cmdStartSession:
		var p sessionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		if err := h.store.Start(p.SessionID, conn.Identity); err != nil {
			h.sendError(conn, err.Error())
		}

	case cmdSubmitGuess:
		var p submitGuessPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		if _, err := h.store.Guess(p.SessionID, conn.Identity, p.Username, p.Guess); err != nil {
			h.sendError(conn, err.Error())
		}

	case cmdSetQuestion:
		var p setQuestionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		if err := h.store.SetQuestion(p.SessionID, conn.Identity, p.Question, p.Answer); err != nil {
			h.sendError(conn, err.Error())
		}

	case cmdLeaveSession:
		var p sessionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(conn, "invalid payload")
			return
		}
		if err := h.store.Leave(p.SessionID, conn.Identity); err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.hub.Unsubscribe(p.SessionID, conn.Identity)

	default:
		h.sendError(conn, "unknown command: "+msg.Type)
	}
}

func (h *Handler) sendError(conn *Connection, message string) {
	h.hub.NotifyCaller(conn.Identity, game.EventError, model.ErrorPayload{Message: message})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
