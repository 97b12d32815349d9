package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/stake-lattice/api/internal/service"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

// EventSessionState carries the full session view to a new subscriber.
const EventSessionState = "session_state"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub *Hub
	svc *service.AnalysisService
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, svc *service.AnalysisService) *WSHandler {
	return &WSHandler{hub: hub, svc: svc}
}

// ServeWS handles GET /api/v1/ws. An optional ?session= subscribes the
// connection immediately.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	welcome, _ := json.Marshal(WSEvent{Type: "connected", Data: map[string]any{}})
	client.send <- welcome

	if id := r.URL.Query().Get("session"); id != "" {
		h.subscribe(client, id)
	}

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("remote", client.remote).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// subscribe joins a session channel and sends its current state.
func (h *WSHandler) subscribe(c *WSConn, sessionID string) {
	h.hub.Subscribe(c, sessionID)

	view, err := h.svc.View(context.Background(), sessionID)
	if err != nil {
		log.Debug().Err(err).Str("sessionId", sessionID).Msg("No state for subscribed session")
		return
	}
	data, err := json.Marshal(WSEvent{Type: EventSessionState, SessionID: sessionID, Data: view})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("remote", c.remote).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("remote", c.remote).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.SessionID == "" {
			continue
		}

		switch msg.Action {
		case "subscribe":
			h.subscribe(c, msg.SessionID)
		case "unsubscribe":
			h.hub.Unsubscribe(c, msg.SessionID)
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
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
