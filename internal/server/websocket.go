package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/termcore/pkg/core/logging"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`              // "execute", "ping"
	ID      string          `json:"id,omitempty"`      // echoed on the response
	Payload json.RawMessage `json:"payload,omitempty"` // Message-specific payload
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketHandler executes lines sent over a WebSocket connection. Lines
// of one connection run in the order they arrive.
type WebSocketHandler struct {
	exec     Executor
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(exec Executor, allowedOrigins []string, logger *logging.Logger) *WebSocketHandler {
	if logger == nil {
		logger = logging.New("termcore-websocket")
	}
	origins := newOriginPolicy(allowedOrigins)
	return &WebSocketHandler{
		exec: exec,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.allows(origin)
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(parent context.Context, conn *websocket.Conn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.send(conn, WSResponse{Type: "pong", ID: msg.ID})

		case "execute":
			var req ExecuteRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sendError(conn, msg.ID, "invalid_payload", "Invalid execute payload")
				continue
			}
			result := h.exec.Execute(ctx, req.Line, req.Mode)
			h.send(conn, WSResponse{Type: "result", ID: msg.ID, Payload: result})

		default:
			h.sendError(conn, msg.ID, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

// send writes a response message
func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("WebSocket send error", "error", err)
	}
}

// sendError sends an error response
func (h *WebSocketHandler) sendError(conn *websocket.Conn, id, code, message string) {
	h.send(conn, WSResponse{
		Type: "error",
		ID:   id,
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}
