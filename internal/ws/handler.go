package ws

import (
	"log/slog"
	"net/http"

	"twopane/internal/broadcast"
	"twopane/internal/models"
	"twopane/internal/session"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// errorMessage is sent back when a command is refused.
type errorMessage struct {
	Error string `json:"error"`
}

// Handler handles WebSocket connections driving a session with JSON commands.
type Handler struct {
	store *session.Store
	hub   *broadcast.Hub
	log   *slog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(store *session.Store, hub *broadcast.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		store: store,
		hub:   hub,
		log:   logger.With("component", "ws"),
	}
}

// RegisterRoutes sets up the WebSocket routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/{sessionID}", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.PathValue("sessionID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	conn := h.hub.RegisterWS(sess.ID, ws)
	defer h.hub.UnregisterWS(sess.ID, conn)

	// Send current session state
	conn.WriteJSON(sess.Snapshot())

	// Successful commands reach this connection through the hub broadcast.
	for {
		var cmd models.Command
		if err := ws.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.DebugContext(r.Context(), "websocket closed", slog.String("session_id", sess.ID), slog.String("error", err.Error()))
			}
			break
		}
		sess.Touch()
		if _, err := sess.Apply(r.Context(), cmd); err != nil {
			conn.WriteJSON(errorMessage{Error: err.Error()})
		}
	}
}
