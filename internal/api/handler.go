package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"twopane/internal/game"
	"twopane/internal/models"
	"twopane/internal/session"
)

// Handler serves the JSON API over sessions.
type Handler struct {
	store *session.Store
	log   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(store *session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   logger.With("component", "api"),
	}
}

// RegisterRoutes sets up the routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}", h.handleGetSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}/history", h.handleHistory)
	mux.HandleFunc("POST /api/sessions/{sessionID}/commands", h.handleCommand)
	mux.HandleFunc("DELETE /api/sessions/{sessionID}", h.handleDeleteSession)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.store.Len()})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	respondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.PathValue("sessionID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.PathValue("sessionID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.History())
}

// handleCommand applies one command. A search answers 202: the result is
// pushed to subscribers and visible on the next GET.
func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.PathValue("sessionID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var cmd models.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	snap, err := sess.Apply(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if cmd.Action == models.ActionSearch && snap.Lookup.State == models.LookupLoading {
		status = http.StatusAccepted
	}
	respondJSON(w, status, snap)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("sessionID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUnknownCommand),
		errors.Is(err, session.ErrUnknownTab),
		errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrNoSuchMove):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrPositionTaken):
		status = http.StatusConflict
	default:
		h.log.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
