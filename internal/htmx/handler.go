package htmx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"twopane/internal/broadcast"
	"twopane/internal/models"
	"twopane/internal/session"

	"github.com/a-h/templ"
)

// Handler handles HTMX requests with SSE for asynchronous updates.
type Handler struct {
	store      *session.Store
	hub        *broadcast.Hub
	cookieName string
	log        *slog.Logger
}

// NewHandler creates a new HTMX handler.
func NewHandler(store *session.Store, hub *broadcast.Hub, cookieName string, logger *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		hub:        hub,
		cookieName: cookieName,
		log:        logger.With("component", "htmx"),
	}
}

// RegisterRoutes sets up the page and HTMX routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handlePage)
	mux.HandleFunc("POST /htmx/{sessionID}/tab/{tab}", h.handleSelectTab)
	mux.HandleFunc("POST /htmx/{sessionID}/move/{cell}", h.handleMakeMove)
	mux.HandleFunc("POST /htmx/{sessionID}/jump/{move}", h.handleJump)
	mux.HandleFunc("POST /htmx/{sessionID}/reset", h.handleResetGame)
	mux.HandleFunc("POST /htmx/{sessionID}/lookup", h.handleLookup)
	mux.HandleFunc("GET /htmx/{sessionID}/sse", h.handleSSE)
}

// handlePage resumes the session named by the cookie or starts a new one.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	if c, err := r.Cookie(h.cookieName); err == nil {
		sess, _ = h.store.Get(c.Value)
	}
	if sess == nil {
		sess = h.store.Create()
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	h.render(w, r, http.StatusOK, Page(sess.Snapshot()))
}

func (h *Handler) handleSelectTab(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.SelectTab(models.Tab(r.PathValue("tab")))
	if err != nil {
		h.render(w, r, http.StatusBadRequest, ErrorStatus(err.Error()))
		return
	}
	h.render(w, r, http.StatusOK, Shell(snap))
}

func (h *Handler) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	cell, err := strconv.Atoi(r.PathValue("cell"))
	if err != nil {
		cell = -1
	}
	// A refused move leaves the board as it was; render it unchanged.
	snap, err := sess.Play(cell)
	if err != nil {
		h.log.DebugContext(r.Context(), "move ignored", slog.String("session_id", sess.ID), slog.String("reason", err.Error()))
	}
	h.render(w, r, http.StatusOK, GameContent(snap))
}

func (h *Handler) handleJump(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	move, err := strconv.Atoi(r.PathValue("move"))
	if err != nil {
		move = -1
	}
	snap, err := sess.JumpTo(move)
	if err != nil {
		h.log.DebugContext(r.Context(), "jump ignored", slog.String("session_id", sess.ID), slog.String("reason", err.Error()))
	}
	h.render(w, r, http.StatusOK, GameContent(snap))
}

func (h *Handler) handleResetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, _ := sess.Reset()
	h.render(w, r, http.StatusOK, GameContent(snap))
}

// handleLookup answers with loading or not found right away; the final
// result reaches the page as a lookup-update event.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	r.ParseForm()
	snap, _ := sess.Search(r.Context(), r.FormValue("userId"))
	h.render(w, r, http.StatusOK, LookupResults(snap.Lookup))
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan *models.Snapshot, 10)
	h.hub.RegisterSSE(sess.ID, ch)
	defer h.hub.UnregisterSSE(sess.ID, ch)

	// Send initial state
	writeEvents(r.Context(), w, sess.Snapshot())
	flusher.Flush()

	for {
		select {
		case snap, open := <-ch:
			if !open {
				return
			}
			writeEvents(r.Context(), w, snap)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvents(ctx context.Context, w http.ResponseWriter, snap *models.Snapshot) {
	writeEvent(w, "game-update", renderToString(ctx, GameContent(snap)))
	writeEvent(w, "lookup-update", renderToString(ctx, LookupResults(snap.Lookup)))
}

func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, strings.ReplaceAll(data, "\n", ""))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.store.Get(r.PathValue("sessionID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrSessionNotFound) {
			status = http.StatusNotFound
			err = errors.New("session expired, reload the page")
		}
		h.render(w, r, status, ErrorStatus(err.Error()))
		return nil, false
	}
	return sess, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.log.ErrorContext(r.Context(), "render failed", slog.String("error", err.Error()))
	}
}

func renderToString(ctx context.Context, component templ.Component) string {
	var buf bytes.Buffer
	component.Render(ctx, &buf)
	return buf.String()
}
