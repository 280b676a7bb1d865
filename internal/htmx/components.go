package htmx

import (
	"context"
	"fmt"
	"io"

	"twopane/internal/game"
	"twopane/internal/models"

	"github.com/a-h/templ"
)

// html accumulates the first write error so components read top to bottom.
type html struct {
	w   io.Writer
	err error
}

func (h *html) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

var esc = templ.EscapeString[string]

// Page is the whole document for a session.
func Page(snap *models.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.printf(`<title>Tic Tac Toe &amp; User Lookup</title>`)
		h.printf(`<link rel="stylesheet" href="/static/style.css">`)
		h.printf(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		h.printf(`<script src="https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"></script>`)
		h.printf(`<script src="/static/script.js" defer></script>`)
		h.printf(`</head><body>`)
		h.printf(`<div id="app" hx-ext="sse" sse-connect="/htmx/%s/sse">`, esc(snap.SessionID))
		h.render(ctx, Shell(snap))
		h.printf(`</div>`)
		h.printf(`<footer class="footer"><button id="learnMoreBtn" class="btn">Learn more</button></footer>`)
		h.printf(`</body></html>`)
		return h.err
	})
}

// Shell is the navigation bar plus the active pane.
func Shell(snap *models.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.printf(`<nav class="navbar"><div class="nav-buttons">`)
		for _, tab := range []models.Tab{models.TabGame, models.TabLookup} {
			class := "nav-btn"
			if tab == snap.Tab {
				class += " active"
			}
			h.printf(`<button class="%s" hx-post="/htmx/%s/tab/%s" hx-target="#app" hx-swap="innerHTML">%s</button>`,
				class, esc(snap.SessionID), esc(string(tab)), esc(tab.Label()))
		}
		side := "left"
		if snap.Tab == models.TabLookup {
			side = "right"
		}
		h.printf(`<div class="underline %s"></div></div></nav>`, side)

		h.printf(`<main class="main-content">`)
		switch snap.Tab {
		case models.TabLookup:
			h.render(ctx, LookupPane(snap))
		default:
			h.render(ctx, GamePane(snap))
		}
		h.printf(`</main>`)
		return h.err
	})
}

// GamePane wraps GameContent in the element refreshed by game-update events.
func GamePane(snap *models.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.printf(`<div class="content-container"><h1>Tic Tac Toe</h1>`)
		h.printf(`<div id="game-pane" class="game" sse-swap="game-update" hx-swap="innerHTML">`)
		h.render(ctx, GameContent(snap))
		h.printf(`</div></div>`)
		return h.err
	})
}

// GameContent renders status, board and the move list.
func GameContent(snap *models.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		sid := esc(snap.SessionID)
		g := snap.Game

		h.printf(`<div class="game-board"><div class="status" id="status">%s</div>`, esc(g.Status))
		for row := 0; row < 3; row++ {
			h.printf(`<div class="board-row">`)
			for col := 0; col < 3; col++ {
				i := row*3 + col
				cell := g.Board[i]
				hxAttrs := ""
				if cell == models.Empty && g.Winner == models.Empty {
					hxAttrs = fmt.Sprintf(` hx-post="/htmx/%s/move/%d" hx-target="#game-pane" hx-swap="innerHTML"`, sid, i)
				}
				h.printf(`<button class="square" data-cell="%d"%s>%s</button>`, i, hxAttrs, esc(string(cell)))
			}
			h.printf(`</div>`)
		}
		h.printf(`</div>`)

		h.printf(`<div class="game-info"><ol>`)
		for move := 0; move < g.HistoryLength; move++ {
			class := "move"
			if move == g.CurrentMove {
				class += " current"
			}
			h.printf(`<li><button class="%s" hx-post="/htmx/%s/jump/%d" hx-target="#game-pane" hx-swap="innerHTML">%s</button></li>`,
				class, sid, move, esc(game.MoveLabel(move)))
		}
		h.printf(`</ol><button class="btn" hx-post="/htmx/%s/reset" hx-target="#game-pane" hx-swap="innerHTML">[reset]</button></div>`, sid)
		return h.err
	})
}

// LookupPane renders the search form and the results area.
func LookupPane(snap *models.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.printf(`<div class="content-container"><h1>User Profile Lookup</h1>`)
		h.printf(`<form class="lookup-box" hx-post="/htmx/%s/lookup" hx-target="#lookup-results" hx-swap="innerHTML">`, esc(snap.SessionID))
		h.printf(`<input type="number" name="userId" min="1" max="10" placeholder="Enter user ID (1–10)" value="%s">`, esc(snap.Query))
		h.printf(`<button type="submit">Search</button></form>`)
		h.printf(`<div id="lookup-results" class="lookup-results" sse-swap="lookup-update" hx-swap="innerHTML">`)
		h.render(ctx, LookupResults(snap.Lookup))
		h.printf(`</div></div>`)
		return h.err
	})
}

// LookupResults renders exactly one of loading, error, not found or the
// user card. Idle renders nothing.
func LookupResults(status models.LookupStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		switch status.State {
		case models.LookupLoading:
			h.printf(`<p class="loading">Loading...</p>`)
		case models.LookupError:
			h.printf(`<p class="error">Error: %s</p>`, esc(status.Message))
		case models.LookupNotFound:
			h.printf(`<p class="error">User not found</p>`)
		case models.LookupFound:
			u := status.User
			h.printf(`<div class="user-card"><h2>%s</h2>`, esc(u.Name))
			h.printf(`<p><strong>Email:</strong> %s</p>`, esc(u.Email))
			h.printf(`<p><strong>Phone:</strong> %s</p>`, esc(u.Phone))
			h.printf(`<p><strong>Website:</strong> %s</p></div>`, esc(u.Website))
		}
		return h.err
	})
}

// ErrorStatus renders a request failure in place of a pane.
func ErrorStatus(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.printf(`<div class="status error" id="status">&gt; error: %s</div>`, esc(msg))
		return h.err
	})
}
