package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"twopane/internal/game"
	"twopane/internal/lookup"
	"twopane/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownTab      = errors.New("unknown tab")
	ErrUnknownCommand  = errors.New("unknown command")
)

// Publisher receives a snapshot after every change of a session.
type Publisher interface {
	Broadcast(sessionID string, snap *models.Snapshot)
}

// Session owns the widget state of one browser: the active tab, the game
// and the lookup widget. Tab switches keep both widgets' state.
type Session struct {
	ID string

	mu       sync.Mutex
	tab      models.Tab
	game     *game.Game
	lookup   *lookup.Widget
	lastSeen time.Time

	pub Publisher
	now func() time.Time
}

// SelectTab switches the navigation shell.
func (s *Session) SelectTab(tab models.Tab) (*models.Snapshot, error) {
	if !tab.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	return s.mutate(func() error {
		s.tab = tab
		return nil
	})
}

// Play applies a move on the game board.
func (s *Session) Play(cell int) (*models.Snapshot, error) {
	return s.mutate(func() error { return s.game.Play(cell) })
}

// JumpTo moves the game to an earlier or later history entry.
func (s *Session) JumpTo(move int) (*models.Snapshot, error) {
	return s.mutate(func() error { return s.game.JumpTo(move) })
}

// Reset starts a new game.
func (s *Session) Reset() (*models.Snapshot, error) {
	return s.mutate(func() error {
		s.game.Reset()
		return nil
	})
}

// Search starts a user lookup. The returned snapshot shows loading or not
// found; the final result is published when the fetch completes.
func (s *Session) Search(ctx context.Context, query string) (*models.Snapshot, error) {
	return s.mutate(func() error {
		s.lookup.Search(ctx, query)
		return nil
	})
}

// Apply runs a transport-neutral command.
func (s *Session) Apply(ctx context.Context, cmd models.Command) (*models.Snapshot, error) {
	switch cmd.Action {
	case models.ActionTab:
		return s.SelectTab(cmd.Tab)
	case models.ActionPlay:
		return s.Play(cmd.Cell)
	case models.ActionJump:
		return s.JumpTo(cmd.Move)
	case models.ActionReset:
		return s.Reset()
	case models.ActionSearch:
		return s.Search(ctx, cmd.Query)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
	}
}

// Snapshot returns the current view without touching the idle timer.
func (s *Session) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns the recorded boards of the game.
func (s *Session) History() []models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.History()
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// Wait blocks until lookups in flight have finished.
func (s *Session) Wait() {
	s.lookup.Wait()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close must not be called with s.mu held: a finishing lookup publishes
// through s.mu while Close waits for it.
func (s *Session) close() {
	s.lookup.Close()
}

// mutate applies fn under the session lock and publishes the result.
// A failed fn publishes nothing.
func (s *Session) mutate(fn func() error) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = s.now()
	if err := fn(); err != nil {
		return s.snapshotLocked(), err
	}
	snap := s.snapshotLocked()
	s.pub.Broadcast(s.ID, snap)
	return snap, nil
}

// publish sends the current state; the lookup widget calls it when a
// fetch result has been applied.
func (s *Session) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub.Broadcast(s.ID, s.snapshotLocked())
}

func (s *Session) snapshotLocked() *models.Snapshot {
	query, status := s.lookup.State()
	return &models.Snapshot{
		SessionID: s.ID,
		Tab:       s.tab,
		Game:      s.game.View(),
		Query:     query,
		Lookup:    status,
	}
}
