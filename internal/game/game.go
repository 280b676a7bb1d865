package game

import (
	"errors"
	"fmt"

	"twopane/internal/models"
)

var (
	ErrInvalidMove   = errors.New("invalid move")
	ErrGameOver      = errors.New("game is over")
	ErrPositionTaken = errors.New("position already taken")
	ErrNoSuchMove    = errors.New("no such move in history")
)

// winConditions defines all possible winning combinations
var winConditions = [][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// Game keeps the move history of one tic-tac-toe board and the move
// currently displayed. Board, turn and winner are derived from both.
// A Game is not safe for concurrent use.
type Game struct {
	history []models.Board
	current int
}

// New creates a game holding only the empty board
func New() *Game {
	return &Game{history: []models.Board{{}}}
}

// Play places the mark of the player to move on cell. It refuses the move
// when the displayed board already has a winner or the cell is taken.
// Playing from an earlier move discards every later entry.
func (g *Game) Play(cell int) error {
	if cell < 0 || cell > 8 {
		return ErrInvalidMove
	}

	board := g.history[g.current]
	if Winner(board) != models.Empty {
		return ErrGameOver
	}
	if board[cell] != models.Empty {
		return ErrPositionTaken
	}

	board[cell] = g.NextPlayer()

	g.history = append(g.history[:g.current+1:g.current+1], board)
	g.current = len(g.history) - 1
	return nil
}

// JumpTo displays history entry move. History is left untouched.
func (g *Game) JumpTo(move int) error {
	if move < 0 || move >= len(g.history) {
		return fmt.Errorf("%w: %d", ErrNoSuchMove, move)
	}
	g.current = move
	return nil
}

// Reset drops the whole history
func (g *Game) Reset() {
	g.history = []models.Board{{}}
	g.current = 0
}

// Board returns the board at the current move
func (g *Game) Board() models.Board {
	return g.history[g.current]
}

// CurrentMove returns the index of the displayed history entry
func (g *Game) CurrentMove() int {
	return g.current
}

// History returns a copy of all recorded boards
func (g *Game) History() []models.Board {
	out := make([]models.Board, len(g.history))
	copy(out, g.history)
	return out
}

// NextPlayer is X on even moves and O on odd ones.
func (g *Game) NextPlayer() models.Player {
	if g.current%2 == 0 {
		return models.PlayerX
	}
	return models.PlayerO
}

// Winner returns the winner of the displayed board, if any
func (g *Game) Winner() models.Player {
	return Winner(g.Board())
}

// Status returns the status line shown above the board
func (g *Game) Status() string {
	if w := g.Winner(); w != models.Empty {
		return "Winner: " + string(w)
	}
	return "Next player: " + string(g.NextPlayer())
}

// View summarises the game for rendering
func (g *Game) View() models.GameView {
	return models.GameView{
		Board:         g.Board(),
		HistoryLength: len(g.history),
		CurrentMove:   g.current,
		NextPlayer:    g.NextPlayer(),
		Winner:        g.Winner(),
		Status:        g.Status(),
	}
}

// Winner checks the eight lines of board and returns the mark owning one of them.
func Winner(board models.Board) models.Player {
	for _, condition := range winConditions {
		a, b, c := condition[0], condition[1], condition[2]
		if board[a] != models.Empty && board[a] == board[b] && board[b] == board[c] {
			return board[a]
		}
	}
	return models.Empty
}

// MoveLabel is the text of the history button for move.
func MoveLabel(move int) string {
	if move == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d", move)
}
