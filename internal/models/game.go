package models

// Player represents a mark on the board
type Player string

const (
	PlayerX Player = "X"
	PlayerO Player = "O"
	Empty   Player = ""
)

// Board represents the 3x3 game board
type Board [9]Player

// Count returns the number of occupied cells.
func (b Board) Count() int {
	n := 0
	for _, cell := range b {
		if cell != Empty {
			n++
		}
	}
	return n
}

// GameView is the rendered state of a game at its current move
type GameView struct {
	Board         Board  `json:"board"`
	HistoryLength int    `json:"historyLength"`
	CurrentMove   int    `json:"currentMove"`
	NextPlayer    Player `json:"nextPlayer"`
	Winner        Player `json:"winner"`
	Status        string `json:"status"`
}
