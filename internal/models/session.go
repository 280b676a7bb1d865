package models

// Tab identifies the widget shown by the navigation shell
type Tab string

const (
	TabGame   Tab = "tic-tac-toe"
	TabLookup Tab = "user-lookup"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	return t == TabGame || t == TabLookup
}

// Label returns the navigation button text.
func (t Tab) Label() string {
	switch t {
	case TabGame:
		return "Tic Tac Toe"
	case TabLookup:
		return "User Lookup"
	}
	return string(t)
}

// Snapshot is the full view of a session pushed to clients
type Snapshot struct {
	SessionID string       `json:"sessionId"`
	Tab       Tab          `json:"tab"`
	Game      GameView     `json:"game"`
	Query     string       `json:"query"`
	Lookup    LookupStatus `json:"lookup"`
}

// Command actions
const (
	ActionTab    = "tab"
	ActionPlay   = "play"
	ActionJump   = "jump"
	ActionReset  = "reset"
	ActionSearch = "search"
)

// Command is a transport-neutral session mutation
type Command struct {
	Action string `json:"action"`
	Tab    Tab    `json:"tab,omitempty"`
	Cell   int    `json:"cell"`
	Move   int    `json:"move"`
	Query  string `json:"query,omitempty"`
}
