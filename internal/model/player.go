package model

// Player is one participant in a session. The ID is the ephemeral guest
// identity of the underlying connection; the username is unique within a
// session, case-sensitive as typed.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Attempts int    `json:"attempts"`
	Score    int    `json:"score"`
}

// PlayerView is the roster entry exposed over REST.
type PlayerView struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Attempts int    `json:"attempts"`
}
