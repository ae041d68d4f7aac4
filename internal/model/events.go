package model

// Event payloads delivered through the game Notifier. Field sets mirror the
// client protocol; the transport layer marshals them as-is.

type SessionCreatedPayload struct {
	SessionID string `json:"sessionId"`
}

type RosterPayload struct {
	Players    []string      `json:"players"`
	GameMaster string        `json:"gameMaster"`
	Status     SessionStatus `json:"status"`
	Count      int           `json:"count"`
}

type RoundStartedPayload struct {
	Question string `json:"question"`
}

type GuessMadePayload struct {
	Username string `json:"username"`
	Guess    string `json:"guess"`
	Correct  bool   `json:"correct"`
	Attempts int    `json:"attempts"`
}

type GuessResultPayload struct {
	Correct  bool `json:"correct"`
	Attempts int  `json:"attempts"`
}

type NoAttemptsLeftPayload struct {
	Message string `json:"message"`
}

type RoundEndedPayload struct {
	Winner        string       `json:"winner"`
	Answer        string       `json:"answer"`
	Scores        []ScoreEntry `json:"scores"`
	NewGameMaster string       `json:"newGameMaster"`
}

type NewGameMasterPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
