package game

import "quizarena/internal/model"

// Event names delivered to clients. The transport layer uses them verbatim
// as the message type on the wire.
type Event string

const (
	EventSessionCreated Event = "sessionCreated"
	EventRoster         Event = "roster"
	EventRoundStarted   Event = "roundStarted"
	EventGuessMade      Event = "guessMade"
	EventGuessResult    Event = "guessResult"
	EventNoAttemptsLeft Event = "noAttemptsLeft"
	EventRoundEnded     Event = "roundEnded"
	EventNewGameMaster  Event = "newGameMaster"
	EventError          Event = "error"
)

// Notifier is the delivery sink the core announces state changes to. It is
// implemented by the WebSocket hub; implementations must not block, the core
// calls these while holding the session lock.
type Notifier interface {
	// NotifySession delivers to every current member of a session.
	NotifySession(sessionID string, event Event, payload interface{})
	// NotifyPlayer delivers to one member of a session.
	NotifyPlayer(sessionID, identity string, event Event, payload interface{})
	// NotifyCaller delivers to the connection identified by identity,
	// regardless of session membership.
	NotifyCaller(identity string, event Event, payload interface{})
}

// Archiver receives the record of every finished round. Implementations must
// return immediately and do their I/O elsewhere.
type Archiver interface {
	ArchiveRound(rec model.RoundRecord)
}
