package game

import "errors"

// Validation failures are caller-local and never fatal: every operation
// either fully applies or reports exactly one of these.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrForbidden           = errors.New("only the game master can do that")
	ErrInvalidState        = errors.New("operation not valid for current session status")
	ErrInvalidInput        = errors.New("required field is missing")
	ErrDuplicateUsername   = errors.New("username already exists in this session")
	ErrPlayerMismatch      = errors.New("player not in session")
	ErrNoAttemptsLeft      = errors.New("no attempts remaining")
	ErrInsufficientPlayers = errors.New("minimum of 3 players needed to start session")
)
