package model

import "time"

type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
)

// SessionView is the public read model of a live session. The answer is
// never included, and the question only while a round is running.
type SessionView struct {
	ID         string        `json:"id"`
	Status     SessionStatus `json:"status"`
	GameMaster string        `json:"gameMaster"`
	Question   string        `json:"question,omitempty"`
	Players    []PlayerView  `json:"players"`
	StartedAt  *time.Time    `json:"startedAt,omitempty"`
}

// ScoreEntry is one scoreboard line, in roster (join) order.
type ScoreEntry struct {
	Username string `json:"username" bson:"username"`
	Score    int    `json:"score" bson:"score"`
}

// RoundRecord is the archived result of a finished round.
type RoundRecord struct {
	SessionID string       `json:"sessionId" bson:"sessionId"`
	Winner    string       `json:"winner,omitempty" bson:"winner,omitempty"`
	Answer    string       `json:"answer" bson:"answer"`
	Scores    []ScoreEntry `json:"scores" bson:"scores"`
	StartedAt time.Time    `json:"startedAt" bson:"startedAt"`
	EndedAt   time.Time    `json:"endedAt" bson:"endedAt"`
}
