package game

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"sync"
	"time"

	"quizarena/internal/model"
)

const (
	// PointsPerCorrectGuess is awarded to the winning guesser of a round.
	PointsPerCorrectGuess = 10
	// MaxAttempts is the guess cap per player per round.
	MaxAttempts = 3
	// MinPlayers is the roster size required to start a round.
	MinPlayers = 3
	// DefaultRoundDuration is how long a round runs before the timer ends it.
	DefaultRoundDuration = 60 * time.Second
)

const (
	sessionIDChars  = "abcdefghjkmnpqrstuvwxyz23456789"
	sessionIDLength = 7
)

// Store holds all live sessions and is the only owner of their lifecycle.
// The map has its own lock; each session serializes its mutations behind a
// per-session mutex, so operations on different sessions never contend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	notifier Notifier
	archiver Archiver

	clock    func() time.Time
	pick     func(n int) int
	roundDur time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(st *Store) { st.clock = clock }
}

// WithPick overrides the random choice function used for game master
// rotation. pick(n) must return a value in [0, n).
func WithPick(pick func(n int) int) Option {
	return func(st *Store) { st.pick = pick }
}

// WithRoundDuration overrides the round timer duration.
func WithRoundDuration(d time.Duration) Option {
	return func(st *Store) { st.roundDur = d }
}

// NewStore creates an empty session store.
func NewStore(notifier Notifier, opts ...Option) *Store {
	st := &Store{
		sessions: make(map[string]*Session),
		notifier: notifier,
		clock:    time.Now,
		pick:     mrand.IntN,
		roundDur: DefaultRoundDuration,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// SetArchiver sets the round archive sink. Call before serving traffic.
func (st *Store) SetArchiver(a Archiver) {
	st.archiver = a
}

// Create registers a new session seeded with its creator as sole member and
// game master, in waiting status.
func (st *Store) Create(creatorID, username, question, answer string) (*Session, error) {
	if username == "" || question == "" || answer == "" {
		return nil, ErrInvalidInput
	}

	sess := &Session{
		GameMasterID:   creatorID,
		GameMasterName: username,
		Status:         model.SessionWaiting,
		Question:       question,
		answer:         answer,
		Players:        []*model.Player{{ID: creatorID, Username: username}},
	}
	roster := rosterPayload(sess)

	id, err := st.insert(sess)
	if err != nil {
		return nil, err
	}

	st.notifier.NotifyCaller(creatorID, EventSessionCreated, model.SessionCreatedPayload{SessionID: id})
	st.notifier.NotifyCaller(creatorID, EventRoster, roster)
	return sess, nil
}

// insert assigns a unique id and adds the session to the map.
func (st *Store) insert(sess *Session) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for attempts := 0; attempts < 10; attempts++ {
		id, err := randomSessionID()
		if err != nil {
			return "", err
		}
		if _, exists := st.sessions[id]; exists {
			continue
		}
		sess.ID = id
		st.sessions[id] = sess
		return id, nil
	}
	return "", fmt.Errorf("failed to generate unique session id")
}

func (st *Store) lookup(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

func (st *Store) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// randomSessionID draws a short token from an alphabet without ambiguous
// characters. The space is large enough that collisions are retried, not
// prevented.
func randomSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random session id: %w", err)
	}
	id := make([]byte, sessionIDLength)
	for i := range id {
		id[i] = sessionIDChars[int(b[i])%len(sessionIDChars)]
	}
	return string(id), nil
}
