package game

import (
	"strings"
	"sync"
	"time"

	"quizarena/internal/model"
)

// Session is one live game instance. All mutation goes through Store
// operations, which hold mu for the full read-validate-write cycle. The
// answer stays unexported so nothing outside this package can leak it.
type Session struct {
	ID             string
	GameMasterID   string
	GameMasterName string
	Status         model.SessionStatus
	Question       string
	answer         string
	Players        []*model.Player
	WinnerID       string
	StartedAt      time.Time

	mu       sync.Mutex
	closed   bool
	timer    *time.Timer
	timerGen uint64
}

func (s *Session) playerByID(identity string) *model.Player {
	for _, p := range s.Players {
		if p.ID == identity {
			return p
		}
	}
	return nil
}

func rosterPayload(s *Session) model.RosterPayload {
	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = p.Username
	}
	return model.RosterPayload{
		Players:    names,
		GameMaster: s.GameMasterName,
		Status:     s.Status,
		Count:      len(names),
	}
}

// Join adds a player to a waiting session.
func (st *Store) Join(sessionID, identity, username string) error {
	if username == "" {
		return ErrInvalidInput
	}
	sess := st.lookup(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return ErrSessionNotFound
	}
	if sess.Status != model.SessionWaiting {
		return ErrInvalidState
	}
	for _, p := range sess.Players {
		if p.Username == username {
			return ErrDuplicateUsername
		}
	}

	sess.Players = append(sess.Players, &model.Player{ID: identity, Username: username})
	st.notifier.NotifySession(sessionID, EventRoster, rosterPayload(sess))
	return nil
}

// Start begins a round: only the game master may call it, the roster must
// hold at least MinPlayers, and a question must be set. On success the round
// timer is armed and the question (never the answer) is broadcast.
func (st *Store) Start(sessionID, identity string) error {
	sess := st.lookup(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return ErrSessionNotFound
	}
	if sess.GameMasterID != identity {
		return ErrForbidden
	}
	if sess.Status != model.SessionWaiting {
		return ErrInvalidState
	}
	if len(sess.Players) < MinPlayers {
		return ErrInsufficientPlayers
	}
	if sess.Question == "" || sess.answer == "" {
		// Question was cleared by the previous round end and the game
		// master has not set a new one yet.
		return ErrInvalidInput
	}

	sess.Status = model.SessionActive
	sess.StartedAt = st.clock()
	st.armTimerLocked(sess)

	st.notifier.NotifySession(sessionID, EventRoundStarted, model.RoundStartedPayload{Question: sess.Question})
	st.notifier.NotifySession(sessionID, EventRoster, rosterPayload(sess))
	return nil
}

// Guess evaluates one answer attempt. The guess is broadcast to the whole
// session regardless of outcome; a correct guess awards points and ends the
// round, an incorrect one reports back to the guesser only.
func (st *Store) Guess(sessionID, identity, username, text string) (model.GuessResultPayload, error) {
	var res model.GuessResultPayload

	sess := st.lookup(sessionID)
	if sess == nil {
		return res, ErrSessionNotFound
	}

	sess.mu.Lock()

	if sess.closed {
		sess.mu.Unlock()
		return res, ErrSessionNotFound
	}
	if sess.Status != model.SessionActive {
		sess.mu.Unlock()
		return res, ErrInvalidState
	}
	player := sess.playerByID(identity)
	if player == nil || player.Username != username {
		sess.mu.Unlock()
		return res, ErrPlayerMismatch
	}
	if player.Attempts >= MaxAttempts {
		sess.mu.Unlock()
		return res, ErrNoAttemptsLeft
	}

	player.Attempts++
	correct := strings.EqualFold(text, sess.answer)
	res = model.GuessResultPayload{Correct: correct, Attempts: player.Attempts}

	st.notifier.NotifySession(sessionID, EventGuessMade, model.GuessMadePayload{
		Username: username,
		Guess:    text,
		Correct:  correct,
		Attempts: player.Attempts,
	})

	var destroyed bool
	switch {
	case correct:
		player.Score += PointsPerCorrectGuess
		sess.WinnerID = identity
		destroyed = st.endRoundLocked(sess, player)
	case player.Attempts >= MaxAttempts:
		st.notifier.NotifyCaller(identity, EventGuessResult, res)
		st.notifier.NotifyPlayer(sessionID, identity, EventNoAttemptsLeft,
			model.NoAttemptsLeftPayload{Message: "No more attempts remaining"})
	default:
		st.notifier.NotifyCaller(identity, EventGuessResult, res)
	}

	sess.mu.Unlock()
	if destroyed {
		st.remove(sessionID)
	}
	return res, nil
}

// SetQuestion replaces the question/answer pair between rounds.
func (st *Store) SetQuestion(sessionID, identity, question, answer string) error {
	sess := st.lookup(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return ErrSessionNotFound
	}
	if sess.GameMasterID != identity {
		return ErrForbidden
	}
	if sess.Status != model.SessionWaiting {
		return ErrInvalidState
	}
	if question == "" || answer == "" {
		return ErrInvalidInput
	}

	sess.Question = question
	sess.answer = answer
	st.notifier.NotifySession(sessionID, EventRoster, rosterPayload(sess))
	return nil
}

// Leave removes a player from a session. Leaving an unknown session or one
// the player is not in is a no-op, not an error. The first remaining player
// in join order inherits the game master role; an emptied session is
// destroyed.
func (st *Store) Leave(sessionID, identity string) error {
	sess := st.lookup(sessionID)
	if sess == nil {
		return nil
	}

	sess.mu.Lock()

	if sess.closed {
		sess.mu.Unlock()
		return nil
	}
	idx := -1
	for i, p := range sess.Players {
		if p.ID == identity {
			idx = i
			break
		}
	}
	if idx == -1 {
		sess.mu.Unlock()
		return nil
	}

	sess.Players = append(sess.Players[:idx], sess.Players[idx+1:]...)

	if len(sess.Players) == 0 {
		st.cancelTimerLocked(sess)
		sess.closed = true
		sess.mu.Unlock()
		st.remove(sessionID)
		return nil
	}

	if sess.GameMasterID == identity {
		next := sess.Players[0]
		sess.GameMasterID = next.ID
		sess.GameMasterName = next.Username
	}
	st.notifier.NotifySession(sessionID, EventRoster, rosterPayload(sess))
	sess.mu.Unlock()
	return nil
}

// View returns the public read model of a session. The question is included
// only while a round is running; the answer never is.
func (st *Store) View(sessionID string) (model.SessionView, error) {
	sess := st.lookup(sessionID)
	if sess == nil {
		return model.SessionView{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return model.SessionView{}, ErrSessionNotFound
	}

	view := model.SessionView{
		ID:         sess.ID,
		Status:     sess.Status,
		GameMaster: sess.GameMasterName,
		Players:    make([]model.PlayerView, len(sess.Players)),
	}
	if sess.Status == model.SessionActive {
		view.Question = sess.Question
		startedAt := sess.StartedAt
		view.StartedAt = &startedAt
	}
	for i, p := range sess.Players {
		view.Players[i] = model.PlayerView{Username: p.Username, Score: p.Score, Attempts: p.Attempts}
	}
	return view, nil
}

// endRoundLocked finishes the current round: snapshots the scoreboard,
// rotates the game master to a random non-master player, and recycles the
// session to waiting. With no eligible successor the session is marked
// closed and the caller must remove it from the store after unlocking.
func (st *Store) endRoundLocked(sess *Session, winner *model.Player) (destroyed bool) {
	sess.Status = model.SessionEnded
	st.cancelTimerLocked(sess)

	var winnerName string
	if winner != nil {
		winnerName = winner.Username
	}

	scores := make([]model.ScoreEntry, len(sess.Players))
	for i, p := range sess.Players {
		scores[i] = model.ScoreEntry{Username: p.Username, Score: p.Score}
	}

	others := make([]*model.Player, 0, len(sess.Players))
	for _, p := range sess.Players {
		if p.ID != sess.GameMasterID {
			others = append(others, p)
		}
	}

	rec := model.RoundRecord{
		SessionID: sess.ID,
		Winner:    winnerName,
		Answer:    sess.answer,
		Scores:    scores,
		StartedAt: sess.StartedAt,
		EndedAt:   st.clock(),
	}
	ended := model.RoundEndedPayload{
		Winner: winnerName,
		Answer: sess.answer,
		Scores: scores,
	}

	if len(others) > 0 {
		next := others[st.pick(len(others))]
		ended.NewGameMaster = next.Username

		sess.GameMasterID = next.ID
		sess.GameMasterName = next.Username
		sess.Status = model.SessionWaiting
		sess.Question = ""
		sess.answer = ""
		sess.WinnerID = ""
		sess.StartedAt = time.Time{}
		for _, p := range sess.Players {
			p.Attempts = 0
		}

		st.notifier.NotifySession(sess.ID, EventRoundEnded, ended)
		st.notifier.NotifyPlayer(sess.ID, next.ID, EventNewGameMaster,
			model.NewGameMasterPayload{Message: "You are the new game master"})
		st.notifier.NotifySession(sess.ID, EventRoster, rosterPayload(sess))
	} else {
		// Delivered before teardown so members still see the result.
		st.notifier.NotifySession(sess.ID, EventRoundEnded, ended)
		sess.closed = true
		destroyed = true
	}

	if st.archiver != nil {
		st.archiver.ArchiveRound(rec)
	}
	return destroyed
}
