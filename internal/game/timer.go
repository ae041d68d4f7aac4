package game

import (
	"time"

	"quizarena/internal/model"
)

// armTimerLocked starts the round countdown. The generation counter ties the
// callback to this particular round: anything that bumps it before expiry
// turns the stale callback into a no-op.
func (st *Store) armTimerLocked(sess *Session) {
	sess.timerGen++
	gen := sess.timerGen
	id := sess.ID
	sess.timer = time.AfterFunc(st.roundDur, func() {
		st.expireRound(id, gen)
	})
}

func (st *Store) cancelTimerLocked(sess *Session) {
	sess.timerGen++
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
}

// expireRound runs when a round timer fires. It re-acquires the session lock
// and re-validates state: the session may be gone, recycled, or on a newer
// round by the time the callback runs.
func (st *Store) expireRound(sessionID string, gen uint64) {
	sess := st.lookup(sessionID)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	if sess.closed || sess.Status != model.SessionActive || sess.timerGen != gen {
		sess.mu.Unlock()
		return
	}
	destroyed := st.endRoundLocked(sess, nil)
	sess.mu.Unlock()

	if destroyed {
		st.remove(sessionID)
	}
}
