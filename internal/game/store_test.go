package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"quizarena/internal/model"
)

var fixedTime = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

type notice struct {
	kind      string // "session", "player", "caller"
	sessionID string
	identity  string
	event     Event
	payload   interface{}
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (f *fakeNotifier) NotifySession(sessionID string, event Event, payload interface{}) {
	f.add(notice{kind: "session", sessionID: sessionID, event: event, payload: payload})
}

func (f *fakeNotifier) NotifyPlayer(sessionID, identity string, event Event, payload interface{}) {
	f.add(notice{kind: "player", sessionID: sessionID, identity: identity, event: event, payload: payload})
}

func (f *fakeNotifier) NotifyCaller(identity string, event Event, payload interface{}) {
	f.add(notice{kind: "caller", identity: identity, event: event, payload: payload})
}

func (f *fakeNotifier) add(n notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
}

func (f *fakeNotifier) byEvent(event Event) []notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notice
	for _, n := range f.notices {
		if n.event == event {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifier) last(event Event) (notice, bool) {
	matches := f.byEvent(event)
	if len(matches) == 0 {
		return notice{}, false
	}
	return matches[len(matches)-1], true
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeNotifier) {
	t.Helper()
	fn := &fakeNotifier{}
	base := []Option{
		WithClock(func() time.Time { return fixedTime }),
		WithPick(func(n int) int { return 0 }),
	}
	return NewStore(fn, append(base, opts...)...), fn
}

func TestCreateSeedsCreatorAsGameMaster(t *testing.T) {
	st, fn := newTestStore(t)

	sess, err := st.Create("conn-1", "u1", "2+2", "4")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.ID) != sessionIDLength {
		t.Fatalf("expected %d-char session id, got %q", sessionIDLength, sess.ID)
	}
	if sess.Status != model.SessionWaiting {
		t.Fatalf("expected waiting status, got %q", sess.Status)
	}
	if sess.GameMasterID != "conn-1" || sess.GameMasterName != "u1" {
		t.Fatalf("expected creator as game master, got %s/%s", sess.GameMasterID, sess.GameMasterName)
	}
	if len(sess.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(sess.Players))
	}
	if p := sess.Players[0]; p.Attempts != 0 || p.Score != 0 {
		t.Fatalf("expected fresh player, got attempts=%d score=%d", p.Attempts, p.Score)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", st.Len())
	}

	created, ok := fn.last(EventSessionCreated)
	if !ok {
		t.Fatal("expected sessionCreated notification")
	}
	if created.kind != "caller" || created.identity != "conn-1" {
		t.Fatalf("expected sessionCreated delivered to caller, got %+v", created)
	}
	if payload := created.payload.(model.SessionCreatedPayload); payload.SessionID != sess.ID {
		t.Fatalf("expected session id %q in payload, got %q", sess.ID, payload.SessionID)
	}
}

func TestCreateRequiresAllFields(t *testing.T) {
	st, _ := newTestStore(t)

	cases := []struct {
		name                       string
		username, question, answer string
	}{
		{"empty username", "", "2+2", "4"},
		{"empty question", "u1", "", "4"},
		{"empty answer", "u1", "2+2", ""},
	}
	for _, tc := range cases {
		if _, err := st.Create("conn-1", tc.username, tc.question, tc.answer); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
	if st.Len() != 0 {
		t.Fatalf("expected no sessions after failed creates, got %d", st.Len())
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	st, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := st.Create("conn-1", "u1", "q", "a")
		if err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
		if seen[sess.ID] {
			t.Fatalf("duplicate session id %q", sess.ID)
		}
		seen[sess.ID] = true
	}
}

func TestViewRedactsAnswerAndIdleQuestion(t *testing.T) {
	st, _ := newTestStore(t)
	sess := mustCreate(t, st, "conn-1", "u1", "2+2", "4")

	view, err := st.View(sess.ID)
	if err != nil {
		t.Fatalf("view session: %v", err)
	}
	if view.Question != "" {
		t.Fatalf("expected question hidden while waiting, got %q", view.Question)
	}
	if view.StartedAt != nil {
		t.Fatal("expected no startedAt while waiting")
	}

	mustJoin(t, st, sess.ID, "conn-2", "u2")
	mustJoin(t, st, sess.ID, "conn-3", "u3")
	if err := st.Start(sess.ID, "conn-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	view, err = st.View(sess.ID)
	if err != nil {
		t.Fatalf("view session: %v", err)
	}
	if view.Question != "2+2" {
		t.Fatalf("expected question visible while active, got %q", view.Question)
	}
	if view.StartedAt == nil || !view.StartedAt.Equal(fixedTime) {
		t.Fatalf("expected startedAt %v, got %v", fixedTime, view.StartedAt)
	}
}

func TestViewUnknownSession(t *testing.T) {
	st, _ := newTestStore(t)
	if _, err := st.View("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func mustCreate(t *testing.T, st *Store, creatorID, username, question, answer string) *Session {
	t.Helper()
	sess, err := st.Create(creatorID, username, question, answer)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func mustJoin(t *testing.T, st *Store, sessionID, identity, username string) {
	t.Helper()
	if err := st.Join(sessionID, identity, username); err != nil {
		t.Fatalf("join %s as %s: %v", sessionID, username, err)
	}
}

// setupStarted builds the canonical three-player session with u1 as game
// master and an active round on question "2+2" / answer "4".
func setupStarted(t *testing.T, st *Store) *Session {
	t.Helper()
	sess := mustCreate(t, st, "conn-1", "u1", "2+2", "4")
	mustJoin(t, st, sess.ID, "conn-2", "u2")
	mustJoin(t, st, sess.ID, "conn-3", "u3")
	if err := st.Start(sess.ID, "conn-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	return sess
}
