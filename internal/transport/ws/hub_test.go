package ws

import (
	"encoding/json"
	"testing"
	"time"

	"quizarena/internal/game"
	"quizarena/internal/model"
)

func newTestConn(identity, username string) *Connection {
	return &Connection{
		Identity: identity,
		Username: username,
		Send:     make(chan []byte, 16),
	}
}

func recv(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no message delivered to %s", conn.Identity)
		return Message{}
	}
}

func expectSilence(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Fatalf("unexpected message for %s: %s", conn.Identity, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifySessionReachesAllMembers(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("g_alice", "alice")
	bob := newTestConn("g_bob", "bob")
	eve := newTestConn("g_eve", "eve")
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(eve)
	hub.Subscribe("sess1", "g_alice")
	hub.Subscribe("sess1", "g_bob")

	hub.NotifySession("sess1", game.EventRoundStarted, model.RoundStartedPayload{Question: "2+2"})

	for _, conn := range []*Connection{alice, bob} {
		msg := recv(t, conn)
		if msg.Type != string(game.EventRoundStarted) {
			t.Fatalf("expected roundStarted for %s, got %q", conn.Identity, msg.Type)
		}
		var payload model.RoundStartedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload.Question != "2+2" {
			t.Fatalf("unexpected question %q", payload.Question)
		}
	}
	expectSilence(t, eve)
}

func TestNotifyPlayerTargetsOneMember(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("g_alice", "alice")
	bob := newTestConn("g_bob", "bob")
	hub.Register(alice)
	hub.Register(bob)
	hub.Subscribe("sess1", "g_alice")
	hub.Subscribe("sess1", "g_bob")

	hub.NotifyPlayer("sess1", "g_bob", game.EventNewGameMaster,
		model.NewGameMasterPayload{Message: "You are the new game master"})

	msg := recv(t, bob)
	if msg.Type != string(game.EventNewGameMaster) {
		t.Fatalf("expected newGameMaster, got %q", msg.Type)
	}
	expectSilence(t, alice)
}

func TestNotifyCallerNeedsNoMembership(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("g_alice", "alice")
	hub.Register(alice)

	hub.NotifyCaller("g_alice", game.EventError, model.ErrorPayload{Message: "session not found"})

	msg := recv(t, alice)
	if msg.Type != string(game.EventError) {
		t.Fatalf("expected error event, got %q", msg.Type)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("g_alice", "alice")
	hub.Register(alice)
	hub.Subscribe("sess1", "g_alice")
	hub.Unsubscribe("sess1", "g_alice")

	hub.NotifySession("sess1", game.EventRoster, model.RosterPayload{})
	expectSilence(t, alice)
}

func TestUnregisterReportsJoinedSessions(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("g_alice", "alice")
	hub.Register(alice)
	hub.Subscribe("sess1", "g_alice")
	hub.Subscribe("sess2", "g_alice")

	sessions := hub.Unregister(alice)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 session ids, got %v", sessions)
	}
	seen := map[string]bool{}
	for _, id := range sessions {
		seen[id] = true
	}
	if !seen["sess1"] || !seen["sess2"] {
		t.Fatalf("unexpected session ids: %v", sessions)
	}

	// A second unregister of the same connection is a no-op.
	if again := hub.Unregister(alice); again != nil {
		t.Fatalf("expected nil on repeat unregister, got %v", again)
	}
}
