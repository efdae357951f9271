package broadcast

import (
	"net"
	"testing"
	"time"

	"avalon/game"
	"avalon/network"
	"avalon/session"
)

// recordingConnection captures every event pushed through it.
type recordingConnection struct {
	events []string
	data   []interface{}
}

func (c *recordingConnection) Send(event string, data interface{}) error {
	c.events = append(c.events, event)
	c.data = append(c.data, data)
	return nil
}
func (c *recordingConnection) ReadEvent() (*network.Event, error) { return nil, nil }
func (c *recordingConnection) Close() error                       { return nil }
func (c *recordingConnection) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *recordingConnection) SetHeartbeat(d time.Duration)       {}

func boundSession(t *testing.T, registry *session.Registry, id, name string) *recordingConnection {
	t.Helper()
	conn := &recordingConnection{}
	sess := session.NewSession(id, conn)
	registry.Add(sess)
	registry.Bind(name, sess)
	return conn
}

func twoPlayerState() *game.SessionState {
	state := game.NewSessionState()
	state.Players = []*game.Player{
		{Name: "alice", Connected: true},
		{Name: "bob", Connected: true},
	}
	state.GameStarted = true
	state.AssignedRoles = map[string]game.Role{
		"alice": game.RoleMerlin,
		"bob":   game.RoleAssassin,
	}
	state.CurrentPhase = game.PhaseTeamSelection
	return state
}

func TestBroadcastViews_PerRecipientProjection(t *testing.T) {
	registry := session.NewRegistry()
	alice := boundSession(t, registry, "s1", "alice")
	bob := boundSession(t, registry, "s2", "bob")

	b := NewRegistryBroadcaster(registry)
	b.BroadcastViews(twoPlayerState())

	for name, conn := range map[string]*recordingConnection{"alice": alice, "bob": bob} {
		if len(conn.events) != 1 || conn.events[0] != network.EventGameState {
			t.Fatalf("Expected one game-state event for %s, got %v", name, conn.events)
		}
		view, ok := conn.data[0].(game.View)
		if !ok {
			t.Fatalf("Expected a game.View payload for %s, got %T", name, conn.data[0])
		}
		if view.PlayerName != name {
			t.Errorf("View for %s addressed to %s", name, view.PlayerName)
		}
	}

	aliceView := alice.data[0].(game.View)
	bobView := bob.data[0].(game.View)
	if aliceView.Role != game.RoleMerlin || bobView.Role != game.RoleAssassin {
		t.Errorf("Each recipient sees their own role, got %s and %s", aliceView.Role, bobView.Role)
	}
}

func TestBroadcastViews_SkipsDisconnected(t *testing.T) {
	registry := session.NewRegistry()
	alice := boundSession(t, registry, "s1", "alice")
	bob := boundSession(t, registry, "s2", "bob")

	state := twoPlayerState()
	state.PlayerByName("bob").Connected = false

	NewRegistryBroadcaster(registry).BroadcastViews(state)

	if len(alice.events) != 1 {
		t.Errorf("Connected player should receive the state, got %d events", len(alice.events))
	}
	if len(bob.events) != 0 {
		t.Errorf("Disconnected player must be skipped, got %d events", len(bob.events))
	}
}

func TestBroadcastViews_PlayerWithoutSession(t *testing.T) {
	registry := session.NewRegistry()
	alice := boundSession(t, registry, "s1", "alice")

	// bob is on the roster and marked connected but has no live
	// session; the broadcast must not panic and alice still gets hers.
	NewRegistryBroadcaster(registry).BroadcastViews(twoPlayerState())

	if len(alice.events) != 1 {
		t.Errorf("Expected one event for alice, got %d", len(alice.events))
	}
}

func TestBroadcastEvent_ReachesAllBound(t *testing.T) {
	registry := session.NewRegistry()
	alice := boundSession(t, registry, "s1", "alice")
	bob := boundSession(t, registry, "s2", "bob")

	anonymous := &recordingConnection{}
	registry.Add(session.NewSession("s3", anonymous))

	NewRegistryBroadcaster(registry).BroadcastEvent(network.EventPlayersUpdated, []string{"alice", "bob"})

	if len(alice.events) != 1 || len(bob.events) != 1 {
		t.Error("All identified sessions should receive the event")
	}
	if len(anonymous.events) != 0 {
		t.Error("Unidentified sessions must not receive lobby broadcasts")
	}
}

func TestSendTo(t *testing.T) {
	registry := session.NewRegistry()
	alice := boundSession(t, registry, "s1", "alice")

	b := NewRegistryBroadcaster(registry)
	b.SendTo("alice", network.EventError, "nope")
	b.SendTo("nobody", network.EventError, "dropped")

	if len(alice.events) != 1 || alice.events[0] != network.EventError {
		t.Errorf("Expected one error event for alice, got %v", alice.events)
	}
}
