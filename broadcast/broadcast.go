// broadcast/broadcast.go
package broadcast

import (
	"avalon/game"
	"avalon/logger"
	"avalon/network"
	"avalon/session"
)

// Broadcaster fans server pushes out to live connections. Send
// failures are skipped per recipient, never retried; the authoritative
// state stays in memory and is re-delivered on reconnect.
type Broadcaster interface {
	BroadcastViews(state *game.SessionState)
	BroadcastEvent(event string, data interface{})
	SendTo(name string, event string, data interface{})
}

// RegistryBroadcaster projects and delivers per-recipient views over
// the connection registry.
type RegistryBroadcaster struct {
	registry *session.Registry
}

func NewRegistryBroadcaster(registry *session.Registry) *RegistryBroadcaster {
	return &RegistryBroadcaster{registry: registry}
}

// BroadcastViews recomputes the role-scoped view for every connected
// player and sends each their own game-state event. Votes and roles of
// other players never leave the projector.
func (b *RegistryBroadcaster) BroadcastViews(state *game.SessionState) {
	for _, player := range state.Players {
		if !player.Connected {
			continue
		}
		sess, ok := b.registry.SessionFor(player.Name)
		if !ok {
			continue
		}
		view := game.Project(state, player.Name)
		if err := sess.Send(network.EventGameState, view); err != nil {
			logger.Log.Warnf("Failed to send game state to %s: %v", player.Name, err)
		}
	}
}

// BroadcastEvent sends the same payload to every identified connection.
func (b *RegistryBroadcaster) BroadcastEvent(event string, data interface{}) {
	for _, sess := range b.registry.BoundSessions() {
		if err := sess.Send(event, data); err != nil {
			logger.Log.Warnf("Failed to send %s to %s: %v", event, sess.PlayerName, err)
		}
	}
}

// SendTo delivers an event to a single player, if connected.
func (b *RegistryBroadcaster) SendTo(name string, event string, data interface{}) {
	sess, ok := b.registry.SessionFor(name)
	if !ok {
		return
	}
	if err := sess.Send(event, data); err != nil {
		logger.Log.Warnf("Failed to send %s to %s: %v", event, name, err)
	}
}
