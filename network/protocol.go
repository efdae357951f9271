package network

// Client -> server events.
const (
	EventJoin            = "join"
	EventReconnectPlayer = "reconnect-player"
	EventStartGame       = "start-game"
	EventProposeTeam     = "propose-team"
	EventTeamVote        = "submit-team-vote"
	EventMissionVote     = "submit-mission-vote"
	EventAssassinate     = "assassinate"
	EventNewGame         = "new-game"
)

// Server -> client events.
const (
	EventInitialState      = "initial-state"
	EventPlayerJoined      = "player-joined"
	EventPlayerLeft        = "player-left"
	EventPlayerReconnected = "player-reconnected"
	EventPlayersUpdated    = "players-updated"
	EventGameState         = "game-state"
	EventError             = "error"
)
