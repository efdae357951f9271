package game

import "time"

// Phase is the current stage of the session state machine.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseTeamSelection Phase = "team-selection"
	PhaseTeamVoting    Phase = "team-voting"
	PhaseMission       Phase = "mission"
	PhaseAssassination Phase = "assassination"
	PhaseGameOver      Phase = "game-over"
)

// Winner of a finished game.
type Winner string

const (
	WinnerGood Winner = "good"
	WinnerEvil Winner = "evil"
)

// Player is one seat in the session. Name is immutable once assigned;
// only the connectivity fields change afterwards. Players are never
// removed from the roster while a game is in flight.
type Player struct {
	Name       string    `json:"name"`
	Connected  bool      `json:"connected"`
	JoinedAt   time.Time `json:"joinedAt"`
	LastSeenAt time.Time `json:"lastSeen"`
}

// MissionResult is one entry of the append-only mission history.
type MissionResult struct {
	MissionIndex  int      `json:"missionIndex"`
	Leader        string   `json:"leader"`
	Team          []string `json:"team"`
	Success       bool     `json:"success"`
	FailVoteCount int      `json:"failVoteCount"`
}

// SessionState is the single authoritative record of a game session.
// It is owned by the server process; clients only ever see projections
// of it. The whole struct round-trips through JSON for snapshots,
// including the hidden role assignment.
type SessionState struct {
	Players                 []*Player        `json:"players"`
	GameStarted             bool             `json:"gameStarted"`
	AssignedRoles           map[string]Role  `json:"assignedRoles"`
	CurrentPhase            Phase            `json:"currentPhase"`
	CurrentLeaderIndex      int              `json:"currentLeaderIndex"`
	CurrentMission          int              `json:"currentMission"`
	CurrentTeam             []string         `json:"currentTeam"`
	TeamApprovalVotes       map[string]bool  `json:"teamApprovalVotes"`
	MissionVotes            map[string]bool  `json:"missionVotes"`
	MissionHistory          []MissionResult  `json:"missionHistory"`
	ConsecutiveRejectedTeams int             `json:"consecutiveRejectedTeams"`
	AssassinationTarget     string           `json:"assassinationTarget"`
	Winner                  Winner           `json:"winner"`
}

// NewSessionState returns a fresh lobby.
func NewSessionState() *SessionState {
	return &SessionState{
		Players:           []*Player{},
		AssignedRoles:     map[string]Role{},
		CurrentPhase:      PhaseLobby,
		CurrentTeam:       []string{},
		TeamApprovalVotes: map[string]bool{},
		MissionVotes:      map[string]bool{},
		MissionHistory:    []MissionResult{},
	}
}

// PlayerByName returns the seat for name, or nil.
func (s *SessionState) PlayerByName(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PlayerNames returns the roster names in seating order.
func (s *SessionState) PlayerNames() []string {
	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = p.Name
	}
	return names
}

// Leader returns the player currently holding the leader token.
func (s *SessionState) Leader() *Player {
	if len(s.Players) == 0 {
		return nil
	}
	return s.Players[s.CurrentLeaderIndex%len(s.Players)]
}

// OnTeam reports whether name is part of the current proposal.
func (s *SessionState) OnTeam(name string) bool {
	for _, member := range s.CurrentTeam {
		if member == name {
			return true
		}
	}
	return false
}

// MissionWins counts completed missions per outcome.
func (s *SessionState) MissionWins() (good, evil int) {
	for _, r := range s.MissionHistory {
		if r.Success {
			good++
		} else {
			evil++
		}
	}
	return good, evil
}

// Normalize repairs a snapshot loaded from storage: nil maps become
// empty and the leader index is brought back into range. Older saves
// may predate some fields.
func (s *SessionState) Normalize() {
	if s.Players == nil {
		s.Players = []*Player{}
	}
	if s.AssignedRoles == nil {
		s.AssignedRoles = map[string]Role{}
	}
	if s.CurrentTeam == nil {
		s.CurrentTeam = []string{}
	}
	if s.TeamApprovalVotes == nil {
		s.TeamApprovalVotes = map[string]bool{}
	}
	if s.MissionVotes == nil {
		s.MissionVotes = map[string]bool{}
	}
	if s.MissionHistory == nil {
		s.MissionHistory = []MissionResult{}
	}
	if s.CurrentPhase == "" {
		s.CurrentPhase = PhaseLobby
	}
	if n := len(s.Players); n > 0 {
		s.CurrentLeaderIndex = ((s.CurrentLeaderIndex % n) + n) % n
	} else {
		s.CurrentLeaderIndex = 0
	}
}
