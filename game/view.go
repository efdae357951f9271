package game

import "time"

// PlayerView is the public shape of a seat. It is always a full
// object; the wire never carries a bare name.
type PlayerView struct {
	Name      string    `json:"name"`
	Connected bool      `json:"connected"`
	LastSeen  time.Time `json:"lastSeen"`
}

// View is what one recipient is allowed to see of the session: every
// public field, plus their own role and whatever sightings the role
// catalog grants them. The full role assignment never appears here.
type View struct {
	PlayerName               string          `json:"playerName"`
	Role                     Role            `json:"role,omitempty"`
	Sightings                []RoleSighting  `json:"sightings,omitempty"`
	Players                  []PlayerView    `json:"players"`
	GameStarted              bool            `json:"gameStarted"`
	CurrentPhase             Phase           `json:"currentPhase"`
	CurrentLeader            string          `json:"currentLeader,omitempty"`
	CurrentMission           int             `json:"currentMission"`
	CurrentTeam              []string        `json:"currentTeam"`
	TeamApprovalVotes        map[string]bool `json:"teamApprovalVotes"`
	MissionVoteCount         int             `json:"missionVoteCount"`
	MissionHistory           []MissionResult `json:"missionHistory"`
	ConsecutiveRejectedTeams int             `json:"consecutiveRejectedTeams"`
	AssassinationTarget      string          `json:"assassinationTarget,omitempty"`
	Winner                   Winner          `json:"winner,omitempty"`
}

// Project computes the view for one recipient. Pure function of the
// state and the recipient; it copies everything it exposes so the
// caller can hand the result to a concurrent broadcast.
func Project(state *SessionState, recipient string) View {
	view := View{
		PlayerName:               recipient,
		Players:                  ProjectPlayers(state),
		GameStarted:              state.GameStarted,
		CurrentPhase:             state.CurrentPhase,
		CurrentMission:           state.CurrentMission,
		CurrentTeam:              append([]string{}, state.CurrentTeam...),
		TeamApprovalVotes:        make(map[string]bool, len(state.TeamApprovalVotes)),
		MissionVoteCount:         len(state.MissionVotes),
		MissionHistory:           append([]MissionResult{}, state.MissionHistory...),
		ConsecutiveRejectedTeams: state.ConsecutiveRejectedTeams,
		AssassinationTarget:      state.AssassinationTarget,
		Winner:                   state.Winner,
	}

	// Team approval votes are public once cast.
	for name, vote := range state.TeamApprovalVotes {
		view.TeamApprovalVotes[name] = vote
	}

	if leader := state.Leader(); leader != nil && state.GameStarted {
		view.CurrentLeader = leader.Name
	}

	if role, ok := state.AssignedRoles[recipient]; ok {
		view.Role = role
		view.Sightings = VisibleEvilTo(recipient, role, state.AssignedRoles)
	}
	return view
}

// ProjectPlayers returns the public roster payload broadcast on lobby
// changes.
func ProjectPlayers(state *SessionState) []PlayerView {
	players := make([]PlayerView, len(state.Players))
	for i, p := range state.Players {
		players[i] = PlayerView{
			Name:      p.Name,
			Connected: p.Connected,
			LastSeen:  p.LastSeenAt,
		}
	}
	return players
}
