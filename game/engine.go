package game

import (
	"math/rand"
	"time"
)

// Engine validates and applies state-changing requests against a
// SessionState, one at a time. Every request either fully applies or
// fully rejects; nothing here mutates state on the error paths.
//
// The engine itself is not goroutine safe. The owner (server.GameServer)
// serializes all calls behind a single mutex so that concurrent vote
// submissions cannot interleave their read-modify-write.
type Engine struct {
	state *SessionState
	rng   *rand.Rand
	clock func() time.Time
}

// NewEngine wraps an existing state, typically one restored from a
// snapshot at process start.
func NewEngine(state *SessionState) *Engine {
	state.Normalize()
	return &Engine{
		state: state,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		clock: time.Now,
	}
}

// State exposes the authoritative state for projection and persistence.
// Callers must hold the same serialization the mutating calls use.
func (e *Engine) State() *SessionState {
	return e.state
}

// Join adds a new player to the lobby, connected.
func (e *Engine) Join(name string) error {
	if e.state.GameStarted {
		return ErrGameAlreadyStarted
	}
	if e.state.PlayerByName(name) != nil {
		return ErrNameTaken
	}

	now := e.clock()
	e.state.Players = append(e.state.Players, &Player{
		Name:       name,
		Connected:  true,
		JoinedAt:   now,
		LastSeenAt: now,
	})
	return nil
}

// StartGame deals roles and opens the first team selection. Only the
// first-joined player may start, and only with a legal player count.
func (e *Engine) StartGame(requester string) error {
	if e.state.GameStarted {
		return ErrGameAlreadyStarted
	}
	if len(e.state.Players) == 0 || e.state.Players[0].Name != requester {
		return ErrNotAuthorized
	}
	if n := len(e.state.Players); n < MinPlayers || n > MaxPlayers {
		return ErrInvalidPlayerCount
	}

	e.state.AssignedRoles = assignRoles(e.state.PlayerNames(), e.rng)
	e.state.GameStarted = true
	e.state.CurrentPhase = PhaseTeamSelection
	e.state.CurrentLeaderIndex = 0
	e.state.CurrentMission = 0
	return nil
}

// ProposeTeam records the leader's nomination and opens the approval
// vote.
func (e *Engine) ProposeTeam(requester string, team []string) error {
	if e.state.CurrentPhase != PhaseTeamSelection {
		return ErrWrongPhase
	}
	if leader := e.state.Leader(); leader == nil || leader.Name != requester {
		return ErrNotLeader
	}
	required := RequiredTeamSize(len(e.state.Players), e.state.CurrentMission)
	if len(uniqueNames(team)) != required || len(team) != required {
		return ErrWrongTeamSize
	}
	for _, member := range team {
		if e.state.PlayerByName(member) == nil {
			return ErrUnknownMember
		}
	}

	e.state.CurrentTeam = append([]string{}, team...)
	e.state.TeamApprovalVotes = map[string]bool{}
	e.state.CurrentPhase = PhaseTeamVoting
	return nil
}

// SubmitTeamVote records one player's approval vote. When the last
// vote arrives the proposal is resolved: a strict majority of all
// players approves, anything else rejects.
func (e *Engine) SubmitTeamVote(requester string, approve bool) error {
	if e.state.CurrentPhase != PhaseTeamVoting {
		return ErrWrongPhase
	}
	if e.state.PlayerByName(requester) == nil {
		return ErrUnknownPlayer
	}
	if _, voted := e.state.TeamApprovalVotes[requester]; voted {
		return ErrAlreadyVoted
	}

	e.state.TeamApprovalVotes[requester] = approve
	if len(e.state.TeamApprovalVotes) < len(e.state.Players) {
		return nil
	}
	e.resolveTeamVote()
	return nil
}

func (e *Engine) resolveTeamVote() {
	approvals := 0
	for _, approve := range e.state.TeamApprovalVotes {
		if approve {
			approvals++
		}
	}

	// Strict majority of the full roster; ties reject.
	if approvals*2 > len(e.state.Players) {
		e.state.ConsecutiveRejectedTeams = 0
		e.state.MissionVotes = map[string]bool{}
		e.state.CurrentPhase = PhaseMission
		return
	}

	e.state.ConsecutiveRejectedTeams++
	if e.state.ConsecutiveRejectedTeams >= MaxRejectedTeams {
		e.state.Winner = WinnerEvil
		e.state.CurrentPhase = PhaseGameOver
		return
	}

	e.advanceLeader()
	e.state.CurrentTeam = []string{}
	e.state.CurrentPhase = PhaseTeamSelection
}

// SubmitMissionVote records one team member's secret mission vote.
// The server does not trust the client to hide the fail button from
// good players: a fail vote from a good role is rejected outright.
func (e *Engine) SubmitMissionVote(requester string, success bool) error {
	if e.state.CurrentPhase != PhaseMission {
		return ErrWrongPhase
	}
	if !e.state.OnTeam(requester) {
		return ErrNotOnTeam
	}
	if _, voted := e.state.MissionVotes[requester]; voted {
		return ErrAlreadyVoted
	}
	if !success && !IsEvil(e.state.AssignedRoles[requester]) {
		return ErrInvalidVote
	}

	e.state.MissionVotes[requester] = success
	if len(e.state.MissionVotes) < len(e.state.CurrentTeam) {
		return nil
	}
	e.resolveMission()
	return nil
}

func (e *Engine) resolveMission() {
	failCount := 0
	for _, success := range e.state.MissionVotes {
		if !success {
			failCount++
		}
	}

	threshold := FailThreshold(len(e.state.Players), e.state.CurrentMission)
	result := MissionResult{
		MissionIndex:  e.state.CurrentMission,
		Leader:        e.state.Leader().Name,
		Team:          append([]string{}, e.state.CurrentTeam...),
		Success:       failCount < threshold,
		FailVoteCount: failCount,
	}
	e.state.MissionHistory = append(e.state.MissionHistory, result)

	goodWins, evilWins := e.state.MissionWins()
	switch {
	case goodWins >= MissionsToWin:
		// Evil gets one last chance to pick off Merlin.
		e.state.CurrentPhase = PhaseAssassination
	case evilWins >= MissionsToWin:
		e.state.Winner = WinnerEvil
		e.state.CurrentPhase = PhaseGameOver
	default:
		e.state.CurrentMission++
		e.advanceLeader()
		e.state.CurrentTeam = []string{}
		e.state.TeamApprovalVotes = map[string]bool{}
		e.state.MissionVotes = map[string]bool{}
		e.state.CurrentPhase = PhaseTeamSelection
	}
}

// Assassinate resolves the evil faction's final shot at Merlin.
func (e *Engine) Assassinate(requester, target string) error {
	if e.state.CurrentPhase != PhaseAssassination {
		return ErrWrongPhase
	}
	if e.state.AssignedRoles[requester] != RoleAssassin {
		return ErrNotAssassin
	}
	if e.state.PlayerByName(target) == nil {
		return ErrInvalidTarget
	}

	e.state.AssassinationTarget = target
	if e.state.AssignedRoles[target] == RoleMerlin {
		e.state.Winner = WinnerEvil
	} else {
		e.state.Winner = WinnerGood
	}
	e.state.CurrentPhase = PhaseGameOver
	return nil
}

// NewGame resets a finished session back to an empty lobby. The roster
// is cleared; players rejoin for the next game.
func (e *Engine) NewGame() error {
	if e.state.CurrentPhase != PhaseGameOver {
		return ErrWrongPhase
	}
	*e.state = *NewSessionState()
	return nil
}

// Reconnect rebinds a previously seen name, in any phase. A name never
// seen in this session can still join as a fresh player while the game
// has not started. Recorded votes and the role assignment are left
// untouched.
func (e *Engine) Reconnect(name string) error {
	player := e.state.PlayerByName(name)
	if player == nil {
		if e.state.GameStarted {
			return ErrUnknownPlayer
		}
		return e.Join(name)
	}

	player.Connected = true
	player.LastSeenAt = e.clock()
	return nil
}

// Disconnect marks a player as away. It never removes the seat, never
// discards recorded votes and never advances the phase; a round simply
// stalls until the missing voter returns.
func (e *Engine) Disconnect(name string) error {
	player := e.state.PlayerByName(name)
	if player == nil {
		return ErrUnknownPlayer
	}

	player.Connected = false
	player.LastSeenAt = e.clock()
	return nil
}

func (e *Engine) advanceLeader() {
	e.state.CurrentLeaderIndex = (e.state.CurrentLeaderIndex + 1) % len(e.state.Players)
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := names[:0:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
