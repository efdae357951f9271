package game

import "errors"

// Validation errors. Each rejects a single request and leaves the
// session state untouched; none of them is fatal.
var (
	ErrNameTaken          = errors.New("name already taken")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrInvalidPlayerCount = errors.New("player count must be between 5 and 10")
	ErrNotAuthorized      = errors.New("only the first player can start the game")
	ErrWrongPhase         = errors.New("invalid action for current phase")
	ErrNotLeader          = errors.New("only the current leader can propose a team")
	ErrWrongTeamSize      = errors.New("wrong team size for this mission")
	ErrUnknownMember      = errors.New("proposed team contains an unknown player")
	ErrAlreadyVoted       = errors.New("already voted")
	ErrNotOnTeam          = errors.New("not a member of the current team")
	ErrInvalidVote        = errors.New("good players cannot vote to fail a mission")
	ErrNotAssassin        = errors.New("only the assassin can assassinate")
	ErrInvalidTarget      = errors.New("assassination target is not a player")
	ErrUnknownPlayer      = errors.New("unknown player")
)
