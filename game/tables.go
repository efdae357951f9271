package game

// Player count limits for a session.
const (
	MinPlayers = 5
	MaxPlayers = 10
)

// MissionCount is the number of missions in a game.
const MissionCount = 5

// MaxRejectedTeams is the number of consecutive rejected proposals that
// hands the game to evil.
const MaxRejectedTeams = 5

// MissionsToWin is the number of mission results either faction needs.
const MissionsToWin = 3

// requiredTeamSizes maps player count to the team size of each mission.
var requiredTeamSizes = map[int][MissionCount]int{
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

// RequiredTeamSize returns how many players the leader must nominate
// for the given mission index. Returns 0 for out-of-range input.
func RequiredTeamSize(playerCount, mission int) int {
	sizes, ok := requiredTeamSizes[playerCount]
	if !ok || mission < 0 || mission >= MissionCount {
		return 0
	}
	return sizes[mission]
}

// FailThreshold returns how many fail votes sink the given mission.
// The fourth mission (index 3) requires two fails at 7+ players; every
// other mission fails on a single fail vote.
func FailThreshold(playerCount, mission int) int {
	if mission == 3 && playerCount >= 7 {
		return 2
	}
	return 1
}
