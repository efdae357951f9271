// models/models.go
package models

import (
	"time"

	"avalon/game"
)

// GameRecord captures one finished game for the history tables.
type GameRecord struct {
	Winner         game.Winner          `json:"winner"`
	Roles          map[string]game.Role `json:"roles"`
	MissionHistory []game.MissionResult `json:"missionHistory"`
	Assassinated   string               `json:"assassinated,omitempty"`
	PlayerCount    int                  `json:"playerCount"`
	FinishedAt     time.Time            `json:"finishedAt"`
}

// NewGameRecord builds a record from a game-over session state.
func NewGameRecord(state *game.SessionState) *GameRecord {
	roles := make(map[string]game.Role, len(state.AssignedRoles))
	for name, role := range state.AssignedRoles {
		roles[name] = role
	}
	return &GameRecord{
		Winner:         state.Winner,
		Roles:          roles,
		MissionHistory: append([]game.MissionResult{}, state.MissionHistory...),
		Assassinated:   state.AssassinationTarget,
		PlayerCount:    len(state.Players),
		FinishedAt:     time.Now(),
	}
}

// PlayerStats is the lifetime tally for one player name.
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"totalGames"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	EvilGames  int    `json:"evilGames"`
}
