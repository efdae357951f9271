// services/stats_service.go
package services

import (
	"avalon/game"
	"avalon/logger"
	"avalon/models"
	"avalon/persistence"
)

// StatsService writes finished games to the history tables and keeps
// per-player win/loss tallies. It is only wired when the configured
// store supports records; with the file backend it stays nil and game
// history is simply not kept.
type StatsService struct {
	store persistence.RecordStore
}

func NewStatsService(store persistence.RecordStore) *StatsService {
	return &StatsService{store: store}
}

// RecordGameOver persists one finished game: a record row plus a stats
// bump for every seat. Failures are logged and swallowed; history is
// best-effort and must never affect the live session.
func (s *StatsService) RecordGameOver(state *game.SessionState) {
	if s == nil || s.store == nil {
		return
	}
	if state.CurrentPhase != game.PhaseGameOver || state.Winner == "" {
		return
	}

	record := models.NewGameRecord(state)
	if err := s.store.SaveGameRecord(record); err != nil {
		logger.Log.Errorf("Failed to save game record: %v", err)
		return
	}

	for name, role := range state.AssignedRoles {
		evil := game.IsEvil(role)
		won := (state.Winner == game.WinnerEvil) == evil
		if err := s.store.UpdatePlayerStats(name, won, evil); err != nil {
			logger.Log.Errorf("Failed to update stats for %s: %v", name, err)
		}
	}
}

// GetPlayerStats returns the lifetime tally for one player name.
func (s *StatsService) GetPlayerStats(name string) (*models.PlayerStats, error) {
	if s == nil || s.store == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.store.GetPlayerStats(name)
}
