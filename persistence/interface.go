// persistence/interface.go
package persistence

import (
	"fmt"

	"avalon/game"
	"avalon/models"
)

// Store durably saves and restores the full session snapshot,
// including the hidden role assignment. The snapshot must never reach
// a client verbatim; only the view projector reads it on the way out.
//
// LoadSnapshot returns (nil, nil) when nothing has been saved yet.
type Store interface {
	SaveSnapshot(state *game.SessionState) error
	LoadSnapshot() (*game.SessionState, error)
	Close() error
}

// RecordStore is implemented by the database-backed stores. It keeps
// finished-game records and per-player win/loss tallies; the plain
// file backend does not support it.
type RecordStore interface {
	SaveGameRecord(record *models.GameRecord) error
	UpdatePlayerStats(name string, won bool, evil bool) error
	GetPlayerStats(name string) (*models.PlayerStats, error)
}

// ErrRecordNotFound is returned when a stats lookup misses.
var ErrRecordNotFound = fmt.Errorf("record not found")
