// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormSnapshot holds the latest session snapshot as one jsonb row.
// There is a single session per process, so a single row per key.
type GormSnapshot struct {
	gorm.Model
	Key  string `gorm:"uniqueIndex;not null"`
	Data []byte `gorm:"type:jsonb;not null"`
}

// GormGameRecord is one finished game.
type GormGameRecord struct {
	gorm.Model
	Winner       string `gorm:"not null"`
	PlayerCount  int    `gorm:"not null"`
	Assassinated string
	Data         []byte `gorm:"type:jsonb;not null"`
}

// GormPlayerStats is the lifetime tally for one player name.
type GormPlayerStats struct {
	gorm.Model
	Name       string `gorm:"uniqueIndex;not null"`
	TotalGames int    `gorm:"default:0"`
	Wins       int    `gorm:"default:0"`
	Losses     int    `gorm:"default:0"`
	EvilGames  int    `gorm:"default:0"`
}
