// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"avalon/game"
	"avalon/models"
)

// snapshotKey identifies the single live session row.
const snapshotKey = "session"

// GormPostgreSQL is the GORM-backed store: snapshot, game records and
// player stats in PostgreSQL.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.GormSnapshot{},
		&models.GormGameRecord{},
		&models.GormPlayerStats{},
	); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveSnapshot upserts the single session row.
func (p *GormPostgreSQL) SaveSnapshot(state *game.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	var row models.GormSnapshot
	result := p.db.Where("key = ?", snapshotKey).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.GormSnapshot{Key: snapshotKey, Data: data}
		return p.db.Create(&row).Error
	}
	if result.Error != nil {
		return result.Error
	}

	row.Data = data
	return p.db.Save(&row).Error
}

// LoadSnapshot returns the saved session, or (nil, nil) when the table
// is empty.
func (p *GormPostgreSQL) LoadSnapshot() (*game.SessionState, error) {
	var row models.GormSnapshot
	if err := p.db.Where("key = ?", snapshotKey).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	state := game.NewSessionState()
	if err := json.Unmarshal(row.Data, state); err != nil {
		return nil, fmt.Errorf("corrupt snapshot row: %w", err)
	}
	state.Normalize()
	return state, nil
}

// SaveGameRecord appends a finished game to the history table.
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return p.db.Create(&models.GormGameRecord{
		Winner:       string(record.Winner),
		PlayerCount:  record.PlayerCount,
		Assassinated: record.Assassinated,
		Data:         data,
	}).Error
}

// UpdatePlayerStats bumps one player's lifetime tally inside a
// transaction, creating the row on first sight.
func (p *GormPostgreSQL) UpdatePlayerStats(name string, won bool, evil bool) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var stats models.GormPlayerStats
		err := tx.Where("name = ?", name).First(&stats).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stats = models.GormPlayerStats{Name: name}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"total_games": gorm.Expr("total_games + 1"),
		}
		if won {
			updates["wins"] = gorm.Expr("wins + 1")
		} else {
			updates["losses"] = gorm.Expr("losses + 1")
		}
		if evil {
			updates["evil_games"] = gorm.Expr("evil_games + 1")
		}
		return tx.Model(&stats).Updates(updates).Error
	})
}

// GetPlayerStats returns the lifetime tally for a player name.
func (p *GormPostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	var row models.GormPlayerStats
	if err := p.db.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.PlayerStats{
		Name:       row.Name,
		TotalGames: row.TotalGames,
		Wins:       row.Wins,
		Losses:     row.Losses,
		EvilGames:  row.EvilGames,
	}, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
