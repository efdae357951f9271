// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"avalon/game"
	"avalon/models"
)

// PostgreSQL is the plain database/sql store, for deployments that
// prefer raw SQL over GORM. Same schema intent as the GORM backend,
// separate tables.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}
	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS session_snapshots (
            id SERIAL PRIMARY KEY,
            key VARCHAR(64) UNIQUE NOT NULL,
            data JSONB NOT NULL,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            winner VARCHAR(16) NOT NULL,
            player_count INT NOT NULL,
            assassinated VARCHAR(255),
            data JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_stats (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) UNIQUE NOT NULL,
            total_games INT NOT NULL DEFAULT 0,
            wins INT NOT NULL DEFAULT 0,
            losses INT NOT NULL DEFAULT 0,
            evil_games INT NOT NULL DEFAULT 0
        )
    `)
	return err
}

func (p *PostgreSQL) SaveSnapshot(state *game.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.db.ExecContext(ctx, `
        INSERT INTO session_snapshots (key, data)
        VALUES ($1, $2)
        ON CONFLICT (key)
        DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP
    `, snapshotKey, data)
	return err
}

func (p *PostgreSQL) LoadSnapshot() (*game.SessionState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM session_snapshots WHERE key = $1`, snapshotKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := game.NewSessionState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("corrupt snapshot row: %w", err)
	}
	state.Normalize()
	return state, nil
}

func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.db.ExecContext(ctx, `
        INSERT INTO game_records (winner, player_count, assassinated, data)
        VALUES ($1, $2, $3, $4)
    `, string(record.Winner), record.PlayerCount, record.Assassinated, data)
	return err
}

func (p *PostgreSQL) UpdatePlayerStats(name string, won bool, evil bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	winInc, lossInc, evilInc := 0, 1, 0
	if won {
		winInc, lossInc = 1, 0
	}
	if evil {
		evilInc = 1
	}

	_, err := p.db.ExecContext(ctx, `
        INSERT INTO player_stats (name, total_games, wins, losses, evil_games)
        VALUES ($1, 1, $2, $3, $4)
        ON CONFLICT (name)
        DO UPDATE SET
            total_games = player_stats.total_games + 1,
            wins = player_stats.wins + $2,
            losses = player_stats.losses + $3,
            evil_games = player_stats.evil_games + $4
    `, name, winInc, lossInc, evilInc)
	return err
}

func (p *PostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := &models.PlayerStats{Name: name}
	err := p.db.QueryRowContext(ctx, `
        SELECT total_games, wins, losses, evil_games
        FROM player_stats WHERE name = $1
    `, name).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.EvilGames)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
