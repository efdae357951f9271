package main

import (
	"time"

	"avalon/config"
	"avalon/logger"
	"avalon/persistence"
	"avalon/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize snapshot store
	store, err := newStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer store.Close()
	logger.Log.Infof("Persistence backend: %s", cfg.Persistence.Backend)

	// Initialize game server
	saveInterval := time.Duration(cfg.Persistence.SaveIntervalSeconds) * time.Second
	gameServer := server.NewGameServer(
		cfg.Server.HTTPAddress,
		cfg.Server.RPCAddress,
		cfg.Server.MetricsAddress,
		store,
		saveInterval,
	)

	// Start server
	logger.Log.Infof("Starting avalon server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func newStore(cfg *config.Config) (persistence.Store, error) {
	pg := cfg.Persistence.Postgres
	switch cfg.Persistence.Backend {
	case "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewFileStore(cfg.Persistence.FilePath), nil
	}
}
