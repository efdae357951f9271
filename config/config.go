package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// PersistenceConfig selects the snapshot backend. "file" writes a JSON
// file; "postgres" uses database/sql with lib/pq; "gorm" uses GORM.
type PersistenceConfig struct {
	Backend             string         `mapstructure:"backend"`
	FilePath            string         `mapstructure:"file_path"`
	SaveIntervalSeconds int            `mapstructure:"save_interval_seconds"`
	Postgres            PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":3000")
	viper.SetDefault("server.rpc_address", ":3001")
	viper.SetDefault("server.metrics_address", ":9091")
	viper.SetDefault("persistence.backend", "file")
	viper.SetDefault("persistence.file_path", "game_state.json")
	viper.SetDefault("persistence.save_interval_seconds", 30)
	viper.SetDefault("persistence.postgres.host", "localhost")
	viper.SetDefault("persistence.postgres.port", 5432)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file is fine; defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
