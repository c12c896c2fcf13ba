// Package config loads the server's YAML configuration file: database
// connection settings, the chain RPC endpoint, and the listen address.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PostgresConfig holds connection settings for the trades store.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DSN returns a lib/pq connection string for this configuration.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// Config holds all configuration for the trade-with-me server.
type Config struct {
	// Postgres holds the trades-table connection settings.
	Postgres PostgresConfig `yaml:"postgres"`

	// RPCURL is the Solana JSON-RPC endpoint used for blockhash lookups
	// and wallet-balance discovery.
	RPCURL string `yaml:"rpc_url"`

	// SQLitePath is the path to the metadata store's database file. Not
	// part of the original environment table (§6) but required to place
	// the metadata SQLite file somewhere concrete; defaults below.
	SQLitePath string `yaml:"sqlite_path"`

	// ListenAddr is the HTTP/push-channel listen address.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "trade_with_me",
		},
		RPCURL:     "https://api.mainnet-beta.solana.com",
		SQLitePath: "metadata.sqlite3",
		ListenAddr: "0.0.0.0:3000",
		LogLevel:   "info",
	}
}

// Load reads a YAML config file from path, overlaying it on DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
