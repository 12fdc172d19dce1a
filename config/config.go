package config

import (
	"fmt"
	"os"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Guild that owns the bot; its commands are never permission-gated
	OwnerGuildID string

	// Ledger account that collects lost balance challenge bets
	HouseUserID string

	// Root directory for guild documents and config files
	DataDir string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		OwnerGuildID: os.Getenv("OWNER_GUILD_ID"),
		HouseUserID:  os.Getenv("HOUSE_USER_ID"),
		DataDir:      os.Getenv("DATA_DIR"),
		Environment:  os.Getenv("ENVIRONMENT"),
	}

	if config.DataDir == "" {
		config.DataDir = "data"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
	}

	return config, nil
}
