package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"sennabot/models"
)

const settingsFile = "bot_settings.json"

func (s *Store) settingsPath() string {
	return filepath.Join(configDir(s.dataDir), settingsFile)
}

// Settings returns the bot settings, loading them from disk on first use.
// A missing or corrupt file yields the defaults.
func (s *Store) Settings() *models.BotSettings {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if s.settings != nil {
		return s.settings.Clone()
	}

	settings := models.DefaultBotSettings()
	data, err := os.ReadFile(s.settingsPath())
	switch {
	case os.IsNotExist(err):
		// first run, persist the defaults
		if saveErr := s.saveSettingsLocked(settings); saveErr != nil {
			log.WithField("error", saveErr).Warn("Failed to write default bot settings")
		}
	case err != nil:
		log.WithField("error", err).Warn("Failed to read bot settings, using defaults")
	default:
		if err := json.Unmarshal(data, settings); err != nil {
			log.WithField("error", err).Warn("Failed to decode bot settings, using defaults")
			settings = models.DefaultBotSettings()
		}
	}

	s.settings = settings
	return settings.Clone()
}

// SaveSettings persists the settings atomically and refreshes the cache.
func (s *Store) SaveSettings(settings *models.BotSettings) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := s.saveSettingsLocked(settings); err != nil {
		return err
	}
	s.settings = settings.Clone()
	return nil
}

func (s *Store) saveSettingsLocked(settings *models.BotSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bot settings: %w", err)
	}
	return writeAtomic(s.settingsPath(), data)
}
