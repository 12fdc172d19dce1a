package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"sennabot/models"
)

const permissionsFile = "guild_permissions.json"

func (s *Store) permissionsPath() string {
	return filepath.Join(configDir(s.dataDir), permissionsFile)
}

// Permissions returns a deep copy of every guild's permission record.
func (s *Store) Permissions() map[string]*models.GuildPermissions {
	s.permsMu.Lock()
	defer s.permsMu.Unlock()

	s.loadPermissionsLocked()

	out := make(map[string]*models.GuildPermissions, len(s.perms))
	for id, gp := range s.perms {
		out[id] = gp.Clone()
	}
	return out
}

// GuildPermissions returns the record for one guild, or nil if none exists.
func (s *Store) GuildPermissions(guildID string) *models.GuildPermissions {
	s.permsMu.Lock()
	defer s.permsMu.Unlock()

	s.loadPermissionsLocked()
	return s.perms[guildID].Clone()
}

// SaveGuildPermissions persists the record for one guild atomically.
func (s *Store) SaveGuildPermissions(guildID string, gp *models.GuildPermissions) error {
	s.permsMu.Lock()
	defer s.permsMu.Unlock()

	s.loadPermissionsLocked()
	s.perms[guildID] = gp.Clone()

	data, err := json.MarshalIndent(s.perms, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guild permissions: %w", err)
	}
	return writeAtomic(s.permissionsPath(), data)
}

func (s *Store) loadPermissionsLocked() {
	if s.perms != nil {
		return
	}

	s.perms = make(map[string]*models.GuildPermissions)
	data, err := os.ReadFile(s.permissionsPath())
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.WithField("error", err).Warn("Failed to read guild permissions")
		return
	}
	if err := json.Unmarshal(data, &s.perms); err != nil {
		log.WithField("error", err).Warn("Failed to decode guild permissions")
		s.perms = make(map[string]*models.GuildPermissions)
	}
}
