package service

import (
	"fmt"

	"sennabot/models"
)

// permissionService implements the PermissionService interface.
type permissionService struct {
	store        GuildStore
	ownerGuildID string
}

// NewPermissionService creates a new permission service. ownerGuildID names
// the home guild, which is never gated.
func NewPermissionService(store GuildStore, ownerGuildID string) PermissionService {
	return &permissionService{
		store:        store,
		ownerGuildID: ownerGuildID,
	}
}

func (s *permissionService) IsCategoryEnabled(guildID, category string) bool {
	if guildID == s.ownerGuildID {
		return true
	}
	gp := s.store.GuildPermissions(guildID)
	if gp == nil {
		return false
	}
	return gp.Categories[category]
}

func (s *permissionService) SetCategory(guildID, category string, enabled bool) error {
	valid := false
	for _, c := range models.PermissionCategories {
		if c == category {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown permission category %q", category)
	}

	gp := s.store.GuildPermissions(guildID)
	if gp == nil {
		gp = models.NewGuildPermissions("", false)
	}
	gp.Categories[category] = enabled
	return s.store.SaveGuildPermissions(guildID, gp)
}

func (s *permissionService) EnsureGuild(guildID, serverName string) error {
	gp := s.store.GuildPermissions(guildID)
	if gp != nil {
		if serverName != "" && gp.ServerName != serverName {
			gp.ServerName = serverName
			return s.store.SaveGuildPermissions(guildID, gp)
		}
		return nil
	}
	// new guilds start fully enabled except admin tools
	gp = models.NewGuildPermissions(serverName, true)
	gp.Categories[models.PermissionAdmin] = false
	if guildID == s.ownerGuildID {
		gp.Categories[models.PermissionAdmin] = true
	}
	return s.store.SaveGuildPermissions(guildID, gp)
}

func (s *permissionService) GuildPermissions(guildID string) *models.GuildPermissions {
	return s.store.GuildPermissions(guildID)
}

func (s *permissionService) All() map[string]*models.GuildPermissions {
	return s.store.Permissions()
}
