package service

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"sennabot/models"
)

// MockGuildStore is a mock implementation of GuildStore
type MockGuildStore struct {
	mock.Mock
}

func (m *MockGuildStore) Lock(guildID string) *sync.Mutex {
	args := m.Called(guildID)
	return args.Get(0).(*sync.Mutex)
}

func (m *MockGuildStore) Guild(guildID string) *models.GuildDocument {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.GuildDocument)
}

func (m *MockGuildStore) SaveGuild(guildID string, doc *models.GuildDocument) error {
	args := m.Called(guildID, doc)
	return args.Error(0)
}

func (m *MockGuildStore) GuildIDs() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockGuildStore) Settings() *models.BotSettings {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.BotSettings)
}

func (m *MockGuildStore) SaveSettings(settings *models.BotSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockGuildStore) GuildPermissions(guildID string) *models.GuildPermissions {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.GuildPermissions)
}

func (m *MockGuildStore) SaveGuildPermissions(guildID string, gp *models.GuildPermissions) error {
	args := m.Called(guildID, gp)
	return args.Error(0)
}

func (m *MockGuildStore) Permissions() map[string]*models.GuildPermissions {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]*models.GuildPermissions)
}
