package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sennabot/models"
)

const ownerGuild = "owner-guild"

func TestOwnerGuildAlwaysEnabled(t *testing.T) {
	mockStore := new(MockGuildStore)
	perms := NewPermissionService(mockStore, ownerGuild)

	assert.True(t, perms.IsCategoryEnabled(ownerGuild, models.PermissionAdmin))
	mockStore.AssertNotCalled(t, "GuildPermissions")
}

func TestUnknownGuildDisabled(t *testing.T) {
	mockStore := new(MockGuildStore)
	mockStore.On("GuildPermissions", "stranger").Return(nil)
	perms := NewPermissionService(mockStore, ownerGuild)

	assert.False(t, perms.IsCategoryEnabled("stranger", models.PermissionEconomy))
	mockStore.AssertExpectations(t)
}

func TestSetCategoryValidatesName(t *testing.T) {
	mockStore := new(MockGuildStore)
	perms := NewPermissionService(mockStore, ownerGuild)

	err := perms.SetCategory(testGuild, "gibberish", true)
	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "SaveGuildPermissions")
}

func TestSetCategoryPersists(t *testing.T) {
	mockStore := new(MockGuildStore)
	gp := models.NewGuildPermissions("Test Server", true)
	mockStore.On("GuildPermissions", testGuild).Return(gp)
	mockStore.On("SaveGuildPermissions", testGuild, gp).Return(nil)
	perms := NewPermissionService(mockStore, ownerGuild)

	require.NoError(t, perms.SetCategory(testGuild, models.PermissionEconomy, false))
	assert.False(t, gp.Categories[models.PermissionEconomy])
	mockStore.AssertExpectations(t)
}

func TestEnsureGuildDefaults(t *testing.T) {
	mockStore := new(MockGuildStore)
	mockStore.On("GuildPermissions", testGuild).Return(nil)
	var saved *models.GuildPermissions
	mockStore.On("SaveGuildPermissions", testGuild, mock.AnythingOfType("*models.GuildPermissions")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.GuildPermissions)
		}).Return(nil)
	perms := NewPermissionService(mockStore, ownerGuild)

	require.NoError(t, perms.EnsureGuild(testGuild, "Test Server"))
	require.NotNil(t, saved)
	assert.Equal(t, "Test Server", saved.ServerName)
	assert.True(t, saved.Categories[models.PermissionGeneral])
	assert.True(t, saved.Categories[models.PermissionEconomy])
	assert.False(t, saved.Categories[models.PermissionAdmin])
}

func TestEnsureGuildOwnerKeepsAdmin(t *testing.T) {
	mockStore := new(MockGuildStore)
	mockStore.On("GuildPermissions", ownerGuild).Return(nil)
	var saved *models.GuildPermissions
	mockStore.On("SaveGuildPermissions", ownerGuild, mock.AnythingOfType("*models.GuildPermissions")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.GuildPermissions)
		}).Return(nil)
	perms := NewPermissionService(mockStore, ownerGuild)

	require.NoError(t, perms.EnsureGuild(ownerGuild, "Home"))
	require.NotNil(t, saved)
	assert.True(t, saved.Categories[models.PermissionAdmin])
}
