package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"sennabot/models"
)

func (b *Bot) handleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "view":
		b.handleSettingsView(s, i)
	case "set":
		b.handleSettingsSet(s, i, sub)
	}
}

func (b *Bot) handleSettingsView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	settings := b.store.Settings()

	desc := fmt.Sprintf(
		"**Version:** %s\n**Starting balance:** %s Medals\n**Critical success chance:** %d%%\n**Critical multiplier:** %dx - %dx",
		settings.Version,
		FormatBalance(settings.StartingBalance),
		settings.CriticalSuccessChance,
		settings.CriticalMultiplierMin,
		settings.CriticalMultiplierMax)
	b.respondEmbed(s, i, "Bot Settings", desc, colorBlue)
}

func (b *Bot) handleSettingsSet(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var key string
	var value int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "value":
			value = opt.IntValue()
		}
	}
	if value < 0 {
		b.respondWithError(s, i, "Settings values can't be negative.")
		return
	}

	settings := b.store.Settings()

	switch key {
	case "starting_balance":
		settings.StartingBalance = value
	case "critical_success_chance":
		if value > 100 {
			b.respondWithError(s, i, "A chance can't exceed 100.")
			return
		}
		settings.CriticalSuccessChance = int(value)
	case "critical_multiplier_min":
		if int(value) > settings.CriticalMultiplierMax {
			b.respondWithError(s, i, "The minimum multiplier can't exceed the maximum.")
			return
		}
		settings.CriticalMultiplierMin = int(value)
	case "critical_multiplier_max":
		if int(value) < settings.CriticalMultiplierMin {
			b.respondWithError(s, i, "The maximum multiplier can't go below the minimum.")
			return
		}
		settings.CriticalMultiplierMax = int(value)
	default:
		b.respondWithError(s, i, "Unknown setting.")
		return
	}

	if err := b.store.SaveSettings(settings); err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	log.WithFields(log.Fields{
		"guildID": i.GuildID,
		"userID":  i.Member.User.ID,
		"key":     key,
		"value":   value,
	}).Info("Bot setting changed")
	b.respondEmbed(s, i, "Settings", fmt.Sprintf("**%s** is now **%d**.", key, value), colorGreen)
}

func (b *Bot) handlePermissionsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "view":
		b.handlePermissionsView(s, i)
	case "set":
		b.handlePermissionsSet(s, i, sub)
	}
}

func (b *Bot) handlePermissionsView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	gp := b.permissions.GuildPermissions(i.GuildID)
	if gp == nil {
		b.respondWithError(s, i, "No permission record for this server yet.")
		return
	}

	var sb strings.Builder
	for _, category := range models.PermissionCategories {
		state := "disabled"
		if gp.Categories[category] {
			state = "enabled"
		}
		fmt.Fprintf(&sb, "**%s:** %s\n", category, state)
	}
	b.respondEmbed(s, i, fmt.Sprintf("Permissions for %s", gp.ServerName), sb.String(), colorBlue)
}

func (b *Bot) handlePermissionsSet(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var category string
	var enabled bool
	for _, opt := range sub.Options {
		switch opt.Name {
		case "category":
			category = opt.StringValue()
		case "enabled":
			enabled = opt.BoolValue()
		}
	}

	if err := b.permissions.SetCategory(i.GuildID, category, enabled); err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	log.WithFields(log.Fields{
		"guildID":  i.GuildID,
		"userID":   i.Member.User.ID,
		"category": category,
		"enabled":  enabled,
	}).Info("Permission category changed")
	b.respondEmbed(s, i, "Permissions", fmt.Sprintf("Category **%s** is now **%s**.", category, state), colorGreen)
}
