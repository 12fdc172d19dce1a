package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your pockets and savings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "deposit",
			Description: "Move Medals from your pockets into savings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to deposit, or 'all'",
					Required:    true,
				},
			},
		},
		{
			Name:        "withdraw",
			Description: "Move Medals from your savings into pockets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to withdraw, or 'all'",
					Required:    true,
				},
			},
		},
		{
			Name:        "donate",
			Description: "Give Medals to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to donate to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to donate",
					Required:    true,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest members of this server",
		},
		{
			Name:        "work",
			Description: "Work an honest shift for Medals",
		},
		{
			Name:        "crime",
			Description: "Commit a crime for Medals, at your own risk",
		},
		{
			Name:        "rob",
			Description: "Attempt to rob another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "target",
					Description: "The player you want to rob",
					Required:    true,
				},
			},
		},
		{
			Name:        "roulette",
			Description: "Bet on the wheel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "color",
					Description: "Color to bet on",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Purple (2x)", Value: "purple"},
						{Name: "Yellow (2x)", Value: "yellow"},
						{Name: "Green (14x)", Value: "green"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Amount to bet",
					Required:    true,
				},
			},
		},
		{
			Name:        "status",
			Description: "Check your injury status and other conditions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "see_mortician",
			Description: "Pay the mortician to heal your injuries",
		},
		{
			Name:        "blackjack",
			Description: "Challenge another member to blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "opponent",
					Description: "Who to challenge",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Bet per player",
					Required:    true,
				},
			},
		},
		{
			Name:        "escape",
			Description: "Attempt to escape from prison",
		},
		{
			Name:        "breakout",
			Description: "Attempt to break another member out of prison",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "target",
					Description: "The imprisoned member to free",
					Required:    true,
				},
			},
		},
		{
			Name:        "settings",
			Description: "View or change bot settings (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change a numeric setting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Setting to change",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "starting_balance", Value: "starting_balance"},
								{Name: "critical_success_chance", Value: "critical_success_chance"},
								{Name: "critical_multiplier_min", Value: "critical_multiplier_min"},
								{Name: "critical_multiplier_max", Value: "critical_multiplier_max"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "value",
							Description: "New value",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "permissions",
			Description: "View or toggle command categories for a server (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show category permissions for this server",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Enable or disable a category",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Category to toggle",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "general", Value: "general"},
								{Name: "economy", Value: "economy"},
								{Name: "admin", Value: "admin"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether the category is enabled",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
