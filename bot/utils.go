package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

// FormatBalance formats a Medal amount with thousand separators
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)

	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n > 3 {
		var result strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				result.WriteRune(',')
			}
			result.WriteRune(digit)
		}
		str = result.String()
	}

	if negative {
		return "-" + str
	}
	return str
}

// FormatDuration renders a wait as "3m 20s" or "45s"
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	minutes, seconds := secs/60, secs%60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// GetDisplayName returns the member's nickname, falling back to username
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member.Nick != "" {
		return member.Nick
	}
	if err == nil && member.User != nil {
		return member.User.Username
	}
	user, err := s.User(userID)
	if err != nil {
		return userID
	}
	return user.Username
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}

// respondEmbed sends a titled embed as the interaction response.
func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string, color int) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Title: title, Description: description, Color: color},
			},
		},
	})
	if err != nil {
		log.Printf("Error responding with embed %q: %v", title, err)
	}
}

// updateEmbed edits the original component message in place.
func (b *Bot) updateEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string, color int, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Title: title, Description: description, Color: color},
			},
			Components: components,
		},
	})
	if err != nil {
		log.Printf("Error updating component message: %v", err)
	}
}

// Embed colors matching the usual traffic-light scheme.
const (
	colorGreen  = 0x57F287
	colorRed    = 0xED4245
	colorOrange = 0xE67E22
	colorBlue   = 0x3498DB
	colorGold   = 0xF1C40F
	colorDark   = 0x992D22
)

// describeError maps domain errors to user-facing text. Unknown errors get
// a generic line and a log entry.
func describeError(err error) string {
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return fmt.Sprintf("You need to rest for **%s** before doing that again.", FormatDuration(cooldown.Remaining))
	}
	var protection *service.ProtectionError
	if errors.As(err, &protection) {
		return fmt.Sprintf("That member was robbed too recently. Give them **%s** to recover.", FormatDuration(protection.Remaining))
	}

	switch {
	case errors.Is(err, service.ErrInPrison):
		return "You can't do that from inside a prison cell."
	case errors.Is(err, service.ErrNotInPrison):
		return "Escape? From WHAT??? You're not in prison!"
	case errors.Is(err, service.ErrInsufficientFunds):
		return "You don't have enough Medals for that."
	case errors.Is(err, service.ErrNegativeBalance):
		return "You're in debt. Pay that off first."
	case errors.Is(err, service.ErrTargetProtected):
		return "That member was robbed too recently. Leave them alone."
	case errors.Is(err, service.ErrSelfTarget):
		return "You can't target yourself."
	case errors.Is(err, service.ErrInvalidAmount):
		return "That amount doesn't make sense."
	case errors.Is(err, service.ErrSessionActive):
		return "Finish your current game first."
	case errors.Is(err, service.ErrInChallenge):
		return "The house is waiting. Finish your challenge."
	case errors.Is(err, service.ErrNotInjured):
		return "You're perfectly healthy. Stop wasting the mortician's time."
	case errors.Is(err, service.ErrHealingRefused):
		return "The morts would rather see you in pain."
	default:
		log.WithField("error", err).Error("Unhandled command error")
		return "Something went wrong. Please try again."
	}
}
