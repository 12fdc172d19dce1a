package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"sennabot/games"
)

func formatHand(hand []games.Card) string {
	if len(hand) == 0 {
		return "—"
	}
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " "), games.HandValue(hand))
}

func blackjackTable(m *games.BlackjackMatch) string {
	return fmt.Sprintf("**%s:** %s\n**%s:** %s\n\nBet: **%s Medals** each",
		m.Challenger.Name, formatHand(m.Challenger.Hand),
		m.Opponent.Name, formatHand(m.Opponent.Hand),
		FormatBalance(m.Bet))
}

func blackjackInviteComponents(matchID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: "bj_accept_" + matchID},
			discordgo.Button{Label: "Decline", Style: discordgo.DangerButton, CustomID: "bj_decline_" + matchID},
		}},
	}
}

func blackjackTurnComponents(matchID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: "bj_hit_" + matchID},
			discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: "bj_stand_" + matchID},
		}},
	}
}

func (b *Bot) handleBlackjackCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	opts := optionMap(i)
	opponent := opts["opponent"].UserValue(s)
	bet := opts["bet"].IntValue()
	challenger := i.Member.User

	if opponent == nil || opponent.Bot {
		b.respondWithError(s, i, "Pick a real opponent.")
		return
	}

	if inPrison, _, err := b.ledger.IsInPrison(i.GuildID, opponent.ID); err == nil && inPrison {
		b.respondWithError(s, i, "Your opponent is in prison. No cards behind bars.")
		return
	}

	m, err := b.blackjack.Invite(i.GuildID, challenger.ID, challenger.Username, opponent.ID, opponent.Username, bet)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	desc := fmt.Sprintf("%s challenges %s to blackjack for **%s Medals**!\n\n%s, you have %s to accept.",
		challenger.Mention(), opponent.Mention(), FormatBalance(bet),
		opponent.Mention(), FormatDuration(games.BlackjackInviteTimeout))

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Title: "Blackjack Challenge", Description: desc, Color: colorBlue}},
			Components: blackjackInviteComponents(m.ID),
		},
	})
	if err != nil {
		b.blackjack.Cancel(m.ID)
		return
	}

	matchID := m.ID
	b.scheduleTimeout(matchID, games.BlackjackInviteTimeout, func() {
		b.blackjack.ExpireInvite(matchID)
		b.editInteraction(s, i, "Blackjack Challenge",
			"The challenge expired without an answer.", colorOrange, nil)
	})
}

func (b *Bot) handleBlackjackInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	var action, matchID string
	for _, prefix := range []string{"bj_accept_", "bj_decline_", "bj_hit_", "bj_stand_"} {
		if strings.HasPrefix(customID, prefix) {
			action = strings.TrimSuffix(strings.TrimPrefix(prefix, "bj_"), "_")
			matchID = strings.TrimPrefix(customID, prefix)
		}
	}

	m, ok := b.blackjack.Match(matchID)
	if !ok {
		b.respondWithError(s, i, "That match is already over.")
		return
	}

	presser := i.Member.User.ID

	switch action {
	case "accept", "decline":
		if presser != m.Opponent.ID {
			b.respondWithError(s, i, "Only the challenged player can answer.")
			return
		}
	case "hit", "stand":
		if presser != m.Turn {
			b.respondWithError(s, i, "It's not your turn.")
			return
		}
	}

	switch action {
	case "decline":
		b.clearTimeout(matchID)
		b.blackjack.Decline(matchID)
		b.updateEmbed(s, i, "Blackjack Challenge",
			fmt.Sprintf("%s declined the challenge.", i.Member.User.Mention()), colorOrange, nil)

	case "accept":
		b.clearTimeout(matchID)
		m, result, err := b.blackjack.Accept(matchID)
		if err != nil {
			b.updateEmbed(s, i, "Blackjack Challenge", describeError(err), colorRed, nil)
			return
		}
		if result != nil {
			b.finishBlackjack(s, i, m, result)
			return
		}
		b.showBlackjackTurn(s, i, m)

	case "hit":
		m, result, err := b.blackjack.Hit(matchID, presser)
		if err != nil {
			b.respondWithError(s, i, describeError(err))
			return
		}
		if result != nil {
			b.finishBlackjack(s, i, m, result)
			return
		}
		b.showBlackjackTurn(s, i, m)

	case "stand":
		m, result, err := b.blackjack.Stand(matchID, presser)
		if err != nil {
			b.respondWithError(s, i, describeError(err))
			return
		}
		if result != nil {
			b.finishBlackjack(s, i, m, result)
			return
		}
		b.showBlackjackTurn(s, i, m)
	}
}

func (b *Bot) showBlackjackTurn(s *discordgo.Session, i *discordgo.InteractionCreate, m *games.BlackjackMatch) {
	turnSeat := m.Seat(m.Turn)
	desc := fmt.Sprintf("%s\n\nIt's **%s**'s turn.", blackjackTable(m), turnSeat.Name)
	b.updateEmbed(s, i, "Blackjack", desc, colorBlue, blackjackTurnComponents(m.ID))
	b.armBlackjackTurnTimer(s, i, m.ID, m.Turn)
}

// armBlackjackTurnTimer stands for a player who sits on their turn past the
// window and renders whatever follows.
func (b *Bot) armBlackjackTurnTimer(s *discordgo.Session, i *discordgo.InteractionCreate, matchID, turn string) {
	b.scheduleTimeout(matchID, games.BlackjackTurnTimeout, func() {
		m, result, err := b.blackjack.AutoStand(matchID, turn)
		if err != nil || m == nil {
			return
		}
		stood := m.Seat(turn)
		if result != nil {
			title, desc, color := blackjackOutcome(m, result)
			b.editInteraction(s, i, title,
				fmt.Sprintf("**%s** ran out of time and stands.\n\n%s", stood.Name, desc), color, nil)
			return
		}
		next := m.Seat(m.Turn)
		b.editInteraction(s, i, "Blackjack",
			fmt.Sprintf("**%s** ran out of time and stands.\n\n%s\n\nIt's **%s**'s turn.",
				stood.Name, blackjackTable(m), next.Name),
			colorBlue, blackjackTurnComponents(m.ID))
		b.armBlackjackTurnTimer(s, i, matchID, m.Turn)
	})
}

// blackjackOutcome builds the settlement embed pieces.
func blackjackOutcome(m *games.BlackjackMatch, result *games.BlackjackResult) (string, string, int) {
	table := blackjackTable(m)
	switch {
	case result.Push:
		return "Blackjack - Push", table + "\n\nIt's a tie. Both bets are returned.", colorOrange
	case result.Natural:
		return "Blackjack - Natural 21!",
			fmt.Sprintf("%s\n\n<@%s> hits a natural and takes **%s Medals**!",
				table, result.WinnerID, FormatBalance(result.Payout)), colorGold
	default:
		return "Blackjack",
			fmt.Sprintf("%s\n\n<@%s> wins the pot of **%s Medals**!",
				table, result.WinnerID, FormatBalance(result.Payout)), colorGreen
	}
}

func (b *Bot) finishBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate, m *games.BlackjackMatch, result *games.BlackjackResult) {
	b.clearTimeout(m.ID)
	title, desc, color := blackjackOutcome(m, result)
	b.updateEmbed(s, i, title, desc, color, nil)
}

// editInteraction rewrites the original command response from outside an
// interaction callback, used by timeout timers.
func (b *Bot) editInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string, color int, components []discordgo.MessageComponent) {
	embeds := []*discordgo.MessageEmbed{{Title: title, Description: description, Color: color}}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return
	}
}
