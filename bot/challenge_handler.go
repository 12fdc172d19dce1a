package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"sennabot/games"
)

func challengeComponents(sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: "bc_hit_" + sessionID},
			discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: "bc_stand_" + sessionID},
		}},
	}
}

func challengeTable(cs *games.ChallengeSession) string {
	return fmt.Sprintf("**Your hand:** %s\n**House hand:** %s %s\n\nScore: you **%d** — house **%d** (first to %d)",
		formatHand(cs.PlayerHand),
		cs.HouseHand[0].String(), "🂠",
		cs.PlayerWins, cs.HouseWins, games.ChallengeTargetWins)
}

// maybeTriggerChallenge summons the house when a member's wealth crosses the
// line. Invoked off the event bus after every balance change.
func (b *Bot) maybeTriggerChallenge(guildID, userID string) {
	if !b.challenge.ShouldTrigger(guildID, userID) {
		return
	}

	b.channelsMu.Lock()
	channelID := b.lastChannels[guildID]
	b.channelsMu.Unlock()
	if channelID == "" {
		return
	}

	acct, err := b.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return
	}

	cs, err := b.challenge.Start(guildID, userID, acct.Username)
	if err != nil {
		return
	}

	desc := fmt.Sprintf("<@%s>, your **%s Medals** have drawn the house's attention.\n\n"+
		"Beat the dealer **%d times** and keep your fortune, plus **%s Medals** on top. "+
		"Lose, and the whole server pays.\n\n%s",
		userID, FormatBalance(acct.Total()), games.ChallengeTargetWins,
		FormatBalance(games.ChallengeBet), challengeTable(cs))

	msg, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{{Title: "The House Calls", Description: desc, Color: colorDark}},
		Components: challengeComponents(cs.ID),
	})
	if err != nil {
		log.WithField("error", err).Error("Failed to post balance challenge")
		return
	}

	b.challengeMsgsMu.Lock()
	b.challengeMsgs[cs.ID] = messageRef{ChannelID: channelID, MessageID: msg.ID}
	b.challengeMsgsMu.Unlock()

	b.armChallengeTimeout(cs.ID)
}

func (b *Bot) armChallengeTimeout(sessionID string) {
	b.scheduleTimeout(sessionID, games.ChallengeTimeout, func() {
		cs, result, err := b.challenge.RoundTimeout(sessionID)
		if err != nil || result == nil {
			return
		}
		b.renderChallengeRoundByMessage(sessionID, cs, result,
			"You kept the house waiting. The round goes to the dealer.")
	})
}

func (b *Bot) handleChallengeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	var action, sessionID string
	switch {
	case strings.HasPrefix(customID, "bc_hit_"):
		action, sessionID = "hit", strings.TrimPrefix(customID, "bc_hit_")
	case strings.HasPrefix(customID, "bc_stand_"):
		action, sessionID = "stand", strings.TrimPrefix(customID, "bc_stand_")
	default:
		return
	}

	cs, ok := b.challenge.Session(sessionID)
	if !ok {
		b.respondWithError(s, i, "That challenge is already over.")
		return
	}
	if i.Member.User.ID != cs.UserID {
		b.respondWithError(s, i, "This is not your fight. Stay out of it.")
		return
	}

	var result *games.ChallengeRoundResult
	var err error
	if action == "hit" {
		cs, result, err = b.challenge.Hit(sessionID)
	} else {
		cs, result, err = b.challenge.Stand(sessionID)
	}
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if result == nil {
		// player hit and lives, same round continues
		b.updateEmbed(s, i, "The House Calls", challengeTable(cs), colorDark, challengeComponents(sessionID))
		b.armChallengeTimeout(sessionID)
		return
	}

	title, desc, color, components := b.describeChallengeRound(sessionID, cs, result, "")
	b.updateEmbed(s, i, title, desc, color, components)
	if !result.Done {
		b.armChallengeTimeout(sessionID)
	} else {
		b.clearTimeout(sessionID)
		b.dropChallengeMessage(sessionID)
	}
}

// describeChallengeRound builds the embed for a finished round or a finished
// gauntlet.
func (b *Bot) describeChallengeRound(sessionID string, cs *games.ChallengeSession, result *games.ChallengeRoundResult, note string) (string, string, int, []discordgo.MessageComponent) {
	switch {
	case result.Done && result.FinalWin:
		return "The House Folds",
			fmt.Sprintf("You beat the dealer **%d** times. The house pays **%s Medals** into your savings and will not call again.",
				games.ChallengeTargetWins, FormatBalance(games.ChallengeBet)),
			colorGold, nil
	case result.Done:
		return "The House Wins",
			fmt.Sprintf("The dealer took **%d** rounds. **%s Medals** leave your savings, you march to the **%s**, "+
				"and everyone who watched joins the **Rook Division** for six hours.",
				games.ChallengeTargetWins, FormatBalance(games.ChallengeBet), "Jaeger Camp"),
			colorDark, nil
	case result.Tie:
		return "The House Calls",
			fmt.Sprintf("A tie. The dealer shuffles and deals again.\n\n%s", challengeTable(cs)),
			colorDark, challengeComponents(sessionID)
	case result.PlayerWon:
		return "The House Calls",
			fmt.Sprintf("%sYou take the round.\n\n%s", prefixNote(note), challengeTable(cs)),
			colorDark, challengeComponents(sessionID)
	default:
		return "The House Calls",
			fmt.Sprintf("%sThe dealer takes the round.\n\n%s", prefixNote(note), challengeTable(cs)),
			colorDark, challengeComponents(sessionID)
	}
}

func prefixNote(note string) string {
	if note == "" {
		return ""
	}
	return note + "\n"
}

// renderChallengeRoundByMessage edits the challenge message directly, used
// when a timer rather than a button press finished the round.
func (b *Bot) renderChallengeRoundByMessage(sessionID string, cs *games.ChallengeSession, result *games.ChallengeRoundResult, note string) {
	b.challengeMsgsMu.Lock()
	ref, ok := b.challengeMsgs[sessionID]
	b.challengeMsgsMu.Unlock()
	if !ok {
		return
	}

	title, desc, color, components := b.describeChallengeRound(sessionID, cs, result, note)
	embeds := []*discordgo.MessageEmbed{{Title: title, Description: desc, Color: color}}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		log.WithField("error", err).Error("Failed to edit challenge message")
	}

	if result.Done {
		b.dropChallengeMessage(sessionID)
	} else {
		b.armChallengeTimeout(sessionID)
	}
}

func (b *Bot) dropChallengeMessage(sessionID string) {
	b.challengeMsgsMu.Lock()
	delete(b.challengeMsgs, sessionID)
	b.challengeMsgsMu.Unlock()
}
