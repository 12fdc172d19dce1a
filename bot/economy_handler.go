package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

// parseAmount accepts a positive integer or "all".
func parseAmount(raw string) (int64, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		return service.AmountAll, nil
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || amount <= 0 {
		return 0, service.ErrInvalidAmount
	}
	return amount, nil
}

// gateInteractive blocks members who are imprisoned or locked in a balance
// challenge from using economy commands.
func (b *Bot) gateInteractive(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	userID := i.Member.User.ID

	if b.registry.InChallenge(i.GuildID, userID) {
		b.respondWithError(s, i, describeError(service.ErrInChallenge))
		return false
	}

	inPrison, prison, err := b.ledger.IsInPrison(i.GuildID, userID)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return false
	}
	if inPrison {
		release := time.Unix(prison.ReleaseTime, 0)
		b.respondWithError(s, i, fmt.Sprintf(
			"You're imprisoned with the ***%s*** until %s.",
			prison.Tier, FormatDiscordTimestamp(release, "f")))
		return false
	}
	return true
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := i.Member.User
	if opt, ok := optionMap(i)["user"]; ok {
		target = opt.UserValue(s)
	}

	acct, err := b.ledger.GetAccount(i.GuildID, target.ID, target.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	desc := fmt.Sprintf("**Pockets:** %s Medals\n**Savings:** %s Medals\n**Total:** %s Medals",
		FormatBalance(acct.Pockets), FormatBalance(acct.Savings), FormatBalance(acct.Total()))
	b.respondEmbed(s, i, fmt.Sprintf("Balance for %s", GetDisplayName(s, i.GuildID, target.ID)), desc, colorBlue)
}

func (b *Bot) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	amount, err := parseAmount(optionMap(i)["amount"].StringValue())
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	acct, err := b.ledger.Deposit(i.GuildID, i.Member.User.ID, amount)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	desc := fmt.Sprintf("Deposited. **Pockets:** %s | **Savings:** %s",
		FormatBalance(acct.Pockets), FormatBalance(acct.Savings))
	b.respondEmbed(s, i, "Deposit", desc, colorGreen)
}

func (b *Bot) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	amount, err := parseAmount(optionMap(i)["amount"].StringValue())
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	acct, err := b.ledger.Withdraw(i.GuildID, i.Member.User.ID, amount)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	desc := fmt.Sprintf("Withdrawn. **Pockets:** %s | **Savings:** %s",
		FormatBalance(acct.Pockets), FormatBalance(acct.Savings))
	b.respondEmbed(s, i, "Withdraw", desc, colorGreen)
}

func (b *Bot) handleDonate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	opts := optionMap(i)
	recipient := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	if recipient == nil {
		b.respondWithError(s, i, "Invalid recipient user.")
		return
	}

	// make sure the recipient exists before moving anything
	if _, err := b.ledger.GetAccount(i.GuildID, recipient.ID, recipient.Username); err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if err := b.ledger.Donate(i.GuildID, i.Member.User.ID, recipient.ID, amount); err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	desc := fmt.Sprintf("**%s** gave **%s Medals** to **%s**",
		GetDisplayName(s, i.GuildID, i.Member.User.ID),
		FormatBalance(amount),
		GetDisplayName(s, i.GuildID, recipient.ID))
	b.respondEmbed(s, i, "Donation", desc, colorGreen)
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	accounts, err := b.ledger.Accounts(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	type row struct {
		name  string
		total int64
	}
	rows := make([]row, 0, len(accounts))
	for id, acct := range accounts {
		if id == b.config.HouseUserID {
			continue
		}
		rows = append(rows, row{name: acct.Username, total: acct.Total()})
	}
	sort.Slice(rows, func(a, c int) bool { return rows[a].total > rows[c].total })

	if len(rows) > 10 {
		rows = rows[:10]
	}

	var sb strings.Builder
	for idx, r := range rows {
		fmt.Fprintf(&sb, "**%d.** %s — %s Medals\n", idx+1, r.name, FormatBalance(r.total))
	}
	if sb.Len() == 0 {
		sb.WriteString("Nobody has earned anything yet.")
	}
	b.respondEmbed(s, i, "Leaderboard", sb.String(), colorGold)
}

func (b *Bot) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	user := i.Member.User
	result, err := b.activities.Work(i.GuildID, user.ID, user.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if result.Critical {
		original := result.Payout / int64(result.Multiplier)
		msg := b.responses.Format("work_rare_success", map[string]string{
			"amount":     FormatBalance(result.Payout),
			"multiplier": strconv.Itoa(result.Multiplier),
			"original":   FormatBalance(original),
		})
		b.respondEmbed(s, i, "Critical Success!", msg, colorGold)
		return
	}

	msg := b.responses.Format("work", map[string]string{"amount": FormatBalance(result.Payout)})
	b.respondEmbed(s, i, "Work", msg, colorGreen)
}

func (b *Bot) handleCrime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	user := i.Member.User
	result, err := b.activities.Crime(i.GuildID, user.ID, user.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if result.Success {
		msg := b.responses.Format("crime_success", map[string]string{"amount": FormatBalance(result.Payout)})
		b.respondEmbed(s, i, "Crime Success", msg, colorGreen)
		return
	}

	switch result.Outcome {
	case service.OutcomeDeath:
		if result.PrisonTier != "" {
			b.respondEmbed(s, i, "Crime Failed - Reaper's Tax Imprisonment!",
				fmt.Sprintf("**You had no money to pay the reaper's tax, so you were sent to prison instead.**\n\n%s",
					b.responses.Format("prison", nil)), colorDark)
			return
		}
		msg := b.responses.Format("death", map[string]string{"amount": FormatBalance(result.PocketsLost)})
		b.respondEmbed(s, i, "Crime Failed - Death!",
			fmt.Sprintf("%s\n\n**%s Medals (10%% of your savings) have been taken to pay the reaper's tax**",
				msg, FormatBalance(result.SavingsLost)), colorDark)
	case service.OutcomeInjury:
		msg := b.responses.Format("injury", map[string]string{"amount": FormatBalance(result.Fine)})
		b.respondEmbed(s, i, fmt.Sprintf("Crime Failed - %s!", result.InjuryTier),
			fmt.Sprintf("%s\n\nYour condition: **%s**\n*You can walk it off :3*", msg, result.InjuryTier), colorRed)
	case service.OutcomePrison:
		b.respondEmbed(s, i, "Crime Failed - Prison!", b.responses.Format("prison", nil), colorDark)
	}
}

func (b *Bot) handleRob(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	user := i.Member.User
	target := optionMap(i)["target"].UserValue(s)
	if target == nil {
		b.respondWithError(s, i, "Invalid target user.")
		return
	}

	result, err := b.activities.Rob(i.GuildID, user.ID, user.Username, target.ID, target.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	mention := target.Mention()
	if result.Success {
		if result.TargetBroke {
			b.respondEmbed(s, i, "Robbery Attempt",
				fmt.Sprintf("%s barely had anything to steal!", mention), colorOrange)
			return
		}
		msg := b.responses.Format("rob_success", map[string]string{
			"target": mention,
			"amount": FormatBalance(result.Stolen),
		})
		b.respondEmbed(s, i, "Robbery Success", msg, colorGreen)
		return
	}

	switch result.Outcome {
	case service.OutcomeDeath:
		if result.PrisonTier != "" {
			b.respondEmbed(s, i, "Robbery Failed - Reaper's Tax Imprisonment!",
				fmt.Sprintf("**You had no money to pay the reaper's tax, so you were sent to prison instead.**\n\n%s",
					b.responses.Format("prison", nil)), colorDark)
			return
		}
		msg := b.responses.Format("rob_death", map[string]string{
			"target": mention,
			"amount": FormatBalance(result.PocketsLost),
		})
		b.respondEmbed(s, i, "Robbery Failed - Death!",
			fmt.Sprintf("%s\n\n**%s Medals (10%% of your savings) have been taken to pay the reaper's tax**",
				msg, FormatBalance(result.SavingsLost)), colorDark)
	case service.OutcomeInjury:
		msg := b.responses.Format("rob_injury", map[string]string{
			"target": mention,
			"amount": FormatBalance(result.Fine),
		})
		b.respondEmbed(s, i, fmt.Sprintf("Robbery Failed - %s!", result.InjuryTier),
			fmt.Sprintf("%s\n\nYour condition: **%s**\n*You can walk it off :3*", msg, result.InjuryTier), colorRed)
	case service.OutcomePrison:
		b.respondEmbed(s, i, "Robbery Failed - Prison!", b.responses.Format("prison", nil), colorDark)
	}
}

func (b *Bot) handleRoulette(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	opts := optionMap(i)
	color := opts["color"].StringValue()
	bet := opts["bet"].IntValue()
	user := i.Member.User

	result, err := b.activities.Roulette(i.GuildID, user.ID, user.Username, color, bet)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if result.Won {
		msg := b.responses.Format("roulette_win", map[string]string{
			"color":  result.Landed,
			"amount": FormatBalance(result.Payout),
		})
		b.respondEmbed(s, i, "Roulette", msg, colorGreen)
		return
	}
	msg := b.responses.Format("roulette_loss", map[string]string{"color": result.Landed})
	b.respondEmbed(s, i, "Roulette", msg, colorRed)
}

func (b *Bot) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := i.Member.User
	if opt, ok := optionMap(i)["user"]; ok {
		target = opt.UserValue(s)
	}

	acct, err := b.ledger.GetAccount(i.GuildID, target.ID, target.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	tier := service.InjuryTierFor(acct.Injuries)

	effectsText := "None"
	if acct.Injuries > 0 {
		if tier.Name == service.TierCritical {
			effectsText = "you should be dead..."
		} else {
			var effects []string
			if tier.CooldownMultiplier > 1 {
				effects = append(effects, fmt.Sprintf("Cooldowns +%d%%", int((tier.CooldownMultiplier-1)*100)))
			}
			if tier.FailRateMod > 0 {
				effects = append(effects, fmt.Sprintf("Fail rate +%d%%", tier.FailRateMod))
			}
			if tier.EarningPenalty > 0 {
				effects = append(effects, fmt.Sprintf("Earnings -%d%%", int(tier.EarningPenalty*100)))
			}
			if tier.DeathChanceMod > 0 {
				effects = append(effects, fmt.Sprintf("Death chance +%d%%", tier.DeathChanceMod))
			}
			if tier.PrisonChanceMod > 0 {
				effects = append(effects, fmt.Sprintf("Prison chance +%d%%", tier.PrisonChanceMod))
			}
			effectsText = strings.Join(effects, ", ")
		}
	}

	prisonText := ""
	if acct.Prison != nil {
		release := time.Unix(acct.Prison.ReleaseTime, 0)
		prisonText = fmt.Sprintf("\nImprisoned with the ***%s*** until: %s",
			acct.Prison.Tier, FormatDiscordTimestamp(release, "f"))
	}

	desc := fmt.Sprintf("**Status for %s**\nCondition: **%s**\nHealing Cost: %s Medals\nEffects: %s%s",
		target.Mention(), tier.Name, FormatBalance(tier.HealCost), effectsText, prisonText)
	b.respondEmbed(s, i, "User Status", desc, colorBlue)
}

func (b *Bot) handleSeeMortician(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.Member.User
	result, err := b.mortician.Heal(i.GuildID, user.ID, user.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	msg := b.responses.Format("heal_success", map[string]string{"amount": FormatBalance(result.Cost)})
	b.respondEmbed(s, i, "The Mortician", msg, colorGreen)
	log.WithFields(log.Fields{
		"guildID": i.GuildID,
		"userID":  user.ID,
		"cost":    result.Cost,
	}).Debug("Injuries healed")
}
