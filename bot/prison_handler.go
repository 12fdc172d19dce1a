package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"sennabot/games"
	"sennabot/service"
)

func (b *Bot) handleEscape(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.Member.User

	if b.registry.InChallenge(i.GuildID, user.ID) {
		b.respondWithError(s, i, describeError(service.ErrInChallenge))
		return
	}

	result, err := b.prison.Escape(i.GuildID, user.ID, user.Username)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	if result.RequiresBoxes {
		b.startBoxes(s, i, user.ID, user.Username, "", "",
			"The Jaegers caught you at the fence. They don't do chases; they do games.")
		return
	}

	if result.Success {
		b.respondEmbed(s, i, "Escape!",
			fmt.Sprintf("You slipped past the **%s** and you're free! (%d%% chance)", result.Tier, result.Chance),
			colorGreen)
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("The **%s** dragged you back to your cell. (%d%% chance)", result.Tier, result.Chance))
	if result.SavingsLost > 0 {
		lines = append(lines, fmt.Sprintf("They confiscated **%s Medals** from your savings.", FormatBalance(result.SavingsLost)))
	}
	if result.ExtraTime > 0 {
		lines = append(lines, fmt.Sprintf("Your sentence grew by **%s**.", FormatDuration(result.ExtraTime)))
	}
	if result.InjuryAdded {
		tier := service.InjuryTierFor(result.InjuriesNow)
		lines = append(lines, fmt.Sprintf("They weren't gentle about it. Condition: **%s**.", tier.Name))
	}
	b.respondEmbed(s, i, "Escape Failed", strings.Join(lines, "\n"), colorRed)
}

func (b *Bot) handleBreakoutCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.gateInteractive(s, i) {
		return
	}

	helper := i.Member.User
	target := optionMap(i)["target"].UserValue(s)
	if target == nil {
		b.respondWithError(s, i, "Invalid target user.")
		return
	}

	sess, err := b.breakout.Start(i.GuildID, helper.ID, helper.Username, target.ID, target.Username)
	if err != nil {
		if err == service.ErrNotInPrison {
			b.respondWithError(s, i, "That member isn't in prison. Nothing to break them out of.")
			return
		}
		b.respondWithError(s, i, describeError(err))
		return
	}

	title, desc, components := breakoutOpening(sess, target.Mention())
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Title: title, Description: desc, Color: colorBlue}},
			Components: components,
		},
	})
	if err != nil {
		b.breakout.Cancel(sess.ID)
		return
	}

	sessionID := sess.ID
	b.scheduleTimeout(sessionID, games.BreakoutViewTimeout, func() {
		b.resolveBreakoutTimeout(s, i, sessionID)
	})
}

// resolveBreakoutTimeout forfeits an abandoned attempt: the helper is
// arrested and stripped on top of the usual failure.
func (b *Bot) resolveBreakoutTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string) {
	sess, ok := b.breakout.Session(sessionID)
	if !ok {
		return
	}
	step, err := b.breakout.Timeout(sessionID)
	if err != nil || step == nil {
		return
	}

	desc := fmt.Sprintf("**%s** hesitated too long and the guards swept the block. They now share **%s**'s accommodation in the **%s**.",
		sess.HelperName, sess.TargetName, step.HelperTier)
	if step.PocketsLost > 0 {
		desc += fmt.Sprintf("\nEverything in their pockets (**%s Medals**) was confiscated.", FormatBalance(step.PocketsLost))
	}
	if step.SavingsLost > 0 {
		desc += fmt.Sprintf("\nThe guards helped themselves to **%s Medals** of savings.", FormatBalance(step.SavingsLost))
	}
	b.editInteraction(s, i, "Breakout Forfeited", desc, colorDark, nil)
}

// breakoutOpening builds the first view of the tier's mini-game.
func breakoutOpening(sess *games.BreakoutSession, targetMention string) (string, string, []discordgo.MessageComponent) {
	id := sess.ID
	switch sess.Tier {
	case service.PrisonOfficerGroup:
		return "Breakout - Officer Group",
			fmt.Sprintf("%s sits in the Officer Group's holding room. The side door looks flimsy. Force it?", targetMention),
			singleButtonRow("Force the door", "bo_door_"+id)
	case service.PrisonOldGuards:
		return "Breakout - Old Guards",
			fmt.Sprintf("%s is held by the Old Guards. You lifted a key ring off a sleeping warden. Try it?", targetMention),
			singleButtonRow("Try the keys", "bo_door_"+id)
	case service.PrisonSoldatBrigade:
		return "Breakout - Soldat Brigade",
			fmt.Sprintf("Two doors lead out of the Soldat Brigade block. One opens on %s's cell, the other on the barracks. Pick.", targetMention),
			doorRow(id, 2)
	case service.PrisonLancerLegion:
		return "Breakout - Lancer Legion",
			fmt.Sprintf("Four doors in the Lancer Legion's maze. %s is behind one of them. You'll get a second guess if the first is wrong.", targetMention),
			doorRow(id, 4)
	case service.PrisonRookDivision:
		return "Breakout - Rook Division",
			fmt.Sprintf("%s's cell has an old pin lock. Press three pins in the right order. The pick survives %d wrong presses.",
				targetMention, 3),
			pinRow(id)
	case service.PrisonMorticianWing:
		return "Breakout - Mortician Wing",
			fmt.Sprintf("The morts keep %s sedated. Six bottles on the shelf; one is Amatoxin. Clear the safe ones to find the antidote.", targetMention),
			bottleRows(id)
	default: // Jaeger Camp
		return "Breakout - Jaeger Camp",
			fmt.Sprintf("The camp has no walls, only paths and wolves. Walk %s out one step at a time.", targetMention),
			singleButtonRow("Take a step", "bo_step_"+id)
	}
}

func singleButtonRow(label, customID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: label, Style: discordgo.PrimaryButton, CustomID: customID},
		}},
	}
}

func doorRow(sessionID string, count int) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, count)
	for d := 0; d < count; d++ {
		buttons[d] = discordgo.Button{
			Label:    fmt.Sprintf("Door %d", d+1),
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("bo_pick_%s_%d", sessionID, d),
		}
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func pinRow(sessionID string) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 4)
	for p := 1; p <= 4; p++ {
		buttons[p-1] = discordgo.Button{
			Label:    fmt.Sprintf("Pin %d", p),
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("bo_pin_%s_%d", sessionID, p),
		}
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func bottleRows(sessionID string) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	row := discordgo.ActionsRow{}
	for bt := 0; bt < 6; bt++ {
		row.Components = append(row.Components, discordgo.Button{
			Label:    fmt.Sprintf("Bottle %d", bt+1),
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("bo_bottle_%s_%d", sessionID, bt),
		})
		if len(row.Components) == 5 {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func (b *Bot) handleBreakoutInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	var kind, rest string
	for _, prefix := range []string{"bo_door_", "bo_pick_", "bo_pin_", "bo_bottle_", "bo_step_"} {
		if strings.HasPrefix(customID, prefix) {
			kind = strings.Trim(strings.TrimPrefix(prefix, "bo_"), "_")
			rest = strings.TrimPrefix(customID, prefix)
		}
	}

	sessionID := rest
	arg := -1
	if idx := strings.LastIndex(rest, "_"); idx >= 0 && (kind == "pick" || kind == "pin" || kind == "bottle") {
		sessionID = rest[:idx]
		if n, err := strconv.Atoi(rest[idx+1:]); err == nil {
			arg = n
		}
	}

	sess, ok := b.breakout.Session(sessionID)
	if !ok {
		b.respondWithError(s, i, "That breakout attempt is already over.")
		return
	}
	if i.Member.User.ID != sess.HelperID {
		b.respondWithError(s, i, "This isn't your breakout.")
		return
	}

	var step *games.BreakoutStep
	var err error
	switch kind {
	case "door":
		step, err = b.breakout.AttemptDoor(sessionID)
	case "pick":
		step, err = b.breakout.PickDoor(sessionID, arg)
	case "pin":
		step, err = b.breakout.PressPin(sessionID, arg)
	case "bottle":
		step, err = b.breakout.PickBottle(sessionID, arg)
	case "step":
		step, err = b.breakout.Advance(sessionID)
	default:
		return
	}
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	b.renderBreakoutStep(s, i, sess, step)
}

func (b *Bot) renderBreakoutStep(s *discordgo.Session, i *discordgo.InteractionCreate, sess *games.BreakoutSession, step *games.BreakoutStep) {
	if step.Resolved {
		b.clearTimeout(sess.ID)
		if step.Success {
			b.updateEmbed(s, i, "Breakout!",
				fmt.Sprintf("**%s** walks free of the **%s**, courtesy of **%s**.",
					sess.TargetName, sess.Tier, sess.HelperName), colorGreen, nil)
			return
		}
		desc := fmt.Sprintf("The guards caught **%s** in the act. They now share **%s**'s accommodation in the **%s**.",
			sess.HelperName, sess.TargetName, step.HelperTier)
		if step.InjuryToHelper {
			desc += "\nThe arrest left some marks."
		}
		b.updateEmbed(s, i, "Breakout Failed", desc, colorRed, nil)
		return
	}

	if step.BoxesStarted {
		b.clearTimeout(sess.ID)
		// the target is still the one in the camp; the collapsed helper
		// shares whatever the boxes decide
		b.startBoxes(s, i, sess.TargetID, sess.TargetName, sess.HelperID, sess.HelperName,
			fmt.Sprintf("**%s** collapsed on the paths, and the Jaegers dragged the pair back to **%s**'s cell. They don't do mercy; they do games.",
				sess.HelperName, sess.TargetName))
		return
	}

	// attempt continues, re-arm the view timer
	b.scheduleTimeout(sess.ID, games.BreakoutViewTimeout, func() {
		b.resolveBreakoutTimeout(s, i, sess.ID)
	})

	switch sess.Tier {
	case service.PrisonLancerLegion:
		if step.SecondChance {
			b.updateEmbed(s, i, "Breakout - Lancer Legion",
				"Wrong door, and somewhere a bell rang. The layout shifts. One more guess.",
				colorOrange, doorRow(sess.ID, 4))
		}
	case service.PrisonRookDivision:
		b.updateEmbed(s, i, "Breakout - Rook Division",
			fmt.Sprintf("Pins set: **%d/3**. Pick durability: **%d/4**.", step.PinProgress, step.Durability),
			colorBlue, pinRow(sess.ID))
	case service.PrisonMorticianWing:
		b.updateEmbed(s, i, "Breakout - Mortician Wing",
			fmt.Sprintf("Not that one. **%d** bottles left on the shelf.", step.BottlesLeft),
			colorBlue, bottleRows(sess.ID))
	case service.PrisonJaegerCamp:
		desc := fmt.Sprintf("Step **%d/8** along the paths.", step.PathStep)
		if step.InjuryToHelper {
			desc = fmt.Sprintf("A wrong path, and the wolves took a bite. Step **%d/8**.", step.PathStep)
		}
		b.updateEmbed(s, i, "Breakout - Jaeger Camp", desc, colorBlue, singleButtonRow("Take a step", "bo_step_"+sess.ID))
	}
}

// startBoxes opens a four-boxes round and renders the box buttons as the
// interaction response.
func (b *Bot) startBoxes(s *discordgo.Session, i *discordgo.InteractionCreate, prisonerID, prisonerName, helperID, helperName, intro string) {
	sess, err := b.boxes.Start(i.GuildID, prisonerID, prisonerName, helperID, helperName)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}

	buttons := make([]discordgo.MessageComponent, games.BoxCount)
	for n := 0; n < games.BoxCount; n++ {
		buttons[n] = discordgo.Button{
			Label:    fmt.Sprintf("Box %d", n+1),
			Style:    discordgo.DangerButton,
			CustomID: fmt.Sprintf("box_open_%s_%d", sess.ID, n),
		}
	}
	components := []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}

	desc := fmt.Sprintf("%s\n\nFour boxes. One holds a knife. Pick one, <@%s>. You have %s before they pick for you.",
		intro, prisonerID, FormatDuration(games.BoxesTimeout))

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Title: "The Four Boxes", Description: desc, Color: colorDark}},
			Components: components,
		},
	}
	if i.Type == discordgo.InteractionMessageComponent {
		response.Type = discordgo.InteractionResponseUpdateMessage
	}
	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		return
	}

	sessionID := sess.ID
	b.scheduleTimeout(sessionID, games.BoxesTimeout, func() {
		result, err := b.boxes.Timeout(sessionID)
		if err != nil || result == nil {
			return
		}
		b.editInteraction(s, i, "The Four Boxes",
			fmt.Sprintf("Nobody chose, so the wolves chose. <@%s> paid with everything in their pockets and **%s Medals** of savings, and left the camp on a cart.",
				prisonerID, FormatBalance(result.SavingsLost)), colorDark, nil)
	})
}

func (b *Bot) handleBoxesInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	rest := strings.TrimPrefix(customID, "box_open_")
	idx := strings.LastIndex(rest, "_")
	if idx < 0 {
		return
	}
	sessionID := rest[:idx]
	box, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return
	}

	sess, ok := b.boxes.Session(sessionID)
	if !ok {
		b.respondWithError(s, i, "Those boxes are already gone.")
		return
	}
	if i.Member.User.ID != sess.PrisonerID {
		b.respondWithError(s, i, "The boxes are not for you.")
		return
	}

	result, err := b.boxes.Open(sessionID, box)
	if err != nil {
		b.respondWithError(s, i, describeError(err))
		return
	}
	b.clearTimeout(sessionID)

	prisoner := sess.PrisonerName
	switch result.Outcome {
	case games.BoxKnife:
		if result.Death {
			desc := fmt.Sprintf("A knife. The Jaegers won, as they usually do. **%s** paid with everything in their pockets and **%s Medals** of savings, and left the camp on a cart.",
				prisoner, FormatBalance(result.SavingsLost))
			if result.HelperImprisoned {
				desc += fmt.Sprintf("\n**%s** stays behind in the **Jaeger Camp**.", sess.HelperName)
			}
			b.updateEmbed(s, i, "The Four Boxes - Knife", desc, colorDark, nil)
			return
		}
		b.updateEmbed(s, i, "The Four Boxes - Knife",
			fmt.Sprintf("A knife, and **%s** knew how to use it. The Jaegers, amused, let everyone walk.", prisoner),
			colorGreen, nil)
	case games.BoxWatch:
		desc := fmt.Sprintf("A broken watch. Time moves differently in the camp: **%s**'s sentence grows by **%s**.",
			prisoner, FormatDuration(result.ExtraTime))
		if result.HelperImprisoned {
			desc += fmt.Sprintf("\n**%s** gets a matching stay.", sess.HelperName)
		}
		b.updateEmbed(s, i, "The Four Boxes - Broken Watch", desc, colorOrange, nil)
	case games.BoxMedical:
		b.updateEmbed(s, i, "The Four Boxes - Medical Supplies",
			"Stolen supplies. Everyone patches up one injury, but the cell door stays shut.", colorBlue, nil)
	case games.BoxJoker:
		b.updateEmbed(s, i, "The Four Boxes - Joker Card",
			fmt.Sprintf("A joker card. The Jaegers found it hilarious. **%s** did not.", prisoner), colorRed, nil)
	}
}
