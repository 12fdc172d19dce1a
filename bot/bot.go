package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/events"
	"sennabot/games"
	"sennabot/responses"
	"sennabot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token        string
	OwnerGuildID string
	HouseUserID  string
}

type Bot struct {
	config      Config
	session     *discordgo.Session
	store       service.GuildStore
	ledger      service.LedgerService
	activities  service.ActivityService
	prison      service.PrisonService
	mortician   service.MorticianService
	permissions service.PermissionService
	responses   *responses.Manager
	registry    *games.Registry
	blackjack   *games.Blackjack
	challenge   *games.Challenge
	breakout    *games.Breakout
	boxes       *games.Boxes
	eventBus    *events.Bus

	// timers driving timeout resolutions for in-flight game sessions
	timersMu sync.Mutex
	timers   map[string]*time.Timer

	// last channel a command was used in per guild, where the house posts
	// its challenge
	channelsMu   sync.Mutex
	lastChannels map[string]string

	// channel message carrying each balance challenge, for timeout edits
	challengeMsgsMu sync.Mutex
	challengeMsgs   map[string]messageRef
}

type messageRef struct {
	ChannelID string
	MessageID string
}

func New(config Config, store service.GuildStore, ledger service.LedgerService, activities service.ActivityService, prison service.PrisonService, mortician service.MorticianService, permissions service.PermissionService, responseManager *responses.Manager, registry *games.Registry, blackjack *games.Blackjack, challenge *games.Challenge, breakout *games.Breakout, boxes *games.Boxes, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:        config,
		session:       dg,
		store:         store,
		ledger:        ledger,
		activities:    activities,
		prison:        prison,
		mortician:     mortician,
		permissions:   permissions,
		responses:     responseManager,
		registry:      registry,
		blackjack:     blackjack,
		challenge:     challenge,
		breakout:      breakout,
		boxes:         boxes,
		eventBus:      eventBus,
		timers:        make(map[string]*time.Timer),
		lastChannels:  make(map[string]string),
		challengeMsgs: make(map[string]messageRef),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponentInteraction)

	// Register guild bookkeeping
	dg.AddHandler(bot.handleGuildCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Summon the house when a balance change pushes someone over the line
	eventBus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			bot.maybeTriggerChallenge(e.GuildID, e.UserID)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleGuildCreate seeds a permission record for guilds the bot joins.
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if err := b.permissions.EnsureGuild(g.ID, g.Name); err != nil {
		log.WithFields(log.Fields{
			"guildID": g.ID,
			"error":   err,
		}).Error("Failed to ensure guild permissions")
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return
	}

	b.channelsMu.Lock()
	b.lastChannels[i.GuildID] = i.ChannelID
	b.channelsMu.Unlock()

	name := i.ApplicationCommandData().Name
	if !b.permissions.IsCategoryEnabled(i.GuildID, commandCategory(name)) {
		b.respondWithError(s, i, "This command category is disabled for this server.")
		return
	}

	switch name {
	case "balance":
		b.handleBalance(s, i)
	case "deposit":
		b.handleDeposit(s, i)
	case "withdraw":
		b.handleWithdraw(s, i)
	case "donate":
		b.handleDonate(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "work":
		b.handleWork(s, i)
	case "crime":
		b.handleCrime(s, i)
	case "rob":
		b.handleRob(s, i)
	case "roulette":
		b.handleRoulette(s, i)
	case "status":
		b.handleStatus(s, i)
	case "see_mortician":
		b.handleSeeMortician(s, i)
	case "blackjack":
		b.handleBlackjackCommand(s, i)
	case "escape":
		b.handleEscape(s, i)
	case "breakout":
		b.handleBreakoutCommand(s, i)
	case "settings":
		b.handleSettingsCommand(s, i)
	case "permissions":
		b.handlePermissionsCommand(s, i)
	}
}

// handleComponentInteraction routes button presses to the owning game
// handler by custom ID prefix.
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "bj_"):
		b.handleBlackjackInteraction(s, i, customID)
	case strings.HasPrefix(customID, "bc_"):
		b.handleChallengeInteraction(s, i, customID)
	case strings.HasPrefix(customID, "box_"):
		b.handleBoxesInteraction(s, i, customID)
	case strings.HasPrefix(customID, "bo_"):
		b.handleBreakoutInteraction(s, i, customID)
	}
}

// commandCategory maps a command name to its permission category.
func commandCategory(name string) string {
	switch name {
	case "settings", "permissions":
		return "admin"
	case "status":
		return "general"
	default:
		return "economy"
	}
}

// scheduleTimeout arms a timer for a session; arming again replaces the
// previous timer.
func (b *Bot) scheduleTimeout(sessionID string, d time.Duration, fire func()) {
	b.timersMu.Lock()
	defer b.timersMu.Unlock()

	if t, ok := b.timers[sessionID]; ok {
		t.Stop()
	}
	b.timers[sessionID] = time.AfterFunc(d, func() {
		b.clearTimeout(sessionID)
		fire()
	})
}

func (b *Bot) clearTimeout(sessionID string) {
	b.timersMu.Lock()
	defer b.timersMu.Unlock()

	if t, ok := b.timers[sessionID]; ok {
		t.Stop()
		delete(b.timers, sessionID)
	}
}
