package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"sennabot/bot"
	"sennabot/config"
	"sennabot/events"
	"sennabot/games"
	"sennabot/responses"
	"sennabot/service"
	"sennabot/store"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting sennabot...")

	// Load configuration
	cfg := config.Get()

	// Initialize the guild document store
	log.Println("Opening data store...")
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}
	log.Println("Data store opened successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Load response flavor text overrides
	responseManager := responses.NewManager()
	responseManager.Load(cfg.DataDir + "/responses.json")

	// Initialize services
	log.Println("Initializing services...")
	dice := rand.New(rand.NewSource(time.Now().UnixNano()))
	ledgerService := service.NewLedgerService(st, eventBus)
	activityService := service.NewActivityService(st, ledgerService, dice)
	prisonService := service.NewPrisonService(st, ledgerService, dice)
	morticianService := service.NewMorticianService(ledgerService)
	permissionService := service.NewPermissionService(st, cfg.OwnerGuildID)
	log.Println("Services initialized successfully")

	// Release anyone whose sentence expired while the bot was down
	prisonService.SweepExpired()

	// Initialize game coordinators
	registry := games.NewRegistry()
	blackjack := games.NewBlackjack(ledgerService, registry, dice)
	challenge := games.NewChallenge(ledgerService, registry, dice, cfg.HouseUserID)
	breakout := games.NewBreakout(ledgerService, registry, dice)
	boxes := games.NewBoxes(ledgerService, registry, dice)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:        cfg.DiscordToken,
		OwnerGuildID: cfg.OwnerGuildID,
		HouseUserID:  cfg.HouseUserID,
	}
	discordBot, err := bot.New(botConfig, st, ledgerService, activityService, prisonService, morticianService, permissionService, responseManager, registry, blackjack, challenge, breakout, boxes, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	log.Println("Shutdown completed")
	return nil
}
