package service

import (
	"sync"
	"time"

	"sennabot/models"
)

// Dice abstracts the random source so rolls can be scripted in tests.
// *rand.Rand satisfies it.
type Dice interface {
	Intn(n int) int
	Float64() float64
}

// GuildStore is the persistence surface the services depend on. Callers hold
// the guild lock across a Guild + SaveGuild cycle when doing compound updates.
type GuildStore interface {
	// Lock returns the mutex serializing read-modify-write cycles for a guild
	Lock(guildID string) *sync.Mutex

	// Guild returns a deep copy of the guild document, degrading to an empty
	// document when the file is missing or unreadable
	Guild(guildID string) *models.GuildDocument

	// SaveGuild atomically persists the document
	SaveGuild(guildID string, doc *models.GuildDocument) error

	// GuildIDs lists every guild with a persisted document
	GuildIDs() []string

	// Settings returns the current bot settings
	Settings() *models.BotSettings

	// SaveSettings persists updated bot settings
	SaveSettings(settings *models.BotSettings) error

	// GuildPermissions returns one guild's permission record, or nil
	GuildPermissions(guildID string) *models.GuildPermissions

	// SaveGuildPermissions persists one guild's permission record
	SaveGuildPermissions(guildID string, gp *models.GuildPermissions) error

	// Permissions returns every guild's permission record
	Permissions() map[string]*models.GuildPermissions
}

// AmountAll is the sentinel for "move everything" in deposit and withdraw.
const AmountAll int64 = -1

// LedgerService owns every mutation of account state. All compound updates
// run under the guild lock so concurrent deltas cannot lose writes.
type LedgerService interface {
	// GetAccount returns the account, creating it with the configured
	// starting savings on first access. Expired prison sentences are
	// released lazily here.
	GetAccount(guildID, userID, username string) (*models.UserAccount, error)

	// Accounts returns every account in the guild
	Accounts(guildID string) (map[string]*models.UserAccount, error)

	// UpdatePockets applies a delta to pockets and returns the new amount.
	// Negative results are allowed (debt).
	UpdatePockets(guildID, userID string, delta int64) (int64, error)

	// UpdateSavings applies a delta to savings and returns the new amount
	UpdateSavings(guildID, userID string, delta int64) (int64, error)

	// Deposit moves pockets into savings; AmountAll moves everything
	Deposit(guildID, userID string, amount int64) (*models.UserAccount, error)

	// Withdraw moves savings into pockets; AmountAll moves everything
	Withdraw(guildID, userID string, amount int64) (*models.UserAccount, error)

	// Donate moves funds from one member to another, dipping into the
	// sender's savings when pockets alone cannot cover it
	Donate(guildID, fromID, toID string, amount int64) error

	// SetCooldown stamps the activity's cooldown with the current time
	SetCooldown(guildID, userID, activity string) error

	// CheckCooldown reports whether the activity is ready and, if not, how
	// long remains. Ready exactly when the full window has elapsed.
	CheckCooldown(guildID, userID, activity string, window time.Duration) (bool, time.Duration, error)

	// ClaimCooldown checks and stamps in one guild-locked mutation: a ready
	// activity is stamped with the current time before the lock is released,
	// so concurrent claims admit exactly one caller
	ClaimCooldown(guildID, userID, activity string, window time.Duration) (bool, time.Duration, error)

	// AddInjury increments the injury count and returns the new count
	AddInjury(guildID, userID string) (int, error)

	// SetInjuries overwrites the injury count
	SetInjuries(guildID, userID string, count int) error

	// HealInjuries clears all injuries
	HealInjuries(guildID, userID string) error

	// SetLastRobbed stamps the victim-protection timestamp
	SetLastRobbed(guildID, userID string, at time.Time) error

	// SetChallengeFlag marks the account as having beaten the balance challenge
	SetChallengeFlag(guildID, userID string) error

	// IsInPrison reports prison status, releasing served sentences lazily
	IsInPrison(guildID, userID string) (bool, *models.Prison, error)

	// SendToPrison imprisons the member in the given tier
	SendToPrison(guildID, userID, tier string, term time.Duration) error

	// ReleaseFromPrison clears the prison record
	ReleaseFromPrison(guildID, userID string) error

	// ExtendPrison pushes the release time further out
	ExtendPrison(guildID, userID string, extra time.Duration) error
}

// WorkResult reports a resolved work shift.
type WorkResult struct {
	Payout     int64
	Critical   bool
	Multiplier int
	NewPockets int64
}

// CrimeResult reports a resolved crime attempt.
type CrimeResult struct {
	Success     bool
	Payout      int64
	Outcome     Outcome // meaningful only on failure
	Fine        int64
	PocketsLost int64
	SavingsLost int64
	PrisonTier  string
	InjuryTier  string
}

// RobResult reports a resolved robbery attempt.
type RobResult struct {
	Success     bool
	Stolen      int64
	TargetBroke bool
	Outcome     Outcome // meaningful only on failure
	Fine        int64
	PocketsLost int64
	SavingsLost int64
	PrisonTier  string
	InjuryTier  string
}

// RouletteResult reports a resolved roulette spin.
type RouletteResult struct {
	Landed     string
	Won        bool
	Payout     int64
	NewPockets int64
}

// ActivityService resolves the cooldown-gated money-making activities.
// Callers check the prison and challenge gates before invoking a resolver.
type ActivityService interface {
	// Work resolves a work shift
	Work(guildID, userID, username string) (*WorkResult, error)

	// Crime resolves a crime attempt, applying the failure outcome
	Crime(guildID, userID, username string) (*CrimeResult, error)

	// Rob resolves a robbery attempt against another member
	Rob(guildID, userID, username, targetID, targetName string) (*RobResult, error)

	// Roulette resolves a roulette spin on the given color
	Roulette(guildID, userID, username, color string, bet int64) (*RouletteResult, error)
}

// EscapeResult reports a resolved solo escape attempt.
type EscapeResult struct {
	// RequiresBoxes is set for the deepest tier, whose escape runs as an
	// interactive session instead of a flat roll
	RequiresBoxes bool

	Success     bool
	Chance      int
	Tier        string
	SavingsLost int64
	ExtraTime   time.Duration
	InjuryAdded bool
	InjuriesNow int
}

// PrisonService owns the prison tier table, sentencing and solo escapes.
type PrisonService interface {
	// Tiers returns the full prison tier table
	Tiers() []PrisonTier

	// TierByName looks up one tier
	TierByName(name string) (PrisonTier, bool)

	// Imprison sentences the member to a weighted-random tier for the
	// standard term and returns the tier
	Imprison(guildID, userID, username string) (PrisonTier, error)

	// Escape resolves a solo escape attempt for the member's current tier
	Escape(guildID, userID, username string) (*EscapeResult, error)

	// SweepExpired releases every served sentence across all guilds.
	// Run once at startup.
	SweepExpired()
}

// PermissionService gates command categories per guild.
type PermissionService interface {
	// IsCategoryEnabled reports whether a guild may use a command category.
	// The owner guild is always fully enabled.
	IsCategoryEnabled(guildID, category string) bool

	// SetCategory toggles a category for a guild
	SetCategory(guildID, category string, enabled bool) error

	// EnsureGuild creates a default permission record for a new guild
	EnsureGuild(guildID, serverName string) error

	// GuildPermissions returns one guild's record, or nil
	GuildPermissions(guildID string) *models.GuildPermissions

	// All returns every guild's record
	All() map[string]*models.GuildPermissions
}
