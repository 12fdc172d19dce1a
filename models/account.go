package models

// Cooldown keys tracked per account.
const (
	CooldownWork     = "work"
	CooldownCrime    = "crime"
	CooldownRob      = "rob"
	CooldownRoulette = "roulette"
	CooldownEscape   = "escape"
	CooldownBreakout = "breakout"
)

// Prison records an active sentence. ReleaseTime is a unix timestamp;
// expiry is resolved lazily on read, there is no background scheduler.
type Prison struct {
	Tier        string `json:"tier"`
	ReleaseTime int64  `json:"release_time"`
}

// UserAccount is a single member's economy record inside a guild document.
type UserAccount struct {
	UserID               string           `json:"user_id"`
	Username             string           `json:"username"`
	Pockets              int64            `json:"pockets"`
	Savings              int64            `json:"savings"`
	Cooldowns            map[string]int64 `json:"cooldowns"`
	Injured              bool             `json:"injured"`
	Injuries             int              `json:"injuries"`
	Prison               *Prison          `json:"prison"`
	LastRobbed           int64            `json:"last_robbed"`
	BeatBalanceChallenge bool             `json:"beat_balance_challenge"`
}

// Total returns pockets plus savings.
func (a *UserAccount) Total() int64 {
	return a.Pockets + a.Savings
}

// Clone returns a deep copy of the account.
func (a *UserAccount) Clone() *UserAccount {
	if a == nil {
		return nil
	}
	out := *a
	out.Cooldowns = make(map[string]int64, len(a.Cooldowns))
	for k, v := range a.Cooldowns {
		out.Cooldowns[k] = v
	}
	if a.Prison != nil {
		p := *a.Prison
		out.Prison = &p
	}
	return &out
}

// NewUserAccount builds a fresh account with the configured starting savings.
func NewUserAccount(userID, username string, startingBalance int64) *UserAccount {
	return &UserAccount{
		UserID:   userID,
		Username: username,
		Pockets:  0,
		Savings:  startingBalance,
		Cooldowns: map[string]int64{
			CooldownWork:     0,
			CooldownCrime:    0,
			CooldownRob:      0,
			CooldownRoulette: 0,
			CooldownEscape:   0,
			CooldownBreakout: 0,
		},
	}
}

// GuildDocument is the persisted per-guild economy state.
type GuildDocument struct {
	Users map[string]*UserAccount `json:"users"`
}

// NewGuildDocument returns an empty guild document.
func NewGuildDocument() *GuildDocument {
	return &GuildDocument{Users: make(map[string]*UserAccount)}
}

// Clone returns a deep copy of the document.
func (d *GuildDocument) Clone() *GuildDocument {
	out := NewGuildDocument()
	if d == nil {
		return out
	}
	for id, acct := range d.Users {
		out.Users[id] = acct.Clone()
	}
	return out
}
