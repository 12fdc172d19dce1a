package games

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

// The four boxes: the Jaeger Camp's game for anyone caught escaping or
// breaking someone out. One box holds a knife.
const (
	BoxCount       = 4
	BoxesTimeout   = 120 * time.Second
	knifeDeathRate = 55

	boxesDeathSavingsPenalty = 0.25
	boxesFlatDebt            = 75
	boxesWatchExtension      = 15 * time.Minute
)

// BoxOutcome is what a box hides.
type BoxOutcome string

const (
	BoxKnife   BoxOutcome = "knife"
	BoxWatch   BoxOutcome = "broken_watch"
	BoxMedical BoxOutcome = "medical_supplies"
	BoxJoker   BoxOutcome = "joker_card"
)

// BoxesSession is one round of the four boxes. The prisoner is always
// present; the helper seat is filled only for breakout attempts.
type BoxesSession struct {
	ID           string
	GuildID      string
	PrisonerID   string
	PrisonerName string
	HelperID     string
	HelperName   string

	outcomes []BoxOutcome
	session  *Session
}

// HasHelper reports whether a helper shares the prisoner's fate.
func (s *BoxesSession) HasHelper() bool { return s.HelperID != "" }

// BoxesResult reports what the opened box did.
type BoxesResult struct {
	Outcome          BoxOutcome
	Death            bool
	Freed            bool
	HelperImprisoned bool
	ExtraTime        time.Duration
	PocketsLost      int64
	SavingsLost      int64
	Healed           bool
	InjuryAdded      bool
	TimedOut         bool
}

// Boxes coordinates four-boxes rounds.
type Boxes struct {
	ledger   service.LedgerService
	registry *Registry
	dice     service.Dice

	// mu is held across whole round transitions; button handlers and the
	// round timer race otherwise
	mu       sync.Mutex
	sessions map[string]*BoxesSession
}

// NewBoxes creates the four-boxes coordinator.
func NewBoxes(ledger service.LedgerService, registry *Registry, dice service.Dice) *Boxes {
	return &Boxes{
		ledger:   ledger,
		registry: registry,
		dice:     dice,
		sessions: make(map[string]*BoxesSession),
	}
}

// Session returns an active round by ID.
func (b *Boxes) Session(id string) (*BoxesSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	return s, ok
}

// session looks a round up without locking; callers hold b.mu.
func (b *Boxes) session(id string) (*BoxesSession, bool) {
	s, ok := b.sessions[id]
	return s, ok
}

// Start opens a round. helperID is empty for solo escape attempts.
func (b *Boxes) Start(guildID, prisonerID, prisonerName, helperID, helperName string) (*BoxesSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	participants := []string{prisonerID}
	if helperID != "" {
		participants = append(participants, helperID)
	}
	session, err := b.registry.Begin(KindBoxes, guildID, participants...)
	if err != nil {
		return nil, err
	}

	outcomes := []BoxOutcome{BoxKnife, BoxWatch, BoxMedical, BoxJoker}
	for i := len(outcomes) - 1; i > 0; i-- {
		j := b.dice.Intn(i + 1)
		outcomes[i], outcomes[j] = outcomes[j], outcomes[i]
	}

	s := &BoxesSession{
		ID:           session.ID,
		GuildID:      guildID,
		PrisonerID:   prisonerID,
		PrisonerName: prisonerName,
		HelperID:     helperID,
		HelperName:   helperName,
		outcomes:     outcomes,
		session:      session,
	}
	b.sessions[s.ID] = s
	return s, nil
}

// Open resolves the chosen box.
func (b *Boxes) Open(sessionID string, box int) (*BoxesResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}
	if box < 0 || box >= BoxCount {
		return nil, service.ErrInvalidAmount
	}

	result := &BoxesResult{Outcome: s.outcomes[box]}
	var err error

	switch result.Outcome {
	case BoxKnife:
		err = b.openKnife(s, result)
	case BoxWatch:
		err = b.openWatch(s, result)
	case BoxMedical:
		err = b.openMedical(s, result)
	case BoxJoker:
		err = b.openJoker(s, result)
	}
	if err != nil {
		// a round that cannot resolve still ends; the seats must come back
		b.close(s)
		return nil, err
	}

	b.close(s)
	log.WithFields(log.Fields{
		"guildID":    s.GuildID,
		"prisonerID": s.PrisonerID,
		"outcome":    result.Outcome,
	}).Info("Four boxes resolved")
	return result, nil
}

// openKnife: the Jaegers usually win a knife fight. Death wipes the
// prisoner's pockets, taxes their savings and drags the helper into the
// camp; the lucky few walk out with everyone.
func (b *Boxes) openKnife(s *BoxesSession, result *BoxesResult) error {
	if b.dice.Intn(100)+1 <= knifeDeathRate {
		result.Death = true
		if err := b.applyDeath(s.GuildID, s.PrisonerID, result); err != nil {
			return err
		}
		if s.HasHelper() {
			if err := b.ledger.SendToPrison(s.GuildID, s.HelperID, service.PrisonJaegerCamp, service.PrisonTerm); err != nil {
				return err
			}
			result.HelperImprisoned = true
		}
		return nil
	}

	result.Freed = true
	return b.ledger.ReleaseFromPrison(s.GuildID, s.PrisonerID)
}

// openWatch: time moves differently in the camp. The sentence grows and the
// helper gets a matching stay.
func (b *Boxes) openWatch(s *BoxesSession, result *BoxesResult) error {
	if err := b.ledger.ExtendPrison(s.GuildID, s.PrisonerID, boxesWatchExtension); err != nil {
		return err
	}
	result.ExtraTime = boxesWatchExtension
	if s.HasHelper() {
		if err := b.ledger.SendToPrison(s.GuildID, s.HelperID, service.PrisonJaegerCamp, boxesWatchExtension); err != nil {
			return err
		}
		result.HelperImprisoned = true
	}
	return nil
}

// openMedical: stolen supplies take the edge off one injury each, but the
// cell door stays shut.
func (b *Boxes) openMedical(s *BoxesSession, result *BoxesResult) error {
	if err := b.healOne(s.GuildID, s.PrisonerID); err != nil {
		return err
	}
	if s.HasHelper() {
		if err := b.healOne(s.GuildID, s.HelperID); err != nil {
			return err
		}
	}
	result.Healed = true
	return nil
}

// openJoker: the Jaegers find it hilarious.
func (b *Boxes) openJoker(s *BoxesSession, result *BoxesResult) error {
	if _, err := b.ledger.AddInjury(s.GuildID, s.PrisonerID); err != nil {
		return err
	}
	result.InjuryAdded = true
	return nil
}

// Timeout resolves a round nobody played: the wolves lose patience. The
// prisoner pays with everything in their pockets plus a savings tax, and
// leaves the camp dead-or-free with their injuries cleared.
func (b *Boxes) Timeout(sessionID string) (*BoxesResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, nil
	}

	result := &BoxesResult{TimedOut: true, Death: true}
	if err := b.applyDeath(s.GuildID, s.PrisonerID, result); err != nil {
		return nil, err
	}

	b.close(s)
	return result, nil
}

// applyDeath wipes pockets, taxes savings (a flat debt when there is
// nothing to tax), releases the prisoner and clears their injuries.
func (b *Boxes) applyDeath(guildID, userID string, result *BoxesResult) error {
	acct, err := b.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return err
	}

	if acct.Pockets > 0 {
		if _, err := b.ledger.UpdatePockets(guildID, userID, -acct.Pockets); err != nil {
			return err
		}
		result.PocketsLost = acct.Pockets
	}

	penalty := int64(float64(acct.Savings) * boxesDeathSavingsPenalty)
	if acct.Savings <= 0 || penalty <= 0 {
		penalty = boxesFlatDebt
	}
	if _, err := b.ledger.UpdateSavings(guildID, userID, -penalty); err != nil {
		return err
	}
	result.SavingsLost = penalty

	if err := b.ledger.ReleaseFromPrison(guildID, userID); err != nil {
		return err
	}
	return b.ledger.HealInjuries(guildID, userID)
}

// healOne knocks a single injury off, leaving the flag consistent.
func (b *Boxes) healOne(guildID, userID string) error {
	acct, err := b.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return err
	}
	if acct.Injuries == 0 {
		return nil
	}
	return b.ledger.SetInjuries(guildID, userID, acct.Injuries-1)
}

// close frees the seats and drops the round; callers hold b.mu.
func (b *Boxes) close(s *BoxesSession) {
	b.registry.End(s.session)
	delete(b.sessions, s.ID)
}
