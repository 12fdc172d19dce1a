package games

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/models"
	"sennabot/service"
)

// Breakout mini-game parameters.
const (
	BreakoutViewTimeout = 120 * time.Second

	officerDoorChance  = 75
	oldGuardsKeyChance = 65
	soldatDoorCount    = 2
	lancerDoorCount    = 4
	rookPinCount       = 3
	rookPinChoices     = 4
	rookDurability     = 4
	morticianBottles   = 6
	jaegerPathSteps    = 8
	jaegerStepChance   = 48
	jaegerChanceFloor  = 8

	timeoutSavingsPenalty = 0.25
	timeoutFlatDebt       = 75
)

// BreakoutSession is a helper's attempt to free an imprisoned member. Each
// prison tier runs a different mini-game over the same session record.
type BreakoutSession struct {
	ID         string
	GuildID    string
	HelperID   string
	HelperName string
	TargetID   string
	TargetName string
	Tier       string

	// door games (Soldat Brigade, Lancer Legion)
	CorrectDoor  int
	SecondChance bool
	OpenedDoors  map[int]bool

	// lockpick game (Rook Division)
	PinSequence []int
	PinProgress int
	Durability  int

	// bottle game (Mortician Wing)
	Amatoxin   int
	Eliminated map[int]bool

	// path game (Jaeger Camp)
	PathStep int

	session *Session
}

// BreakoutStep reports the effect of one mini-game interaction.
type BreakoutStep struct {
	Resolved bool
	Success  bool
	Chance   int

	SecondChance   bool
	Durability     int
	PinProgress    int
	BottlesLeft    int
	PathStep       int
	InjuryToHelper bool
	HelperTier     string
	BoxesStarted   bool

	// timeout forfeit penalties
	PocketsLost int64
	SavingsLost int64
}

// Breakout coordinates prison break attempts.
type Breakout struct {
	ledger   service.LedgerService
	registry *Registry
	dice     service.Dice

	// mu is held across whole step transitions; button handlers and the
	// view timer race otherwise
	mu       sync.Mutex
	sessions map[string]*BreakoutSession
}

// NewBreakout creates the breakout coordinator.
func NewBreakout(ledger service.LedgerService, registry *Registry, dice service.Dice) *Breakout {
	return &Breakout{
		ledger:   ledger,
		registry: registry,
		dice:     dice,
		sessions: make(map[string]*BreakoutSession),
	}
}

// Session returns an active breakout by ID.
func (b *Breakout) Session(id string) (*BreakoutSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	return s, ok
}

// session looks a breakout up without locking; callers hold b.mu.
func (b *Breakout) session(id string) (*BreakoutSession, bool) {
	s, ok := b.sessions[id]
	return s, ok
}

// Start validates eligibility, stamps the breakout cooldown and opens the
// mini-game matching the target's prison tier.
func (b *Breakout) Start(guildID, helperID, helperName, targetID, targetName string) (*BreakoutSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if helperID == targetID {
		return nil, service.ErrSelfTarget
	}

	helperInPrison, _, err := b.ledger.IsInPrison(guildID, helperID)
	if err != nil {
		return nil, err
	}
	if helperInPrison {
		return nil, service.ErrInPrison
	}

	targetInPrison, prison, err := b.ledger.IsInPrison(guildID, targetID)
	if err != nil {
		return nil, err
	}
	if !targetInPrison {
		return nil, service.ErrNotInPrison
	}

	ready, remaining, err := b.ledger.ClaimCooldown(guildID, helperID, models.CooldownBreakout, service.BreakoutCooldown)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, &service.CooldownError{Activity: models.CooldownBreakout, Remaining: remaining}
	}

	session, err := b.registry.Begin(KindBreakout, guildID, helperID)
	if err != nil {
		return nil, err
	}

	s := &BreakoutSession{
		ID:         session.ID,
		GuildID:    guildID,
		HelperID:   helperID,
		HelperName: helperName,
		TargetID:   targetID,
		TargetName: targetName,
		Tier:       prison.Tier,
		session:    session,
	}
	b.prepare(s)
	b.sessions[s.ID] = s
	return s, nil
}

// prepare rolls the hidden state for the tier's mini-game.
func (b *Breakout) prepare(s *BreakoutSession) {
	switch s.Tier {
	case service.PrisonSoldatBrigade:
		s.CorrectDoor = b.dice.Intn(soldatDoorCount)
		s.OpenedDoors = make(map[int]bool)
	case service.PrisonLancerLegion:
		s.CorrectDoor = b.dice.Intn(lancerDoorCount)
		s.OpenedDoors = make(map[int]bool)
	case service.PrisonRookDivision:
		s.PinSequence = b.samplePins()
		s.Durability = rookDurability
	case service.PrisonMorticianWing:
		s.Amatoxin = b.dice.Intn(morticianBottles)
		s.Eliminated = make(map[int]bool)
	}
}

// samplePins draws a unique ordered pin sequence.
func (b *Breakout) samplePins() []int {
	pins := make([]int, rookPinChoices)
	for i := range pins {
		pins[i] = i + 1
	}
	for i := len(pins) - 1; i > 0; i-- {
		j := b.dice.Intn(i + 1)
		pins[i], pins[j] = pins[j], pins[i]
	}
	return pins[:rookPinCount]
}

func (b *Breakout) helperEscapeMod(s *BreakoutSession) int {
	acct, err := b.ledger.GetAccount(s.GuildID, s.HelperID, s.HelperName)
	if err != nil {
		return 0
	}
	return service.EscapeChanceModifier(acct.Injuries)
}

// AttemptDoor resolves the single-roll tiers (Officer Group, Old Guards).
func (b *Breakout) AttemptDoor(sessionID string) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}

	base := officerDoorChance
	if s.Tier == service.PrisonOldGuards {
		base = oldGuardsKeyChance
	}
	chance := base + b.helperEscapeMod(s)
	if chance < service.EscapeChanceFloor {
		chance = service.EscapeChanceFloor
	}

	step := &BreakoutStep{Resolved: true, Chance: chance}
	step.Success = b.dice.Intn(100)+1 <= chance
	return step, b.resolve(s, step)
}

// PickDoor resolves the guessing tiers (Soldat Brigade, Lancer Legion).
// A wrong first pick in the Lancer Legion re-hides the exit behind the
// remaining doors and grants one more guess.
func (b *Breakout) PickDoor(sessionID string, door int) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}

	if door == s.CorrectDoor {
		step := &BreakoutStep{Resolved: true, Success: true}
		return step, b.resolve(s, step)
	}

	if s.Tier == service.PrisonLancerLegion && !s.SecondChance {
		s.SecondChance = true
		s.OpenedDoors[door] = true
		// the exit moves; re-roll it among the untouched doors
		for {
			s.CorrectDoor = b.dice.Intn(lancerDoorCount)
			if !s.OpenedDoors[s.CorrectDoor] {
				break
			}
		}
		return &BreakoutStep{SecondChance: true}, nil
	}

	step := &BreakoutStep{Resolved: true}
	return step, b.resolve(s, step)
}

// PressPin resolves one lockpick input for the Rook Division game.
func (b *Breakout) PressPin(sessionID string, pin int) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}

	if pin == s.PinSequence[s.PinProgress] {
		s.PinProgress++
		if s.PinProgress == len(s.PinSequence) {
			step := &BreakoutStep{Resolved: true, Success: true}
			return step, b.resolve(s, step)
		}
		return &BreakoutStep{PinProgress: s.PinProgress, Durability: s.Durability}, nil
	}

	s.Durability--
	if s.Durability <= 0 {
		// the pick snaps and the guards come running
		step := &BreakoutStep{Resolved: true}
		return step, b.resolve(s, step)
	}
	return &BreakoutStep{PinProgress: s.PinProgress, Durability: s.Durability}, nil
}

// PickBottle resolves one elimination for the Mortician Wing game. Picking
// the Amatoxin ends the attempt; clearing every other bottle frees the
// target.
func (b *Breakout) PickBottle(sessionID string, bottle int) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}

	if bottle == s.Amatoxin {
		step := &BreakoutStep{Resolved: true}
		return step, b.resolve(s, step)
	}

	s.Eliminated[bottle] = true
	if len(s.Eliminated) == morticianBottles-1 {
		step := &BreakoutStep{Resolved: true, Success: true}
		return step, b.resolve(s, step)
	}
	return &BreakoutStep{BottlesLeft: morticianBottles - len(s.Eliminated)}, nil
}

// Advance takes one step along the Jaeger Camp paths. An unsafe path injures
// the helper; a helper dragged down to critical condition faces the four
// boxes instead.
func (b *Breakout) Advance(sessionID string) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, service.ErrSessionActive
	}

	chance := jaegerStepChance + b.helperEscapeMod(s)
	if chance < jaegerChanceFloor {
		chance = jaegerChanceFloor
	}

	if b.dice.Intn(100)+1 <= chance {
		s.PathStep++
		if s.PathStep >= jaegerPathSteps {
			step := &BreakoutStep{Resolved: true, Success: true, Chance: chance}
			return step, b.resolve(s, step)
		}
		return &BreakoutStep{PathStep: s.PathStep, Chance: chance}, nil
	}

	count, err := b.ledger.AddInjury(s.GuildID, s.HelperID)
	if err != nil {
		return nil, err
	}
	step := &BreakoutStep{PathStep: s.PathStep, Chance: chance, InjuryToHelper: true}

	if service.InjuryTierFor(count).Name == service.TierCritical {
		step.BoxesStarted = true
		b.close(s)
		return step, nil
	}
	return step, nil
}

// Cancel drops a session that never reached the helper, without penalties.
func (b *Breakout) Cancel(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.session(sessionID); ok {
		b.close(s)
	}
}

// Timeout resolves an abandoned attempt as a failure. On top of the usual
// arrest the guards empty the helper's pockets and confiscate a cut of their
// savings, or a flat debt when there is nothing to confiscate.
func (b *Breakout) Timeout(sessionID string) (*BreakoutStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.session(sessionID)
	if !ok {
		return nil, nil
	}

	step := &BreakoutStep{Resolved: true}
	if err := b.resolve(s, step); err != nil {
		return nil, err
	}

	acct, err := b.ledger.GetAccount(s.GuildID, s.HelperID, s.HelperName)
	if err != nil {
		return step, err
	}
	if acct.Pockets > 0 {
		if _, err := b.ledger.UpdatePockets(s.GuildID, s.HelperID, -acct.Pockets); err != nil {
			return step, err
		}
		step.PocketsLost = acct.Pockets
	}
	fine := int64(float64(acct.Savings) * timeoutSavingsPenalty)
	if acct.Savings <= 0 || fine <= 0 {
		fine = timeoutFlatDebt
	}
	if _, err := b.ledger.UpdateSavings(s.GuildID, s.HelperID, -fine); err != nil {
		return step, err
	}
	step.SavingsLost = fine
	return step, nil
}

// resolve applies the terminal outcome: success frees the target, failure
// locks the helper up alongside them.
func (b *Breakout) resolve(s *BreakoutSession, step *BreakoutStep) error {
	defer b.close(s)

	if step.Success {
		if err := b.ledger.ReleaseFromPrison(s.GuildID, s.TargetID); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"guildID":  s.GuildID,
			"helperID": s.HelperID,
			"targetID": s.TargetID,
			"tier":     s.Tier,
		}).Info("Breakout succeeded")
		return nil
	}

	step.HelperTier = s.Tier
	if err := b.ledger.SendToPrison(s.GuildID, s.HelperID, s.Tier, service.PrisonTerm); err != nil {
		return err
	}

	switch s.Tier {
	case service.PrisonLancerLegion, service.PrisonRookDivision:
		if _, err := b.ledger.AddInjury(s.GuildID, s.HelperID); err != nil {
			return err
		}
		step.InjuryToHelper = true
	case service.PrisonMorticianWing:
		// a sip of Amatoxin leaves the helper needing surgery
		if err := b.ledger.SetInjuries(s.GuildID, s.HelperID, 3); err != nil {
			return err
		}
		step.InjuryToHelper = true
	}
	return nil
}

// close frees the seat and drops the session; callers hold b.mu.
func (b *Breakout) close(s *BreakoutSession) {
	b.registry.End(s.session)
	delete(b.sessions, s.ID)
}
