package service

import (
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/models"
)

// Prison tier names.
const (
	PrisonOfficerGroup  = "Officer Group"
	PrisonOldGuards     = "Old Guards"
	PrisonSoldatBrigade = "Soldat Brigade"
	PrisonLancerLegion  = "Lancer Legion"
	PrisonRookDivision  = "Rook Division"
	PrisonMorticianWing = "Mortician Wing"
	PrisonJaegerCamp    = "Jaeger Camp"
)

// Standard sentencing and attempt windows.
const (
	PrisonTerm       = time.Hour
	EscapeCooldown   = 2 * time.Minute
	BreakoutCooldown = 5 * time.Minute
)

// EscapeChanceFloor is the minimum escape chance after injury debuffs.
const EscapeChanceFloor = 5

// PrisonTier pairs a tier name with its sentencing weight and base escape
// chance.
type PrisonTier struct {
	Name         string
	Weight       int
	EscapeChance int
}

// prisonTiers is ordered from most to least likely sentence.
var prisonTiers = []PrisonTier{
	{Name: PrisonOfficerGroup, Weight: 35, EscapeChance: 75},
	{Name: PrisonOldGuards, Weight: 20, EscapeChance: 65},
	{Name: PrisonSoldatBrigade, Weight: 15, EscapeChance: 50},
	{Name: PrisonLancerLegion, Weight: 10, EscapeChance: 40},
	{Name: PrisonRookDivision, Weight: 10, EscapeChance: 40},
	{Name: PrisonMorticianWing, Weight: 5, EscapeChance: 25},
	{Name: PrisonJaegerCamp, Weight: 5, EscapeChance: 10},
}

// prisonService implements the PrisonService interface.
type prisonService struct {
	store  GuildStore
	ledger LedgerService
	dice   Dice
}

// NewPrisonService creates a new prison service.
func NewPrisonService(store GuildStore, ledger LedgerService, dice Dice) PrisonService {
	return &prisonService{
		store:  store,
		ledger: ledger,
		dice:   dice,
	}
}

func (s *prisonService) Tiers() []PrisonTier {
	out := make([]PrisonTier, len(prisonTiers))
	copy(out, prisonTiers)
	return out
}

func (s *prisonService) TierByName(name string) (PrisonTier, bool) {
	for _, t := range prisonTiers {
		if t.Name == name {
			return t, true
		}
	}
	return PrisonTier{}, false
}

// randomTier picks a tier weighted by sentencing likelihood.
func (s *prisonService) randomTier() PrisonTier {
	total := 0
	for _, t := range prisonTiers {
		total += t.Weight
	}
	roll := s.dice.Intn(total)
	for _, t := range prisonTiers {
		roll -= t.Weight
		if roll < 0 {
			return t
		}
	}
	return prisonTiers[len(prisonTiers)-1]
}

func (s *prisonService) Imprison(guildID, userID, username string) (PrisonTier, error) {
	if _, err := s.ledger.GetAccount(guildID, userID, username); err != nil {
		return PrisonTier{}, err
	}
	tier := s.randomTier()
	if err := s.ledger.SendToPrison(guildID, userID, tier.Name, PrisonTerm); err != nil {
		return PrisonTier{}, err
	}
	return tier, nil
}

// Escape resolves a solo escape attempt. The cooldown is stamped before the
// roll so a failed attempt still costs the window. Jaeger Camp escapes are
// interactive and signalled back to the caller instead of rolled here.
func (s *prisonService) Escape(guildID, userID, username string) (*EscapeResult, error) {
	inPrison, prison, err := s.ledger.IsInPrison(guildID, userID)
	if err != nil {
		return nil, err
	}
	if !inPrison {
		return nil, ErrNotInPrison
	}

	ready, remaining, err := s.ledger.ClaimCooldown(guildID, userID, models.CooldownEscape, EscapeCooldown)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, &CooldownError{Activity: models.CooldownEscape, Remaining: remaining}
	}

	tier, ok := s.TierByName(prison.Tier)
	if !ok {
		return nil, ErrNotInPrison
	}

	if tier.Name == PrisonJaegerCamp {
		return &EscapeResult{RequiresBoxes: true, Tier: tier.Name}, nil
	}

	acct, err := s.ledger.GetAccount(guildID, userID, username)
	if err != nil {
		return nil, err
	}

	chance := tier.EscapeChance + EscapeChanceModifier(acct.Injuries)
	if chance < EscapeChanceFloor {
		chance = EscapeChanceFloor
	}

	result := &EscapeResult{Tier: tier.Name, Chance: chance, InjuriesNow: acct.Injuries}

	if s.dice.Intn(100)+1 <= chance {
		result.Success = true
		if err := s.ledger.ReleaseFromPrison(guildID, userID); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := s.applyEscapePenalty(guildID, userID, tier.Name, acct.Injuries, result); err != nil {
		return nil, err
	}
	return result, nil
}

// applyEscapePenalty punishes a failed escape according to the tier.
func (s *prisonService) applyEscapePenalty(guildID, userID, tier string, injuries int, result *EscapeResult) error {
	addInjury := func() error {
		if InjuryTierFor(injuries).Name == TierCritical {
			return nil
		}
		now, err := s.ledger.AddInjury(guildID, userID)
		if err != nil {
			return err
		}
		result.InjuryAdded = true
		result.InjuriesNow = now
		return nil
	}

	switch tier {
	case PrisonOfficerGroup:
		// the officers find it funny, no penalty

	case PrisonOldGuards:
		if _, err := s.ledger.UpdateSavings(guildID, userID, -5); err != nil {
			return err
		}
		result.SavingsLost = 5

	case PrisonSoldatBrigade:
		if _, err := s.ledger.UpdateSavings(guildID, userID, -10); err != nil {
			return err
		}
		result.SavingsLost = 10

	case PrisonLancerLegion:
		if _, err := s.ledger.UpdateSavings(guildID, userID, -15); err != nil {
			return err
		}
		result.SavingsLost = 15
		if err := addInjury(); err != nil {
			return err
		}

	case PrisonRookDivision:
		if err := s.ledger.ExtendPrison(guildID, userID, 15*time.Minute); err != nil {
			return err
		}
		result.ExtraTime = 15 * time.Minute
		if err := addInjury(); err != nil {
			return err
		}

	case PrisonMorticianWing:
		switch InjuryTierFor(injuries).Name {
		case TierCritical:
			if _, err := s.ledger.UpdateSavings(guildID, userID, -20); err != nil {
				return err
			}
			result.SavingsLost = 20
		case TierNeedsSurgery:
			if err := s.ledger.SetInjuries(guildID, userID, 4); err != nil {
				return err
			}
			result.InjuryAdded = true
			result.InjuriesNow = 4
		default:
			if err := s.ledger.SetInjuries(guildID, userID, 3); err != nil {
				return err
			}
			result.InjuryAdded = true
			result.InjuriesNow = 3
		}
	}
	return nil
}

// SweepExpired releases every served sentence across all guilds. The lazy
// release in GetAccount covers individual reads; this pass keeps documents
// tidy after downtime.
func (s *prisonService) SweepExpired() {
	now := time.Now().Unix()
	for _, guildID := range s.store.GuildIDs() {
		lock := s.store.Lock(guildID)
		lock.Lock()

		doc := s.store.Guild(guildID)
		released := 0
		for _, acct := range doc.Users {
			if acct.Prison != nil && now >= acct.Prison.ReleaseTime {
				acct.Prison = nil
				released++
			}
		}
		if released > 0 {
			if err := s.store.SaveGuild(guildID, doc); err != nil {
				log.WithFields(log.Fields{
					"guildID": guildID,
					"error":   err,
				}).Error("Failed to persist prison sweep")
			} else {
				log.WithFields(log.Fields{
					"guildID":  guildID,
					"released": released,
				}).Info("Released served prison sentences")
			}
		}

		lock.Unlock()
	}
}
