package service

// HealResult reports a mortician visit.
type HealResult struct {
	Cost        int64
	FromPockets int64
	FromSavings int64
	TierHealed  string
}

// MorticianService heals injuries for a fee.
type MorticianService interface {
	// Heal clears all injuries, charging the tier's heal cost from pockets
	// first and savings for the remainder
	Heal(guildID, userID, username string) (*HealResult, error)
}

type morticianService struct {
	ledger LedgerService
}

// NewMorticianService creates a new mortician service.
func NewMorticianService(ledger LedgerService) MorticianService {
	return &morticianService{ledger: ledger}
}

func (s *morticianService) Heal(guildID, userID, username string) (*HealResult, error) {
	acct, err := s.ledger.GetAccount(guildID, userID, username)
	if err != nil {
		return nil, err
	}

	// the morts would rather see you in pain
	if acct.Prison != nil && (acct.Prison.Tier == PrisonMorticianWing || acct.Prison.Tier == PrisonJaegerCamp) {
		return nil, ErrHealingRefused
	}
	if acct.Injuries == 0 {
		return nil, ErrNotInjured
	}
	if acct.Pockets < 0 {
		return nil, ErrNegativeBalance
	}

	tier := InjuryTierFor(acct.Injuries)
	cost := tier.HealCost
	if acct.Total() < cost {
		return nil, ErrInsufficientFunds
	}

	fromPockets := cost
	if fromPockets > acct.Pockets {
		fromPockets = acct.Pockets
	}
	fromSavings := cost - fromPockets

	if fromPockets > 0 {
		if _, err := s.ledger.UpdatePockets(guildID, userID, -fromPockets); err != nil {
			return nil, err
		}
	}
	if fromSavings > 0 {
		if _, err := s.ledger.UpdateSavings(guildID, userID, -fromSavings); err != nil {
			return nil, err
		}
	}
	if err := s.ledger.HealInjuries(guildID, userID); err != nil {
		return nil, err
	}

	return &HealResult{
		Cost:        cost,
		FromPockets: fromPockets,
		FromSavings: fromSavings,
		TierHealed:  tier.Name,
	}, nil
}
