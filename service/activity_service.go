package service

import (
	"time"

	"sennabot/models"
)

// Activity constants.
const (
	WorkCooldown  = 60 * time.Second
	WorkPayoutMin = 4
	WorkPayoutMax = 12

	CrimeCooldown  = 75 * time.Second
	CrimePayoutMin = 15
	CrimePayoutMax = 35

	FineMin = 5
	FineMax = 30

	RobCooldown         = 300 * time.Second
	RobVictimProtection = 600 * time.Second
	RobMinAmount        = 15

	RouletteCooldown = 420 * time.Second
)

// Roulette colors and payouts. Green is the long shot.
const (
	RoulettePurple = "purple"
	RouletteYellow = "yellow"
	RouletteGreen  = "green"
)

var rouletteWeights = map[string]int{
	RoulettePurple: 18,
	RouletteYellow: 18,
	RouletteGreen:  1,
}

var rouletteMultipliers = map[string]int64{
	RoulettePurple: 2,
	RouletteYellow: 2,
	RouletteGreen:  14,
}

// activityService implements the ActivityService interface.
type activityService struct {
	store  GuildStore
	ledger LedgerService
	dice   Dice
	now    func() time.Time
}

// NewActivityService creates a new activity service.
func NewActivityService(store GuildStore, ledger LedgerService, dice Dice) ActivityService {
	return &activityService{
		store:  store,
		ledger: ledger,
		dice:   dice,
		now:    time.Now,
	}
}

// randRange returns a uniform value in [min, max].
func (s *activityService) randRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.dice.Intn(max-min+1)
}

// gate enforces the shared eligibility checks for an activity and stamps its
// cooldown. The cooldown window stretches with the injury tier.
func (s *activityService) gate(guildID, userID, username, activity string, base time.Duration) (*models.UserAccount, error) {
	acct, err := s.ledger.GetAccount(guildID, userID, username)
	if err != nil {
		return nil, err
	}
	if acct.Prison != nil {
		return nil, ErrInPrison
	}

	window := time.Duration(ModifiedCooldown(acct.Injuries, int64(base/time.Second))) * time.Second
	ready, remaining, err := s.ledger.ClaimCooldown(guildID, userID, activity, window)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, &CooldownError{Activity: activity, Remaining: remaining}
	}
	return acct, nil
}

func (s *activityService) Work(guildID, userID, username string) (*WorkResult, error) {
	acct, err := s.gate(guildID, userID, username, models.CooldownWork, WorkCooldown)
	if err != nil {
		return nil, err
	}

	settings := s.store.Settings()
	wage := int64(float64(s.randRange(WorkPayoutMin, WorkPayoutMax)) * EarningMultiplier(acct.Injuries))

	result := &WorkResult{}
	if s.dice.Intn(100)+1 <= settings.CriticalSuccessChance {
		result.Critical = true
		result.Multiplier = s.randRange(settings.CriticalMultiplierMin, settings.CriticalMultiplierMax)
		wage *= int64(result.Multiplier)
	}
	result.Payout = wage

	newPockets, err := s.ledger.UpdatePockets(guildID, userID, wage)
	if err != nil {
		return nil, err
	}
	result.NewPockets = newPockets
	return result, nil
}

func (s *activityService) Crime(guildID, userID, username string) (*CrimeResult, error) {
	acct, err := s.gate(guildID, userID, username, models.CooldownCrime, CrimeCooldown)
	if err != nil {
		return nil, err
	}

	failRate := FailRate(FailRateCrime, acct.Injuries)
	if s.dice.Intn(100)+1 <= failRate {
		result := &CrimeResult{Success: false}
		if err := s.resolveFailure(guildID, userID, acct.Injuries, (*failureResult)(result)); err != nil {
			return nil, err
		}
		return result, nil
	}

	settings := s.store.Settings()
	reward := int64(float64(s.randRange(CrimePayoutMin, CrimePayoutMax)) * EarningMultiplier(acct.Injuries))
	if s.dice.Intn(100)+1 <= settings.CriticalSuccessChance {
		reward *= int64(s.randRange(settings.CriticalMultiplierMin, settings.CriticalMultiplierMax))
	}

	if _, err := s.ledger.UpdatePockets(guildID, userID, reward); err != nil {
		return nil, err
	}
	return &CrimeResult{Success: true, Payout: reward}, nil
}

func (s *activityService) Rob(guildID, userID, username, targetID, targetName string) (*RobResult, error) {
	if targetID == userID {
		return nil, ErrSelfTarget
	}

	target, err := s.ledger.GetAccount(guildID, targetID, targetName)
	if err != nil {
		return nil, err
	}
	protection := int64(RobVictimProtection / time.Second)
	if elapsed := s.now().Unix() - target.LastRobbed; elapsed < protection {
		return nil, &ProtectionError{Remaining: time.Duration(protection-elapsed) * time.Second}
	}

	acct, err := s.gate(guildID, userID, username, models.CooldownRob, RobCooldown)
	if err != nil {
		return nil, err
	}

	failRate := FailRate(FailRateRob, acct.Injuries)
	if s.dice.Intn(100)+1 <= failRate {
		result := &RobResult{Success: false}
		fr := &failureResult{}
		if err := s.resolveFailure(guildID, userID, acct.Injuries, fr); err != nil {
			return nil, err
		}
		result.Outcome = fr.Outcome
		result.Fine = fr.Fine
		result.PocketsLost = fr.PocketsLost
		result.SavingsLost = fr.SavingsLost
		result.PrisonTier = fr.PrisonTier
		result.InjuryTier = fr.InjuryTier
		return result, nil
	}

	// cooldown already spent; a broke target still burns the attempt
	if target.Pockets <= 5 {
		return &RobResult{Success: true, TargetBroke: true}, nil
	}

	stolen := int64(s.randRange(int(float64(target.Pockets)*0.6), int(float64(target.Pockets)*0.8)))
	if stolen < RobMinAmount {
		stolen = RobMinAmount
	}
	if target.Pockets < RobMinAmount {
		stolen = target.Pockets
	}

	if _, err := s.ledger.UpdatePockets(guildID, userID, stolen); err != nil {
		return nil, err
	}
	if _, err := s.ledger.UpdatePockets(guildID, targetID, -stolen); err != nil {
		return nil, err
	}
	if err := s.ledger.SetLastRobbed(guildID, targetID, s.now()); err != nil {
		return nil, err
	}
	return &RobResult{Success: true, Stolen: stolen}, nil
}

// failureResult mirrors the shared fields of CrimeResult and RobResult.
type failureResult CrimeResult

// resolveFailure rolls and applies the death / injury / prison outcome a
// failed risky activity earns.
func (s *activityService) resolveFailure(guildID, userID string, injuries int, result *failureResult) error {
	result.Outcome = RollOutcome(s.dice, injuries)

	switch result.Outcome {
	case OutcomeDeath:
		pocketsLost, savingsLost, prisonTier, err := s.handleDeath(guildID, userID)
		if err != nil {
			return err
		}
		result.PocketsLost = pocketsLost
		result.SavingsLost = savingsLost
		result.PrisonTier = prisonTier

	case OutcomeInjury:
		result.Fine = int64(s.randRange(FineMin, FineMax))
		if _, err := s.ledger.UpdatePockets(guildID, userID, -result.Fine); err != nil {
			return err
		}
		count, err := s.ledger.AddInjury(guildID, userID)
		if err != nil {
			return err
		}
		result.InjuryTier = InjuryTierFor(count).Name

	case OutcomePrison:
		result.PrisonTier = PrisonSoldatBrigade
		if err := s.ledger.SendToPrison(guildID, userID, PrisonSoldatBrigade, PrisonTerm); err != nil {
			return err
		}
	}
	return nil
}

// handleDeath clears pockets and charges the reaper's tax. Accounts whose
// savings cannot cover the tax go to prison instead.
func (s *activityService) handleDeath(guildID, userID string) (pocketsLost, savingsLost int64, prisonTier string, err error) {
	acct, err := s.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return 0, 0, "", err
	}

	pocketsLost = acct.Pockets
	if pocketsLost > 0 {
		if _, err := s.ledger.UpdatePockets(guildID, userID, -pocketsLost); err != nil {
			return 0, 0, "", err
		}
	}

	savingsLost = int64(float64(acct.Savings) * DeathSavingsPenalty)
	if acct.Savings <= 0 || savingsLost <= 0 {
		if err := s.ledger.SendToPrison(guildID, userID, PrisonOfficerGroup, PrisonTerm); err != nil {
			return 0, 0, "", err
		}
		return pocketsLost, 0, PrisonOfficerGroup, nil
	}

	if _, err := s.ledger.UpdateSavings(guildID, userID, -savingsLost); err != nil {
		return 0, 0, "", err
	}
	return pocketsLost, savingsLost, "", nil
}

func (s *activityService) Roulette(guildID, userID, username, color string, bet int64) (*RouletteResult, error) {
	if _, ok := rouletteWeights[color]; !ok {
		return nil, ErrInvalidColor
	}
	if bet <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, err := s.ledger.GetAccount(guildID, userID, username)
	if err != nil {
		return nil, err
	}
	if acct.Pockets < bet {
		return nil, ErrInsufficientFunds
	}

	if _, err := s.gate(guildID, userID, username, models.CooldownRoulette, RouletteCooldown); err != nil {
		return nil, err
	}

	// bet leaves the pockets before the wheel spins
	if _, err := s.ledger.UpdatePockets(guildID, userID, -bet); err != nil {
		return nil, err
	}

	landed := s.spinWheel()
	result := &RouletteResult{Landed: landed}

	if landed == color {
		result.Won = true
		result.Payout = bet * rouletteMultipliers[color]
		newPockets, err := s.ledger.UpdatePockets(guildID, userID, result.Payout)
		if err != nil {
			return nil, err
		}
		result.NewPockets = newPockets
		return result, nil
	}

	current, err := s.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return nil, err
	}
	result.NewPockets = current.Pockets
	return result, nil
}

func (s *activityService) spinWheel() string {
	total := 0
	for _, w := range rouletteWeights {
		total += w
	}
	roll := s.dice.Intn(total)
	for _, color := range []string{RoulettePurple, RouletteYellow, RouletteGreen} {
		roll -= rouletteWeights[color]
		if roll < 0 {
			return color
		}
	}
	return RoulettePurple
}
