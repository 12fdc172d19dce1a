package service

// Injury status math. Pure functions over the injury count so activity
// resolvers, prison flows and the mini-games all share one table.

// InjuryTier describes the effects of an injury severity band.
type InjuryTier struct {
	Name               string
	Threshold          int
	HealCost           int64
	CooldownMultiplier float64
	FailRateMod        int
	EarningPenalty     float64
	DeathChanceMod     int
	PrisonChanceMod    int
	EscapeChanceMod    int
}

// Injury tier names.
const (
	TierHealthy      = "Healthy"
	TierLight        = "Light Injury"
	TierModerate     = "Moderate Injury"
	TierNeedsSurgery = "Needs Surgery"
	TierCritical     = "Critical Condition"
)

var healthyTier = InjuryTier{
	Name:               TierHealthy,
	CooldownMultiplier: 1.0,
}

// injuryTiers is ordered by threshold; lookup walks it from the top.
var injuryTiers = []InjuryTier{
	{
		Name:               TierLight,
		Threshold:          1,
		HealCost:           10,
		CooldownMultiplier: 1.2,
		EscapeChanceMod:    -3,
	},
	{
		Name:               TierModerate,
		Threshold:          2,
		HealCost:           15,
		CooldownMultiplier: 1.2,
		FailRateMod:        10,
		EscapeChanceMod:    -5,
	},
	{
		Name:               TierNeedsSurgery,
		Threshold:          3,
		HealCost:           30,
		CooldownMultiplier: 1.2,
		FailRateMod:        10,
		EarningPenalty:     0.2,
		DeathChanceMod:     15,
		PrisonChanceMod:    20,
		EscapeChanceMod:    -15,
	},
	{
		Name:               TierCritical,
		Threshold:          4,
		HealCost:           50,
		CooldownMultiplier: 1.2,
		FailRateMod:        25,
		EarningPenalty:     0.2,
		DeathChanceMod:     25,
		PrisonChanceMod:    30,
		EscapeChanceMod:    -25,
	},
}

// Base fail rates for risky activities.
const (
	FailRateCrime = 51
	FailRateRob   = 55
)

// Base outcome chances when a risky activity fails. Injury takes whatever
// the modified death and prison chances leave over.
const (
	DeathChance  = 15
	InjuryChance = 65
	PrisonChance = 20
)

// DeathSavingsPenalty is the fraction of savings lost on a death outcome.
const DeathSavingsPenalty = 0.10

// Outcome is the result of a failed risky activity.
type Outcome int

const (
	OutcomeDeath Outcome = iota
	OutcomeInjury
	OutcomePrison
)

// InjuryTierFor returns the tier matching an injury count.
func InjuryTierFor(injuries int) InjuryTier {
	for i := len(injuryTiers) - 1; i >= 0; i-- {
		if injuries >= injuryTiers[i].Threshold {
			return injuryTiers[i]
		}
	}
	return healthyTier
}

// FailRate combines a base fail rate with the injury modifier, capped at 95
// so there is always a slim chance of success.
func FailRate(base, injuries int) int {
	rate := base + InjuryTierFor(injuries).FailRateMod
	if rate > 95 {
		return 95
	}
	return rate
}

// RollOutcome picks death, injury or prison for a failed activity. Death and
// prison chances grow with injury severity; injury absorbs the remainder.
func RollOutcome(d Dice, injuries int) Outcome {
	tier := InjuryTierFor(injuries)
	death := DeathChance + tier.DeathChanceMod
	prison := PrisonChance + tier.PrisonChanceMod
	injury := 100 - death - prison

	roll := d.Intn(100) + 1
	switch {
	case roll <= death:
		return OutcomeDeath
	case roll <= death+injury:
		return OutcomeInjury
	default:
		return OutcomePrison
	}
}

// EarningMultiplier scales activity payouts down for the badly injured.
func EarningMultiplier(injuries int) float64 {
	return 1.0 - InjuryTierFor(injuries).EarningPenalty
}

// ModifiedCooldown stretches a base cooldown by the injury tier multiplier.
func ModifiedCooldown(injuries int, base int64) int64 {
	return int64(float64(base) * InjuryTierFor(injuries).CooldownMultiplier)
}

// EscapeChanceModifier is the escape roll debuff for the injury count.
func EscapeChanceModifier(injuries int) int {
	return InjuryTierFor(injuries).EscapeChanceMod
}

// HealCost is the medal cost to heal all injuries at the injury count.
func HealCost(injuries int) int64 {
	return InjuryTierFor(injuries).HealCost
}
