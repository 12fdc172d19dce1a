package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjuryTierFor(t *testing.T) {
	assert.Equal(t, TierHealthy, InjuryTierFor(0).Name)
	assert.Equal(t, TierLight, InjuryTierFor(1).Name)
	assert.Equal(t, TierModerate, InjuryTierFor(2).Name)
	assert.Equal(t, TierNeedsSurgery, InjuryTierFor(3).Name)
	assert.Equal(t, TierCritical, InjuryTierFor(4).Name)
	assert.Equal(t, TierCritical, InjuryTierFor(10).Name)
}

func TestFailRate(t *testing.T) {
	assert.Equal(t, 51, FailRate(FailRateCrime, 0))
	assert.Equal(t, 55, FailRate(FailRateRob, 0))
	assert.Equal(t, 61, FailRate(FailRateCrime, 2))
	assert.Equal(t, 80, FailRate(FailRateRob, 4))

	// capped so success is always possible
	assert.Equal(t, 95, FailRate(90, 4))
}

func TestRollOutcomeHealthy(t *testing.T) {
	// healthy bands: death 1-15, injury 16-80, prison 81-100
	assert.Equal(t, OutcomeDeath, RollOutcome(&scriptedDice{rolls: []int{0}}, 0))
	assert.Equal(t, OutcomeDeath, RollOutcome(&scriptedDice{rolls: []int{14}}, 0))
	assert.Equal(t, OutcomeInjury, RollOutcome(&scriptedDice{rolls: []int{15}}, 0))
	assert.Equal(t, OutcomeInjury, RollOutcome(&scriptedDice{rolls: []int{79}}, 0))
	assert.Equal(t, OutcomePrison, RollOutcome(&scriptedDice{rolls: []int{80}}, 0))
	assert.Equal(t, OutcomePrison, RollOutcome(&scriptedDice{rolls: []int{99}}, 0))
}

func TestRollOutcomeCritical(t *testing.T) {
	// at critical condition: death 1-40, injury 41-50, prison 51-100
	assert.Equal(t, OutcomeDeath, RollOutcome(&scriptedDice{rolls: []int{39}}, 4))
	assert.Equal(t, OutcomeInjury, RollOutcome(&scriptedDice{rolls: []int{40}}, 4))
	assert.Equal(t, OutcomeInjury, RollOutcome(&scriptedDice{rolls: []int{49}}, 4))
	assert.Equal(t, OutcomePrison, RollOutcome(&scriptedDice{rolls: []int{50}}, 4))
}

func TestEarningMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, EarningMultiplier(0))
	assert.Equal(t, 1.0, EarningMultiplier(2))
	assert.Equal(t, 0.8, EarningMultiplier(3))
	assert.Equal(t, 0.8, EarningMultiplier(4))
}

func TestModifiedCooldown(t *testing.T) {
	assert.Equal(t, int64(60), ModifiedCooldown(0, 60))
	assert.Equal(t, int64(72), ModifiedCooldown(1, 60))
	assert.Equal(t, int64(90), ModifiedCooldown(2, 75))
}

func TestEscapeChanceModifier(t *testing.T) {
	assert.Equal(t, 0, EscapeChanceModifier(0))
	assert.Equal(t, -3, EscapeChanceModifier(1))
	assert.Equal(t, -25, EscapeChanceModifier(4))
}

func TestHealCost(t *testing.T) {
	assert.Equal(t, int64(0), HealCost(0))
	assert.Equal(t, int64(10), HealCost(1))
	assert.Equal(t, int64(50), HealCost(7))
}
