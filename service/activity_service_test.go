package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivities(t *testing.T, dice Dice) (ActivityService, LedgerService) {
	t.Helper()
	st := newTestStore(t)
	ledger := NewLedgerService(st, nil)
	return NewActivityService(st, ledger, dice), ledger
}

func TestWorkPaysWage(t *testing.T) {
	// wage roll 4+4=8, crit roll 100 misses the 2% chance
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{4, 99}})

	result, err := activities.Work(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.False(t, result.Critical)
	assert.Equal(t, int64(8), result.Payout)
	assert.Equal(t, int64(8), result.NewPockets)

	acct, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), acct.Pockets)
}

func TestWorkCriticalSuccess(t *testing.T) {
	// wage roll 4, crit roll 1 hits, multiplier roll lands on 5
	activities, _ := newTestActivities(t, &scriptedDice{rolls: []int{0, 0, 2}})

	result, err := activities.Work(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.True(t, result.Critical)
	assert.Equal(t, 5, result.Multiplier)
	assert.Equal(t, int64(20), result.Payout)
}

func TestWorkCooldown(t *testing.T) {
	activities, _ := newTestActivities(t, &scriptedDice{rolls: []int{4, 99}})

	_, err := activities.Work(testGuild, testUser, "senna")
	require.NoError(t, err)

	_, err = activities.Work(testGuild, testUser, "senna")
	assert.ErrorIs(t, err, ErrOnCooldown)

	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.InDelta(t, WorkCooldown.Seconds(), cooldown.Remaining.Seconds(), 1)
}

func TestWorkBlockedInPrison(t *testing.T) {
	activities, ledger := newTestActivities(t, &scriptedDice{})

	require.NoError(t, ledger.SendToPrison(testGuild, testUser, PrisonOfficerGroup, time.Hour))
	_, err := activities.Work(testGuild, testUser, "senna")
	assert.ErrorIs(t, err, ErrInPrison)
}

func TestCrimeSuccess(t *testing.T) {
	// fail roll 100 beats the 51% rate, payout roll 15, crit roll misses
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{99, 0, 99}})

	result, err := activities.Crime(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(15), result.Payout)

	acct, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(15), acct.Pockets)
}

func TestCrimeFailureInjury(t *testing.T) {
	// fail roll 1, outcome roll 21 lands in the injury band, fine roll 5+5=10
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{0, 20, 5}})

	result, err := activities.Crime(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, OutcomeInjury, result.Outcome)
	assert.Equal(t, int64(10), result.Fine)
	assert.Equal(t, TierLight, result.InjuryTier)

	acct, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(-10), acct.Pockets)
	assert.Equal(t, 1, acct.Injuries)
}

func TestCrimeFailurePrison(t *testing.T) {
	// fail roll 1, outcome roll 86 lands in the prison band
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{0, 85}})

	result, err := activities.Crime(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.Equal(t, OutcomePrison, result.Outcome)
	assert.Equal(t, PrisonSoldatBrigade, result.PrisonTier)

	inPrison, prison, err := ledger.IsInPrison(testGuild, testUser)
	require.NoError(t, err)
	assert.True(t, inPrison)
	assert.Equal(t, PrisonSoldatBrigade, prison.Tier)
}

func TestCrimeFailureDeath(t *testing.T) {
	// fail roll 1, outcome roll 1 lands in the death band
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{0, 0}})

	_, err := ledger.UpdatePockets(testGuild, testUser, 20)
	require.NoError(t, err)

	result, err := activities.Crime(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeath, result.Outcome)
	assert.Equal(t, int64(20), result.PocketsLost)
	assert.Equal(t, int64(5), result.SavingsLost)
	assert.Empty(t, result.PrisonTier)

	acct, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.Pockets)
	assert.Equal(t, int64(45), acct.Savings)
}

func TestCrimeFailureDeathWithoutSavings(t *testing.T) {
	// broke accounts serve the reaper's tax as time instead
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{0, 0}})

	_, err := ledger.UpdateSavings(testGuild, testUser, -50)
	require.NoError(t, err)

	result, err := activities.Crime(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeath, result.Outcome)
	assert.Equal(t, PrisonOfficerGroup, result.PrisonTier)

	inPrison, prison, err := ledger.IsInPrison(testGuild, testUser)
	require.NoError(t, err)
	assert.True(t, inPrison)
	assert.Equal(t, PrisonOfficerGroup, prison.Tier)
}

func TestRobSelfTarget(t *testing.T) {
	activities, _ := newTestActivities(t, &scriptedDice{})
	_, err := activities.Rob(testGuild, testUser, "senna", testUser, "senna")
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestRobSuccess(t *testing.T) {
	// fail roll 100 beats the 55% rate, steal roll lands on the 60% floor
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{99, 0}})

	_, err := ledger.UpdatePockets(testGuild, "victim", 100)
	require.NoError(t, err)

	result, err := activities.Rob(testGuild, testUser, "senna", "victim", "victim")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(60), result.Stolen)

	victim, err := ledger.GetAccount(testGuild, "victim", "")
	require.NoError(t, err)
	assert.Equal(t, int64(40), victim.Pockets)

	robber, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(60), robber.Pockets)

	// a fresh victim is protected, and the rejection says for how long
	_, err = activities.Rob(testGuild, "other", "other", "victim", "victim")
	assert.ErrorIs(t, err, ErrTargetProtected)

	var protection *ProtectionError
	require.ErrorAs(t, err, &protection)
	assert.InDelta(t, RobVictimProtection.Seconds(), protection.Remaining.Seconds(), 1)
}

func TestRobProtectionWindow(t *testing.T) {
	st := newTestStore(t)
	current := time.Unix(1_000_000, 0)
	now := func() time.Time { return current }
	ledger := &ledgerService{store: st, now: now}
	activities := &activityService{
		store:  st,
		ledger: ledger,
		dice:   &scriptedDice{rolls: []int{99, 0, 99, 0}},
		now:    now,
	}

	_, err := ledger.UpdatePockets(testGuild, "victim", 100)
	require.NoError(t, err)
	_, err = activities.Rob(testGuild, testUser, "senna", "victim", "victim")
	require.NoError(t, err)

	// a minute short of the window the exact remainder is reported
	current = current.Add(RobVictimProtection - time.Minute)
	_, err = activities.Rob(testGuild, "other", "other", "victim", "victim")
	var protection *ProtectionError
	require.ErrorAs(t, err, &protection)
	assert.Equal(t, time.Minute, protection.Remaining)

	// at the boundary the victim is fair game again
	current = current.Add(time.Minute)
	result, err := activities.Rob(testGuild, "other", "other", "victim", "victim")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRobBrokeTarget(t *testing.T) {
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{99}})

	result, err := activities.Rob(testGuild, testUser, "senna", "victim", "victim")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.TargetBroke)
	assert.Zero(t, result.Stolen)

	// the attempt still burnt the cooldown
	_, err = activities.Rob(testGuild, testUser, "senna", "victim", "victim")
	assert.ErrorIs(t, err, ErrOnCooldown)
	_ = ledger
}

func TestRouletteValidation(t *testing.T) {
	activities, ledger := newTestActivities(t, &scriptedDice{})

	_, err := activities.Roulette(testGuild, testUser, "senna", "red", 10)
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = activities.Roulette(testGuild, testUser, "senna", RoulettePurple, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = activities.Roulette(testGuild, testUser, "senna", RoulettePurple, 10)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_ = ledger
}

func TestRouletteWin(t *testing.T) {
	// wheel roll 0 lands on purple
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{0}})

	_, err := ledger.UpdatePockets(testGuild, testUser, 100)
	require.NoError(t, err)

	result, err := activities.Roulette(testGuild, testUser, "senna", RoulettePurple, 10)
	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, RoulettePurple, result.Landed)
	assert.Equal(t, int64(20), result.Payout)
	assert.Equal(t, int64(110), result.NewPockets)
}

func TestRouletteLossOnGreen(t *testing.T) {
	// wheel roll 36 lands on green
	activities, ledger := newTestActivities(t, &scriptedDice{rolls: []int{36}})

	_, err := ledger.UpdatePockets(testGuild, testUser, 100)
	require.NoError(t, err)

	result, err := activities.Roulette(testGuild, testUser, "senna", RoulettePurple, 10)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, RouletteGreen, result.Landed)
	assert.Equal(t, int64(90), result.NewPockets)
}
