package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sennabot/service"
)

const bxGuild = "guild-1"

func newTestBoxes(t *testing.T, dice service.Dice) (*Boxes, service.LedgerService, *Registry) {
	t.Helper()
	ledger := newTestLedger(t)
	registry := NewRegistry()
	return NewBoxes(ledger, registry, dice), ledger, registry
}

// rolls 3, 2, 1 leave the shuffle a no-op, so the boxes hide
// knife, watch, medical, joker in that order.
func identityRolls(extra ...int) []int {
	return append([]int{3, 2, 1}, extra...)
}

func TestBoxesKnifeDeath(t *testing.T) {
	boxes, ledger, registry := newTestBoxes(t, &scriptedDice{rolls: identityRolls(0)})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	_, err := ledger.UpdatePockets(bxGuild, "prisoner", 40)
	require.NoError(t, err)
	_, err = ledger.UpdateSavings(bxGuild, "prisoner", 50)
	require.NoError(t, err)

	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "helper", "helper")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, BoxKnife, result.Outcome)
	assert.True(t, result.Death)
	assert.Equal(t, int64(40), result.PocketsLost)
	assert.Equal(t, int64(25), result.SavingsLost)
	assert.True(t, result.HelperImprisoned)

	// death settles everything: broke, free and patched up
	prisoner, err := ledger.GetAccount(bxGuild, "prisoner", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), prisoner.Pockets)
	assert.Equal(t, int64(75), prisoner.Savings)
	assert.Nil(t, prisoner.Prison)
	assert.Equal(t, 0, prisoner.Injuries)

	helper, err := ledger.GetAccount(bxGuild, "helper", "")
	require.NoError(t, err)
	require.NotNil(t, helper.Prison)
	assert.Equal(t, service.PrisonJaegerCamp, helper.Prison.Tier)

	_, busy := registry.Active(bxGuild, "prisoner")
	assert.False(t, busy)
}

func TestBoxesKnifeDeathFlatDebt(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, &scriptedDice{rolls: identityRolls(0)})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	_, err := ledger.UpdateSavings(bxGuild, "prisoner", -50)
	require.NoError(t, err)

	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "", "")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.Death)
	assert.Equal(t, int64(75), result.SavingsLost)

	prisoner, err := ledger.GetAccount(bxGuild, "prisoner", "")
	require.NoError(t, err)
	assert.Equal(t, int64(-75), prisoner.Savings)
}

func TestBoxesKnifeSurvivalFrees(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, &scriptedDice{rolls: identityRolls(99)})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "helper", "helper")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.Freed)
	assert.False(t, result.Death)
	assert.False(t, result.HelperImprisoned)

	inPrison, _, err := ledger.IsInPrison(bxGuild, "prisoner")
	require.NoError(t, err)
	assert.False(t, inPrison)
}

func TestBoxesWatchExtendsBothSentences(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, maxDice{})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	_, before, err := ledger.IsInPrison(bxGuild, "prisoner")
	require.NoError(t, err)

	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "helper", "helper")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, BoxWatch, result.Outcome)
	assert.Equal(t, 15*time.Minute, result.ExtraTime)
	assert.True(t, result.HelperImprisoned)

	_, after, err := ledger.IsInPrison(bxGuild, "prisoner")
	require.NoError(t, err)
	assert.Equal(t, int64(15*60), after.ReleaseTime-before.ReleaseTime)

	inPrison, p, err := ledger.IsInPrison(bxGuild, "helper")
	require.NoError(t, err)
	require.True(t, inPrison)
	assert.Equal(t, service.PrisonJaegerCamp, p.Tier)
}

func TestBoxesMedicalHealsOneEach(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, maxDice{})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	require.NoError(t, ledger.SetInjuries(bxGuild, "prisoner", 2))
	require.NoError(t, ledger.SetInjuries(bxGuild, "helper", 1))

	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "helper", "helper")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, BoxMedical, result.Outcome)
	assert.True(t, result.Healed)

	prisoner, err := ledger.GetAccount(bxGuild, "prisoner", "")
	require.NoError(t, err)
	assert.Equal(t, 1, prisoner.Injuries)
	require.NotNil(t, prisoner.Prison)

	helper, err := ledger.GetAccount(bxGuild, "helper", "")
	require.NoError(t, err)
	assert.Equal(t, 0, helper.Injuries)
}

func TestBoxesJokerAddsInjury(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, maxDice{})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "", "")
	require.NoError(t, err)

	result, err := boxes.Open(s.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, BoxJoker, result.Outcome)
	assert.True(t, result.InjuryAdded)

	prisoner, err := ledger.GetAccount(bxGuild, "prisoner", "")
	require.NoError(t, err)
	assert.Equal(t, 1, prisoner.Injuries)
	require.NotNil(t, prisoner.Prison)
}

func TestBoxesTimeoutIsDeath(t *testing.T) {
	boxes, ledger, registry := newTestBoxes(t, maxDice{})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	_, err := ledger.UpdatePockets(bxGuild, "prisoner", 30)
	require.NoError(t, err)

	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "", "")
	require.NoError(t, err)

	result, err := boxes.Timeout(s.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.TimedOut)
	assert.True(t, result.Death)
	assert.Equal(t, int64(30), result.PocketsLost)

	_, busy := registry.Active(bxGuild, "prisoner")
	assert.False(t, busy)

	// a round that already resolved times out quietly
	result, err = boxes.Timeout(s.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestBoxesFailedOpenFreesTheSeats(t *testing.T) {
	boxes, _, registry := newTestBoxes(t, &scriptedDice{rolls: identityRolls()})

	// the watch box needs a sentence to extend, and this prisoner has none
	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "helper", "helper")
	require.NoError(t, err)

	_, err = boxes.Open(s.ID, 1)
	assert.ErrorIs(t, err, service.ErrNotInPrison)

	// the round is over all the same; nobody stays stuck
	_, ok := boxes.Session(s.ID)
	assert.False(t, ok)
	_, busy := registry.Active(bxGuild, "prisoner")
	assert.False(t, busy)
	_, busy = registry.Active(bxGuild, "helper")
	assert.False(t, busy)
}

func TestBoxesRejectsBadBoxNumber(t *testing.T) {
	boxes, ledger, _ := newTestBoxes(t, maxDice{})

	require.NoError(t, ledger.SendToPrison(bxGuild, "prisoner", service.PrisonJaegerCamp, service.PrisonTerm))
	s, err := boxes.Start(bxGuild, "prisoner", "prisoner", "", "")
	require.NoError(t, err)

	_, err = boxes.Open(s.ID, 4)
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
	_, err = boxes.Open(s.ID, -1)
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}
