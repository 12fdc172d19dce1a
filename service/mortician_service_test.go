package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMortician(t *testing.T) (MorticianService, LedgerService) {
	t.Helper()
	ledger, _ := newTestLedger(t)
	return NewMorticianService(ledger), ledger
}

func TestHealRequiresInjuries(t *testing.T) {
	mortician, _ := newTestMortician(t)

	_, err := mortician.Heal(testGuild, testUser, "senna")
	assert.ErrorIs(t, err, ErrNotInjured)
}

func TestHealChargesPocketsFirst(t *testing.T) {
	mortician, ledger := newTestMortician(t)

	require.NoError(t, ledger.SetInjuries(testGuild, testUser, 2))
	_, err := ledger.UpdatePockets(testGuild, testUser, 10)
	require.NoError(t, err)

	// Moderate costs 15: 10 from pockets, 5 from savings
	result, err := mortician.Heal(testGuild, testUser, "senna")
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.Cost)
	assert.Equal(t, int64(10), result.FromPockets)
	assert.Equal(t, int64(5), result.FromSavings)
	assert.Equal(t, TierModerate, result.TierHealed)

	acct, err := ledger.GetAccount(testGuild, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.Pockets)
	assert.Equal(t, int64(45), acct.Savings)
	assert.Equal(t, 0, acct.Injuries)
	assert.False(t, acct.Injured)
}

func TestHealRejectsTheBroke(t *testing.T) {
	mortician, ledger := newTestMortician(t)

	require.NoError(t, ledger.SetInjuries(testGuild, testUser, 4))
	_, err := ledger.UpdateSavings(testGuild, testUser, -50)
	require.NoError(t, err)

	_, err = mortician.Heal(testGuild, testUser, "senna")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestHealRefusedInDeepPrisons(t *testing.T) {
	mortician, ledger := newTestMortician(t)

	require.NoError(t, ledger.SetInjuries(testGuild, testUser, 1))
	require.NoError(t, ledger.SendToPrison(testGuild, testUser, PrisonMorticianWing, time.Hour))

	_, err := mortician.Heal(testGuild, testUser, "senna")
	assert.ErrorIs(t, err, ErrHealingRefused)

	// an ordinary cell does not block treatment
	require.NoError(t, ledger.SendToPrison(testGuild, testUser, PrisonOfficerGroup, time.Hour))
	_, err = mortician.Heal(testGuild, testUser, "senna")
	require.NoError(t, err)
}
