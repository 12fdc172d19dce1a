package games

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sennabot/service"
)

const bjGuild = "guild-1"

func newTestBlackjack(t *testing.T) (*Blackjack, service.LedgerService, *Registry) {
	t.Helper()
	ledger := newTestLedger(t)
	registry := NewRegistry()
	return NewBlackjack(ledger, registry, maxDice{}), ledger, registry
}

func fund(t *testing.T, ledger service.LedgerService, userID string, pockets int64) {
	t.Helper()
	_, err := ledger.UpdatePockets(bjGuild, userID, pockets)
	require.NoError(t, err)
}

func TestInviteRequiresFunds(t *testing.T) {
	bj, _, _ := newTestBlackjack(t)

	_, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	_, err = bj.Invite(bjGuild, "alice", "alice", "alice", "alice", 50)
	assert.ErrorIs(t, err, service.ErrSelfTarget)

	_, err = bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 0)
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestDeclineMovesNoMoney(t *testing.T) {
	bj, ledger, registry := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)

	bj.Decline(m.ID)

	acct, err := ledger.GetAccount(bjGuild, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Pockets)

	// seats are free again
	_, busy := registry.Active(bjGuild, "bob")
	assert.False(t, busy)
}

func TestAcceptRequiresOpponentFunds(t *testing.T) {
	bj, ledger, registry := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)

	_, _, err = bj.Accept(m.ID)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	_, busy := registry.Active(bjGuild, "alice")
	assert.False(t, busy)
}

func TestBustSettlesForOpponent(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)

	// identity deck deals K Q to alice and J 10 to bob
	m, result, err := bj.Accept(m.ID)
	require.NoError(t, err)
	require.Nil(t, result)
	assert.Equal(t, 20, m.Challenger.Value())
	assert.Equal(t, 20, m.Opponent.Value())
	assert.Equal(t, "alice", m.Turn)

	// alice draws the 9 and busts
	_, result, err = bj.Hit(m.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "bob", result.WinnerID)
	assert.Equal(t, int64(100), result.Payout)

	alice, err := ledger.GetAccount(bjGuild, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(50), alice.Pockets)

	bob, err := ledger.GetAccount(bjGuild, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(150), bob.Pockets)
}

func TestEqualStandsPushAndRefund(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)
	_, result, err := bj.Accept(m.ID)
	require.NoError(t, err)
	require.Nil(t, result)

	_, result, err = bj.Stand(m.ID, "alice")
	require.NoError(t, err)
	require.Nil(t, result)

	_, result, err = bj.Stand(m.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Push)
	assert.True(t, result.Refunded)

	for _, id := range []string{"alice", "bob"} {
		acct, err := ledger.GetAccount(bjGuild, id, "")
		require.NoError(t, err)
		assert.Equal(t, int64(100), acct.Pockets)
	}
}

func TestAutoStandPlaysTheTurn(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)
	_, _, err = bj.Accept(m.ID)
	require.NoError(t, err)

	// an idle alice stands automatically and play passes to bob
	m, result, err := bj.AutoStand(m.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Nil(t, result)
	assert.Equal(t, "bob", m.Turn)

	// both stood at 20, the match settles as a push
	_, result, err = bj.AutoStand(m.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Push)

	// a stale timer after settlement is a no-op
	m, result, err = bj.AutoStand(m.ID, "alice")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Nil(t, result)
}

func TestConcurrentHitAndAutoStandSettleOnce(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)
	_, _, err = bj.Accept(m.ID)
	require.NoError(t, err)

	// a button press and the idle timer fire together; only one of them
	// may act on alice's turn
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, _ = bj.Hit(m.ID, "alice")
	}()
	go func() {
		defer wg.Done()
		_, _, _ = bj.AutoStand(m.ID, "alice")
	}()
	wg.Wait()

	// finish whatever survived so every escrowed Medal is paid out
	if live, ok := bj.Match(m.ID); ok {
		_, _, err := bj.AutoStand(live.ID, live.Turn)
		require.NoError(t, err)
	}

	var total int64
	for _, id := range []string{"alice", "bob"} {
		acct, err := ledger.GetAccount(bjGuild, id, "")
		require.NoError(t, err)
		total += acct.Pockets
	}
	assert.Equal(t, int64(200), total)
}

func TestSettleNaturalPaysBonus(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)
	_, _, err = bj.Accept(m.ID)
	require.NoError(t, err)

	// hand alice the natural against a made eighteen
	m.Challenger.Hand = []Card{{Rank: "A", Suit: "♠"}, {Rank: "K", Suit: "♠"}}
	m.Opponent.Hand = []Card{{Rank: "9", Suit: "♦"}, {Rank: "9", Suit: "♣"}}

	result, err := bj.settle(m)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.WinnerID)
	assert.True(t, result.Natural)
	// the pot plus half the bet
	assert.Equal(t, int64(125), result.Payout)

	alice, err := ledger.GetAccount(bjGuild, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(175), alice.Pockets)

	bob, err := ledger.GetAccount(bjGuild, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(50), bob.Pockets)
}

func TestCancelRefundsInProgressMatch(t *testing.T) {
	bj, ledger, _ := newTestBlackjack(t)
	fund(t, ledger, "alice", 100)
	fund(t, ledger, "bob", 100)

	m, err := bj.Invite(bjGuild, "alice", "alice", "bob", "bob", 50)
	require.NoError(t, err)
	_, _, err = bj.Accept(m.ID)
	require.NoError(t, err)

	result, err := bj.Cancel(m.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Refunded)

	for _, id := range []string{"alice", "bob"} {
		acct, err := ledger.GetAccount(bjGuild, id, "")
		require.NoError(t, err)
		assert.Equal(t, int64(100), acct.Pockets)
	}
}

func TestPickWinnerNaturalBeatsMadeTwentyOne(t *testing.T) {
	bj := &Blackjack{}

	natural := &BlackjackPlayer{Hand: []Card{{Rank: "A"}, {Rank: "K"}}}
	made21 := &BlackjackPlayer{Hand: []Card{{Rank: "7"}, {Rank: "7"}, {Rank: "7"}}}
	assert.Same(t, natural, bj.pickWinner(natural, made21))
	assert.Same(t, natural, bj.pickWinner(made21, natural))

	bothNatural := &BlackjackPlayer{Hand: []Card{{Rank: "A"}, {Rank: "Q"}}}
	assert.Nil(t, bj.pickWinner(natural, bothNatural))

	busted := &BlackjackPlayer{Hand: []Card{{Rank: "K"}, {Rank: "Q"}, {Rank: "5"}}}
	seventeen := &BlackjackPlayer{Hand: []Card{{Rank: "10"}, {Rank: "7"}}}
	assert.Same(t, seventeen, bj.pickWinner(busted, seventeen))
	assert.Nil(t, bj.pickWinner(busted, &BlackjackPlayer{Hand: []Card{{Rank: "K"}, {Rank: "Q"}, {Rank: "2"}}}))
}
