package games

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

// Blackjack timing windows. Timers live in the presentation layer; the
// coordinator only defines what expiry means.
const (
	BlackjackInviteTimeout = 30 * time.Second
	BlackjackTurnTimeout   = 180 * time.Second
)

// NaturalBonusDivisor: a natural 21 pays the pot plus half the bet.
const naturalBonusDivisor = 2

// MatchState tracks a blackjack match through its lifecycle.
type MatchState int

const (
	MatchInvited MatchState = iota
	MatchInProgress
	MatchFinished
)

// BlackjackPlayer is one seat of a PvP match.
type BlackjackPlayer struct {
	ID    string
	Name  string
	Hand  []Card
	Stood bool
}

// Value totals the player's hand.
func (p *BlackjackPlayer) Value() int { return HandValue(p.Hand) }

// Busted reports whether the hand went over 21.
func (p *BlackjackPlayer) Busted() bool { return p.Value() > 21 }

// BlackjackMatch is a head-to-head match for a fixed bet per seat.
type BlackjackMatch struct {
	ID         string
	GuildID    string
	Challenger *BlackjackPlayer
	Opponent   *BlackjackPlayer
	Bet        int64
	State      MatchState
	Turn       string // user ID whose action is awaited

	deck    *Deck
	session *Session
}

// Seat returns the player record for a participant.
func (m *BlackjackMatch) Seat(userID string) *BlackjackPlayer {
	switch userID {
	case m.Challenger.ID:
		return m.Challenger
	case m.Opponent.ID:
		return m.Opponent
	default:
		return nil
	}
}

func (m *BlackjackMatch) other(userID string) *BlackjackPlayer {
	if userID == m.Challenger.ID {
		return m.Opponent
	}
	return m.Challenger
}

// BlackjackResult reports how a match settled.
type BlackjackResult struct {
	WinnerID string // empty on a push or cancellation
	Push     bool
	Refunded bool
	Natural  bool
	Payout   int64
}

// Blackjack coordinates PvP matches: invites, escrow, turns and settlement.
type Blackjack struct {
	ledger   service.LedgerService
	registry *Registry
	dice     service.Dice

	// mu is held across whole transitions, not just map access: button
	// handlers and timeout timers arrive on separate goroutines
	mu      sync.Mutex
	matches map[string]*BlackjackMatch
}

// NewBlackjack creates the blackjack coordinator.
func NewBlackjack(ledger service.LedgerService, registry *Registry, dice service.Dice) *Blackjack {
	return &Blackjack{
		ledger:   ledger,
		registry: registry,
		dice:     dice,
		matches:  make(map[string]*BlackjackMatch),
	}
}

// Match returns an active match by ID.
func (b *Blackjack) Match(matchID string) (*BlackjackMatch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.matches[matchID]
	return m, ok
}

// match looks a match up without locking; callers hold b.mu.
func (b *Blackjack) match(matchID string) (*BlackjackMatch, bool) {
	m, ok := b.matches[matchID]
	return m, ok
}

// Invite opens a match in the invited state. No funds move until the
// opponent accepts.
func (b *Blackjack) Invite(guildID, challengerID, challengerName, opponentID, opponentName string, bet int64) (*BlackjackMatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bet <= 0 {
		return nil, service.ErrInvalidAmount
	}
	if challengerID == opponentID {
		return nil, service.ErrSelfTarget
	}

	acct, err := b.ledger.GetAccount(guildID, challengerID, challengerName)
	if err != nil {
		return nil, err
	}
	if acct.Pockets < bet {
		return nil, service.ErrInsufficientFunds
	}

	session, err := b.registry.Begin(KindBlackjack, guildID, challengerID, opponentID)
	if err != nil {
		return nil, err
	}

	m := &BlackjackMatch{
		ID:         session.ID,
		GuildID:    guildID,
		Challenger: &BlackjackPlayer{ID: challengerID, Name: challengerName},
		Opponent:   &BlackjackPlayer{ID: opponentID, Name: opponentName},
		Bet:        bet,
		State:      MatchInvited,
		deck:       NewDeck(b.dice),
		session:    session,
	}

	b.matches[m.ID] = m
	return m, nil
}

// Accept escrows both bets and deals the opening hands. A natural on either
// side settles immediately.
func (b *Blackjack) Accept(matchID string) (*BlackjackMatch, *BlackjackResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.match(matchID)
	if !ok || m.State != MatchInvited {
		return nil, nil, service.ErrSessionActive
	}

	opp, err := b.ledger.GetAccount(m.GuildID, m.Opponent.ID, m.Opponent.Name)
	if err != nil {
		return nil, nil, err
	}
	if opp.Pockets < m.Bet {
		b.discard(m)
		return m, nil, service.ErrInsufficientFunds
	}
	chal, err := b.ledger.GetAccount(m.GuildID, m.Challenger.ID, m.Challenger.Name)
	if err != nil {
		return nil, nil, err
	}
	if chal.Pockets < m.Bet {
		b.discard(m)
		return m, nil, service.ErrInsufficientFunds
	}

	if _, err := b.ledger.UpdatePockets(m.GuildID, m.Challenger.ID, -m.Bet); err != nil {
		return nil, nil, err
	}
	if _, err := b.ledger.UpdatePockets(m.GuildID, m.Opponent.ID, -m.Bet); err != nil {
		// hand the challenger's stake back rather than strand it
		if _, refundErr := b.ledger.UpdatePockets(m.GuildID, m.Challenger.ID, m.Bet); refundErr != nil {
			log.WithFields(log.Fields{
				"matchID": m.ID,
				"error":   refundErr,
			}).Error("Failed to refund challenger after escrow failure")
		}
		return nil, nil, err
	}

	m.State = MatchInProgress
	m.Turn = m.Challenger.ID
	m.Challenger.Hand = []Card{m.deck.Draw(), m.deck.Draw()}
	m.Opponent.Hand = []Card{m.deck.Draw(), m.deck.Draw()}

	if IsNatural(m.Challenger.Hand) || IsNatural(m.Opponent.Hand) {
		result, err := b.settle(m)
		return m, result, err
	}
	return m, nil, nil
}

// Decline closes an invite without moving funds.
func (b *Blackjack) Decline(matchID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.match(matchID); ok && m.State == MatchInvited {
		b.discard(m)
	}
}

// ExpireInvite closes an unanswered invite without moving funds.
func (b *Blackjack) ExpireInvite(matchID string) {
	b.Decline(matchID)
}

// Hit deals the player one card. A bust or a 21 ends the player's turn; a
// bust by the last active player settles the match.
func (b *Blackjack) Hit(matchID, userID string) (*BlackjackMatch, *BlackjackResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.match(matchID)
	if !ok || m.State != MatchInProgress || m.Turn != userID {
		return nil, nil, service.ErrSessionActive
	}

	seat := m.Seat(userID)
	seat.Hand = append(seat.Hand, m.deck.Draw())

	if seat.Busted() {
		seat.Stood = true
		result, err := b.settle(m)
		return m, result, err
	}
	if seat.Value() == 21 {
		return b.stand(matchID, userID)
	}
	return m, nil, nil
}

// Stand ends the player's turn; when both seats have stood the match
// settles.
func (b *Blackjack) Stand(matchID, userID string) (*BlackjackMatch, *BlackjackResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stand(matchID, userID)
}

func (b *Blackjack) stand(matchID, userID string) (*BlackjackMatch, *BlackjackResult, error) {
	m, ok := b.match(matchID)
	if !ok || m.State != MatchInProgress || m.Turn != userID {
		return nil, nil, service.ErrSessionActive
	}

	seat := m.Seat(userID)
	seat.Stood = true

	other := m.other(userID)
	if other.Stood {
		result, err := b.settle(m)
		return m, result, err
	}
	m.Turn = other.ID
	return m, nil, nil
}

// AutoStand stands for a player sitting on their turn past the window. A
// match that already moved on is left alone.
func (b *Blackjack) AutoStand(matchID, userID string) (*BlackjackMatch, *BlackjackResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.match(matchID)
	if !ok || m.State != MatchInProgress || m.Turn != userID {
		return nil, nil, nil
	}
	return b.stand(matchID, userID)
}

// Cancel refunds both escrowed bets and closes the match. Used when the
// whole view goes stale.
func (b *Blackjack) Cancel(matchID string) (*BlackjackResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.match(matchID)
	if !ok {
		return nil, nil
	}
	if m.State == MatchInvited {
		b.discard(m)
		return &BlackjackResult{}, nil
	}
	if m.State != MatchInProgress {
		return nil, nil
	}

	for _, p := range []*BlackjackPlayer{m.Challenger, m.Opponent} {
		if _, err := b.ledger.UpdatePockets(m.GuildID, p.ID, m.Bet); err != nil {
			return nil, err
		}
	}
	m.State = MatchFinished
	b.discard(m)
	return &BlackjackResult{Refunded: true}, nil
}

// settle compares hands and pays out the pot. Naturals beat made 21s and
// carry a half-bet bonus; a push refunds both stakes.
func (b *Blackjack) settle(m *BlackjackMatch) (*BlackjackResult, error) {
	defer b.discard(m)
	m.State = MatchFinished

	chal, opp := m.Challenger, m.Opponent
	winner := b.pickWinner(chal, opp)

	if winner == nil {
		// push, both stakes come back
		for _, p := range []*BlackjackPlayer{chal, opp} {
			if _, err := b.ledger.UpdatePockets(m.GuildID, p.ID, m.Bet); err != nil {
				return nil, err
			}
		}
		return &BlackjackResult{Push: true, Refunded: true}, nil
	}

	payout := m.Bet * 2
	natural := IsNatural(winner.Hand)
	if natural {
		payout += m.Bet / naturalBonusDivisor
	}
	if _, err := b.ledger.UpdatePockets(m.GuildID, winner.ID, payout); err != nil {
		return nil, err
	}
	return &BlackjackResult{WinnerID: winner.ID, Natural: natural, Payout: payout}, nil
}

func (b *Blackjack) pickWinner(chal, opp *BlackjackPlayer) *BlackjackPlayer {
	chalNatural, oppNatural := IsNatural(chal.Hand), IsNatural(opp.Hand)
	switch {
	case chalNatural && oppNatural:
		return nil
	case chalNatural:
		return chal
	case oppNatural:
		return opp
	}

	switch {
	case chal.Busted() && opp.Busted():
		return nil
	case chal.Busted():
		return opp
	case opp.Busted():
		return chal
	}

	switch {
	case chal.Value() > opp.Value():
		return chal
	case opp.Value() > chal.Value():
		return opp
	default:
		return nil
	}
}

// discard frees the seats and drops the match; callers hold b.mu.
func (b *Blackjack) discard(m *BlackjackMatch) {
	b.registry.End(m.session)
	delete(b.matches, m.ID)
}
