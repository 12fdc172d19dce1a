package games

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

// Balance challenge parameters. Crossing the wealth threshold summons the
// house for a best-of-five blackjack gauntlet.
const (
	ChallengeThreshold  = 15000
	ChallengeBet        = 1000
	ChallengeTimeout    = 120 * time.Second
	ChallengeTargetWins = 3

	houseStandValue = 17

	challengeLossTerm = time.Hour
	bystanderLossTerm = 6 * time.Hour
)

// ChallengeRoundState describes where a round stands.
type ChallengeRoundState int

const (
	RoundPlayerTurn ChallengeRoundState = iota
	RoundFinished
)

// ChallengeSession is one member's gauntlet against the house.
type ChallengeSession struct {
	ID       string
	GuildID  string
	UserID   string
	Username string

	PlayerWins  int
	HouseWins   int
	GamesPlayed int

	PlayerHand []Card
	HouseHand  []Card
	RoundState ChallengeRoundState

	deck    *Deck
	session *Session
}

// ChallengeRoundResult reports a finished round.
type ChallengeRoundResult struct {
	PlayerWon  bool
	Tie        bool
	PlayerBust bool
	Done       bool // the gauntlet itself finished
	FinalWin   bool
}

// Challenge coordinates the balance challenge gauntlet.
type Challenge struct {
	ledger   service.LedgerService
	registry *Registry
	dice     service.Dice
	houseID  string

	// mu is held across whole round transitions; button handlers and the
	// round timer race otherwise
	mu       sync.Mutex
	sessions map[string]*ChallengeSession // session ID -> session
}

// NewChallenge creates the balance challenge coordinator. houseID is the
// ledger account that collects lost challenge bets.
func NewChallenge(ledger service.LedgerService, registry *Registry, dice service.Dice, houseID string) *Challenge {
	return &Challenge{
		ledger:   ledger,
		registry: registry,
		dice:     dice,
		houseID:  houseID,
		sessions: make(map[string]*ChallengeSession),
	}
}

// Session returns an active challenge by ID.
func (c *Challenge) Session(id string) (*ChallengeSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// session looks a challenge up without locking; callers hold c.mu.
func (c *Challenge) session(id string) (*ChallengeSession, bool) {
	s, ok := c.sessions[id]
	return s, ok
}

// ShouldTrigger reports whether a member's wealth summons the house: total
// funds above the threshold, challenge not yet beaten, not already playing.
func (c *Challenge) ShouldTrigger(guildID, userID string) bool {
	if userID == c.houseID {
		return false
	}
	if _, busy := c.registry.Active(guildID, userID); busy {
		return false
	}
	acct, err := c.ledger.GetAccount(guildID, userID, "")
	if err != nil {
		return false
	}
	return acct.Total() > ChallengeThreshold && !acct.BeatBalanceChallenge
}

// Start opens the gauntlet and deals the first round.
func (c *Challenge) Start(guildID, userID, username string) (*ChallengeSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.registry.Begin(KindChallenge, guildID, userID)
	if err != nil {
		return nil, err
	}

	s := &ChallengeSession{
		ID:       session.ID,
		GuildID:  guildID,
		UserID:   userID,
		Username: username,
		deck:     NewDeck(c.dice),
		session:  session,
	}
	s.dealRound()
	c.sessions[s.ID] = s

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
	}).Info("Balance challenge started")
	return s, nil
}

func (s *ChallengeSession) dealRound() {
	s.PlayerHand = []Card{s.deck.Draw(), s.deck.Draw()}
	s.HouseHand = []Card{s.deck.Draw(), s.deck.Draw()}
	s.RoundState = RoundPlayerTurn
}

// Hit deals the player a card; busting hands the round to the house.
func (c *Challenge) Hit(sessionID string) (*ChallengeSession, *ChallengeRoundResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.session(sessionID)
	if !ok || s.RoundState != RoundPlayerTurn {
		return nil, nil, service.ErrSessionActive
	}

	s.PlayerHand = append(s.PlayerHand, s.deck.Draw())
	if HandValue(s.PlayerHand) > 21 {
		result := &ChallengeRoundResult{PlayerBust: true}
		return s, c.finishRound(s, result, false), nil
	}
	return s, nil, nil
}

// Stand plays out the house hand and scores the round. The house draws to
// seventeen; ties replay without counting.
func (c *Challenge) Stand(sessionID string) (*ChallengeSession, *ChallengeRoundResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.session(sessionID)
	if !ok || s.RoundState != RoundPlayerTurn {
		return nil, nil, service.ErrSessionActive
	}

	for HandValue(s.HouseHand) < houseStandValue {
		s.HouseHand = append(s.HouseHand, s.deck.Draw())
	}

	playerValue := HandValue(s.PlayerHand)
	houseValue := HandValue(s.HouseHand)

	result := &ChallengeRoundResult{}
	switch {
	case houseValue > 21 || playerValue > houseValue:
		result.PlayerWon = true
	case playerValue == houseValue:
		result.Tie = true
	}
	return s, c.finishRound(s, result, result.PlayerWon), nil
}

// RoundTimeout scores an unanswered round for the house.
func (c *Challenge) RoundTimeout(sessionID string) (*ChallengeSession, *ChallengeRoundResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.session(sessionID)
	if !ok || s.RoundState != RoundPlayerTurn {
		return nil, nil, nil
	}
	result := &ChallengeRoundResult{}
	return s, c.finishRound(s, result, false), nil
}

func (c *Challenge) finishRound(s *ChallengeSession, result *ChallengeRoundResult, playerWon bool) *ChallengeRoundResult {
	s.RoundState = RoundFinished

	if result.Tie {
		// replayed, the round never happened
		s.dealRound()
		return result
	}

	s.GamesPlayed++
	if playerWon {
		s.PlayerWins++
	} else {
		s.HouseWins++
	}

	switch {
	case s.PlayerWins >= ChallengeTargetWins:
		result.Done = true
		result.FinalWin = true
		c.applyWin(s)
	case s.HouseWins >= ChallengeTargetWins:
		result.Done = true
		c.applyLoss(s)
	default:
		s.dealRound()
	}
	return result
}

// applyWin pays the challenge bet into savings and marks the account so the
// house never returns.
func (c *Challenge) applyWin(s *ChallengeSession) {
	if _, err := c.ledger.UpdateSavings(s.GuildID, s.UserID, ChallengeBet); err != nil {
		log.WithField("error", err).Error("Failed to pay challenge winnings")
	}
	if err := c.ledger.SetChallengeFlag(s.GuildID, s.UserID); err != nil {
		log.WithField("error", err).Error("Failed to set challenge flag")
	}
	c.close(s)

	log.WithFields(log.Fields{
		"guildID": s.GuildID,
		"userID":  s.UserID,
	}).Info("Balance challenge won")
}

// applyLoss collects the bet for the house, throws the loser into the
// deepest prison and locks the rest of the guild up as witnesses.
func (c *Challenge) applyLoss(s *ChallengeSession) {
	if _, err := c.ledger.UpdateSavings(s.GuildID, s.UserID, -ChallengeBet); err != nil {
		log.WithField("error", err).Error("Failed to collect challenge bet")
	}
	if c.houseID != "" {
		if _, err := c.ledger.UpdateSavings(s.GuildID, c.houseID, ChallengeBet); err != nil {
			log.WithField("error", err).Error("Failed to credit house account")
		}
	}
	if err := c.ledger.SendToPrison(s.GuildID, s.UserID, service.PrisonJaegerCamp, challengeLossTerm); err != nil {
		log.WithField("error", err).Error("Failed to imprison challenge loser")
	}

	accounts, err := c.ledger.Accounts(s.GuildID)
	if err != nil {
		log.WithField("error", err).Error("Failed to list guild accounts for challenge loss")
	} else {
		for id := range accounts {
			if id == s.UserID || id == c.houseID {
				continue
			}
			if err := c.ledger.SendToPrison(s.GuildID, id, service.PrisonRookDivision, bystanderLossTerm); err != nil {
				log.WithFields(log.Fields{
					"guildID": s.GuildID,
					"userID":  id,
					"error":   err,
				}).Error("Failed to imprison challenge bystander")
			}
		}
	}
	c.close(s)

	log.WithFields(log.Fields{
		"guildID": s.GuildID,
		"userID":  s.UserID,
	}).Info("Balance challenge lost")
}

// close frees the seat and drops the session; callers hold c.mu.
func (c *Challenge) close(s *ChallengeSession) {
	c.registry.End(s.session)
	delete(c.sessions, s.ID)
}
