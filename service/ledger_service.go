package service

import (
	"context"
	"fmt"
	"time"

	"sennabot/events"
	"sennabot/models"
)

// ledgerService implements the LedgerService interface on top of the guild
// store. Every compound update holds the guild lock from read to save.
type ledgerService struct {
	store GuildStore
	bus   *events.Bus
	now   func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store GuildStore, bus *events.Bus) LedgerService {
	return &ledgerService{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
}

func (s *ledgerService) emit(event events.Event) {
	if s.bus != nil {
		s.bus.Emit(context.Background(), event)
	}
}

// ensureAccount returns the account inside doc, creating it with the
// configured starting savings when absent. Served prison sentences are
// released here so every read path observes them as expired.
func (s *ledgerService) ensureAccount(guildID string, doc *models.GuildDocument, userID, username string) (*models.UserAccount, bool) {
	acct, ok := doc.Users[userID]
	changed := false
	if !ok {
		acct = models.NewUserAccount(userID, username, s.store.Settings().StartingBalance)
		doc.Users[userID] = acct
		changed = true
		s.emit(events.AccountCreatedEvent{
			GuildID:        guildID,
			UserID:         userID,
			Username:       username,
			InitialSavings: acct.Savings,
		})
	}
	if username != "" && acct.Username != username {
		acct.Username = username
		changed = true
	}
	if acct.Prison != nil && s.now().Unix() >= acct.Prison.ReleaseTime {
		tier := acct.Prison.Tier
		acct.Prison = nil
		changed = true
		s.emit(events.PrisonChangeEvent{GuildID: guildID, UserID: userID, Tier: tier, Released: true})
	}
	return acct, changed
}

// mutate runs fn against the account under the guild lock and persists the
// result. The account passed to fn is the live document copy; fn may return
// a domain error to abort without saving.
func (s *ledgerService) mutate(guildID, userID, username string, fn func(acct *models.UserAccount) error) (*models.UserAccount, error) {
	lock := s.store.Lock(guildID)
	lock.Lock()
	defer lock.Unlock()

	doc := s.store.Guild(guildID)
	acct, _ := s.ensureAccount(guildID, doc, userID, username)

	if err := fn(acct); err != nil {
		return nil, err
	}

	// injuries drive the flag, never the other way around
	acct.Injured = acct.Injuries > 0

	if err := s.store.SaveGuild(guildID, doc); err != nil {
		return nil, fmt.Errorf("failed to save guild %s: %w", guildID, err)
	}
	return acct.Clone(), nil
}

func (s *ledgerService) GetAccount(guildID, userID, username string) (*models.UserAccount, error) {
	lock := s.store.Lock(guildID)
	lock.Lock()
	defer lock.Unlock()

	doc := s.store.Guild(guildID)
	acct, changed := s.ensureAccount(guildID, doc, userID, username)
	if changed {
		if err := s.store.SaveGuild(guildID, doc); err != nil {
			return nil, fmt.Errorf("failed to save guild %s: %w", guildID, err)
		}
	}
	return acct.Clone(), nil
}

func (s *ledgerService) Accounts(guildID string) (map[string]*models.UserAccount, error) {
	doc := s.store.Guild(guildID)
	out := make(map[string]*models.UserAccount, len(doc.Users))
	for id, acct := range doc.Users {
		out[id] = acct.Clone()
	}
	return out, nil
}

func (s *ledgerService) UpdatePockets(guildID, userID string, delta int64) (int64, error) {
	var oldAmount, newAmount int64
	acct, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		oldAmount = a.Pockets
		a.Pockets += delta
		newAmount = a.Pockets
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: userID, Field: "pockets",
		OldAmount: oldAmount, NewAmount: newAmount, Delta: delta,
	})
	return acct.Pockets, nil
}

func (s *ledgerService) UpdateSavings(guildID, userID string, delta int64) (int64, error) {
	var oldAmount, newAmount int64
	acct, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		oldAmount = a.Savings
		a.Savings += delta
		newAmount = a.Savings
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: userID, Field: "savings",
		OldAmount: oldAmount, NewAmount: newAmount, Delta: delta,
	})
	return acct.Savings, nil
}

func (s *ledgerService) Deposit(guildID, userID string, amount int64) (*models.UserAccount, error) {
	acct, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		if a.Pockets < 0 {
			return ErrNegativeBalance
		}
		if amount == AmountAll {
			amount = a.Pockets
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}
		if amount > a.Pockets {
			return ErrInsufficientFunds
		}
		a.Pockets -= amount
		a.Savings += amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: userID, Field: "savings",
		NewAmount: acct.Savings, Delta: amount,
	})
	return acct, nil
}

func (s *ledgerService) Withdraw(guildID, userID string, amount int64) (*models.UserAccount, error) {
	acct, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		if a.Savings < 0 {
			return ErrNegativeBalance
		}
		if amount == AmountAll {
			amount = a.Savings
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}
		if amount > a.Savings {
			return ErrInsufficientFunds
		}
		a.Savings -= amount
		a.Pockets += amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: userID, Field: "pockets",
		NewAmount: acct.Pockets, Delta: amount,
	})
	return acct, nil
}

func (s *ledgerService) Donate(guildID, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTarget
	}

	lock := s.store.Lock(guildID)
	lock.Lock()
	defer lock.Unlock()

	doc := s.store.Guild(guildID)
	from, _ := s.ensureAccount(guildID, doc, fromID, "")
	to, _ := s.ensureAccount(guildID, doc, toID, "")

	if from.Pockets < 0 {
		return ErrNegativeBalance
	}
	if from.Total() < amount {
		return ErrInsufficientFunds
	}

	// pockets pay first, savings cover the remainder
	fromPockets := amount
	if fromPockets > from.Pockets {
		fromPockets = from.Pockets
	}
	from.Pockets -= fromPockets
	from.Savings -= amount - fromPockets
	to.Pockets += amount

	if err := s.store.SaveGuild(guildID, doc); err != nil {
		return fmt.Errorf("failed to save guild %s: %w", guildID, err)
	}

	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: fromID, Field: "pockets",
		NewAmount: from.Pockets, Delta: -amount,
	})
	s.emit(events.BalanceChangeEvent{
		GuildID: guildID, UserID: toID, Field: "pockets",
		NewAmount: to.Pockets, Delta: amount,
	})
	return nil
}

func (s *ledgerService) SetCooldown(guildID, userID, activity string) error {
	now := s.now().Unix()
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		if a.Cooldowns == nil {
			a.Cooldowns = make(map[string]int64)
		}
		a.Cooldowns[activity] = now
		return nil
	})
	return err
}

func (s *ledgerService) CheckCooldown(guildID, userID, activity string, window time.Duration) (bool, time.Duration, error) {
	acct, err := s.GetAccount(guildID, userID, "")
	if err != nil {
		return false, 0, err
	}
	last := acct.Cooldowns[activity]
	elapsed := s.now().Unix() - last
	windowSecs := int64(window / time.Second)
	if elapsed >= windowSecs {
		return true, 0, nil
	}
	return false, time.Duration(windowSecs-elapsed) * time.Second, nil
}

func (s *ledgerService) ClaimCooldown(guildID, userID, activity string, window time.Duration) (bool, time.Duration, error) {
	now := s.now().Unix()
	windowSecs := int64(window / time.Second)

	ready := false
	var remaining time.Duration
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		elapsed := now - a.Cooldowns[activity]
		if elapsed < windowSecs {
			remaining = time.Duration(windowSecs-elapsed) * time.Second
			return nil
		}
		if a.Cooldowns == nil {
			a.Cooldowns = make(map[string]int64)
		}
		a.Cooldowns[activity] = now
		ready = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return ready, remaining, nil
}

func (s *ledgerService) AddInjury(guildID, userID string) (int, error) {
	acct, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.Injuries++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return acct.Injuries, nil
}

func (s *ledgerService) SetInjuries(guildID, userID string, count int) error {
	if count < 0 {
		count = 0
	}
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.Injuries = count
		return nil
	})
	return err
}

func (s *ledgerService) HealInjuries(guildID, userID string) error {
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.Injuries = 0
		return nil
	})
	return err
}

func (s *ledgerService) SetLastRobbed(guildID, userID string, at time.Time) error {
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.LastRobbed = at.Unix()
		return nil
	})
	return err
}

func (s *ledgerService) SetChallengeFlag(guildID, userID string) error {
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.BeatBalanceChallenge = true
		return nil
	})
	return err
}

func (s *ledgerService) IsInPrison(guildID, userID string) (bool, *models.Prison, error) {
	acct, err := s.GetAccount(guildID, userID, "")
	if err != nil {
		return false, nil, err
	}
	if acct.Prison == nil {
		return false, nil, nil
	}
	return true, acct.Prison, nil
}

func (s *ledgerService) SendToPrison(guildID, userID, tier string, term time.Duration) error {
	release := s.now().Add(term).Unix()
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		a.Prison = &models.Prison{Tier: tier, ReleaseTime: release}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(events.PrisonChangeEvent{GuildID: guildID, UserID: userID, Tier: tier})
	return nil
}

func (s *ledgerService) ReleaseFromPrison(guildID, userID string) error {
	var tier string
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		if a.Prison != nil {
			tier = a.Prison.Tier
		}
		a.Prison = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(events.PrisonChangeEvent{GuildID: guildID, UserID: userID, Tier: tier, Released: true})
	return nil
}

func (s *ledgerService) ExtendPrison(guildID, userID string, extra time.Duration) error {
	_, err := s.mutate(guildID, userID, "", func(a *models.UserAccount) error {
		if a.Prison == nil {
			return ErrNotInPrison
		}
		a.Prison.ReleaseTime += int64(extra / time.Second)
		return nil
	})
	return err
}
