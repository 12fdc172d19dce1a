package service

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors surfaced to the presentation layer. Handlers map these to
// user-facing messages; anything else is treated as an internal failure.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeBalance   = errors.New("balance is negative")
	ErrOnCooldown        = errors.New("activity on cooldown")
	ErrInPrison          = errors.New("user is in prison")
	ErrNotInPrison       = errors.New("user is not in prison")
	ErrNotInjured        = errors.New("user is not injured")
	ErrHealingRefused    = errors.New("healing refused in this prison")
	ErrTargetProtected   = errors.New("target was robbed too recently")
	ErrTargetBroke       = errors.New("target barely had anything")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidColor      = errors.New("unknown roulette color")
	ErrSelfTarget        = errors.New("cannot target yourself")
	ErrSessionActive     = errors.New("user already has an active session")
	ErrInChallenge       = errors.New("user is locked in a balance challenge")
)

// CooldownError carries the remaining wait for a not-yet-ready activity.
// It matches ErrOnCooldown under errors.Is.
type CooldownError struct {
	Activity  string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Activity, e.Remaining)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrOnCooldown
}

// ProtectionError carries the remaining victim-protection wait on a rob
// attempt. It matches ErrTargetProtected under errors.Is.
type ProtectionError struct {
	Remaining time.Duration
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("target protected for another %s", e.Remaining)
}

func (e *ProtectionError) Is(target error) bool {
	return target == ErrTargetProtected
}
