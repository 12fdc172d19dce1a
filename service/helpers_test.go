package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sennabot/store"
)

// scriptedDice returns queued rolls in order, clamping to the requested
// bound. An exhausted script rolls zero.
type scriptedDice struct {
	rolls []int
}

func (d *scriptedDice) Intn(n int) int {
	if len(d.rolls) == 0 {
		return 0
	}
	v := d.rolls[0]
	d.rolls = d.rolls[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func (d *scriptedDice) Float64() float64 { return 0 }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return st
}

func newTestLedger(t *testing.T) (LedgerService, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewLedgerService(st, nil), st
}
