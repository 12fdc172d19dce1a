package games

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sennabot/service"
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

// maxDice always rolls the top value, which turns a Fisher-Yates shuffle
// into the identity permutation. Decks built with it deal in reverse
// construction order: K♣, Q♣, J♣, 10♣, 9♣, ...
type maxDice struct{}

func (maxDice) Intn(n int) int   { return n - 1 }
func (maxDice) Float64() float64 { return 0 }

func newTestLedger(t *testing.T) service.LedgerService {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return service.NewLedgerService(st, nil)
}
