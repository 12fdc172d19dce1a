package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sennabot/service"
)

func TestRegistryRejectsBusyParticipants(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Begin(KindBlackjack, "g1", "alice", "bob")
	require.NoError(t, err)

	// bob is busy, so any session naming him fails
	_, err = registry.Begin(KindBreakout, "g1", "bob")
	assert.ErrorIs(t, err, service.ErrSessionActive)
	_, err = registry.Begin(KindBlackjack, "g1", "carol", "bob")
	assert.ErrorIs(t, err, service.ErrSessionActive)

	// same user in another guild is free
	_, err = registry.Begin(KindBreakout, "g2", "bob")
	require.NoError(t, err)

	registry.End(first)
	_, err = registry.Begin(KindBreakout, "g1", "bob")
	require.NoError(t, err)
}

func TestRegistryActive(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Active("g1", "alice")
	assert.False(t, ok)

	s, err := registry.Begin(KindChallenge, "g1", "alice")
	require.NoError(t, err)

	active, ok := registry.Active("g1", "alice")
	require.True(t, ok)
	assert.Equal(t, s.ID, active.ID)
	assert.True(t, registry.InChallenge("g1", "alice"))
	assert.False(t, registry.InChallenge("g1", "bob"))

	registry.End(s)
	assert.False(t, registry.InChallenge("g1", "alice"))
}
