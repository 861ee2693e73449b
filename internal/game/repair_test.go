package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairPotRederivesFromContributions(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	// Force a pot no stack can account for.
	table.Pot = 1_000_000
	table.repairPot()

	assert.Equal(t, 30, table.Pot, "pot rederived from blind contributions")
	assert.Equal(t, 1, table.Repairs)
}

func TestRepairPotLeavesConsistentStateAlone(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	table.repairPot()
	assert.Equal(t, 30, table.Pot)
	assert.Equal(t, 0, table.Repairs)
}

func TestClampCurrentBet(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	assert.False(t, table.clampCurrentBet(20), "plausible bet left alone")
	assert.Equal(t, 0, table.Repairs)

	table.CurrentBet = 1_000_000
	assert.True(t, table.clampCurrentBet(20))
	assert.Equal(t, 20, table.CurrentBet)
	assert.Equal(t, 1, table.Repairs)
}
