package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartHandRequiresTwoFundedPlayers(t *testing.T) {
	t.Run("one player", func(t *testing.T) {
		table, _ := newTestTable(t, DefaultConfig())
		seatPlayers(t, table, 1, 1000)
		err := table.StartHand()
		require.Error(t, err)
		assert.Equal(t, CodeNotEnoughPlayers, RuleCode(err))
	})

	t.Run("second player has no chips", func(t *testing.T) {
		table, _ := newTestTable(t, DefaultConfig())
		seatPlayers(t, table, 2, 1000)
		table.PlayerByID("p1").Chips = 0
		err := table.StartHand()
		require.Error(t, err)
		assert.Equal(t, CodeNotEnoughPlayers, RuleCode(err))
	})

	t.Run("double start", func(t *testing.T) {
		table, _ := newTestTable(t, DefaultConfig())
		seatPlayers(t, table, 2, 1000)
		require.NoError(t, table.StartHand())
		err := table.StartHand()
		require.Error(t, err)
		assert.Equal(t, CodeGameAlreadyStarted, RuleCode(err))
	})
}

func TestHeadsUpBlindsAndOrder(t *testing.T) {
	cfg := DefaultConfig()
	table, _ := newTestTable(t, cfg)
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	// Heads-up: the dealer posts the small blind and acts first
	// pre-flop.
	p0, p1 := table.PlayerByID("p0"), table.PlayerByID("p1")
	assert.Equal(t, 0, table.Dealer)
	assert.Equal(t, cfg.SmallBlind, p0.RoundBet)
	assert.Equal(t, cfg.BigBlind, p1.RoundBet)
	assert.Equal(t, 0, table.Current, "dealer acts first pre-flop heads-up")
	assert.Equal(t, cfg.BigBlind, table.CurrentBet)
	assert.Equal(t, cfg.BigBlind, table.MinRaise)

	mustAct(t, table, "p0", Call, 0)
	mustAct(t, table, "p1", Check, 0)

	// Post-flop the big blind acts first.
	require.Equal(t, Flop, table.Phase)
	assert.Equal(t, 40, table.Pot)
	assert.Equal(t, 1, table.Current, "big blind acts first post-flop heads-up")
}

func TestThreeHandedBlindsAndOrder(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 3, 1000)
	require.NoError(t, table.StartHand())

	assert.Equal(t, 10, table.PlayerByID("p1").RoundBet, "seat after dealer posts small blind")
	assert.Equal(t, 20, table.PlayerByID("p2").RoundBet, "next seat posts big blind")
	assert.Equal(t, 0, table.Current, "seat after big blind acts first")
}

func TestHoleCardsDealtToLivePlayersOnly(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 3, 1000)
	table.PlayerByID("p2").Chips = 0
	require.NoError(t, table.StartHand())

	assert.Len(t, table.PlayerByID("p0").HoleCards, 2)
	assert.Len(t, table.PlayerByID("p1").HoleCards, 2)

	// The busted player sits the hand out entirely.
	p2 := table.PlayerByID("p2")
	assert.True(t, p2.Folded)
	assert.Empty(t, p2.HoleCards)
	assert.Equal(t, 0, p2.TotalContribution, "busted player posts no blind")
}

func TestHoleCardsAreUniqueAcrossPlayersAndBoard(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 4, 1000)
	require.NoError(t, table.StartHand())

	for table.Phase != Ended {
		current := table.Players[table.Current]
		if table.CurrentBet > current.RoundBet {
			mustAct(t, table, current.ID, Call, 0)
		} else {
			mustAct(t, table, current.ID, Check, 0)
		}
	}

	seen := make(map[string]bool)
	for _, p := range table.Players {
		for _, c := range p.HoleCards {
			assert.False(t, seen[c.String()], "duplicate card %s", c)
			seen[c.String()] = true
		}
	}
	for _, c := range table.Community {
		assert.False(t, seen[c.String()], "duplicate card %s", c)
		seen[c.String()] = true
	}
	assert.Len(t, seen, 4*2+5)
}

func TestTwoPairKickerDecidesShowdown(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)

	table.Started = true
	table.Phase = River
	table.Pot = 100
	table.Community = parseCards(t, "Ah 9d 5c 5h 2s")
	table.PlayerByID("p0").HoleCards = parseCards(t, "Ad Kc")
	table.PlayerByID("p1").HoleCards = parseCards(t, "As Qd")

	table.resolveShowdown()

	require.Len(t, table.Winners, 1)
	assert.Equal(t, "p0", table.Winners[0].PlayerID, "king kicker beats queen kicker")
	assert.Equal(t, 100, table.Winners[0].Amount)
	assert.Contains(t, table.Winners[0].Hand, "Two Pair")
	assert.Equal(t, 1100, table.PlayerByID("p0").Chips)
	assert.Equal(t, 0, table.Pot)
}

func TestOddSplitPotRemainderGoesToFirstSeat(t *testing.T) {
	table, _ := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)

	// Both players play the board straight; the 101 pot cannot split
	// evenly and the spare chip goes to the first tied seat.
	table.Started = true
	table.Phase = River
	table.Pot = 101
	table.Community = parseCards(t, "Ah Kd Qh Jc Td")
	table.PlayerByID("p0").HoleCards = parseCards(t, "2c 3d")
	table.PlayerByID("p1").HoleCards = parseCards(t, "2h 3s")

	table.resolveShowdown()

	require.Len(t, table.Winners, 2)
	assert.Equal(t, "p0", table.Winners[0].PlayerID)
	assert.Equal(t, 51, table.Winners[0].Amount)
	assert.Equal(t, "p1", table.Winners[1].PlayerID)
	assert.Equal(t, 50, table.Winners[1].Amount)
	assert.Equal(t, 0, table.Pot)
	assert.Equal(t, 1051, table.PlayerByID("p0").Chips)
	assert.Equal(t, 1050, table.PlayerByID("p1").Chips)
}

func TestCountdownTicksAndStartsNextHand(t *testing.T) {
	table, clock := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	var updates int
	table.SetOnUpdate(func() { updates++ })

	mustAct(t, table, "p0", Fold, 0)
	require.Equal(t, Ended, table.Phase)
	require.Equal(t, 10, table.Countdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock.Advance(1 * time.Second).MustWait(ctx)
	assert.Equal(t, 9, table.Countdown)
	assert.Equal(t, 1, updates, "each tick is broadcast")

	for i := 0; i < 9; i++ {
		clock.Advance(1 * time.Second).MustWait(ctx)
	}

	// Countdown expired: the next hand begins with the button moved.
	assert.Equal(t, Preflop, table.Phase)
	assert.True(t, table.Started)
	assert.Equal(t, 1, table.Dealer, "button advances one seat")
	assert.Equal(t, 0, table.Countdown)
	assert.Equal(t, 10, updates)

	// New hand state is fresh.
	assert.Empty(t, table.Winners)
	assert.Empty(t, table.Community)
	assert.Len(t, table.PlayerByID("p0").HoleCards, 2)
}

func TestCountdownFallsBackToWaitingWhenShortOfPlayers(t *testing.T) {
	table, clock := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	mustAct(t, table, "p0", Fold, 0)
	require.Equal(t, Ended, table.Phase)

	// p0 busts between hands; one funded player cannot continue.
	table.PlayerByID("p0").Chips = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		clock.Advance(1 * time.Second).MustWait(ctx)
	}

	assert.Equal(t, Waiting, table.Phase)
	assert.False(t, table.Started)
}

func TestCloseCancelsPendingCountdown(t *testing.T) {
	table, clock := newTestTable(t, DefaultConfig())
	seatPlayers(t, table, 2, 1000)
	require.NoError(t, table.StartHand())

	mustAct(t, table, "p0", Fold, 0)
	require.Equal(t, Ended, table.Phase)

	table.Close()

	// No timer remains; advancing the clock changes nothing.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(1 * time.Second).MustWait(ctx)
	assert.Equal(t, 10, table.Countdown)
	assert.Equal(t, Ended, table.Phase)
}
