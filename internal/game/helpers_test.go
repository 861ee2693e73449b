package game

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardroom/internal/deck"
	"github.com/lox/cardroom/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestTable(t *testing.T, cfg Config) (*Table, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	table := NewTable("test", cfg, randutil.New(42), clock, testLogger())
	return table, clock
}

// seatPlayers adds n players named p0..pn-1 with the configured
// starting stack
func seatPlayers(t *testing.T, table *Table, n, chips int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := table.AddPlayer(id, id, chips)
		require.NoError(t, err)
	}
}

// parseCards converts short notation like "As Kd" into cards
func parseCards(t *testing.T, s string) []deck.Card {
	t.Helper()

	ranks := map[byte]deck.Rank{
		'2': deck.Two, '3': deck.Three, '4': deck.Four, '5': deck.Five,
		'6': deck.Six, '7': deck.Seven, '8': deck.Eight, '9': deck.Nine,
		'T': deck.Ten, 'J': deck.Jack, 'Q': deck.Queen, 'K': deck.King,
		'A': deck.Ace,
	}
	suits := map[byte]deck.Suit{
		'c': deck.Clubs, 'd': deck.Diamonds, 'h': deck.Hearts, 's': deck.Spades,
	}

	var out []deck.Card
	for i := 0; i+1 < len(s); i += 3 {
		rank, ok := ranks[s[i]]
		require.True(t, ok, "bad rank %c", s[i])
		suit, ok := suits[s[i+1]]
		require.True(t, ok, "bad suit %c", s[i+1])
		out = append(out, deck.NewCard(rank, suit))
	}
	return out
}

// chipsInPlay sums every stack plus the live pot, which must be
// invariant across any sequence of operations
func chipsInPlay(table *Table) int {
	total := table.Pot
	for _, p := range table.Players {
		total += p.Chips
	}
	return total
}

// mustAct applies an action and fails the test on rejection
func mustAct(t *testing.T, table *Table, playerID string, action Action, amount int) *ActionResult {
	t.Helper()
	res, err := table.Apply(playerID, action, amount)
	require.NoError(t, err, "%s %s %d", playerID, action, amount)
	return res
}
