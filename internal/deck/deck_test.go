package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardroom/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := New()
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool)
	cards, err := d.Deal(52)
	require.NoError(t, err)
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	a := NewShuffled(randutil.New(42))
	b := NewShuffled(randutil.New(42))

	cardsA, err := a.Deal(52)
	require.NoError(t, err)
	cardsB, err := b.Deal(52)
	require.NoError(t, err)
	assert.Equal(t, cardsA, cardsB)

	c := NewShuffled(randutil.New(43))
	cardsC, err := c.Deal(52)
	require.NoError(t, err)
	assert.NotEqual(t, cardsA, cardsC)
}

func TestShufflePreservesAllCards(t *testing.T) {
	d := NewShuffled(randutil.New(7))
	seen := make(map[Card]bool)
	cards, err := d.Deal(52)
	require.NoError(t, err)
	for _, c := range cards {
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestDealConsumesFromDeck(t *testing.T) {
	d := New()
	first, err := d.Deal(5)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.Equal(t, 47, d.Remaining())

	second, err := d.Deal(5)
	require.NoError(t, err)
	for _, c := range second {
		assert.NotContains(t, first, c)
	}
}

func TestDealMoreThanRemainingFails(t *testing.T) {
	d := New()
	_, err := d.Deal(50)
	require.NoError(t, err)

	_, err = d.Deal(3)
	assert.Error(t, err)
	assert.Equal(t, 2, d.Remaining())
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "As", NewCard(Ace, Spades).String())
	assert.Equal(t, "Td", NewCard(Ten, Diamonds).String())
	assert.Equal(t, "2c", NewCard(Two, Clubs).String())
	assert.Equal(t, "Kh", NewCard(King, Hearts).String())
}
