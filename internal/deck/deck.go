package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck is an ordered sequence of the 52 unique cards. A deck is owned
// by the hand that created it and consumed by dealing from the front.
type Deck struct {
	cards []Card
}

// New builds the full 52-card set in fixed suit-by-rank order without
// shuffling. Useful for deterministic tests.
func New() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffled builds a full deck and Fisher-Yates shuffles it with the
// provided RNG. Fairness, not unpredictability, is the requirement, so
// a seeded PRNG is fine here.
func NewShuffled(rng *rand.Rand) *Deck {
	d := New()
	d.Shuffle(rng)
	return d
}

// Shuffle randomizes card order in place
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the front of the deck
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("deal %d: only %d cards remaining", n, len(d.cards))
	}
	cards := d.cards[:n]
	d.cards = d.cards[n:]
	return cards, nil
}

// MustDeal deals n cards and panics on shortfall. With table sizes
// capped at 10 a 52-card deck can never run out mid-hand.
func (d *Deck) MustDeal(n int) []Card {
	cards, err := d.Deal(n)
	if err != nil {
		panic(err)
	}
	return cards
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}
