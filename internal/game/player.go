package game

import (
	"sync/atomic"

	"github.com/lox/cardroom/internal/deck"
)

// Player represents a seated player at a table
type Player struct {
	ID        string
	Name      string
	Chips     int
	HoleCards []deck.Card

	// RoundBet is the contribution in the current betting round, reset
	// every phase. TotalContribution accumulates across the whole hand
	// and is what pot accounting is rederived from.
	RoundBet          int
	TotalContribution int

	Folded   bool
	AllIn    bool
	Acted    bool
	Active   bool
	Position int

	// processing guards against duplicate deliveries of the same
	// action arriving before the previous one's mutation is visible.
	// The table mutex already serializes mutations; this is an
	// application-level idempotency check on top.
	processing atomic.Bool
}

// CanAct reports whether the player is eligible to act in the current
// betting round.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// resetForHand clears all per-hand state
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.RoundBet = 0
	p.TotalContribution = 0
	p.Folded = false
	p.AllIn = false
	p.Acted = false
	p.Active = true
	p.processing.Store(false)
}

// resetForRound clears per-round state at a phase boundary
func (p *Player) resetForRound() {
	p.RoundBet = 0
	p.Acted = false
	p.processing.Store(false)
}

// commit moves amount chips from the player's stack into the pot
// fields atomically with respect to each other: stack, round
// contribution, hand contribution and the table pot always change by
// the same amount together.
func (p *Player) commit(t *Table, amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.RoundBet += amount
	p.TotalContribution += amount
	t.Pot += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}
