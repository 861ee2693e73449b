package game

import (
	"time"

	"github.com/lox/cardroom/internal/deck"
	"github.com/lox/cardroom/internal/evaluator"
)

const (
	holeCardCount     = 2
	countdownTicks    = 10
	countdownInterval = time.Second
)

// StartHand begins the first hand of a game. Requires at least two
// funded players and no hand in progress.
func (t *Table) StartHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Started {
		return ruleErrorf(CodeGameAlreadyStarted, "game already started")
	}
	return t.beginHand()
}

// beginHand resets per-hand state, shuffles a fresh deck, deals hole
// cards and posts the blinds. One deck serves the entire hand: the
// flop, turn and river are dealt from the same shuffled order, so a
// community card can never duplicate a hole card.
func (t *Table) beginHand() error {
	funded := 0
	for _, p := range t.Players {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		return ruleErrorf(CodeNotEnoughPlayers, "need at least 2 players with chips, have %d", funded)
	}

	t.Started = true
	t.Phase = Preflop
	t.Pot = 0
	t.Community = nil
	t.Winners = nil
	t.Countdown = 0
	t.revealed = false

	for _, p := range t.Players {
		p.resetForHand()
		if p.Chips == 0 {
			// Busted players sit the hand out.
			p.Folded = true
			p.Active = false
		}
	}

	t.deck = deck.NewShuffled(t.rng)
	t.dealHoleCards()
	t.postBlinds()

	t.logger.Info("hand started",
		"players", funded,
		"dealer", t.Dealer,
		"smallBlind", t.SmallBlind,
		"bigBlind", t.BigBlind)
	return nil
}

// dealHoleCards deals one card to each live player in seat order,
// twice, rather than two cards at once to each player.
func (t *Table) dealHoleCards() {
	n := len(t.Players)
	for round := 0; round < holeCardCount; round++ {
		for i := 0; i < n; i++ {
			p := t.Players[(t.Dealer+1+i)%n]
			if p.Folded {
				continue
			}
			p.HoleCards = append(p.HoleCards, t.deck.MustDeal(1)...)
		}
	}
}

// postBlinds posts the small and big blinds and sets the first player
// to act. Heads-up, the dealer posts the small blind and acts first
// pre-flop; otherwise the blinds are the two seats after the button
// and action starts one seat further on.
func (t *Table) postBlinds() {
	// The button must rest on a live seat.
	if t.Players[t.Dealer].Folded {
		t.Dealer = t.nextLive(t.Dealer)
	}

	var sb, bb int
	if t.liveCount() == 2 {
		sb = t.Dealer
		bb = t.nextLive(sb)
	} else {
		sb = t.nextLive(t.Dealer)
		bb = t.nextLive(sb)
	}

	t.Players[sb].commit(t, t.SmallBlind)
	t.Players[bb].commit(t, t.BigBlind)

	t.CurrentBet = t.BigBlind
	t.MinRaise = t.BigBlind
	t.LastRaise = t.BigBlind

	if t.liveCount() == 2 {
		t.Current = sb
	} else {
		t.Current = t.nextLive(bb)
	}
	t.RoundStart = t.Current
	if !t.Players[t.Current].CanAct() {
		t.advanceTurn()
	}
}

func (t *Table) liveCount() int {
	n := 0
	for _, p := range t.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// nextLive returns the next non-folded seat after from
func (t *Table) nextLive(from int) int {
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if !t.Players[idx].Folded {
			return idx
		}
	}
	return from
}

// winByFold awards the pot to the last player standing without
// consulting the evaluator.
func (t *Table) winByFold(p *Player) {
	p.Chips += t.Pot
	t.Winners = []Winner{{PlayerID: p.ID, Name: p.Name, Amount: t.Pot}}
	t.logger.Info("hand won uncontested", "player", p.Name, "amount", t.Pot)
	t.Pot = 0
	t.finishHand()
}

// resolveShowdown evaluates every non-folded player's best hand from
// hole plus community cards. The maximum strength wins; players tied
// at the maximum split the pot, with the integer remainder awarded to
// the first tied winner in seat order.
func (t *Table) resolveShowdown() {
	t.Phase = ShowdownPhase
	t.revealed = true

	type contender struct {
		player *Player
		result evaluator.Result
	}

	var best []contender
	for _, p := range t.Players {
		if p.Folded {
			continue
		}
		cards := make([]deck.Card, 0, len(p.HoleCards)+len(t.Community))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, t.Community...)
		res, err := evaluator.Evaluate(cards)
		if err != nil {
			t.logger.Error("hand evaluation failed", "player", p.Name, "error", err)
			continue
		}
		switch {
		case len(best) == 0 || res.Strength > best[0].result.Strength:
			best = []contender{{p, res}}
		case res.Strength == best[0].result.Strength:
			best = append(best, contender{p, res})
		}
	}

	if len(best) == 0 {
		t.finishHand()
		return
	}

	share := t.Pot / len(best)
	remainder := t.Pot % len(best)
	t.Winners = make([]Winner, 0, len(best))
	for i, c := range best {
		amount := share
		if i == 0 {
			amount += remainder
		}
		c.player.Chips += amount
		t.Winners = append(t.Winners, Winner{
			PlayerID: c.player.ID,
			Name:     c.player.Name,
			Amount:   amount,
			Hand:     c.result.Description,
		})
		t.logger.Info("pot awarded", "player", c.player.Name, "amount", amount, "hand", c.result.Description)
	}
	t.Pot = 0
	t.finishHand()
}

// finishHand moves the table to the ended phase and starts the
// countdown to the next hand.
func (t *Table) finishHand() {
	t.Phase = Ended
	t.Countdown = countdownTicks
	t.scheduleCountdownLocked()
}

// scheduleCountdownLocked arms the next countdown tick. Starting a new
// countdown cancels any prior pending one, so there is at most one
// live timer per table.
func (t *Table) scheduleCountdownLocked() {
	t.stopCountdownLocked()
	t.countdown = t.clock.AfterFunc(countdownInterval, t.tickCountdown)
}

func (t *Table) stopCountdownLocked() {
	if t.countdown != nil {
		t.countdown.Stop()
		t.countdown = nil
	}
}

// tickCountdown runs on the clock goroutine and re-enters the table's
// serialization domain like any other mutation.
func (t *Table) tickCountdown() {
	t.mu.Lock()
	if t.Phase != Ended {
		// A leave or teardown preempted the countdown.
		t.mu.Unlock()
		return
	}

	t.Countdown--
	if t.Countdown > 0 {
		t.countdown = t.clock.AfterFunc(countdownInterval, t.tickCountdown)
		t.mu.Unlock()
		t.notifyUpdate()
		return
	}

	t.nextHand()
	t.mu.Unlock()
	t.notifyUpdate()
}

// nextHand advances the dealer button one seat and restarts the hand
// in place on the same table. Falls back to waiting when fewer than
// two funded players remain.
func (t *Table) nextHand() {
	t.countdown = nil
	t.Countdown = 0
	t.Community = nil
	t.Winners = nil

	if len(t.Players) > 0 {
		t.Dealer = (t.Dealer + 1) % len(t.Players)
	}

	if err := t.beginHand(); err != nil {
		t.Started = false
		t.Phase = Waiting
		t.logger.Info("not enough players for next hand, waiting", "players", len(t.Players))
	}
}
