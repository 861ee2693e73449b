package game

// ActionResult describes a settled action. Amount is the actual chip
// delta applied, not the raw requested amount (a short-stacked call
// reports the clipped amount).
type ActionResult struct {
	PlayerID   string
	PlayerName string
	Action     Action
	Amount     int
}

// Apply validates and settles one player action. Rejections leave
// table state untouched and are returned as *RuleError; successful
// actions advance the turn and, when the round completes, the phase.
func (t *Table) Apply(playerID string, action Action, amount int) (*ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.Started {
		return nil, ruleErrorf(CodeGameNotStarted, "game has not started")
	}

	// A hand with fewer than two contenders is already decided;
	// resolve it rather than process the action.
	if remaining := t.nonFolded(); len(remaining) < 2 {
		if len(remaining) == 1 && t.Phase != Ended {
			t.winByFold(remaining[0])
		}
		return nil, ruleErrorf(CodeHandAlreadyOver, "hand is already over")
	}

	p := t.playerByID(playerID)
	if p == nil {
		return nil, ruleErrorf(CodePlayerNotFound, "player %s not at table", playerID)
	}
	if t.Current < 0 || t.Current >= len(t.Players) || t.Players[t.Current] != p {
		return nil, ruleErrorf(CodeNotYourTurn, "it is not %s's turn", p.Name)
	}
	if !p.CanAct() {
		return nil, ruleErrorf(CodeCannotAct, "%s cannot act", p.Name)
	}
	if p.Acted {
		return nil, ruleErrorf(CodeAlreadyActedThisRound, "%s already acted this round", p.Name)
	}
	if !p.processing.CompareAndSwap(false, true) {
		return nil, ruleErrorf(CodeActionInFlight, "previous action still processing")
	}
	defer p.processing.Store(false)

	if action == Bet || action == Raise {
		// Sanity-cap client-supplied numbers before any arithmetic.
		limit := p.Chips
		if sane := 100 * t.BigBlind; sane < limit {
			limit = sane
		}
		if amount > limit {
			return nil, ruleErrorf(CodeUnreasonableAmount, "amount %d exceeds limit %d", amount, limit)
		}
	}

	delta, err := t.settle(p, action, amount)
	if err != nil {
		return nil, err
	}

	p.Acted = true
	t.repairPot()

	res := &ActionResult{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     action,
		Amount:     delta,
	}

	if remaining := t.nonFolded(); len(remaining) == 1 {
		t.winByFold(remaining[0])
		return res, nil
	}

	if t.roundComplete() {
		t.advancePhase()
	} else {
		t.advanceTurn()
	}
	return res, nil
}

// settle applies the chip movement for one action. All movement goes
// through Player.commit so stack, round bet, hand contribution and
// pot change together.
func (t *Table) settle(p *Player, action Action, amount int) (int, error) {
	switch action {
	case Fold:
		p.Folded = true
		p.Active = false
		return 0, nil

	case Check:
		if t.CurrentBet != p.RoundBet {
			return 0, ruleErrorf(CodeMustCallOrFold, "cannot check facing a bet of %d", t.CurrentBet-p.RoundBet)
		}
		return 0, nil

	case Bet:
		if t.CurrentBet != 0 {
			return 0, ruleErrorf(CodeUseRaiseInstead, "there is already a bet of %d", t.CurrentBet)
		}
		if amount < t.BigBlind {
			return 0, ruleErrorf(CodeBelowMinimumBet, "bet %d is below the minimum %d", amount, t.BigBlind)
		}
		if amount > p.Chips {
			return 0, ruleErrorf(CodeInsufficientChips, "bet %d exceeds stack %d", amount, p.Chips)
		}
		delta := p.commit(t, amount)
		t.CurrentBet = p.RoundBet
		t.LastRaise = amount
		t.MinRaise = max(amount, t.BigBlind)
		t.reopenAction(p)
		return delta, nil

	case Call:
		if t.CurrentBet <= p.RoundBet {
			return 0, ruleErrorf(CodeNothingToCall, "nothing to call")
		}
		// Partial call when short-stacked forces all-in via commit.
		delta := p.commit(t, t.CurrentBet-p.RoundBet)
		return delta, nil

	case Raise:
		// Amount is the increment above the call, not the new total.
		toCall := t.CurrentBet - p.RoundBet
		if amount < t.MinRaise {
			return 0, ruleErrorf(CodeBelowMinimumRaise, "raise %d is below the minimum %d", amount, t.MinRaise)
		}
		if toCall+amount > p.Chips {
			return 0, ruleErrorf(CodeInsufficientChips, "raise requires %d, stack is %d", toCall+amount, p.Chips)
		}
		delta := p.commit(t, toCall+amount)
		t.CurrentBet = p.RoundBet
		t.LastRaise = amount
		t.MinRaise = max(amount, t.BigBlind)
		t.reopenAction(p)
		return delta, nil

	case AllIn:
		delta := p.commit(t, p.Chips)
		if p.RoundBet > t.CurrentBet {
			// The shove exceeds the outstanding bet, so it acts as a
			// raise and reopens everyone else's action.
			inc := p.RoundBet - t.CurrentBet
			t.CurrentBet = p.RoundBet
			t.LastRaise = inc
			t.MinRaise = max(inc, t.BigBlind)
			t.reopenAction(p)
		}
		return delta, nil

	default:
		return 0, ruleErrorf(CodeInvalidAction, "invalid action")
	}
}

// reopenAction resets the acted flag of every other eligible player
// after a bet or raise: they must respond to the new price.
func (t *Table) reopenAction(actor *Player) {
	for _, p := range t.Players {
		if p != actor && p.CanAct() {
			p.Acted = false
		}
	}
}

// roundComplete tests whether the current betting round is finished.
// Callers have already handled the one-player-left case.
func (t *Table) roundComplete() bool {
	canAct := t.canActPlayers()

	// Everyone remaining is all-in: no further betting is possible.
	if len(canAct) == 0 {
		return true
	}

	if len(canAct) == 1 {
		p := canAct[0]
		return p.Acted && p.RoundBet == t.CurrentBet
	}

	allActed := true
	allMatched := true
	highest := 0
	for _, p := range canAct {
		if !p.Acted {
			allActed = false
		}
		if p.RoundBet != t.CurrentBet {
			allMatched = false
		}
		if p.RoundBet > highest {
			highest = p.RoundBet
		}
	}

	if allActed && !allMatched {
		// All acted but bets unequal should be unreachable; if the
		// current bet is implausible, clamp it and re-test.
		if t.clampCurrentBet(highest) {
			allMatched = true
			for _, p := range canAct {
				if p.RoundBet != t.CurrentBet {
					allMatched = false
					break
				}
			}
		}
	}

	return allActed && allMatched
}

// advanceTurn steps the acting index forward circularly, skipping
// folded and all-in players. At most one full rotation is attempted;
// if nobody is eligible the index is left unchanged, since the
// round-completion test short-circuits that case.
func (t *Table) advanceTurn() {
	n := len(t.Players)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		idx := (t.Current + i) % n
		if t.Players[idx].CanAct() {
			t.Current = idx
			return
		}
	}
}

// advancePhase moves the table to the next street: per-round fields
// reset, community cards dealt from the hand's deck, first to act set
// to the seat after the button. River completion routes to showdown.
// When everyone left is all-in the phases cascade through to showdown
// with no further betting.
func (t *Table) advancePhase() {
	for _, p := range t.Players {
		p.resetForRound()
	}
	t.CurrentBet = 0
	t.MinRaise = t.BigBlind
	t.LastRaise = 0

	switch t.Phase {
	case Preflop:
		t.Phase = Flop
		t.Community = append(t.Community, t.deck.MustDeal(3)...)
	case Flop:
		t.Phase = Turn
		t.Community = append(t.Community, t.deck.MustDeal(1)...)
	case Turn:
		t.Phase = River
		t.Community = append(t.Community, t.deck.MustDeal(1)...)
	case River:
		t.resolveShowdown()
		return
	default:
		return
	}

	t.setFirstToActPostflop()

	// Everyone left is all-in: run the board out.
	if len(t.nonFolded()) >= 2 && len(t.canActPlayers()) == 0 {
		t.advancePhase()
	}
}

// setFirstToActPostflop sets the first eligible seat after the dealer
// button. In heads-up play the seat after the button is the big
// blind, which is exactly who acts first post-flop.
func (t *Table) setFirstToActPostflop() {
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		idx := (t.Dealer + i) % n
		if t.Players[idx].CanAct() {
			t.Current = idx
			t.RoundStart = idx
			return
		}
	}
}
