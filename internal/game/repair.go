package game

// Corruption guards. With every table mutation serialized under the
// table mutex these paths are unreachable; they remain as a logged
// last-resort safety net against state desync, and the Repairs
// counter makes any activation observable to tests.

// repairPot rederives the pot from player contributions when the live
// pot exceeds what the chips in play can account for.
func (t *Table) repairPot() {
	total := 0
	contributed := 0
	for _, p := range t.Players {
		total += p.Chips + p.TotalContribution
		contributed += p.TotalContribution
	}
	if total < t.Pot {
		t.logger.Warn("pot exceeds chips in play, recomputing from contributions",
			"pot", t.Pot, "contributed", contributed)
		t.Pot = contributed
		t.Repairs++
	}
}

// clampCurrentBet lowers an implausible current bet to the highest
// real round contribution among players who can still act. Returns
// true when a correction was applied.
func (t *Table) clampCurrentBet(highest int) bool {
	plausible := 0
	for _, p := range t.Players {
		plausible += p.Chips + p.TotalContribution
	}
	if t.CurrentBet <= plausible {
		return false
	}
	t.logger.Warn("current bet exceeds any plausible stack, clamping",
		"currentBet", t.CurrentBet, "clampedTo", highest)
	t.CurrentBet = highest
	t.Repairs++
	return true
}
